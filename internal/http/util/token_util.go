package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"strings"
)

var (
	ErrMissingToken  = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid bearer token")
	ErrMissingSecret = errors.New("admin token is not configured")
)

const bearerPrefix = "Bearer "

// AdminVerifier checks bearer tokens presented on administrative routes.
type AdminVerifier struct {
	digest []byte
}

// NewAdminVerifier returns a verifier for the configured admin token. An
// empty token rejects every request.
func NewAdminVerifier(token string) *AdminVerifier {
	if token == "" {
		return &AdminVerifier{}
	}
	return &AdminVerifier{digest: sum(token)}
}

// Verify validates an Authorization header value.
func (v *AdminVerifier) Verify(header string) error {
	if len(v.digest) == 0 {
		return ErrMissingSecret
	}

	token, ok := BearerToken(header)
	if !ok {
		return ErrMissingToken
	}

	// Comparing digests keeps the comparison length-independent.
	if !hmac.Equal(sum(token), v.digest) {
		return ErrInvalidToken
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func sum(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}
