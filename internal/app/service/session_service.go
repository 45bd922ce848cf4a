package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/Carlos20473736/monetag-tracker/internal/app/repository"
	"github.com/Carlos20473736/monetag-tracker/internal/metrics"
)

// SessionService manages the short-lived sessions used to recover identity
// for postbacks whose macros were not expanded.
type SessionService interface {
	Start(ctx context.Context, input StartSessionInput) (*model.AdSession, error)
	FindActive(ctx context.Context, zoneID string) (*model.AdSession, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

// StartSessionInput captures the identity a client is about to show an ad to.
type StartSessionInput struct {
	UserID    string
	UserEmail string
	ZoneID    string
}

type sessionService struct {
	repo repository.AdSessionRepository
	now  func() time.Time
}

// NewSessionService returns a service implementation backed by the given repository.
func NewSessionService(repo repository.AdSessionRepository) SessionService {
	return &sessionService{repo: repo, now: time.Now}
}

func (s *sessionService) Start(ctx context.Context, input StartSessionInput) (*model.AdSession, error) {
	if input.UserID == "" || input.UserEmail == "" || input.ZoneID == "" {
		return nil, invalid("session", "Missing required fields: userId, userEmail, zoneId")
	}

	now := s.now().UTC()
	token, err := newSessionToken(now)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	session := &model.AdSession{
		UserID:       input.UserID,
		UserEmail:    input.UserEmail,
		ZoneID:       input.ZoneID,
		SessionToken: token,
		ExpiresAt:    now.Add(model.SessionTTL),
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.SessionsStarted.Inc()
	return session, nil
}

// FindActive returns the most recent unexpired session for zoneID, or nil
// when there is none.
func (s *sessionService) FindActive(ctx context.Context, zoneID string) (*model.AdSession, error) {
	session, err := s.repo.FindLatestActive(ctx, zoneID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return session, nil
}

func (s *sessionService) CleanupExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	metrics.SessionsPurged.Add(float64(removed))
	return removed, nil
}

const (
	tokenSuffixLength = 9
	tokenCharset      = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// newSessionToken builds "session_<unix millis>_<9 random base36 chars>".
// The token only identifies a row; it never authorizes anything.
func newSessionToken(now time.Time) (string, error) {
	buf := make([]byte, tokenSuffixLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = tokenCharset[int(buf[i])%len(tokenCharset)]
	}
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), buf), nil
}
