package service

import (
	"strings"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
)

// Postback query/body parameter names.
const (
	ParamEventType  = "event_type"
	ParamZoneID     = "zone_id"
	ParamClickID    = "click_id"
	ParamYMID       = "ymid"
	ParamRequestVar = "request_var"
	ParamSubID      = "sub_id"
	ParamSubID2     = "sub_id2"
	ParamRevenue    = "revenue"
	ParamCurrency   = "currency"
	ParamCountry    = "country"
	ParamIP         = "ip"
)

// correlationChain lists, in preference order, the parameters that may carry
// one identity value. Current vendor macros come first, legacy sub ids last.
type correlationChain struct {
	current string
	legacy  string
}

var (
	primaryChain   = correlationChain{current: ParamYMID, legacy: ParamSubID}
	secondaryChain = correlationChain{current: ParamRequestVar, legacy: ParamSubID2}
)

// Placeholder returns the unexpanded macro text the vendor sends for param.
func Placeholder(param string) string {
	return "{" + param + "}"
}

// PostbackParams is the flat parameter set of one inbound postback.
type PostbackParams struct {
	Values    map[string]string
	UserAgent string
}

// Get returns the value of name with surrounding whitespace removed.
func (p PostbackParams) Get(name string) string {
	return strings.TrimSpace(p.Values[name])
}

// IsLiteralMacro reports whether name arrived as its own placeholder text.
func (p PostbackParams) IsLiteralMacro(name string) bool {
	return p.Get(name) == Placeholder(name)
}

// HasLiteralMacros reports whether any correlation field was left
// unexpanded by the vendor.
func (p PostbackParams) HasLiteralMacros() bool {
	for _, name := range []string{ParamYMID, ParamRequestVar, ParamSubID, ParamSubID2} {
		if p.IsLiteralMacro(name) {
			return true
		}
	}
	return false
}

// Identity holds the two correlation values written to an event.
type Identity struct {
	Primary   *string
	Secondary *string
}

// ResolveIdentity picks the primary and secondary correlation values from
// params. When session is non-nil its user id and email stand in for the
// legacy sub id fields. Placeholder text is never returned.
func ResolveIdentity(params PostbackParams, session *model.AdSession) Identity {
	var legacyPrimary, legacySecondary string
	if session != nil {
		legacyPrimary = session.UserID
		legacySecondary = session.UserEmail
	} else {
		legacyPrimary = params.Get(ParamSubID)
		legacySecondary = params.Get(ParamSubID2)
	}

	return Identity{
		Primary:   primaryChain.pick(params, legacyPrimary),
		Secondary: secondaryChain.pick(params, legacySecondary),
	}
}

func (c correlationChain) pick(params PostbackParams, legacy string) *string {
	if v := params.Get(c.current); v != "" && v != Placeholder(c.current) {
		return &v
	}
	if legacy != "" && legacy != Placeholder(c.legacy) {
		return &legacy
	}
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func countryCode(v string) *string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if len(v) != 2 {
		return nil
	}
	return &v
}
