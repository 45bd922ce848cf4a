package model

import "time"

// SessionTTL bounds how long a session can be used to recover identity.
const SessionTTL = 5 * time.Minute

// AdSession binds a real user identity to an ad zone for a short window so
// that postbacks arriving with unexpanded macros can still be attributed.
// Expiry is never stored as a flag; it is computed on every read.
type AdSession struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"userId" gorm:"column:user_id;size:64;not null"`
	UserEmail    string    `json:"userEmail" gorm:"column:user_email;size:320;not null"`
	ZoneID       string    `json:"zoneId" gorm:"column:zone_id;size:64;not null;index:idx_ad_sessions_zone_expiry,priority:1"`
	SessionToken string    `json:"sessionToken" gorm:"column:session_token;size:128;not null;uniqueIndex"`
	ExpiresAt    time.Time `json:"expiresAt" gorm:"column:expires_at;not null;index:idx_ad_sessions_zone_expiry,priority:2"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at;not null;index"`
}

func (AdSession) TableName() string {
	return "ad_sessions"
}

// ActiveAt reports whether the session can still be used at t.
func (s AdSession) ActiveAt(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}

// Models lists every table the service owns, in migration order.
func Models() []interface{} {
	return []interface{}{&AdZone{}, &AdEvent{}, &AdSession{}}
}
