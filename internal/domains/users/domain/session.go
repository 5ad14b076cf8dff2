package domain

import "time"

// Session records a sign-in. Token is opaque to clients.
type Session struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
