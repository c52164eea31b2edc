package domain

import "time"

// RefreshToken represents a persisted refresh token (stored as a hash).
// Records are immutable: rotation deletes the old row and inserts a new one.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the record is past its expiry at the given instant.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
