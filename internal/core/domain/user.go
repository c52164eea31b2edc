package domain

import "time"

// User mirrors the persisted representation in the users table.
//
// Verification and reset tokens are stored as SHA-256 hashes; the raw
// token only ever travels to the account owner via email.
type User struct {
	ID                    string
	Username              string
	Email                 string
	PasswordHash          string
	IsVerified            bool
	VerificationTokenHash *string
	ResetTokenHash        *string
	ResetTokenExpiresAt   *time.Time
	CreatedAt             time.Time
}

// Sanitized returns a copy safe to hand to transport layers.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.VerificationTokenHash = nil
	u.ResetTokenHash = nil
	return u
}
