package domain

import "time"

// UserRegisteredEvent is emitted after a new account row is created.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Username     string
	Email        string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// UserVerifiedEvent is emitted once an account completes email verification.
type UserVerifiedEvent struct {
	EventID    string
	UserID     string
	VerifiedAt time.Time
	Metadata   map[string]any
}

// PasswordResetRequestedEvent is emitted when a reset token is issued.
type PasswordResetRequestedEvent struct {
	EventID           string
	UserID            string
	RequestedAt       time.Time
	MaskedDestination string
	ExpiresAt         time.Time
	Metadata          map[string]any
}

// PasswordChangedEvent is emitted after a successful password reset.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	Metadata  map[string]any
}
