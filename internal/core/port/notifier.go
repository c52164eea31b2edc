package port

import "context"

// Notifier delivers account emails carrying one-time tokens.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendResetPasswordEmail(ctx context.Context, email, token string) error
}
