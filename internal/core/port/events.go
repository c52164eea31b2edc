package port

import (
	"context"

	"github.com/arklim/auth-service/internal/core/domain"
)

// EventPublisher publishes account security events to the message bus.
// Publishing is best-effort: callers log failures but never fail the flow.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserVerified(ctx context.Context, event domain.UserVerifiedEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
}
