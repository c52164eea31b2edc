package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/auth-service/internal/core/domain"
	"github.com/arklim/auth-service/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs auth.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"username":      event.Username,
		"email":         event.Email,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("auth.user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishUserVerified logs auth.user.verified events.
func (p *StubPublisher) PublishUserVerified(_ context.Context, event domain.UserVerifiedEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"verified_at": event.VerifiedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("auth.user.verified", event.UserID, event.VerifiedAt, payload)
	return nil
}

// PublishPasswordResetRequested logs auth.user.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := map[string]any{
		"user_id":            event.UserID,
		"requested_at":       event.RequestedAt,
		"masked_destination": event.MaskedDestination,
		"expires_at":         event.ExpiresAt,
		"metadata":           event.Metadata,
	}
	p.logEvent("auth.user.password.reset_requested", event.UserID, event.RequestedAt, payload)
	return nil
}

// PublishPasswordChanged logs auth.user.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_at": event.ChangedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("auth.user.password.changed", event.UserID, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
