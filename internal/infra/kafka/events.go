package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/auth-service/internal/core/domain"
	"github.com/arklim/auth-service/internal/core/port"
	"github.com/arklim/auth-service/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: envelopeMetadata{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(userID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes auth.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       string         `json:"user_id"`
		Username     string         `json:"username"`
		Email        string         `json:"email"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UserID:       event.UserID,
		Username:     event.Username,
		Email:        event.Email,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.user.registered", event.UserID, event.RegisteredAt, payload)
}

// PublishUserVerified publishes auth.user.verified events.
func (p *EventPublisher) PublishUserVerified(ctx context.Context, event domain.UserVerifiedEvent) error {
	payload := struct {
		UserID     string         `json:"user_id"`
		VerifiedAt time.Time      `json:"verified_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UserID:     event.UserID,
		VerifiedAt: event.VerifiedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.user.verified", event.UserID, event.VerifiedAt, payload)
}

// PublishPasswordResetRequested publishes auth.user.password.reset_requested events.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		UserID            string         `json:"user_id"`
		RequestedAt       time.Time      `json:"requested_at"`
		MaskedDestination string         `json:"masked_destination,omitempty"`
		ExpiresAt         time.Time      `json:"expires_at"`
		Metadata          map[string]any `json:"metadata,omitempty"`
	}{
		UserID:            event.UserID,
		RequestedAt:       event.RequestedAt.UTC(),
		MaskedDestination: event.MaskedDestination,
		ExpiresAt:         event.ExpiresAt.UTC(),
		Metadata:          event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.user.password.reset_requested", event.UserID, event.RequestedAt, payload)
}

// PublishPasswordChanged publishes auth.user.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "auth.user.password.changed", event.UserID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
