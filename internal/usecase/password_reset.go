package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/auth-service/internal/core/domain"
	"github.com/arklim/auth-service/internal/core/port"
	"github.com/arklim/auth-service/internal/infra/config"
	"github.com/arklim/auth-service/internal/infra/logger"
	"github.com/arklim/auth-service/internal/infra/security"
	"github.com/arklim/auth-service/internal/repository"
)

const (
	resetTokenBytes = 32
	defaultResetTTL = time.Hour

	passwordResetRateLimitScope = "password_reset"
)

var (
	// ErrUserNotFound indicates no account exists for the supplied email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidResetToken covers unknown, already used, and expired reset
	// tokens alike.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// RateLimitExceededError indicates the caller exhausted the attempt budget for a scope.
type RateLimitExceededError struct {
	Scope      string
	RetryAfter time.Duration
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Scope)
}

// PasswordResetService coordinates password reset initiation and completion.
type PasswordResetService struct {
	cfg               *config.AppConfig
	users             port.UserRepository
	rateLimits        port.RateLimitStore
	notifier          port.Notifier
	events            port.EventPublisher
	hasher            port.PasswordHasher
	passwordValidator *security.PasswordValidator
	now               func() time.Time
	resetTTL          time.Duration
}

// NewPasswordResetService constructs a password reset service.
func NewPasswordResetService(cfg *config.AppConfig, users port.UserRepository, rateLimits port.RateLimitStore, notifier port.Notifier, events port.EventPublisher, hasher port.PasswordHasher, validator *security.PasswordValidator) *PasswordResetService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &PasswordResetService{
		cfg:               cfg,
		users:             users,
		rateLimits:        rateLimits,
		notifier:          notifier,
		events:            events,
		hasher:            hasher,
		passwordValidator: validator,
		now:               time.Now,
		resetTTL:          defaultResetTTL,
	}
}

// WithClock overrides the service clock (primarily for tests).
func (s *PasswordResetService) WithClock(clock func() time.Time) *PasswordResetService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// ForgotPassword issues a one-time reset token and emails it to the account.
// A repeated request overwrites any earlier token, so only the latest link
// works.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if s.notifier == nil {
		return fmt.Errorf("notifier not configured")
	}

	now := s.now().UTC()
	if err := s.enforceResetRateLimit(ctx, email, now); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	rawToken, err := security.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expiresAt := now.Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, security.HashToken(rawToken), expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if s.events != nil {
		event := domain.PasswordResetRequestedEvent{
			EventID:           uuid.NewString(),
			UserID:            user.ID,
			RequestedAt:       now,
			MaskedDestination: logger.MaskEmail(user.Email),
			ExpiresAt:         expiresAt,
		}
		if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("publish password reset requested event",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	if err := s.notifier.SendResetPasswordEmail(ctx, user.Email, rawToken); err != nil {
		logger.WithContext(ctx).Error("send reset password email",
			zap.String("user_id", user.ID),
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return nil
}

// ResetPassword consumes a reset token and replaces the account password.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidResetToken
	}
	if newPassword == "" {
		return fmt.Errorf("password is required")
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	user, err := s.users.GetByResetToken(ctx, security.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	now := s.now().UTC()
	if user.ResetTokenExpiresAt == nil || !now.Before(*user.ResetTokenExpiresAt) {
		return ErrInvalidResetToken
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// UpdatePassword clears the reset token in the same statement, so the
	// link is single use even if the request is replayed.
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			UserID:    user.ID,
			ChangedAt: now,
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("publish password changed event",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return nil
}

func (s *PasswordResetService) enforceResetRateLimit(ctx context.Context, identifier string, now time.Time) error {
	if s.rateLimits == nil || s.cfg == nil {
		return nil
	}

	limit := s.cfg.RateLimit.PasswordResetMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := s.cfg.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Hour
	}

	identifierKey := strings.ToLower(strings.TrimSpace(identifier))
	if identifierKey == "" {
		return nil
	}

	storageKey := fmt.Sprintf("%s:%s", passwordResetRateLimitScope, identifierKey)

	// Store errors degrade to allowing the request; availability of the
	// reset flow wins over strict enforcement.
	if err := s.rateLimits.TrimWindow(ctx, storageKey, window, now); err != nil {
		logger.WithContext(ctx).Warn("password reset rate limit trim failed", zap.Error(err))
		return nil
	}

	count, err := s.rateLimits.CountAttempts(ctx, storageKey, window, now)
	if err != nil {
		logger.WithContext(ctx).Warn("password reset rate limit count failed", zap.Error(err))
		return nil
	}

	if count >= limit {
		retryAfter := time.Duration(0)
		if oldest, ok, err := s.rateLimits.OldestAttempt(ctx, storageKey, window, now); err == nil && ok {
			reset := oldest.Add(window)
			if reset.After(now) {
				retryAfter = reset.Sub(now)
			}
		} else if err != nil {
			logger.WithContext(ctx).Warn("password reset rate limit oldest lookup failed", zap.Error(err))
		}
		return &RateLimitExceededError{Scope: passwordResetRateLimitScope, RetryAfter: retryAfter}
	}

	if err := s.rateLimits.RecordAttempt(ctx, storageKey, now); err != nil {
		logger.WithContext(ctx).Warn("password reset rate limit record failed", zap.Error(err))
	}

	return nil
}
