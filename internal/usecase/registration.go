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
	"github.com/arklim/auth-service/internal/infra/logger"
	"github.com/arklim/auth-service/internal/infra/security"
	"github.com/arklim/auth-service/internal/repository"
)

const verificationTokenBytes = 32

var (
	// ErrInvalidVerificationToken indicates the verification token does not match
	// any pending account.
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrDeliveryFailed indicates the account was created but the verification
	// email could not be sent.
	ErrDeliveryFailed = errors.New("verification email delivery failed")
)

// ConflictError reports which field collided with an existing account.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("user with this %s already exists", e.Field)
}

// RegistrationService handles new account onboarding.
type RegistrationService struct {
	users             port.UserRepository
	hasher            port.PasswordHasher
	notifier          port.Notifier
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	now               func() time.Time
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(users port.UserRepository, hasher port.PasswordHasher, notifier port.Notifier, events port.EventPublisher, validator *security.PasswordValidator) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &RegistrationService{
		users:             users,
		hasher:            hasher,
		notifier:          notifier,
		events:            events,
		passwordValidator: validator,
		now:               time.Now,
	}
}

// WithClock overrides the service clock (primarily for tests).
func (s *RegistrationService) WithClock(clock func() time.Time) *RegistrationService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Register creates a pending account and emails a verification token.
//
// The account row is committed before delivery is attempted. A delivery
// failure therefore surfaces as ErrDeliveryFailed without rolling the
// account back; the user can request the email again later.
func (s *RegistrationService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return domain.User{}, fmt.Errorf("username is required")
	}
	if email == "" {
		return domain.User{}, fmt.Errorf("email is required")
	}
	if password == "" {
		return domain.User{}, fmt.Errorf("password is required")
	}
	if s.notifier == nil {
		return domain.User{}, fmt.Errorf("notifier not configured")
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	// Email is checked before username so the reported conflict field is
	// stable when both collide.
	if err := s.checkAvailability(ctx, email, username); err != nil {
		return domain.User{}, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	rawToken, err := security.GenerateSecureToken(verificationTokenBytes)
	if err != nil {
		return domain.User{}, fmt.Errorf("generate verification token: %w", err)
	}
	tokenHash := security.HashToken(rawToken)

	now := s.now().UTC()
	user := domain.User{
		ID:                    uuid.NewString(),
		Username:              username,
		Email:                 email,
		PasswordHash:          passwordHash,
		IsVerified:            false,
		VerificationTokenHash: &tokenHash,
		CreatedAt:             now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			return domain.User{}, &ConflictError{Field: conflictField(dup.Constraint)}
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		event := domain.UserRegisteredEvent{
			EventID:      uuid.NewString(),
			UserID:       user.ID,
			Username:     user.Username,
			Email:        user.Email,
			RegisteredAt: now,
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("publish user registered event",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	if err := s.notifier.SendVerificationEmail(ctx, user.Email, rawToken); err != nil {
		logger.WithContext(ctx).Error("send verification email",
			zap.String("user_id", user.ID),
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.Error(err))
		return domain.User{}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return user.Sanitized(), nil
}

// VerifyEmail consumes a verification token and activates the account.
func (s *RegistrationService) VerifyEmail(ctx context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, ErrInvalidVerificationToken
	}

	hash := security.HashToken(token)
	user, err := s.users.GetByVerificationToken(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidVerificationToken
		}
		return domain.User{}, fmt.Errorf("lookup verification token: %w", err)
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return domain.User{}, fmt.Errorf("mark user verified: %w", err)
	}

	user.IsVerified = true
	user.VerificationTokenHash = nil

	if s.events != nil {
		event := domain.UserVerifiedEvent{
			EventID:    uuid.NewString(),
			UserID:     user.ID,
			VerifiedAt: s.now().UTC(),
		}
		if err := s.events.PublishUserVerified(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("publish user verified event",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return user.Sanitized(), nil
}

func (s *RegistrationService) checkAvailability(ctx context.Context, email, username string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return &ConflictError{Field: "email"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup user by email: %w", err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return &ConflictError{Field: "username"}
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup user by username: %w", err)
	}

	return nil
}

// conflictField translates a unique constraint name into the conflicting
// request field. Covers the race where two registrations pass the
// availability check concurrently.
func conflictField(constraint string) string {
	if strings.Contains(constraint, "username") {
		return "username"
	}
	return "email"
}
