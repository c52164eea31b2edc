package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/auth-service/internal/core/domain"
	"github.com/arklim/auth-service/internal/infra/config"
	"github.com/arklim/auth-service/internal/infra/security"
	"github.com/arklim/auth-service/internal/repository"
)

func resetTestConfig() *config.AppConfig {
	return &config.AppConfig{
		RateLimit: config.RateLimitSettings{
			WindowDuration:           time.Minute,
			PasswordResetMaxAttempts: 3,
		},
	}
}

func newResetService(users *mockUserRepository, rateLimits *mockRateLimitStore, notifier *mockNotifier, events *mockEventPublisher) *PasswordResetService {
	return NewPasswordResetService(resetTestConfig(), users, rateLimits, notifier, events, &stubHasher{}, nil)
}

func TestForgotPasswordSuccess(t *testing.T) {
	user := &domain.User{ID: "user-1", Email: "alice@example.com"}
	users := &mockUserRepository{getByEmailResult: user}
	rateLimits := &mockRateLimitStore{}
	notifier := &mockNotifier{}
	events := &mockEventPublisher{}
	svc := newResetService(users, rateLimits, notifier, events)

	if err := svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}

	if users.setResetTokenCalls != 1 || users.setResetTokenID != "user-1" {
		t.Fatal("expected reset token to be stored for user-1")
	}
	if notifier.resetCalls != 1 {
		t.Fatalf("expected one reset email, got %d", notifier.resetCalls)
	}
	if security.HashToken(notifier.resetToken) != users.setResetTokenHash {
		t.Fatal("emailed token does not match stored hash")
	}
	if remaining := time.Until(users.setResetTokenExpires); remaining < 55*time.Minute || remaining > 65*time.Minute {
		t.Fatalf("expected roughly one hour expiry, got %s", remaining)
	}
	if rateLimits.recordCalls != 1 {
		t.Fatalf("expected attempt to be recorded, got %d", rateLimits.recordCalls)
	}
	if events.resetRequestedCalls != 1 {
		t.Fatalf("expected one reset requested event, got %d", events.resetRequestedCalls)
	}
	if events.resetRequestedEvent.MaskedDestination == user.Email {
		t.Fatal("event must not carry the raw email address")
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	users := &mockUserRepository{getByEmailErr: repository.ErrNotFound}
	notifier := &mockNotifier{}
	svc := newResetService(users, &mockRateLimitStore{}, notifier, &mockEventPublisher{})

	err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if notifier.resetCalls != 0 {
		t.Fatal("expected no email for unknown account")
	}
}

func TestForgotPasswordRateLimited(t *testing.T) {
	users := &mockUserRepository{getByEmailResult: &domain.User{ID: "user-1", Email: "alice@example.com"}}
	rateLimits := &mockRateLimitStore{
		countResult: 3,
		oldest:      time.Now().UTC().Add(-30 * time.Second),
		oldestOK:    true,
	}
	svc := newResetService(users, rateLimits, &mockNotifier{}, &mockEventPublisher{})

	err := svc.ForgotPassword(context.Background(), "alice@example.com")

	var rateErr *RateLimitExceededError
	if !errors.As(err, &rateErr) {
		t.Fatalf("expected RateLimitExceededError, got %v", err)
	}
	if rateErr.Scope != passwordResetRateLimitScope {
		t.Fatalf("expected scope %s, got %s", passwordResetRateLimitScope, rateErr.Scope)
	}
	if rateErr.RetryAfter <= 0 {
		t.Fatalf("expected positive retry after, got %v", rateErr.RetryAfter)
	}
	if rateLimits.recordCalls != 0 {
		t.Fatal("expected RecordAttempt not called when rate limited")
	}
	if users.setResetTokenCalls != 0 {
		t.Fatal("expected no token issued when rate limited")
	}
}

func TestForgotPasswordStoreOutageDegrades(t *testing.T) {
	users := &mockUserRepository{getByEmailResult: &domain.User{ID: "user-1", Email: "alice@example.com"}}
	rateLimits := &mockRateLimitStore{trimErr: errStore}
	svc := newResetService(users, rateLimits, &mockNotifier{}, &mockEventPublisher{})

	if err := svc.ForgotPassword(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("expected limiter outage to allow the request, got %v", err)
	}
}

func TestForgotPasswordDeliveryFailure(t *testing.T) {
	users := &mockUserRepository{getByEmailResult: &domain.User{ID: "user-1", Email: "alice@example.com"}}
	notifier := &mockNotifier{resetErr: errors.New("smtp down")}
	svc := newResetService(users, &mockRateLimitStore{}, notifier, &mockEventPublisher{})

	err := svc.ForgotPassword(context.Background(), "alice@example.com")
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	if users.setResetTokenCalls != 1 {
		t.Fatal("expected token to be stored before delivery")
	}
}

func TestResetPasswordSuccess(t *testing.T) {
	expires := time.Now().UTC().Add(30 * time.Minute)
	hash := security.HashToken("raw-reset-token")
	user := &domain.User{ID: "user-1", Email: "alice@example.com", ResetTokenHash: &hash, ResetTokenExpiresAt: &expires}
	users := &mockUserRepository{getByResetResult: user}
	events := &mockEventPublisher{}
	svc := newResetService(users, &mockRateLimitStore{}, &mockNotifier{}, events)

	if err := svc.ResetPassword(context.Background(), "raw-reset-token", strongRegistrationPassword); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}

	if users.getByResetHash != hash {
		t.Fatal("lookup used raw token instead of hash")
	}
	if users.updatePasswordCalls != 1 || users.updatePasswordID != "user-1" {
		t.Fatal("expected password update for user-1")
	}
	if users.updatePasswordHash != "hashed:"+strongRegistrationPassword {
		t.Fatalf("unexpected stored hash %q", users.updatePasswordHash)
	}
	if events.passwordChangedCalls != 1 {
		t.Fatalf("expected one password changed event, got %d", events.passwordChangedCalls)
	}
}

func TestResetPasswordAcceptsShortMixedPassword(t *testing.T) {
	expires := time.Now().UTC().Add(30 * time.Minute)
	hash := security.HashToken("raw-reset-token")
	user := &domain.User{ID: "user-1", Email: "alice@example.com", ResetTokenHash: &hash, ResetTokenExpiresAt: &expires}
	users := &mockUserRepository{getByResetResult: user}
	svc := newResetService(users, &mockRateLimitStore{}, &mockNotifier{}, &mockEventPublisher{})

	if err := svc.ResetPassword(context.Background(), "raw-reset-token", "NewSecret2!"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if users.updatePasswordHash != "hashed:NewSecret2!" {
		t.Fatalf("unexpected stored hash %q", users.updatePasswordHash)
	}
}

func TestResetPasswordUnknownToken(t *testing.T) {
	users := &mockUserRepository{getByResetErr: repository.ErrNotFound}
	svc := newResetService(users, &mockRateLimitStore{}, &mockNotifier{}, &mockEventPublisher{})

	err := svc.ResetPassword(context.Background(), "missing", strongRegistrationPassword)
	if !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	expires := time.Now().UTC().Add(-time.Minute)
	hash := security.HashToken("raw-reset-token")
	user := &domain.User{ID: "user-1", ResetTokenHash: &hash, ResetTokenExpiresAt: &expires}
	users := &mockUserRepository{getByResetResult: user}
	svc := newResetService(users, &mockRateLimitStore{}, &mockNotifier{}, &mockEventPublisher{})

	err := svc.ResetPassword(context.Background(), "raw-reset-token", strongRegistrationPassword)
	if !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken for expired token, got %v", err)
	}
	if users.updatePasswordCalls != 0 {
		t.Fatal("expected no password update for expired token")
	}
}

func TestResetPasswordWeakPassword(t *testing.T) {
	users := &mockUserRepository{}
	svc := newResetService(users, &mockRateLimitStore{}, &mockNotifier{}, &mockEventPublisher{})

	err := svc.ResetPassword(context.Background(), "raw-reset-token", "password")
	if !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
	if users.getByResetCalls != 0 {
		t.Fatal("expected policy check before token lookup")
	}
}
