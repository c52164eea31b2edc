package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/arklim/auth-service/internal/core/domain"
	"github.com/arklim/auth-service/internal/infra/security"
	"github.com/arklim/auth-service/internal/repository"
)

const strongRegistrationPassword = "Sup3r!SecurePass#7890"

func newRegistrationService(users *mockUserRepository, notifier *mockNotifier, events *mockEventPublisher) *RegistrationService {
	return NewRegistrationService(users, &stubHasher{}, notifier, events, nil)
}

func TestRegisterSuccess(t *testing.T) {
	users := &mockUserRepository{
		getByEmailErr:    repository.ErrNotFound,
		getByUsernameErr: repository.ErrNotFound,
	}
	notifier := &mockNotifier{}
	events := &mockEventPublisher{}
	svc := newRegistrationService(users, notifier, events)

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", strongRegistrationPassword)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if users.createCalls != 1 {
		t.Fatalf("expected one Create call, got %d", users.createCalls)
	}
	if user.ID == "" {
		t.Fatal("expected generated user id")
	}
	if user.IsVerified {
		t.Fatal("expected new account to be unverified")
	}
	if user.PasswordHash != "" || user.VerificationTokenHash != nil {
		t.Fatal("expected sanitized user in result")
	}

	created := users.createdUser
	if created.PasswordHash != "hashed:"+strongRegistrationPassword {
		t.Fatalf("unexpected stored password hash %q", created.PasswordHash)
	}
	if created.VerificationTokenHash == nil {
		t.Fatal("expected verification token hash to be stored")
	}
	if notifier.verificationCalls != 1 {
		t.Fatalf("expected one verification email, got %d", notifier.verificationCalls)
	}
	if notifier.verificationEmail != "alice@example.com" {
		t.Fatalf("unexpected recipient %q", notifier.verificationEmail)
	}
	if security.HashToken(notifier.verificationToken) != *created.VerificationTokenHash {
		t.Fatal("emailed token does not match stored hash")
	}
	if events.registeredCalls != 1 {
		t.Fatalf("expected one registered event, got %d", events.registeredCalls)
	}
	if events.registeredEvent.UserID != created.ID {
		t.Fatal("event user id does not match created user")
	}
}

func TestRegisterAcceptsShortMixedPassword(t *testing.T) {
	users := &mockUserRepository{
		getByEmailErr:    repository.ErrNotFound,
		getByUsernameErr: repository.ErrNotFound,
	}
	svc := newRegistrationService(users, &mockNotifier{}, &mockEventPublisher{})

	if _, err := svc.Register(context.Background(), "alice", "a@x.com", "Secret1!"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if users.createCalls != 1 {
		t.Fatalf("expected one Create call, got %d", users.createCalls)
	}
}

func TestRegisterEmailConflict(t *testing.T) {
	existing := domain.User{ID: "existing", Email: "alice@example.com"}
	users := &mockUserRepository{
		getByEmailResult: &existing,
		getByUsernameErr: repository.ErrNotFound,
	}
	svc := newRegistrationService(users, &mockNotifier{}, &mockEventPublisher{})

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", strongRegistrationPassword)

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Field != "email" {
		t.Fatalf("expected email conflict, got %q", conflict.Field)
	}
	if users.createCalls != 0 {
		t.Fatal("expected no Create call on conflict")
	}
}

func TestRegisterUsernameConflict(t *testing.T) {
	existing := domain.User{ID: "existing", Username: "alice"}
	users := &mockUserRepository{
		getByEmailErr:       repository.ErrNotFound,
		getByUsernameResult: &existing,
	}
	svc := newRegistrationService(users, &mockNotifier{}, &mockEventPublisher{})

	_, err := svc.Register(context.Background(), "alice", "new@example.com", strongRegistrationPassword)

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Field != "username" {
		t.Fatalf("expected username conflict, got %q", conflict.Field)
	}
}

func TestRegisterDuplicateRace(t *testing.T) {
	users := &mockUserRepository{
		getByEmailErr:    repository.ErrNotFound,
		getByUsernameErr: repository.ErrNotFound,
		createErr:        &repository.DuplicateError{Constraint: "users_username_key"},
	}
	svc := newRegistrationService(users, &mockNotifier{}, &mockEventPublisher{})

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", strongRegistrationPassword)

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Field != "username" {
		t.Fatalf("expected username conflict from constraint, got %q", conflict.Field)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	users := &mockUserRepository{
		getByEmailErr:    repository.ErrNotFound,
		getByUsernameErr: repository.ErrNotFound,
	}
	svc := newRegistrationService(users, &mockNotifier{}, &mockEventPublisher{})

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "password")
	if !errors.Is(err, ErrPasswordPolicyViolation) {
		t.Fatalf("expected ErrPasswordPolicyViolation, got %v", err)
	}
	if users.createCalls != 0 {
		t.Fatal("expected no Create call for weak password")
	}
}

func TestRegisterDeliveryFailureKeepsAccount(t *testing.T) {
	users := &mockUserRepository{
		getByEmailErr:    repository.ErrNotFound,
		getByUsernameErr: repository.ErrNotFound,
	}
	notifier := &mockNotifier{verificationErr: errors.New("smtp down")}
	svc := newRegistrationService(users, notifier, &mockEventPublisher{})

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", strongRegistrationPassword)
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
	if users.createCalls != 1 {
		t.Fatal("expected account row to be created before delivery")
	}
}

func TestVerifyEmailSuccess(t *testing.T) {
	hash := security.HashToken("raw-token")
	pending := domain.User{ID: "user-1", Email: "alice@example.com", VerificationTokenHash: &hash}
	users := &mockUserRepository{getByVerificationResult: &pending}
	events := &mockEventPublisher{}
	svc := newRegistrationService(users, &mockNotifier{}, events)

	user, err := svc.VerifyEmail(context.Background(), "raw-token")
	if err != nil {
		t.Fatalf("VerifyEmail returned error: %v", err)
	}

	if users.getByVerificationHash != hash {
		t.Fatal("lookup used raw token instead of hash")
	}
	if users.markVerifiedCalls != 1 || users.markVerifiedLastID != "user-1" {
		t.Fatalf("expected MarkVerified for user-1, got %d calls", users.markVerifiedCalls)
	}
	if !user.IsVerified {
		t.Fatal("expected verified user in result")
	}
	if events.verifiedCalls != 1 {
		t.Fatalf("expected one verified event, got %d", events.verifiedCalls)
	}
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	users := &mockUserRepository{getByVerificationErr: repository.ErrNotFound}
	svc := newRegistrationService(users, &mockNotifier{}, &mockEventPublisher{})

	_, err := svc.VerifyEmail(context.Background(), "missing")
	if !errors.Is(err, ErrInvalidVerificationToken) {
		t.Fatalf("expected ErrInvalidVerificationToken, got %v", err)
	}
	if users.markVerifiedCalls != 0 {
		t.Fatal("expected no MarkVerified call")
	}
}

func TestVerifyEmailEmptyToken(t *testing.T) {
	svc := newRegistrationService(&mockUserRepository{}, &mockNotifier{}, &mockEventPublisher{})

	if _, err := svc.VerifyEmail(context.Background(), "   "); !errors.Is(err, ErrInvalidVerificationToken) {
		t.Fatalf("expected ErrInvalidVerificationToken, got %v", err)
	}
}
