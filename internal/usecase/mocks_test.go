package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arklim/auth-service/internal/core/domain"
)

type mockUserRepository struct {
	createErr   error
	createCalls int
	createdUser domain.User

	getByIDResult *domain.User
	getByIDErr    error
	getByIDCalls  int
	getByIDLastID string

	getByEmailResult *domain.User
	getByEmailErr    error
	getByEmailCalls  int
	getByEmailLast   string

	getByUsernameResult *domain.User
	getByUsernameErr    error
	getByUsernameCalls  int

	getByCredentialResult *domain.User
	getByCredentialErr    error
	getByCredentialCalls  int
	getByCredentialLast   string

	getByVerificationResult *domain.User
	getByVerificationErr    error
	getByVerificationCalls  int
	getByVerificationHash   string

	getByResetResult *domain.User
	getByResetErr    error
	getByResetCalls  int
	getByResetHash   string

	markVerifiedErr    error
	markVerifiedCalls  int
	markVerifiedLastID string

	setResetTokenErr     error
	setResetTokenCalls   int
	setResetTokenID      string
	setResetTokenHash    string
	setResetTokenExpires time.Time

	updatePasswordErr    error
	updatePasswordCalls  int
	updatePasswordID     string
	updatePasswordHash   string
}

func (m *mockUserRepository) Create(_ context.Context, user domain.User) error {
	m.createCalls++
	m.createdUser = user
	return m.createErr
}

func (m *mockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.getByIDCalls++
	m.getByIDLastID = id
	if m.getByIDResult != nil {
		copy := *m.getByIDResult
		return &copy, m.getByIDErr
	}
	return nil, m.getByIDErr
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.getByEmailCalls++
	m.getByEmailLast = email
	if m.getByEmailResult != nil {
		copy := *m.getByEmailResult
		return &copy, m.getByEmailErr
	}
	return nil, m.getByEmailErr
}

func (m *mockUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.getByUsernameCalls++
	if m.getByUsernameResult != nil {
		copy := *m.getByUsernameResult
		return &copy, m.getByUsernameErr
	}
	return nil, m.getByUsernameErr
}

func (m *mockUserRepository) GetByCredential(_ context.Context, credential string) (*domain.User, error) {
	m.getByCredentialCalls++
	m.getByCredentialLast = credential
	if m.getByCredentialResult != nil {
		copy := *m.getByCredentialResult
		return &copy, m.getByCredentialErr
	}
	return nil, m.getByCredentialErr
}

func (m *mockUserRepository) GetByVerificationToken(_ context.Context, tokenHash string) (*domain.User, error) {
	m.getByVerificationCalls++
	m.getByVerificationHash = tokenHash
	if m.getByVerificationResult != nil {
		copy := *m.getByVerificationResult
		return &copy, m.getByVerificationErr
	}
	return nil, m.getByVerificationErr
}

func (m *mockUserRepository) GetByResetToken(_ context.Context, tokenHash string) (*domain.User, error) {
	m.getByResetCalls++
	m.getByResetHash = tokenHash
	if m.getByResetResult != nil {
		copy := *m.getByResetResult
		return &copy, m.getByResetErr
	}
	return nil, m.getByResetErr
}

func (m *mockUserRepository) MarkVerified(_ context.Context, id string) error {
	m.markVerifiedCalls++
	m.markVerifiedLastID = id
	return m.markVerifiedErr
}

func (m *mockUserRepository) SetResetToken(_ context.Context, id string, tokenHash string, expiresAt time.Time) error {
	m.setResetTokenCalls++
	m.setResetTokenID = id
	m.setResetTokenHash = tokenHash
	m.setResetTokenExpires = expiresAt
	return m.setResetTokenErr
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	m.updatePasswordCalls++
	m.updatePasswordID = id
	m.updatePasswordHash = passwordHash
	return m.updatePasswordErr
}

type mockTokenRepository struct {
	createErr    error
	createCalls  int
	createdToken domain.RefreshToken

	getByHashResult *domain.RefreshToken
	getByHashErr    error
	getByHashCalls  int
	getByHashLast   string

	deleteErr    error
	deleteCalls  int
	deleteLastID string
}

func (m *mockTokenRepository) CreateRefreshToken(_ context.Context, token domain.RefreshToken) error {
	m.createCalls++
	m.createdToken = token
	return m.createErr
}

func (m *mockTokenRepository) GetRefreshTokenByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	m.getByHashCalls++
	m.getByHashLast = hash
	if m.getByHashResult != nil {
		copy := *m.getByHashResult
		return &copy, m.getByHashErr
	}
	return nil, m.getByHashErr
}

func (m *mockTokenRepository) DeleteRefreshToken(_ context.Context, id string) error {
	m.deleteCalls++
	m.deleteLastID = id
	return m.deleteErr
}

type mockNotifier struct {
	verificationErr   error
	verificationCalls int
	verificationEmail string
	verificationToken string

	resetErr   error
	resetCalls int
	resetEmail string
	resetToken string
}

func (m *mockNotifier) SendVerificationEmail(_ context.Context, email, token string) error {
	m.verificationCalls++
	m.verificationEmail = email
	m.verificationToken = token
	return m.verificationErr
}

func (m *mockNotifier) SendResetPasswordEmail(_ context.Context, email, token string) error {
	m.resetCalls++
	m.resetEmail = email
	m.resetToken = token
	return m.resetErr
}

type mockEventPublisher struct {
	registeredCalls     int
	registeredEvent     domain.UserRegisteredEvent
	verifiedCalls       int
	resetRequestedCalls int
	resetRequestedEvent domain.PasswordResetRequestedEvent
	passwordChangedCalls int
	publishErr          error
}

func (m *mockEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	m.registeredCalls++
	m.registeredEvent = event
	return m.publishErr
}

func (m *mockEventPublisher) PublishUserVerified(_ context.Context, event domain.UserVerifiedEvent) error {
	m.verifiedCalls++
	return m.publishErr
}

func (m *mockEventPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	m.resetRequestedCalls++
	m.resetRequestedEvent = event
	return m.publishErr
}

func (m *mockEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	m.passwordChangedCalls++
	return m.publishErr
}

type mockRateLimitStore struct {
	trimErr     error
	trimCalls   int
	countResult int
	countErr    error
	countCalls  int
	recordErr   error
	recordCalls int
	oldest      time.Time
	oldestOK    bool
	oldestErr   error
	oldestCalls int
}

func (m *mockRateLimitStore) TrimWindow(_ context.Context, _ string, _ time.Duration, _ time.Time) error {
	m.trimCalls++
	return m.trimErr
}

func (m *mockRateLimitStore) CountAttempts(_ context.Context, _ string, _ time.Duration, _ time.Time) (int, error) {
	m.countCalls++
	return m.countResult, m.countErr
}

func (m *mockRateLimitStore) RecordAttempt(_ context.Context, _ string, _ time.Time) error {
	m.recordCalls++
	return m.recordErr
}

func (m *mockRateLimitStore) OldestAttempt(_ context.Context, _ string, _ time.Duration, _ time.Time) (time.Time, bool, error) {
	m.oldestCalls++
	return m.oldest, m.oldestOK, m.oldestErr
}

// stubHasher keeps unit tests fast and deterministic.
type stubHasher struct {
	hashErr   error
	verifyErr error
}

func (h *stubHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (h *stubHasher) Verify(password, encoded string) (bool, error) {
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	return strings.TrimPrefix(encoded, "hashed:") == password, nil
}

var errStore = errors.New("store unavailable")
