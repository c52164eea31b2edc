package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/arklim/auth-service/internal/core/domain"
	"github.com/arklim/auth-service/internal/core/port"
	"github.com/arklim/auth-service/internal/infra/security"
	"github.com/arklim/auth-service/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for unknown identifiers and wrong
	// passwords alike so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified indicates the credentials are correct but the account
	// has not completed email verification.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrInvalidAccessToken indicates the access token failed verification.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrInvalidRefreshToken indicates the refresh token failed verification or
	// has no live server-side record.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// LoginResult carries the token pair issued on successful authentication.
type LoginResult struct {
	User         domain.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// AuthService authenticates users and manages the refresh token lifecycle.
type AuthService struct {
	users  port.UserRepository
	tokens port.TokenRepository
	hasher port.PasswordHasher
	issuer *security.TokenIssuer
	now    func() time.Time
}

// NewAuthService constructs an auth service.
func NewAuthService(users port.UserRepository, tokens port.TokenRepository, hasher port.PasswordHasher, issuer *security.TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock overrides the service clock (primarily for tests).
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Login verifies credentials and issues an access/refresh token pair. The
// credential may be either an email address or a username.
func (s *AuthService) Login(ctx context.Context, credential, password string) (LoginResult, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByCredential(ctx, credential)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsVerified {
		return LoginResult{}, ErrEmailNotVerified
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	accessToken, err := s.issuer.IssueAccessToken(user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.issueAndStoreRefreshToken(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		User:         user.Sanitized(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.issuer.AccessTokenTTL(),
	}, nil
}

// Authenticate resolves an access token to its user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (domain.User, error) {
	claims, err := s.issuer.VerifyAccessToken(accessToken)
	if err != nil {
		return domain.User{}, ErrInvalidAccessToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidAccessToken
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	return user.Sanitized(), nil
}

// Refresh rotates a refresh token: the presented token is verified against
// both its signature and its server-side record, the record is deleted, and
// a fresh pair is issued. A stolen-then-used token therefore invalidates
// itself on first use.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (LoginResult, error) {
	claims, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return LoginResult{}, ErrInvalidRefreshToken
	}

	hash := security.HashToken(refreshToken)
	record, err := s.tokens.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrInvalidRefreshToken
		}
		return LoginResult{}, fmt.Errorf("lookup refresh token: %w", err)
	}

	if record.UserID != claims.UserID || record.Expired(s.now().UTC()) {
		return LoginResult{}, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrInvalidRefreshToken
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.tokens.DeleteRefreshToken(ctx, record.ID); err != nil {
		return LoginResult{}, fmt.Errorf("delete refresh token: %w", err)
	}

	accessToken, err := s.issuer.IssueAccessToken(user.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue access token: %w", err)
	}

	rotated, err := s.issueAndStoreRefreshToken(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		User:         user.Sanitized(),
		AccessToken:  accessToken,
		RefreshToken: rotated,
		ExpiresIn:    s.issuer.AccessTokenTTL(),
	}, nil
}

func (s *AuthService) issueAndStoreRefreshToken(ctx context.Context, userID string) (string, error) {
	refreshToken, err := s.issuer.IssueRefreshToken(userID)
	if err != nil {
		return "", fmt.Errorf("issue refresh token: %w", err)
	}

	now := s.now().UTC()
	record := domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: security.HashToken(refreshToken),
		CreatedAt: now,
		ExpiresAt: now.Add(s.issuer.RefreshTokenTTL()),
	}
	if err := s.tokens.CreateRefreshToken(ctx, record); err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}

	return refreshToken, nil
}
