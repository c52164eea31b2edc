package port

import (
	"context"
	"time"

	"github.com/arklim/auth-service/internal/core/domain"
)

// UserRepository exposes persistence behavior for user accounts.
//
// Lookup methods return repository.ErrNotFound when no row matches.
// Token arguments are SHA-256 hashes, never raw tokens.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByCredential matches the value against email OR username (exact,
	// case-sensitive per column).
	GetByCredential(ctx context.Context, credential string) (*domain.User, error)
	GetByVerificationToken(ctx context.Context, tokenHash string) (*domain.User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	// MarkVerified flips is_verified and clears the verification token in one
	// statement so the token cannot be replayed.
	MarkVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id string, tokenHash string, expiresAt time.Time) error
	// UpdatePassword replaces the password hash and clears any outstanding
	// reset token and expiry.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
