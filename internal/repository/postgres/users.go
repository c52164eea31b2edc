package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/auth-service/internal/core/domain"
	"github.com/arklim/auth-service/internal/repository"
)

const usersTable = "auth.users"

var userColumns = []string{
	"id",
	"username",
	"email",
	"password_hash",
	"is_verified",
	"verification_token_hash",
	"reset_token_hash",
	"reset_token_expires_at",
	"created_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	stmt, args, err := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.IsVerified,
			user.VerificationTokenHash,
			user.ResetTokenHash,
			user.ResetTokenExpiresAt,
			user.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return &repository.DuplicateError{Constraint: pgErr.ConstraintName}
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// GetByCredential matches the value against email or username.
func (r *UserRepository) GetByCredential(ctx context.Context, credential string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Or{
		squirrel.Eq{"email": credential},
		squirrel.Eq{"username": credential},
	})
}

// GetByVerificationToken retrieves the user holding the hashed verification token.
func (r *UserRepository) GetByVerificationToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"verification_token_hash": tokenHash})
}

// GetByResetToken retrieves the user holding the hashed reset token.
func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"reset_token_hash": tokenHash})
}

// MarkVerified flips is_verified and clears the verification token in a
// single statement.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update(usersTable).
		Set("is_verified", true).
		Set("verification_token_hash", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark verified sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetResetToken stores a hashed reset token with its expiry, replacing any
// earlier token.
func (r *UserRepository) SetResetToken(ctx context.Context, id string, tokenHash string, expiresAt time.Time) error {
	stmt, args, err := r.builder.Update(usersTable).
		Set("reset_token_hash", tokenHash).
		Set("reset_token_expires_at", expiresAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set reset token sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword replaces the password hash and clears any outstanding reset
// token and expiry.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	stmt, args, err := r.builder.Update(usersTable).
		Set("password_hash", passwordHash).
		Set("reset_token_hash", nil).
		Set("reset_token_expires_at", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where any) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsVerified,
		&user.VerificationTokenHash,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &user, nil
}
