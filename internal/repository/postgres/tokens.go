package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/auth-service/internal/core/domain"
	"github.com/arklim/auth-service/internal/repository"
)

const refreshTokensTable = "auth.refresh_tokens"

// TokenRepository implements port.TokenRepository using PostgreSQL.
type TokenRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTokenRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewTokenRepository(exec pgExecutor) *TokenRepository {
	return &TokenRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateRefreshToken inserts a new refresh token record.
func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token domain.RefreshToken) error {
	stmt, args, err := r.builder.Insert(refreshTokensTable).
		Columns("id", "user_id", "token_hash", "created_at", "expires_at").
		Values(token.ID, token.UserID, token.TokenHash, token.CreatedAt, token.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert refresh token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// GetRefreshTokenByHash retrieves a refresh token record by its hash.
func (r *TokenRepository) GetRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "token_hash", "created_at", "expires_at").
		From(refreshTokensTable).
		Where(squirrel.Eq{"token_hash": hash}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select refresh token sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var token domain.RefreshToken
	if err := row.Scan(&token.ID, &token.UserID, &token.TokenHash, &token.CreatedAt, &token.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &token, nil
}

// DeleteRefreshToken removes a refresh token record.
func (r *TokenRepository) DeleteRefreshToken(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete(refreshTokensTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete refresh token sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
