package port

import (
	"context"

	"github.com/arklim/auth-service/internal/core/domain"
)

// TokenRepository manages persisted refresh token records.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, token domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, id string) error
}
