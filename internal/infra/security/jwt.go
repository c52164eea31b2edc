package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrTokenInvalid is the single verification failure surfaced by the issuer.
// Signature mismatch, malformed input, and expiry all collapse into it so the
// response can never act as an oracle for which check failed.
var ErrTokenInvalid = errors.New("token invalid")

// TokenClaims is the signed payload carried by access and refresh tokens.
type TokenClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuerConfig carries the secrets and lifetimes for the issuer.
// Access and refresh secrets must be distinct: compromise of one key must not
// allow forging tokens of the other kind.
type TokenIssuerConfig struct {
	Issuer          string
	AccessSecret    []byte
	RefreshSecret   []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// TokenIssuer creates and verifies HMAC-signed access and refresh tokens.
type TokenIssuer struct {
	cfg TokenIssuerConfig
	now func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer, applying default lifetimes where
// unset.
func NewTokenIssuer(cfg TokenIssuerConfig) (*TokenIssuer, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, fmt.Errorf("access token secret is required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, fmt.Errorf("refresh token secret is required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = defaultAccessTokenTTL
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = defaultRefreshTokenTTL
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}, nil
}

// WithClock overrides the issuer clock (primarily for tests).
func (i *TokenIssuer) WithClock(clock func() time.Time) *TokenIssuer {
	if clock != nil {
		i.now = clock
	}
	return i
}

// AccessTokenTTL returns the configured access token lifetime.
func (i *TokenIssuer) AccessTokenTTL() time.Duration {
	return i.cfg.AccessTokenTTL
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (i *TokenIssuer) RefreshTokenTTL() time.Duration {
	return i.cfg.RefreshTokenTTL
}

// IssueAccessToken signs a short-lived access token for the user.
func (i *TokenIssuer) IssueAccessToken(userID string) (string, error) {
	return i.issue(userID, i.cfg.AccessSecret, i.cfg.AccessTokenTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the user.
func (i *TokenIssuer) IssueRefreshToken(userID string) (string, error) {
	return i.issue(userID, i.cfg.RefreshSecret, i.cfg.RefreshTokenTTL)
}

// VerifyAccessToken validates signature and expiry of an access token.
func (i *TokenIssuer) VerifyAccessToken(token string) (*TokenClaims, error) {
	return i.verify(token, i.cfg.AccessSecret)
}

// VerifyRefreshToken validates signature and expiry of a refresh token.
func (i *TokenIssuer) VerifyRefreshToken(token string) (*TokenClaims, error) {
	return i.verify(token, i.cfg.RefreshSecret)
}

func (i *TokenIssuer) issue(userID string, secret []byte, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}

	now := i.now().UTC()
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func (i *TokenIssuer) verify(token string, secret []byte) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, ErrTokenInvalid
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
