package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/auth-service/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func newUserSummary(user domain.User) UserSummary {
	return UserSummary{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	}
}

// RegistrationRequest defines the payload for the register endpoint.
type RegistrationRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegistrationResponse describes the response for a successful registration.
type RegistrationResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// VerifyEmailResponse describes the response for a consumed verification token.
type VerifyEmailResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// AuthLoginRequest defines the payload for the login endpoint. Credential
// accepts either an email address or a username.
type AuthLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AuthLoginResponse describes the response returned for a successful login.
type AuthLoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	User         UserSummary `json:"user"`
}

// TokenRefreshRequest represents the payload to rotate a refresh token.
type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenRefreshResponse carries the replacement token pair.
type TokenRefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// ForgotPasswordRequest defines the payload to initiate a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest defines the payload to complete a password reset.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// HealthResponse reports service health probe results.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
	Version string            `json:"version,omitempty"`
}
