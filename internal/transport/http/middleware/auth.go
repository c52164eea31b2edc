package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/auth-service/internal/core/domain"
	"github.com/arklim/auth-service/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

const authenticatedUserKey = "authenticated_user"

// RequireAuth validates the Authorization header and resolves the token to a user.
func RequireAuth(authService *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidAccessToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid or expired access token"))
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(authenticatedUserKey, user)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.UserID = user.ID
		}

		c.Next()
	}
}

// GetAuthenticatedUser retrieves the user resolved by RequireAuth.
func GetAuthenticatedUser(c *gin.Context) (domain.User, bool) {
	val, exists := c.Get(authenticatedUserKey)
	if !exists {
		return domain.User{}, false
	}

	user, ok := val.(domain.User)
	return user, ok
}

// GetAuthenticatedUserID retrieves the user ID from context (helper for handlers)
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := userID.(string); ok {
		return id, true
	}

	return "", false
}
