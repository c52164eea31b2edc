package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/auth-service/internal/transport/http/middleware"
	"github.com/arklim/auth-service/internal/usecase"
)

// AuthHandler exposes login, token refresh and current-user endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Authenticate a user
// @Description Verifies credentials and issues an access/refresh token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body AuthLoginRequest true "Login request"
// @Success 200 {object} AuthLoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Credential, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrEmailNotVerified, Status: http.StatusUnauthorized, Message: "email address is not verified"},
		}, http.StatusInternalServerError, "failed to log in")
		return
	}

	c.JSON(http.StatusOK, AuthLoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(result.ExpiresIn.Seconds()),
		User:         newUserSummary(result.User),
	})
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Description Exchanges a valid refresh token for a new access/refresh token pair. The presented token is invalidated.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body TokenRefreshRequest true "Refresh request"
// @Success 200 {object} TokenRefreshResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req TokenRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid refresh payload"))
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidRefreshToken, Status: http.StatusUnauthorized, Message: "invalid or expired refresh token"},
		}, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	c.JSON(http.StatusOK, TokenRefreshResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(result.ExpiresIn.Seconds()),
	})
}

// Me godoc
// @Summary Return the authenticated user
// @Description Resolves the bearer token presented in the Authorization header to its account.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserSummary
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetAuthenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, newUserSummary(user))
}
