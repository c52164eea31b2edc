package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/auth-service/internal/usecase"
)

// PasswordHandler exposes the forgot/reset password endpoints.
type PasswordHandler struct {
	passwordReset *usecase.PasswordResetService
}

func NewPasswordHandler(passwordReset *usecase.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{passwordReset: passwordReset}
}

// ForgotPassword godoc
// @Summary Initiate a password reset
// @Description Issues a one-time reset token and emails it to the account's address.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/forgot-password [post]
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid forgot password payload"))
		return
	}

	if err := h.passwordReset.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		var rateLimited *usecase.RateLimitExceededError
		if errors.As(err, &rateLimited) {
			retryAfter := int(rateLimited.RetryAfter / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, NewErrorResponse(c, "too many reset requests, try again later"))
			return
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "no account with that email address"},
			{Err: usecase.ErrDeliveryFailed, Status: http.StatusBadGateway, Message: "failed to send reset email"},
		}, http.StatusInternalServerError, "failed to initiate password reset")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password reset email sent"})
}

// ResetPassword godoc
// @Summary Complete a password reset
// @Description Consumes a one-time reset token and replaces the account password.
// @Tags Auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body ResetPasswordRequest true "Reset password request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/reset-password/{token} [post]
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "reset token is required"))
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset password payload"))
		return
	}

	if err := h.passwordReset.ResetPassword(c.Request.Context(), token, req.Password); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrInvalidResetToken, Status: http.StatusBadRequest, Message: "reset token is invalid or has expired"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
