package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/auth-service/internal/usecase"
)

// RegistrationHandler exposes endpoints for account creation and email verification.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
}

func NewRegistrationHandler(registration *usecase.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// Register godoc
// @Summary Register a new user account
// @Description Creates an unverified user and sends a verification email.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration request"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	user, err := h.registration.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var conflict *usecase.ConflictError
		if errors.As(err, &conflict) {
			c.JSON(http.StatusConflict, NewErrorResponse(c, conflict.Field+" already registered"))
			return
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrDeliveryFailed, Status: http.StatusBadGateway, Message: "failed to send verification email"},
		}, http.StatusInternalServerError, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		Message: "verification email sent",
		User:    newUserSummary(user),
	})
}

// VerifyEmail godoc
// @Summary Verify a user's email address
// @Description Consumes a one-time verification token and activates the account.
// @Tags Auth
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} VerifyEmailResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/verify-email/{token} [get]
func (h *RegistrationHandler) VerifyEmail(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "verification token is required"))
		return
	}

	user, err := h.registration.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidVerificationToken, Status: http.StatusBadRequest, Message: "verification token is invalid"},
		}, http.StatusInternalServerError, "failed to verify email")
		return
	}

	c.JSON(http.StatusOK, VerifyEmailResponse{
		Message: "email verified",
		User:    newUserSummary(user),
	})
}
