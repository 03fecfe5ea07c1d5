package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/api/dto"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/service"
	apperrors "github.com/Kelvin-dev001/nebsam-cert-system/pkg/util/errorutil"
)

// AuthHandler exposes registration and the two-step OTP login endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		return apperrors.NewValidationError("name, email and a password of 6+ chars required", nil)
	}

	user, token, exp, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserView(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// RequestLoginOTP handles POST /api/auth/login/request-otp.
func (h *AuthHandler) RequestLoginOTP(c *fiber.Ctx) error {
	var req dto.LoginRequestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	if err := h.auth.RequestLoginOTP(c.Context(), req.Email, req.Password); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"accepted": true,
			"message":  "OTP sent to admin numbers. Get OTP from admin and enter to log in.",
		},
	})
}

// VerifyLoginOTP handles POST /api/auth/login/verify-otp.
func (h *AuthHandler) VerifyLoginOTP(c *fiber.Ctx) error {
	var req dto.LoginVerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.OTP == "" {
		return apperrors.NewValidationError("email and otp required", nil)
	}

	user, token, exp, err := h.auth.VerifyLoginOTP(c.Context(), req.Email, req.OTP)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserView(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}
