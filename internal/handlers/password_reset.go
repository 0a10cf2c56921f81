package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/userauth/internal/services"
)

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	auth *services.AuthService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(auth *services.AuthService) *PasswordResetHandler {
	return &PasswordResetHandler{auth: auth}
}

type resetRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// RequestReset mails a password reset link to the account's email.
func (h *PasswordResetHandler) RequestReset(c *fiber.Ctx) error {
	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.RequestPasswordReset(c.UserContext(), req.Email, req.PhoneNumber); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"msg": "Password reset email sent successfully"})
}

type confirmResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ConfirmReset sets a new password from a reset token. Bad tokens answer 404
// here, unlike the 401 of bearer authentication.
func (h *PasswordResetHandler) ConfirmReset(c *fiber.Ctx) error {
	var req confirmResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	err := h.auth.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword)
	if errors.Is(err, services.ErrInvalidToken) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"msg": "Invalid token"})
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"msg": "Password has been reset successfully"})
}
