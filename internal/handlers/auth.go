package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/userauth/internal/middleware"
	"github.com/example/userauth/internal/models"
	"github.com/example/userauth/internal/services"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	FullName    string  `json:"fullName"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phoneNumber"`
	Password    string  `json:"password"`
	City        *string `json:"city"`
	Additional  *string `json:"additional"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.auth.Register(c.UserContext(), services.RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		City:        req.City,
		Additional:  req.Additional,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(authResponse("User added successfully", result.User, result.Token))
}

type loginRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// Login authenticates an existing user by email or phone number.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.auth.Login(c.UserContext(), services.LoginInput{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(authResponse("Login successful", result.User, result.Token))
}

// Logout revokes the bearer token of the current request.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.auth.Logout(c.UserContext(), claims); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"msg": "Logged out successfully"})
}

func authResponse(msg string, user *models.User, token string) fiber.Map {
	return fiber.Map{
		"msg":   msg,
		"user":  user,
		"token": token,
	}
}
