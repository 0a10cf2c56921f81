package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/userauth/internal/middleware"
	"github.com/example/userauth/internal/models"
	"github.com/example/userauth/internal/services"
)

const avatarFormField = "avatar"

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	profiles *services.ProfileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile returns the authenticated user with its profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.profiles.GetProfile(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"msg": "Profile fetched successfully", "user": user})
}

// A key left out of the body keeps its value, null clears it.
type updateProfileRequest struct {
	FullName    models.Optional[string] `json:"fullName"`
	Email       models.Optional[string] `json:"email"`
	PhoneNumber models.Optional[string] `json:"phoneNumber"`
	Address     models.Optional[string] `json:"address"`
	City        models.Optional[string] `json:"city"`
	Additional  models.Optional[string] `json:"additional"`
	Avatar      models.Optional[string] `json:"avatar"`
	DateOfBirth models.Optional[string] `json:"dateOfBirth"`
	CompanyName models.Optional[string] `json:"companyName"`
}

// UpdateProfile applies a partial update to the user and its profile.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.profiles.UpdateProfile(c.UserContext(), userID, services.ProfileEditInput{
		User: models.UserUpdate{
			FullName:    req.FullName,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			Address:     req.Address,
			City:        req.City,
			Additional:  req.Additional,
		},
		Profile: models.ProfileUpdate{
			Avatar:      req.Avatar,
			DateOfBirth: req.DateOfBirth,
			CompanyName: req.CompanyName,
		},
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"msg": "Profile and user data updated successfully", "user": user})
}

// UploadAvatar stores the multipart "avatar" file and links it to the profile.
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	header, err := c.FormFile(avatarFormField)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "avatar file is required")
	}

	file, err := header.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot read avatar file")
	}
	defer file.Close()

	user, err := h.profiles.UploadAvatar(c.UserContext(), userID, services.AvatarUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"msg": "Avatar uploaded successfully", "user": user})
}
