package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/example/userauth/internal/models"
	"github.com/example/userauth/internal/repository"
	"github.com/example/userauth/internal/utils"
)

const msgNoFields = "No fields to update"

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ProfileService reads and edits the signed-in user's account data.
type ProfileService struct {
	repo           repository.UserRepository
	store          AvatarStore
	validator      *utils.Validator
	logger         *slog.Logger
	maxAvatarBytes int64
}

func NewProfileService(
	repo repository.UserRepository,
	store AvatarStore,
	validator *utils.Validator,
	logger *slog.Logger,
	maxAvatarBytes int64,
) *ProfileService {
	return &ProfileService{
		repo:           repo,
		store:          store,
		validator:      validator,
		logger:         logger,
		maxAvatarBytes: maxAvatarBytes,
	}
}

// ProfileEditInput is a partial update of the user row and its profile.
type ProfileEditInput struct {
	User    models.UserUpdate
	Profile models.ProfileUpdate
}

// AvatarUpload is an uploaded avatar file.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// GetProfile returns the user with its profile.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindWithProfile(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, newError(ErrNotFound, msgUserNotFound)
	case err != nil:
		return nil, internal("Error fetching profile", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update. Absent fields are kept, null clears
// a nullable field. Mandatory fields can be changed but not cleared.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileEditInput) (*models.User, error) {
	if in.User.Empty() && in.Profile.Empty() {
		return nil, newError(ErrValidation, msgNoFields)
	}
	if err := s.validateUserUpdate(&in.User); err != nil {
		return nil, err
	}

	if err := s.updateAccount(ctx, userID, in.User, in.Profile); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", userID)
	return s.GetProfile(ctx, userID)
}

// UploadAvatar stores an image and points the profile's avatar at it.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, upload AvatarUpload) (*models.User, error) {
	if upload.Body == nil || upload.Size <= 0 {
		return nil, newError(ErrValidation, "avatar file is required")
	}
	if upload.Size > s.maxAvatarBytes {
		return nil, newError(ErrValidation, fmt.Sprintf("avatar must be at most %d bytes", s.maxAvatarBytes))
	}

	// The declared content type is not trusted; sniff the leading bytes.
	head := make([]byte, 512)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, internal("Error reading avatar", err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, newError(ErrValidation, "avatar must be a jpeg, png, gif or webp image")
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, msgUserNotFound)
		}
		return nil, internal("Error uploading avatar", err)
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.NewString(), ext)
	body := io.MultiReader(bytes.NewReader(head), upload.Body)
	url, err := s.store.Save(ctx, key, contentType, body, upload.Size)
	if err != nil {
		return nil, internal("Error uploading avatar", err)
	}

	if err := s.updateAccount(ctx, userID, models.UserUpdate{}, models.ProfileUpdate{Avatar: models.Some(url)}); err != nil {
		return nil, err
	}

	s.logger.Info("avatar uploaded", "user_id", userID, "key", key)
	return s.GetProfile(ctx, userID)
}

func (s *ProfileService) updateAccount(ctx context.Context, userID uuid.UUID, user models.UserUpdate, profile models.ProfileUpdate) error {
	err := s.repo.UpdateAccount(ctx, userID, user, profile)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return newError(ErrDuplicateUser, msgUserExists)
	case errors.Is(err, repository.ErrNotFound):
		return newError(ErrNotFound, msgUserNotFound)
	case err != nil:
		return internal("Error updating profile", err)
	}
	return nil
}

func (s *ProfileService) validateUserUpdate(u *models.UserUpdate) error {
	mandatory := []struct {
		name  string
		field *models.Optional[string]
		tag   string
	}{
		{"fullName", &u.FullName, "max=255"},
		{"email", &u.Email, "email,max=255"},
		{"phoneNumber", &u.PhoneNumber, "phone"},
	}
	for _, m := range mandatory {
		if !m.field.Set {
			continue
		}
		m.field.Value = strings.TrimSpace(m.field.Value)
		if m.field.Null || m.field.Value == "" {
			return newError(ErrValidation, m.name+" cannot be empty")
		}
		if err := s.validator.Var(m.name, m.field.Value, m.tag); err != nil {
			return newError(ErrValidation, err.Error())
		}
	}
	return nil
}
