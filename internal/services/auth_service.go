package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/example/userauth/internal/models"
	"github.com/example/userauth/internal/repository"
	"github.com/example/userauth/internal/utils"
)

const (
	msgMissingFields      = "Missing required fields"
	msgUserExists         = "User already exists"
	msgMissingLogin       = "Missing password or email/phone number"
	msgInvalidCredentials = "Invalid email/phone number or password"
	msgMissingIdentifier  = "Either email or phone number is required"
	msgUserNotFound       = "User not found"
	msgMissingReset       = "Missing token or new password"
	msgInvalidToken       = "Invalid token"
	msgDeliveryFailed     = "Error sending reset password message"
)

// AuthOptions configures token lifetimes and reset links.
type AuthOptions struct {
	SessionTTL  time.Duration
	ResetTTL    time.Duration
	FrontendURL string
}

// AuthService implements registration, login, password reset and logout.
// It holds no per-request state and is safe for concurrent use.
type AuthService struct {
	repo      repository.UserRepository
	tokens    *utils.TokenIssuer
	notifier  ResetNotifier
	denylist  TokenDenylist
	validator *utils.Validator
	logger    *slog.Logger
	opts      AuthOptions
	dummyHash string
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	repo repository.UserRepository,
	tokens *utils.TokenIssuer,
	notifier ResetNotifier,
	denylist TokenDenylist,
	validator *utils.Validator,
	logger *slog.Logger,
	opts AuthOptions,
) *AuthService {
	// Compared against when a login identifier is unknown, so both failure
	// paths spend the same bcrypt time.
	dummy, _ := utils.HashPassword("dummy-password-for-timing")
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		notifier:  notifier,
		denylist:  denylist,
		validator: validator,
		logger:    logger,
		opts:      opts,
		dummyHash: dummy,
	}
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	FullName    string `validate:"required,max=255"`
	Email       string `validate:"required,email,max=255"`
	PhoneNumber string `validate:"required,phone"`
	Password    string `validate:"required"`
	City        *string
	Additional  *string
}

// LoginInput identifies a user by email or phone number. Email wins when
// both are given; the phone number is then ignored.
type LoginInput struct {
	Email       string
	PhoneNumber string
	Password    string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *models.User
	Token string
}

// Register creates a user and issues a session token. Email uniqueness is
// enforced by the store's unique index, so concurrent registrations with the
// same email yield exactly one account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if in.FullName == "" || in.Email == "" || in.PhoneNumber == "" || in.Password == "" {
		return nil, newError(ErrValidation, msgMissingFields)
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, newError(ErrValidation, err.Error())
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, newError(ErrValidation, err.Error())
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		City:         in.City,
		Additional:   in.Additional,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrDuplicateUser, msgUserExists)
		}
		return nil, internal("Error creating user", err)
	}

	token, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates by email or phone number and issues a session token.
// Unknown identifiers and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.PhoneNumber)
	if in.Password == "" || (email == "" && phone == "") {
		return nil, newError(ErrValidation, msgMissingLogin)
	}

	user, err := s.lookup(ctx, email, phone)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.CheckPassword(s.dummyHash, in.Password)
		return nil, newError(ErrInvalidCredentials, msgInvalidCredentials)
	case err != nil:
		return nil, internal("Error logging in user", err)
	}

	if !utils.CheckPassword(user.PasswordHash, in.Password) {
		return nil, newError(ErrInvalidCredentials, msgInvalidCredentials)
	}

	token, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// RequestPasswordReset issues a reset token and mails the reset link to the
// account's email. A phone number only identifies the account; the link
// still goes to the email on file.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, phone string) error {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return newError(ErrValidation, msgMissingIdentifier)
	}

	user, err := s.lookup(ctx, email, phone)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return newError(ErrNotFound, msgUserNotFound)
	case err != nil:
		return internal(msgDeliveryFailed, err)
	}

	token, err := s.tokens.Issue(utils.Claims{
		UserID:  user.ID.String(),
		Purpose: utils.PurposeReset,
		Version: user.ResetVersion,
	}, s.opts.ResetTTL)
	if err != nil {
		return internal("Error generating reset token", err)
	}

	link := s.opts.FrontendURL + "/auth/reset-password/" + token
	if err := s.notifier.SendResetLink(ctx, user.Email, link); err != nil {
		s.logger.Error("reset link delivery failed", "user_id", user.ID, "error", err)
		return wrapError(ErrDeliveryFailed, msgDeliveryFailed, err)
	}

	s.logger.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ConfirmPasswordReset sets a new password using a reset token. A token is
// accepted once: the password update bumps the user's reset version, which
// every earlier reset token embeds. Existing session tokens stay valid.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return newError(ErrValidation, msgMissingReset)
	}
	if err := utils.ValidatePassword(newPassword); err != nil {
		return newError(ErrValidation, err.Error())
	}

	claims, err := s.tokens.VerifyPurpose(token, utils.PurposeReset)
	if err != nil {
		return wrapError(ErrInvalidToken, msgInvalidToken, err)
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return wrapError(ErrInvalidToken, msgInvalidToken, err)
	}

	user, err := s.repo.FindByID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return newError(ErrInvalidToken, msgInvalidToken)
	case err != nil:
		return internal("Error resetting password", err)
	}
	if user.ResetVersion != claims.Version {
		return newError(ErrInvalidToken, msgInvalidToken)
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash, claims.Version); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return newError(ErrInvalidToken, msgInvalidToken)
		}
		return internal("Error resetting password", err)
	}

	s.logger.Info("password reset", "user_id", userID)
	return nil
}

// Authenticate verifies a bearer session token and checks the denylist.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := s.tokens.VerifyPurpose(token, utils.PurposeSession)
	if err != nil {
		return nil, wrapError(ErrInvalidToken, msgInvalidToken, err)
	}
	revoked, err := s.denylist.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return nil, internal("Error checking token", err)
	}
	if revoked {
		return nil, newError(ErrInvalidToken, msgInvalidToken)
	}
	return claims, nil
}

// Logout revokes the session token described by claims until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	if err := s.denylist.Revoke(ctx, claims.TokenID(), claims.Expiry()); err != nil {
		return internal("Error logging out", err)
	}
	return nil
}

func (s *AuthService) lookup(ctx context.Context, email, phone string) (*models.User, error) {
	if email != "" {
		return s.repo.FindByEmail(ctx, email)
	}
	return s.repo.FindByPhone(ctx, phone)
}

func (s *AuthService) issueSession(user *models.User) (string, error) {
	token, err := s.tokens.Issue(utils.Claims{
		UserID:      user.ID.String(),
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Purpose:     utils.PurposeSession,
	}, s.opts.SessionTTL)
	if err != nil {
		return "", internal("Error generating token", err)
	}
	return token, nil
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return "", newError(ErrValidation, err.Error())
		}
		return "", internal("Error hashing password", err)
	}
	return hash, nil
}
