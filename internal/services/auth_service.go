package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/restaurantbooking/backend/internal/apperrors"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/restaurantbooking/backend/internal/query"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Password length limits. bcrypt ignores input past 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// UserRepository is the interface that wraps methods for Users table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user, its ID is set on success.
	//
	// A duplicate email is reported as a validation error.
	Create(ctx context.Context, user *models.User) error
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, a not found error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.User, error)
	// Method GetByEmail retrieves a user by email.
	//
	// If user with such email does not exist, a not found error will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method List retrieves one page of users matching "spec".
	List(ctx context.Context, spec query.Spec) ([]models.User, error)
	// Method Count returns the number of users matching the filters of "spec", ignoring pagination.
	Count(ctx context.Context, spec query.Spec) (int, error)
	// Method UpdateDetails updates the non-nil profile fields of a user.
	UpdateDetails(ctx context.Context, id int, req *models.UpdateDetailsRequest) error
	// Method UpdatePassword replaces the password hash of a user.
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	// Method Delete removes a user and all of their reservations atomically.
	Delete(ctx context.Context, id int) error
}

// TokenIssuer issues session tokens
type TokenIssuer interface {
	GenerateToken(userID int, role models.Role) (string, error)
	Expiry() time.Duration
}

// TokenRevoker invalidates session tokens before their expiry
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	RevokeUserBefore(ctx context.Context, userID int, before time.Time, ttl time.Duration) error
}

// authService implements AuthService
type authService struct {
	userRepo UserRepository
	tokens   TokenIssuer
	revoker  TokenRevoker
	logger   *zap.Logger
	compare  func(hash, password []byte) error
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokens TokenIssuer, revoker TokenRevoker, logger *zap.Logger) *authService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		revoker:  revoker,
		logger:   logger,
		compare:  bcrypt.CompareHashAndPassword,
		now:      time.Now,
	}
}

// dummyPasswordHash is compared on unknown emails so they cost the same bcrypt run as a wrong password
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Register creates a new user account and returns a session token
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (string, error) {
	user, err := s.validateRegistration(req)
	if err != nil {
		return "", err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(passwordHash)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			return "", apperrors.Validation("User with email %s already exists", user.Email)
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.Int("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.issueToken(user)
}

// Login authenticates a user by email and password and returns a session token.
// An unknown email and a wrong password produce the same error.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return "", apperrors.Validation("Please provide an email and password")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		_ = s.compare(dummyPasswordHash, []byte(req.Password))
		return "", invalidCredentials()
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", invalidCredentials()
	}

	return s.issueToken(user)
}

// Me returns the profile of the authenticated user
func (s *authService) Me(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateDetails changes firstname, lastname and phone. Only provided fields are touched.
func (s *authService) UpdateDetails(ctx context.Context, userID int, req *models.UpdateDetailsRequest) (*models.User, error) {
	if req.Empty() {
		return nil, apperrors.Validation("Please provide firstname, lastname or phone to update")
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"firstname", req.Firstname},
		{"lastname", req.Lastname},
		{"phone", req.Phone},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return nil, apperrors.Validation("Please add a %s", f.name)
		}
	}

	if err := s.userRepo.UpdateDetails(ctx, userID, req); err != nil {
		return nil, fmt.Errorf("failed to update user details: %w", err)
	}

	return s.Me(ctx, userID)
}

// UpdatePassword replaces the password after verifying the current one.
// Every session issued before the change is revoked and a fresh token is returned for the caller.
func (s *authService) UpdatePassword(ctx context.Context, userID int, req *models.UpdatePasswordRequest) (string, error) {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return "", apperrors.Validation("Please provide the current and the new password")
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return "", apperrors.Authentication("Password is incorrect")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	changedAt := s.now()
	if err := s.userRepo.UpdatePassword(ctx, userID, string(passwordHash)); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.revoker.RevokeUserBefore(ctx, userID, changedAt, s.tokens.Expiry()); err != nil {
		s.logger.Warn("failed to revoke sessions after password change", zap.Int("user_id", userID), zap.Error(err))
	}

	return s.issueToken(user)
}

// Logout revokes the session token until its natural expiry
func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if err := s.revoker.Revoke(ctx, tokenID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// DeleteAccount removes the authenticated user together with their reservations
func (s *authService) DeleteAccount(ctx context.Context, userID int) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info("account deleted", zap.Int("user_id", userID))
	return nil
}

// validateRegistration normalizes the request into a user without a password hash
func (s *authService) validateRegistration(req *models.RegisterRequest) (*models.User, error) {
	user := &models.User{
		Firstname: strings.TrimSpace(req.Firstname),
		Lastname:  strings.TrimSpace(req.Lastname),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Role:      req.Role,
	}

	switch {
	case user.Firstname == "":
		return nil, apperrors.Validation("Please add a firstname")
	case user.Lastname == "":
		return nil, apperrors.Validation("Please add a lastname")
	case user.Email == "":
		return nil, apperrors.Validation("Please add an email")
	case !emailRegex.MatchString(user.Email):
		return nil, apperrors.Validation("Please add a valid email")
	case user.Phone == "":
		return nil, apperrors.Validation("Please add a phone number")
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if !user.Role.Valid() {
		return nil, apperrors.Validation("Role must be either user or admin")
	}

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.Validation("Password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return apperrors.Validation("Password must be at most %d bytes", MaxPasswordLength)
	}
	return nil
}

func invalidCredentials() error {
	return apperrors.Authentication("Invalid credentials")
}
