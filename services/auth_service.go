package services

import (
	"context"
	"errors"
	"time"

	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/repository"
	"github.com/Govind-619/DishDash/utils"
)

// AuthService registers, authenticates and identifies users
type AuthService struct {
	users     repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(users repository.UserRepository, jwtSecret string) *AuthService {
	ttl, _ := time.ParseDuration(utils.JWTExpiration)
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  ttl,
	}
}

// Register creates an account with a hashed password
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = utils.SanitizeString(username)
	if valid, msg := utils.ValidateUsername(username); !valid {
		return nil, utils.UnprocessableError(msg, nil)
	}
	if valid, msg := utils.ValidatePassword(password); !valid {
		return nil, utils.UnprocessableError(msg, nil)
	}

	if _, err := s.users.FindUserByUsername(ctx, username); err == nil {
		return nil, utils.ConflictError("Username already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, utils.InternalError("Failed to check username", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.InternalError("Failed to hash password", err)
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.ConflictError("Username already exists", err)
		}
		return nil, utils.InternalError("Failed to create user", err)
	}

	utils.LogInfo("New user registered: %s", user.Username)
	return user, nil
}

// Authenticate checks the credentials and returns the matching user
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindUserByUsername(ctx, utils.SanitizeString(username))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, utils.InternalError("Failed to load user", err)
		}
		utils.LogWarn("Failed login attempt for username: %s", username)
		return nil, utils.UnauthorizedError(utils.ErrInvalidCredentials, nil)
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		utils.LogWarn("Failed login attempt for username: %s", username)
		return nil, utils.UnauthorizedError(utils.ErrInvalidCredentials, nil)
	}

	utils.LogInfo("User logged in: %s", user.Username)
	return user, nil
}

// Identify loads the user behind a session or token
func (s *AuthService) Identify(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.UnauthorizedError("User not found", err)
		}
		return nil, utils.InternalError("Failed to load user", err)
	}
	return user, nil
}

// IssueToken signs a bearer token for API clients
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	token, err := utils.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", utils.InternalError("Failed to generate token", err)
	}
	return token, nil
}

// ParseToken returns the user id carried by a valid token
func (s *AuthService) ParseToken(token string) (uint, error) {
	userID, err := utils.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return 0, utils.UnauthorizedError(utils.ErrInvalidToken, err)
	}
	return userID, nil
}
