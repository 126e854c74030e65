package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shopcore/internal/models"
	"shopcore/internal/repositories"
	"shopcore/internal/utils"
)

var (
	ErrEmailTaken     = errors.New("email already in use")
	ErrUsernameTaken  = errors.New("username already in use")
	ErrUserNotFound   = errors.New("user not found")
	ErrRefreshInvalid = errors.New("refresh token invalid or expired")
)

// RefreshTokenTTL bounds how long a session survives without re-login.
const RefreshTokenTTL = 7 * 24 * time.Hour

type UserService interface {
	Register(user *models.User, plainPassword string) error
	GetUserByID(id int) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	// GetUserByLogin resolves a username-or-email login identifier.
	GetUserByLogin(login string) (*models.User, error)
	UpdateUser(user *models.User, newPassword string) error
	DeleteUser(id int) error
	ListUsers(limit, offset int) ([]*models.User, error)

	IssueRefresh(userID int) (string, error)
	// RotateRefresh swaps a valid refresh token for a fresh one and returns
	// the owning user. The old token stops working immediately.
	RotateRefresh(oldToken string) (*models.User, string, error)
	RevokeRefresh(userID int) error
}

type userService struct {
	repo repositories.UserRepository
	auth AuthService
}

func NewUserService(repo repositories.UserRepository, auth AuthService) *userService {
	return &userService{repo: repo, auth: auth}
}

// Register creates an unverified account with a hashed credential. The
// verification email is dispatched by the caller, not here, so the handler
// controls the queue-or-sync decision.
func (s *userService) Register(user *models.User, plainPassword string) error {
	if strings.TrimSpace(plainPassword) == "" {
		return fmt.Errorf("password is required")
	}

	if existing, err := s.repo.GetByEmail(user.Email); err != nil {
		return err
	} else if existing != nil {
		return ErrEmailTaken
	}
	if existing, err := s.repo.GetByUsername(user.Username); err != nil {
		return err
	} else if existing != nil {
		return ErrUsernameTaken
	}

	hash, err := s.auth.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.IsVerified = false
	user.IsActive = true

	return s.repo.Create(user)
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(email)
}

func (s *userService) GetUserByLogin(login string) (*models.User, error) {
	user, err := s.repo.GetByUsername(login)
	if err != nil || user != nil {
		return user, err
	}
	return s.repo.GetByEmail(login)
}

// UpdateUser persists profile fields; a non-empty newPassword is re-hashed.
// Verification and staff flags are not touchable through this path.
func (s *userService) UpdateUser(user *models.User, newPassword string) error {
	if newPassword != "" {
		hash, err := s.auth.HashPassword(newPassword)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	return s.repo.Update(user)
}

func (s *userService) DeleteUser(id int) error {
	return s.repo.Delete(id)
}

func (s *userService) ListUsers(limit, offset int) ([]*models.User, error) {
	return s.repo.List(limit, offset)
}

func (s *userService) IssueRefresh(userID int) (string, error) {
	token, err := utils.NewRefreshToken()
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdateRefresh(userID, token, time.Now().Add(RefreshTokenTTL)); err != nil {
		return "", err
	}
	return token, nil
}

func (s *userService) RotateRefresh(oldToken string) (*models.User, string, error) {
	user, err := s.repo.GetByRefreshToken(oldToken)
	if err != nil {
		return nil, "", err
	}
	if user == nil || user.RefreshRevoked ||
		user.RefreshExpiresAt == nil || time.Now().After(*user.RefreshExpiresAt) {
		return nil, "", ErrRefreshInvalid
	}

	newToken, err := utils.NewRefreshToken()
	if err != nil {
		return nil, "", err
	}
	rotated, err := s.repo.RotateRefresh(oldToken, newToken, time.Now().Add(RefreshTokenTTL))
	if err != nil {
		return nil, "", err
	}
	if rotated == nil {
		// Lost the rotation race, treat the presented token as spent.
		return nil, "", ErrRefreshInvalid
	}
	return rotated, newToken, nil
}

func (s *userService) RevokeRefresh(userID int) error {
	return s.repo.ClearRefresh(userID)
}
