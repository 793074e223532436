package services

import (
	"errors"
	"fmt"
	"time"

	"ninthwaka_backend/internal/models"
	"ninthwaka_backend/internal/repositories"
	"ninthwaka_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// --- Data Transfer Objects (DTOs) ---

// RegisterRequest creates a customer or rider account. Admin accounts are
// provisioned directly in the database, never through this endpoint.
type RegisterRequest struct {
	Username    string  `json:"username" binding:"required,min=3"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	FullName    string  `json:"full_name" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
	Role        string  `json:"role" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned on successful login or token refresh.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// --- AuthService Interface ---

type AuthService interface {
	Register(req RegisterRequest) (*models.User, error)
	Login(req LoginRequest) (*AuthResponse, error)
	RefreshToken(actor Actor) (*AuthResponse, error)
	GetUserProfile(userID int64) (*models.User, error)
	GetUsers(actor Actor, role *string) ([]models.User, error)
}

// --- authService Implementation ---

type authService struct {
	authRepo repositories.AuthRepository
	tokenTTL time.Duration
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{authRepo: authRepo, tokenTTL: tokenTTL}
}

func (s *authService) Register(req RegisterRequest) (*models.User, error) {
	if req.Role != models.RoleCustomer && req.Role != models.RoleRider {
		return nil, fmt.Errorf("%w: role must be %s or %s", ErrValidation, models.RoleCustomer, models.RoleRider)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		Role:         req.Role,
	}
	if _, err := s.authRepo.CreateUser(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	user, err := s.authRepo.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

func (s *authService) RefreshToken(actor Actor) (*AuthResponse, error) {
	user, err := s.authRepo.GetUserByID(actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user %d: %w", actor.UserID, err)
	}
	return s.issueToken(user)
}

func (s *authService) issueToken(user *models.User) (*AuthResponse, error) {
	expiresAt := time.Now().Add(s.tokenTTL)
	token, err := utils.GenerateJWT(user.ID, user.Username, user.Role, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.authRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", userID, err)
	}
	return user, nil
}

func (s *authService) GetUsers(actor Actor, role *string) ([]models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may list users", ErrAuthorization)
	}
	if role != nil && *role != "" && !models.IsValidRole(*role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *role)
	}
	return s.authRepo.GetUsers(role)
}
