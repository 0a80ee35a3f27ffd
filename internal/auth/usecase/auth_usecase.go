package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"tripack/internal/auth/config"
	"tripack/internal/auth/domain/model"
	"tripack/internal/auth/domain/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
)

// Password validation constants
const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, req LoginRequest) (*model.User, string, error)
	ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error)
	GetUserFromToken(ctx context.Context, tokenString string) (*model.User, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName,omitempty"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	repo     repository.AuthRepository
	tokenSvc repository.TokenService
	config   *config.Config
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	repo repository.AuthRepository,
	tokenSvc repository.TokenService,
	cfg *config.Config,
) *AuthUsecase {
	return &AuthUsecase{
		repo:     repo,
		tokenSvc: tokenSvc,
		config:   cfg,
	}
}

// validateEmail validates email format
func (uc *AuthUsecase) validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmailFormat
	}
	return nil
}

// validatePassword validates password strength
func (uc *AuthUsecase) validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLength)
	}
	return nil
}

// Register creates a new user account and returns it with an access token.
func (uc *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*model.User, string, error) {
	if err := uc.validateEmail(req.Email); err != nil {
		return nil, "", err
	}
	if err := uc.validatePassword(req.Password); err != nil {
		return nil, "", err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(req.DisplayName),
	}

	if err := uc.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user by email and password.
func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := uc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// ValidateToken validates an access token and returns its claims.
func (uc *AuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	claims, err := uc.tokenSvc.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// GetUserFromToken resolves the user an access token belongs to.
func (uc *AuthUsecase) GetUserFromToken(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := uc.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return uc.GetUserByID(ctx, claims.UserID)
}

// GetUserByID loads a user by its ID.
func (uc *AuthUsecase) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := uc.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}
