package usecase_test

import (
	"context"
	"testing"

	"tripack/internal/auth/config"
	"tripack/internal/auth/domain/model"
	"tripack/internal/auth/domain/repository"
	"tripack/internal/auth/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Mock repository
type mockAuthRepository struct {
	mock.Mock
}

func (m *mockAuthRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockAuthRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockAuthRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// Mock token service
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken(ctx context.Context, userID, email string) (string, error) {
	args := m.Called(ctx, userID, email)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Claims), args.Error(1)
}

func newAuthUsecase(repo *mockAuthRepository, tokenSvc *mockTokenService) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(repo, tokenSvc, &config.Config{JWTSecretKey: "secret"})
}

func TestRegisterCreatesUserWithHashedPassword(t *testing.T) {
	repo := &mockAuthRepository{}
	tokenSvc := &mockTokenService{}
	uc := newAuthUsecase(repo, tokenSvc)

	var created *model.User
	repo.On("CreateUser", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*model.User)
	}).Return(nil)
	tokenSvc.On("GenerateToken", mock.Anything, mock.Anything, "alice@example.com").Return("token123", nil)

	user, token, err := uc.Register(context.Background(), usecase.RegisterRequest{
		Email:       "alice@example.com",
		Password:    "supersecret",
		DisplayName: "Alice",
	})

	require.NoError(t, err)
	assert.Equal(t, "token123", token)
	assert.Equal(t, "alice@example.com", user.Email)
	require.NotNil(t, created)
	assert.NotEqual(t, "supersecret", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("supersecret")))
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	uc := newAuthUsecase(&mockAuthRepository{}, &mockTokenService{})

	_, _, err := uc.Register(context.Background(), usecase.RegisterRequest{
		Email:    "not-an-email",
		Password: "supersecret",
	})

	assert.Error(t, err)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	uc := newAuthUsecase(&mockAuthRepository{}, &mockTokenService{})

	_, _, err := uc.Register(context.Background(), usecase.RegisterRequest{
		Email:    "alice@example.com",
		Password: "short",
	})

	assert.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &mockAuthRepository{}
	uc := newAuthUsecase(repo, &mockTokenService{})

	repo.On("CreateUser", mock.Anything, mock.Anything).Return(model.ErrUserExists)

	_, _, err := uc.Register(context.Background(), usecase.RegisterRequest{
		Email:    "alice@example.com",
		Password: "supersecret",
	})

	assert.ErrorIs(t, err, usecase.ErrEmailTaken)
}

func TestLoginSuccess(t *testing.T) {
	repo := &mockAuthRepository{}
	tokenSvc := &mockTokenService{}
	uc := newAuthUsecase(repo, tokenSvc)

	hash, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	stored := &model.User{ID: "u1", Email: "alice@example.com", PasswordHash: string(hash)}

	repo.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(stored, nil)
	tokenSvc.On("GenerateToken", mock.Anything, "u1", "alice@example.com").Return("token123", nil)

	user, token, err := uc.Login(context.Background(), usecase.LoginRequest{
		Email:    "alice@example.com",
		Password: "supersecret",
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "token123", token)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepository{}
	uc := newAuthUsecase(repo, &mockTokenService{})

	hash, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	stored := &model.User{ID: "u1", Email: "alice@example.com", PasswordHash: string(hash)}

	repo.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(stored, nil)

	_, _, err := uc.Login(context.Background(), usecase.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	repo := &mockAuthRepository{}
	uc := newAuthUsecase(repo, &mockTokenService{})

	repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, model.ErrUserNotFound)

	_, _, err := uc.Login(context.Background(), usecase.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever1",
	})

	// Unknown users look identical to wrong passwords
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
}

func TestGetUserFromToken(t *testing.T) {
	repo := &mockAuthRepository{}
	tokenSvc := &mockTokenService{}
	uc := newAuthUsecase(repo, tokenSvc)

	tokenSvc.On("ValidateToken", mock.Anything, "token123").Return(&repository.Claims{UserID: "u1"}, nil)
	repo.On("GetUserByID", mock.Anything, "u1").Return(&model.User{ID: "u1"}, nil)

	user, err := uc.GetUserFromToken(context.Background(), "token123")

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}
