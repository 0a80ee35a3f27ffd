package http

import (
	"context"

	"tripack/internal/auth/domain/model"
	"tripack/internal/auth/domain/repository"
	"tripack/internal/auth/usecase"

	"github.com/stretchr/testify/mock"
)

// mockAuthUsecase is a testify mock of usecase.AuthUsecaseInterface.
type mockAuthUsecase struct {
	mock.Mock
}

func (m *mockAuthUsecase) Register(ctx context.Context, req usecase.RegisterRequest) (*model.User, string, error) {
	args := m.Called(ctx, req)
	var user *model.User
	if args.Get(0) != nil {
		user = args.Get(0).(*model.User)
	}
	return user, args.String(1), args.Error(2)
}

func (m *mockAuthUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*model.User, string, error) {
	args := m.Called(ctx, req)
	var user *model.User
	if args.Get(0) != nil {
		user = args.Get(0).(*model.User)
	}
	return user, args.String(1), args.Error(2)
}

func (m *mockAuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	args := m.Called(ctx, tokenString)
	var claims *repository.Claims
	if args.Get(0) != nil {
		claims = args.Get(0).(*repository.Claims)
	}
	return claims, args.Error(1)
}

func (m *mockAuthUsecase) GetUserFromToken(ctx context.Context, tokenString string) (*model.User, error) {
	args := m.Called(ctx, tokenString)
	var user *model.User
	if args.Get(0) != nil {
		user = args.Get(0).(*model.User)
	}
	return user, args.Error(1)
}

func (m *mockAuthUsecase) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	var user *model.User
	if args.Get(0) != nil {
		user = args.Get(0).(*model.User)
	}
	return user, args.Error(1)
}
