package repository

import (
	"context"

	"tripack/internal/auth/domain/model"
)

// AuthRepository defines the persistence operations the auth usecase depends on.
type AuthRepository interface {
	// CreateUser inserts a new user. Returns model.ErrUserExists when the
	// email is already registered.
	CreateUser(ctx context.Context, user *model.User) error

	// GetUserByEmail looks a user up by email. Returns model.ErrUserNotFound
	// when no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// GetUserByID looks a user up by its UUID. Returns model.ErrUserNotFound
	// when no such user exists.
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
}
