package repository

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity encoded in an access token.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService defines token generation and validation operations.
type TokenService interface {
	GenerateToken(ctx context.Context, userID, email string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}
