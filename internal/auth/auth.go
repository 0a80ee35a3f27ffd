// Package auth wires the authentication module: bcrypt-hashed accounts in
// MongoDB, JWT access tokens, and the Fiber routes and middleware that
// protect the trips API.
package auth

import (
	"fmt"

	authhttp "tripack/internal/auth/adapter/http"
	"tripack/internal/auth/adapter/persistence/mongodb"
	"tripack/internal/auth/adapter/security"
	"tripack/internal/auth/config"
	"tripack/internal/auth/domain/repository"
	"tripack/internal/auth/usecase"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuthModule represents the complete authentication module
type AuthModule struct {
	repository repository.AuthRepository
	tokenSvc   repository.TokenService
	usecase    usecase.AuthUsecaseInterface
	handler    *authhttp.AuthHTTPHandler
	config     *config.Config
}

// NewAuthModule creates a new authentication module instance
func NewAuthModule(db *mongo.Database, cfg *config.Config) (*AuthModule, error) {
	authRepo, err := mongodb.NewMongoAuthRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth repository: %w", err)
	}

	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	authUsecase := usecase.NewAuthUsecase(authRepo, tokenSvc, cfg)

	handler := authhttp.NewAuthHTTPHandler(
		authUsecase,
		cfg.CookieName,
		cfg.CookiePath,
		cfg.CookieDomain,
		int(cfg.AccessTokenTTL.Seconds()),
		cfg.CookieSecure,
		cfg.CookieHTTPOnly,
		cfg.CookieSameSite,
	)

	return &AuthModule{
		repository: authRepo,
		tokenSvc:   tokenSvc,
		usecase:    authUsecase,
		handler:    handler,
		config:     cfg,
	}, nil
}

// RegisterRoutes registers authentication routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	middleware := am.GetMiddleware()
	am.handler.SetupAuthRoutesWithMiddleware(router, middleware)
}

// GetUsecase returns the auth usecase for external access
func (am *AuthModule) GetUsecase() usecase.AuthUsecaseInterface {
	return am.usecase
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return authhttp.NewAuthMiddleware(am.usecase, am.config.CookieName)
}
