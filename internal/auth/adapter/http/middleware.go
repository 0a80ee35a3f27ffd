package http

import (
	"strings"

	"tripack/internal/auth/usecase"
	"tripack/internal/shared/contextkeys"
	"tripack/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase    usecase.AuthUsecaseInterface
	cookieName string
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		usecase:    uc,
		cookieName: cookieName,
	}
}

// RequestID middleware
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     "X-Request-ID",
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// Protect returns middleware that requires authentication. On success the
// user's ID and email are placed in the request's user context.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := m.extractToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{"type": "UNAUTHENTICATED", "message": "Authentication required"},
			})
		}

		claims, err := m.usecase.ValidateToken(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{"type": "UNAUTHENTICATED", "message": "Invalid token"},
			})
		}

		ctx := utils.WithUserID(c.UserContext(), claims.UserID)
		ctx = utils.WithUserEmail(ctx, claims.Email)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// extractToken pulls the access token from the Authorization header or the
// auth cookie, in that order.
func (m *AuthMiddleware) extractToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], nil
		}
		return "", fiber.ErrUnauthorized
	}

	if cookie := c.Cookies(m.cookieName); cookie != "" {
		return cookie, nil
	}

	return "", fiber.ErrUnauthorized
}
