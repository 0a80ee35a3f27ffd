package http

import (
	"errors"

	"tripack/internal/auth/usecase"
	"tripack/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase        usecase.AuthUsecaseInterface
	cookieName     string
	cookiePath     string
	cookieDomain   string
	cookieMaxAge   int
	cookieSecure   bool
	cookieHTTPOnly bool
	cookieSameSite string
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(
	uc usecase.AuthUsecaseInterface,
	cookieName, cookiePath, cookieDomain string,
	cookieMaxAge int,
	cookieSecure, cookieHTTPOnly bool,
	cookieSameSite string,
) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		usecase:        uc,
		cookieName:     cookieName,
		cookiePath:     cookiePath,
		cookieDomain:   cookieDomain,
		cookieMaxAge:   cookieMaxAge,
		cookieSecure:   cookieSecure,
		cookieHTTPOnly: cookieHTTPOnly,
		cookieSameSite: cookieSameSite,
	}
}

// authResponse is returned by register and login.
type authResponse struct {
	User        interface{} `json:"user"`
	AccessToken string      `json:"accessToken"`
}

// SetupAuthRoutesWithMiddleware sets up authentication routes with middleware
func (h *AuthHTTPHandler) SetupAuthRoutesWithMiddleware(router fiber.Router, middleware *AuthMiddleware) {
	// Public routes (no authentication required)
	router.Post("/register", h.Register)
	router.Post("/login", h.Login)

	// Protected routes (authentication required)
	protected := router.Group("/", middleware.Protect())
	protected.Post("/logout", h.Logout)
	protected.Get("/me", h.GetCurrentUser)
}

// Register handles user registration
func (h *AuthHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, token, err := h.usecase.Register(c.Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Email already registered",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.setCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(authResponse{User: user, AccessToken: token})
}

// Login handles user login
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, token, err := h.usecase.Login(c.Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	h.setCookie(c, token)

	return c.JSON(authResponse{User: user, AccessToken: token})
}

// Logout clears the auth cookie. Access tokens are short-lived JWTs, so no
// server-side session needs invalidating.
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetCurrentUser returns the authenticated user's profile
func (h *AuthHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	user, err := h.usecase.GetUserByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load user",
		})
	}

	return c.JSON(user)
}

// setCookie attaches the access token as an HTTP cookie
func (h *AuthHTTPHandler) setCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     h.cookiePath,
		Domain:   h.cookieDomain,
		MaxAge:   h.cookieMaxAge,
		Secure:   h.cookieSecure,
		HTTPOnly: h.cookieHTTPOnly,
		SameSite: h.cookieSameSite,
	})
}

// clearCookie expires the auth cookie
func (h *AuthHTTPHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     h.cookiePath,
		Domain:   h.cookieDomain,
		MaxAge:   -1,
		Secure:   h.cookieSecure,
		HTTPOnly: h.cookieHTTPOnly,
		SameSite: h.cookieSameSite,
	})
}
