package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the auth module.
type Config struct {
	// MongoDB Configuration
	MongoDBURI   string `env:"MONGODB_URI,required"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"tripack"`

	// JWT Configuration
	JWTSecretKey    string        `env:"JWT_SECRET_KEY,required"`
	JWTIssuer       string        `env:"JWT_ISSUER" envDefault:"tripack-auth-service"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"` // 7 days

	// Cookie Configuration
	CookieName     string `env:"COOKIE_NAME" envDefault:"tripack_auth_token"`
	CookiePath     string `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain   string `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"` // Set to true in production
	CookieHTTPOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"Lax"` // "Lax", "Strict", "None"
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load auth configuration from environment: " + err.Error())
	}

	if cfg.JWTSecretKey == "" {
		return nil, errors.New("jwt_secret_key is required")
	}
	if cfg.MongoDBURI == "" {
		return nil, errors.New("mongodb_uri is required")
	}

	// Normalize and validate CookieSameSite
	switch strings.ToLower(cfg.CookieSameSite) {
	case "lax":
		cfg.CookieSameSite = "Lax"
	case "strict":
		cfg.CookieSameSite = "Strict"
	case "none":
		cfg.CookieSameSite = "None"
	default:
		return nil, errors.New("cookie_same_site must be one of 'Lax', 'Strict', or 'None'")
	}

	return cfg, nil
}
