package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds all configuration for the trips module.
type Config struct {
	// Generator backend (packing lists and images)
	GeneratorBaseURL string        `env:"GENERATOR_BASE_URL,required"`
	ImageModel       string        `env:"IMAGE_MODEL" envDefault:"imagen-4.0-fast-generate-preview-06-06"`
	GeneratorTimeout time.Duration `env:"GENERATOR_TIMEOUT" envDefault:"60s"`

	// Enrichment handler wall-clock budgets. The item budget is larger
	// because image generation latency dominates there.
	CoverEnrichTimeout time.Duration `env:"COVER_ENRICH_TIMEOUT" envDefault:"180s"`
	ItemEnrichTimeout  time.Duration `env:"ITEM_ENRICH_TIMEOUT" envDefault:"540s"`

	// Object storage (generated images)
	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY,required"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY,required"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"tripack-images"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// Redis (durable change-event journal)
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig loads trips module configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load trips configuration from environment: " + err.Error())
	}
	if cfg.GeneratorBaseURL == "" {
		return nil, errors.New("generator_base_url is required")
	}
	return cfg, nil
}
