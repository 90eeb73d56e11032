package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendExternal = "external"
	BackendMemory   = "memory"
)

// Config holds all service configuration loaded from environment variables.
// It is built once at startup and handed to constructors; nothing mutates it.
type Config struct {
	Port           string        `env:"PORT"              envDefault:"3000"`
	JWTSecret      string        `env:"JWT_SECRET"`
	StoreBackend   string        `env:"STORE_BACKEND"     envDefault:"external"`
	PostgresDSN    string        `env:"POSTGRES_DSN"`
	MongoURI       string        `env:"MONGO_URI"`
	MongoDB        string        `env:"MONGO_DB"          envDefault:"todo_api"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	CacheTTL       time.Duration `env:"CACHE_TTL"         envDefault:"5m"`
	MinioEndpoint  string        `env:"MINIO_ENDPOINT"`
	MinioAccessKey string        `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string        `env:"MINIO_SECRET_KEY"`
	MinioBucket    string        `env:"MINIO_BUCKET"      envDefault:"todo-exports"`
	MinioUseSSL    bool          `env:"MINIO_USE_SSL"     envDefault:"false"`
	AllowedOrigins []string      `env:"CORS_ORIGINS"      envDefault:"*" envSeparator:","`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.StoreBackend {
	case BackendMemory:
	case BackendExternal:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the external store backend")
		}
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the external store backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// CacheEnabled reports whether todo lists are cached in Redis.
func (c *Config) CacheEnabled() bool { return c.RedisAddr != "" }

// ExportEnabled reports whether todo snapshots can be archived to MinIO.
func (c *Config) ExportEnabled() bool { return c.MinioEndpoint != "" }
