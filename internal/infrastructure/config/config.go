package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/storefront/commerce-api/internal/core/domain"
)

const (
	NumberingMongo = "mongo"
	NumberingRedis = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Commerce  CommerceConfig
	Bootstrap BootstrapConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=24h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=commerce"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type CommerceConfig struct {
	// NumberingBackend selects where document counters live: mongo or redis.
	NumberingBackend string        `env:"NUMBERING_BACKEND, default=mongo"`
	IdempotencyTTL   time.Duration `env:"IDEMPOTENCY_TTL,   default=24h"`
	InvoiceDueDays   int           `env:"INVOICE_DUE_DAYS,  default=30"`
}

// BootstrapConfig names the admin account provisioned at startup. Both
// fields empty disables provisioning.
type BootstrapConfig struct {
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Commerce.NumberingBackend = strings.ToLower(strings.TrimSpace(cfg.Commerce.NumberingBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("%w: JWT_SECRET must be set", domain.ErrConfiguration)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%w: TOKEN_TTL must be positive", domain.ErrConfiguration)
	}
	switch c.Commerce.NumberingBackend {
	case NumberingMongo, NumberingRedis:
	default:
		return fmt.Errorf("%w: unknown NUMBERING_BACKEND %q", domain.ErrConfiguration, c.Commerce.NumberingBackend)
	}
	if c.Commerce.InvoiceDueDays < 0 {
		return fmt.Errorf("%w: INVOICE_DUE_DAYS must not be negative", domain.ErrConfiguration)
	}
	if (c.Bootstrap.AdminEmail == "") != (c.Bootstrap.AdminPassword == "") {
		return fmt.Errorf("%w: ADMIN_EMAIL and ADMIN_PASSWORD go together", domain.ErrConfiguration)
	}
	return nil
}

// IsDevelopment reports whether the server runs with developer defaults,
// such as pretty console logs.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
