package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/kopiteras/cafe/internal/database"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Version     string `envconfig:"VERSION" default:"dev"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"12"`

	DBMaxConns int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns int32         `envconfig:"DB_MIN_CONNS" default:"0"`
	DBConnTTL  time.Duration `envconfig:"DB_CONN_LIFETIME" default:"1h"`

	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	SessionIssuer string        `envconfig:"SESSION_ISSUER" default:"cafe"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`

	// SuperOperatorEmail is always issued the admin role. Empty disables the override.
	SuperOperatorEmail     string `envconfig:"SUPER_OPERATOR_EMAIL" default:""`
	BootstrapAdminEmail    string `envconfig:"BOOTSTRAP_ADMIN_EMAIL" default:""`
	BootstrapAdminPassword string `envconfig:"BOOTSTRAP_ADMIN_PASSWORD" default:""`

	OIDCIssuer       string `envconfig:"OIDC_ISSUER" default:"https://accounts.google.com"`
	OIDCClientID     string `envconfig:"OIDC_CLIENT_ID" default:""`
	OIDCClientSecret string `envconfig:"OIDC_CLIENT_SECRET" default:""`
	OIDCRedirectURL  string `envconfig:"OIDC_REDIRECT_URL" default:""`
}

// ErrWeakSessionSecret is returned when SESSION_SECRET is too short to key HS256.
var ErrWeakSessionSecret = errors.New("SESSION_SECRET must be at least 32 bytes")

// Load reads an optional .env file and then environment variables into a Config struct.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, ErrWeakSessionSecret
	}
	return &cfg, nil
}

// PoolOptions returns the connection pool settings.
func (c *Config) PoolOptions() []database.PoolOption {
	return []database.PoolOption{
		database.WithMaxConns(c.DBMaxConns),
		database.WithMinConns(c.DBMinConns),
		database.WithMaxConnLifetime(c.DBConnTTL),
	}
}

// FederatedLoginEnabled reports whether an OIDC client is configured.
func (c *Config) FederatedLoginEnabled() bool {
	return c.OIDCClientID != ""
}
