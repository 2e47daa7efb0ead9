// Package config handles application configuration via environment variables.
// It uses kelseyhightower/envconfig for parsing and provides sensible defaults.
// A .env file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
// Values are loaded from environment variables with the prefix "APP".
// Example: APP_PORT=8080, APP_BACKEND_URL=http://localhost:8080
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Backend  BackendConfig
	Tenant   TenantConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	Twilio   TwilioConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// Host is the HTTP server host (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// ReadTimeout is the maximum duration for reading the entire request (default: 30s, uploads included)
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration before timing out writes of the response (default: 30s)
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// SSL turns on HSTS and HTTPS redirects in the security middleware.
	SSL bool `envconfig:"SSL" default:"false"`

	// PublicURL is the browser-facing origin used to build checkout return URLs.
	PublicURL string `envconfig:"PUBLIC_URL" default:"http://localhost:3000"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"postgres"`
	Password        string        `envconfig:"DB_PASSWORD" default:"postgres"`
	Name            string        `envconfig:"DB_NAME" default:"malayalees"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds cache settings. An empty Addr falls back to an in-process cache
// and a zero TTL disables caching.
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR" default:""`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"CACHE_TTL" default:"60s"`
	Prefix   string        `envconfig:"CACHE_PREFIX" default:"malayalees:"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the log format: json, text, plain (default: plain)
	Format string `envconfig:"LOG_FORMAT" default:"plain"`
}

// BackendConfig points at the external CRUD API.
type BackendConfig struct {
	// URL is the backend base URL without the /api suffix.
	URL string `envconfig:"BACKEND_URL" default:"http://localhost:8080"`

	// Username and Password are the service account used with /api/authenticate.
	Username string `envconfig:"BACKEND_USERNAME" default:"admin"`
	Password string `envconfig:"BACKEND_PASSWORD" default:"admin"`

	// Timeout bounds each backend call (default: 15s)
	Timeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"15s"`

	// ProxyPublicPrefixes lists the /api resources anyone may read through the proxy.
	ProxyPublicPrefixes []string `envconfig:"PROXY_PUBLIC_PREFIXES" default:"event-details,event-medias,event-ticket-types"`

	// ProxyAdminPrefixes lists the /api resources only admins may reach through the proxy.
	// tenant-settings is never proxied.
	ProxyAdminPrefixes []string `envconfig:"PROXY_ADMIN_PREFIXES" default:"event-attendees,event-ticket-transactions,tenant-organizations"`
}

// TenantConfig holds tenant scoping settings.
type TenantConfig struct {
	// DefaultID is the tenant every request is scoped to unless overridden.
	DefaultID string `envconfig:"TENANT_ID" default:"tenant_demo_001"`

	// AllowHeaderOverride lets admins pick another tenant with X-Tenant-ID.
	AllowHeaderOverride bool `envconfig:"TENANT_HEADER_OVERRIDE" default:"false"`
}

// AuthConfig holds session token verification settings.
type AuthConfig struct {
	// JWKSURL is the identity provider's key set (e.g. https://<clerk-domain>/.well-known/jwks.json).
	JWKSURL string `envconfig:"AUTH_JWKS_URL" default:""`

	// Issuer, when set, must match the token iss claim.
	Issuer string `envconfig:"AUTH_ISSUER" default:""`

	// RoleClaim is the private claim holding the platform role.
	RoleClaim string `envconfig:"AUTH_ROLE_CLAIM" default:"role"`

	// AdminRoles lists the claim values treated as admin.
	AdminRoles []string `envconfig:"AUTH_ADMIN_ROLES" default:"admin,ADMIN,org:admin"`

	// RefreshInterval is the minimum gap between key set refreshes.
	RefreshInterval time.Duration `envconfig:"AUTH_JWKS_REFRESH" default:"1m"`
}

// StripeConfig holds payment settings. An empty SecretKey disables checkout.
type StripeConfig struct {
	SecretKey     string `envconfig:"STRIPE_SECRET_KEY" default:""`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET" default:""`
	Currency      string `envconfig:"STRIPE_CURRENCY" default:"usd"`
}

// TwilioConfig holds the WhatsApp provider endpoint.
// Account credentials live in tenant settings, not here.
type TwilioConfig struct {
	APIURL  string        `envconfig:"TWILIO_API_URL" default:"https://api.twilio.com"`
	Timeout time.Duration `envconfig:"TWILIO_TIMEOUT" default:"10s"`
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIBase returns the backend URL with the /api suffix.
func (c *BackendConfig) APIBase() string {
	return strings.TrimRight(c.URL, "/") + "/api"
}

// Enabled reports whether checkout can be used.
func (c *StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

// Load reads configuration from a .env file (if any) and environment variables.
// It returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}
	return LoadEnv()
}

// LoadEnv reads configuration from environment variables only.
func LoadEnv() (*Config, error) {
	var cfg Config

	// Load each config section separately to flatten env var names
	// This allows env vars like APP_PORT instead of APP_SERVER_PORT
	sections := []struct {
		name   string
		target any
	}{
		{"server", &cfg.Server},
		{"database", &cfg.Database},
		{"redis", &cfg.Redis},
		{"log", &cfg.Log},
		{"backend", &cfg.Backend},
		{"tenant", &cfg.Tenant},
		{"auth", &cfg.Auth},
		{"stripe", &cfg.Stripe},
		{"twilio", &cfg.Twilio},
		{"cors", &cfg.CORS},
	}
	for _, s := range sections {
		if err := envconfig.Process("APP", s.target); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
	}

	if cfg.Tenant.DefaultID == "" {
		return nil, errors.New("APP_TENANT_ID must not be empty")
	}
	if cfg.Stripe.Enabled() && cfg.Stripe.WebhookSecret == "" {
		return nil, errors.New("APP_STRIPE_WEBHOOK_SECRET is required when APP_STRIPE_SECRET_KEY is set")
	}

	return &cfg, nil
}
