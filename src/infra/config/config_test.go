package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "http://localhost:8080/api", cfg.Backend.APIBase())
	assert.Equal(t, "tenant_demo_001", cfg.Tenant.DefaultID)
	assert.Contains(t, cfg.Backend.ProxyPublicPrefixes, "event-details")
	assert.NotContains(t, cfg.Backend.ProxyPublicPrefixes, "event-attendees")
	assert.Contains(t, cfg.Backend.ProxyAdminPrefixes, "event-attendees")
	assert.NotContains(t, cfg.Backend.ProxyAdminPrefixes, "tenant-settings")
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.Stripe.Enabled())
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_BACKEND_URL", "https://api.example.org/")
	t.Setenv("APP_TENANT_ID", "tenant_mosc")
	t.Setenv("APP_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("APP_CACHE_TTL", "5m")

	cfg, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://api.example.org/api", cfg.Backend.APIBase())
	assert.Equal(t, "tenant_mosc", cfg.Tenant.DefaultID)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
}

func TestLoadEnv_StripeNeedsWebhookSecret(t *testing.T) {
	t.Setenv("APP_STRIPE_SECRET_KEY", "sk_test_123")

	_, err := LoadEnv()
	require.Error(t, err)

	t.Setenv("APP_STRIPE_WEBHOOK_SECRET", "whsec_123")
	cfg, err := LoadEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Stripe.Enabled())
}

func TestLoadEnv_InvalidPort(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-number")

	_, err := LoadEnv()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5433, Name: "events", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p@db:5433/events?sslmode=require", c.DSN())
}
