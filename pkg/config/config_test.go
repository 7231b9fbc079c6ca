package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_TypesenseConfig(t *testing.T) {
	t.Setenv("TYPESENSE_URL", "http://test-typesense:8108")
	t.Setenv("TYPESENSE_API_KEY", "test-key")
	t.Setenv("TYPESENSE_COLLECTION", "mechanics_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://test-typesense:8108", cfg.Typesense.URL)
	assert.Equal(t, "test-key", cfg.Typesense.APIKey)
	assert.Equal(t, "mechanics_test", cfg.Typesense.Collection)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8108", cfg.Typesense.URL)
	assert.Equal(t, 20, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 100, cfg.Pagination.MaxLimit)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLength)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 25.0, cfg.Discovery.DefaultRadiusKm)
	assert.NotEmpty(t, cfg.Auth.JWTSecret, "development gets a fallback secret")
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Redis.WarmInterval)
	assert.Equal(t, 50, cfg.Redis.WarmTopN)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ParsesTypedValues(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")
	t.Setenv("DISCOVERY_DEFAULT_RADIUS_KM", "12.5")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.Server.TrustedProxies)
	assert.Equal(t, 12.5, cfg.Discovery.DefaultRadiusKm)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.IsDevelopment())
}

func TestValidate_Pagination(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PAGINATION_DEFAULT_LIMIT", "200")
	t.Setenv("PAGINATION_MAX_LIMIT", "100")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "ww", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=ww sslmode=disable", c.DatabaseDSN())

	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.RedisAddr())
}
