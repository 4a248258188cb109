package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORAGE_DRIVER", "JWT_TTL_MINUTES", "MAX_PAGE_LIMIT", "SWAGGER_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StorageDriver)
	assert.Equal(t, 1440, cfg.JWTTTLMinutes)
	assert.Equal(t, 100, cfg.MaxPageLimit)
	assert.True(t, cfg.SwaggerEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("MAX_PAGE_LIMIT", "not-a-number")
	t.Setenv("SWAGGER_ENABLED", "false")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 15, cfg.JWTTTLMinutes)
	assert.Equal(t, 100, cfg.MaxPageLimit, "unparsable values fall back to the default")
	assert.False(t, cfg.SwaggerEnabled)
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	for _, v := range []string{"0", "-5"} {
		t.Setenv("JWT_TTL_MINUTES", v)
		assert.Equal(t, 1440, Load().JWTTTLMinutes, "JWT_TTL_MINUTES=%s", v)
	}
}
