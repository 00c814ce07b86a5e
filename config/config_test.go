package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, defaultJWTSecret, cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
}

func TestLoad_RequiresSecretOutsideLocal(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestDSNString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "cms", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cms sslmode=disable", d.DSNString())

	d.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", d.DSNString())
}

func TestLoad_AdminSeedNeedsPassword(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "ADMIN_PASSWORD")

	t.Setenv("ADMIN_PASSWORD", "changeme")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Administrator", cfg.Admin.Name)
}
