package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PRIVILEGE_CACHE_TTL", "30s")
	t.Setenv("MIGRATE_ON_BOOT", "true")
	t.Setenv("JWT_ACCESS_TTL", "not-a-duration")

	cfg := New()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Auth.PrivilegeCacheTTL)
	assert.True(t, cfg.Postgres.MigrateOnBoot)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL, "invalid durations fall back")
}

func TestNew_AllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://kiosk.example, ,http://localhost:3000")

	cfg := New()

	assert.Equal(t, []string{"https://kiosk.example", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}
