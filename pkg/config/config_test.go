package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_ENV", "DATABASE_URL", "REDIS_URL", "JWT_EXPIRY", "GEMINI_MODEL", "DB_AUTO_MIGRATE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Contains(t, cfg.PostgresUrl, "dbname=nano_social")
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 72*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/social")
	t.Setenv("JWT_EXPIRY", "15m")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("COUNT_CACHE_TTL", "not-a-duration")

	cfg := Load()
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "postgres://u:p@db:5432/social", cfg.PostgresUrl)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, 7, cfg.DBMaxOpenConns)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, 5*time.Minute, cfg.CountCacheTTL)
}

func TestInitRedisDisabled(t *testing.T) {
	client, err := InitRedis(&Config{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}
