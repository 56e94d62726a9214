package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "password")
	t.Setenv("DB_NAME", "restaurants")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "development", cfg.Env)
		assert.Equal(t, 5000, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, 30*24*time.Hour, cfg.JWT.Expiry)
		assert.Equal(t, 30, cfg.JWT.CookieExpireDays)
		assert.Equal(t, 100, cfg.RateLimit.Requests)
		assert.Equal(t, 10*time.Minute, cfg.RateLimit.Window)
		assert.Equal(t, "*/15 * * * *", cfg.Reminder.Cron)
		assert.Equal(t, "file://migrations", cfg.MigrationsPath)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("overrides", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ENV", "production")
		t.Setenv("SERVER_PORT", "8080")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
		t.Setenv("JWT_EXPIRE", "2h")
		t.Setenv("JWT_COOKIE_EXPIRE", "7")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.IsProduction())
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
		assert.Equal(t, 7, cfg.JWT.CookieExpireDays)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("invalid db port", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DB_PORT", "abc")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid DB_PORT")
	})

	t.Run("non-positive cookie expiry", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("JWT_COOKIE_EXPIRE", "0")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host:     "db",
		Port:     3306,
		User:     "u",
		Password: "p",
		DBName:   "n",
	}}

	assert.Equal(t, "u:p@tcp(db:3306)/n?parseTime=true&charset=utf8mb4", cfg.DSN())
	assert.Equal(t, "", (&Config{}).DSN())
}
