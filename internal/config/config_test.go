package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, "console", cfg.EmailBackend)
	assert.Equal(t, time.Duration(0), cfg.SignupCooldown)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("PROMETHEUS_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.PrometheusEnabled)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		HTTPPort:       0,
		PageSize:       10,
		LogLevel:       "verbose",
		LogFormat:      "text",
		JWTSecret:      "short",
		AccessTokenTTL: time.Hour,
		EmailBackend:   "smtp",
		AuthRateLimit:  1,
		AuthRateBurst:  1,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "SMTP_HOST")
}

func TestValidate_ConsoleMailerOutsideProduction(t *testing.T) {
	cfg := &Config{
		GoEnv:          "production",
		HTTPPort:       8080,
		PageSize:       10,
		LogLevel:       "info",
		LogFormat:      "json",
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		AccessTokenTTL: time.Hour,
		EmailBackend:   "console",
		AuthRateLimit:  1,
		AuthRateBurst:  1,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMAIL_BACKEND=console")

	cfg.EmailBackend = "smtp"
	cfg.SMTPHost = "mail.test"
	assert.NoError(t, cfg.Validate())

	cfg.GoEnv = "development"
	cfg.EmailBackend = "console"
	assert.NoError(t, cfg.Validate())
}

func TestLoadDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	assert.Equal(t, "sqlite://yamdb.db", LoadDatabaseURL())

	t.Setenv("DATABASE_URL", "postgres://yamdb@localhost/yamdb")
	assert.Equal(t, "postgres://yamdb@localhost/yamdb", LoadDatabaseURL())
}
