package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service
	HTTPPort int `env:"HTTP_PORT" default:"8080"`
	PageSize int `env:"PAGE_SIZE" default:"10"`

	// Database: postgres DSN, or sqlite://<path> for local development
	DatabaseURL string `env:"DATABASE_URL" default:"sqlite://yamdb.db"`

	// Authentication
	JWTSecret      string        `env:"JWT_SECRET" required:"true"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" default:"24h"`

	// Redis backs the signup cooldown; empty disables it
	RedisURL       string        `env:"REDIS_URL"`
	SignupCooldown time.Duration `env:"SIGNUP_COOLDOWN" default:"0s"`

	// Per-IP limiter on /auth endpoints
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" default:"5"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" default:"10"`

	// Email
	EmailBackend string `env:"EMAIL_BACKEND" default:"console"`
	EmailFrom    string `env:"EMAIL_FROM" default:"noreply@yamdb.local"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" default:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	// Authorization policy overrides; empty uses the embedded policy
	CasbinModelPath  string `env:"CASBIN_MODEL_PATH"`
	CasbinPolicyPath string `env:"CASBIN_POLICY_PATH"`

	// Monitoring
	PrometheusEnabled bool `env:"PROMETHEUS_ENABLED" default:"false"`

	// Development
	LogLevel    string   `env:"LOG_LEVEL" default:"debug"`
	LogFormat   string   `env:"LOG_FORMAT" default:"text"`
	CORSOrigins []string `env:"CORS_ORIGINS" default:"http://localhost:3000"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// a missing .env is fine, system env vars still apply
	_ = godotenv.Load(".env")

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.PageSize, "PAGE_SIZE", 10); err != nil {
		return nil, err
	}

	// Database
	if err := loadEnvString(&config.DatabaseURL, "DATABASE_URL", "sqlite://yamdb.db"); err != nil {
		return nil, err
	}

	// Authentication
	if err := loadEnvStringRequired(&config.JWTSecret, "JWT_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.AccessTokenTTL, "ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	// Redis
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", ""); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.SignupCooldown, "SIGNUP_COOLDOWN", 0); err != nil {
		return nil, err
	}

	// Rate limiting
	if err := loadEnvFloat(&config.AuthRateLimit, "AUTH_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.AuthRateBurst, "AUTH_RATE_BURST", 10); err != nil {
		return nil, err
	}

	// Email
	if err := loadEnvString(&config.EmailBackend, "EMAIL_BACKEND", "console"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.EmailFrom, "EMAIL_FROM", "noreply@yamdb.local"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.SMTPHost, "SMTP_HOST", ""); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.SMTPPort, "SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.SMTPUsername, "SMTP_USERNAME", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.SMTPPassword, "SMTP_PASSWORD", ""); err != nil {
		return nil, err
	}

	// Authorization
	if err := loadEnvString(&config.CasbinModelPath, "CASBIN_MODEL_PATH", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.CasbinPolicyPath, "CASBIN_POLICY_PATH", ""); err != nil {
		return nil, err
	}

	// Monitoring
	if err := loadEnvBool(&config.PrometheusEnabled, "PROMETHEUS_ENABLED", false); err != nil {
		return nil, err
	}

	// Development
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "debug"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}
	if err := loadEnvStringSlice(&config.CORSOrigins, "CORS_ORIGINS", []string{"http://localhost:3000"}); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadDatabaseURL reads only DATABASE_URL, for tools that never serve HTTP
// and so have no use for the JWT secret.
func LoadDatabaseURL() string {
	_ = godotenv.Load(".env")

	var url string
	_ = loadEnvString(&url, "DATABASE_URL", "sqlite://yamdb.db")
	return url
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) error {
	if value := os.Getenv(key); value != "" {
		*target = strings.Split(value, ",")
		// Trim whitespace from each element
		for i, v := range *target {
			(*target)[i] = strings.TrimSpace(v)
		}
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		errors = append(errors, "PAGE_SIZE must be between 1 and 100")
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	// JWT secret length (should be at least 32 characters for HS256)
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}
	if c.AccessTokenTTL <= 0 {
		errors = append(errors, "ACCESS_TOKEN_TTL must be positive")
	}

	validEmailBackends := []string{"console", "smtp"}
	if !contains(validEmailBackends, c.EmailBackend) {
		errors = append(errors, fmt.Sprintf("EMAIL_BACKEND must be one of: %s", strings.Join(validEmailBackends, ", ")))
	}
	if c.EmailBackend == "smtp" && c.SMTPHost == "" {
		errors = append(errors, "SMTP_HOST is required when EMAIL_BACKEND=smtp")
	}
	// the console backend logs codes that can be redeemed
	if c.EmailBackend == "console" && c.IsProduction() {
		errors = append(errors, "EMAIL_BACKEND=console is not allowed when GO_ENV=production")
	}

	if c.SignupCooldown < 0 {
		errors = append(errors, "SIGNUP_COOLDOWN must not be negative")
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst < 1 {
		errors = append(errors, "AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
