// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Env            string
	Database       DatabaseConfig
	Redis          RedisConfig
	Server         ServerConfig
	Logging        LoggingConfig
	CORS           CORSConfig
	JWT            JWTConfig
	SMTP           SMTPConfig
	RateLimit      RateLimitConfig
	Reminder       ReminderConfig
	MigrationsPath string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
	// CookieExpireDays is the lifetime of the "token" cookie in days
	CookieExpireDays int
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// RateLimitConfig holds the global per-IP rate limit
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// ReminderConfig holds reservation reminder scheduling settings
type ReminderConfig struct {
	Cron string
	Lead time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	cfg.Env = os.Getenv("ENV")
	if cfg.Env == "" {
		cfg.Env = "development"
	}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	serverPort, err := intFromEnv("SERVER_PORT", 5000)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	cfg.Logging.Level = logLevel

	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	jwtExpiry, err := durationFromEnv("JWT_EXPIRE", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWT.Expiry = jwtExpiry

	cookieDays, err := intFromEnv("JWT_COOKIE_EXPIRE", 30)
	if err != nil {
		return nil, err
	}
	if cookieDays <= 0 {
		return nil, fmt.Errorf("JWT_COOKIE_EXPIRE must be positive")
	}
	cfg.JWT.CookieExpireDays = cookieDays

	// Redis configuration (token revocation, task queue)
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}
	cfg.Redis.Host = redisHost

	if cfg.Redis.Port, err = intFromEnv("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional
	if cfg.Redis.DB, err = intFromEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// SMTP configuration (worker only)
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "localhost"
	}
	cfg.SMTP.Host = smtpHost

	if cfg.SMTP.Port, err = intFromEnv("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME") // optional
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD") // optional

	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpFrom == "" {
		smtpFrom = "noreply@restaurantbooking.local"
	}
	cfg.SMTP.From = smtpFrom

	// Rate limiting
	if cfg.RateLimit.Requests, err = intFromEnv("RATE_LIMIT_REQUESTS", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Window, err = durationFromEnv("RATE_LIMIT_WINDOW", 10*time.Minute); err != nil {
		return nil, err
	}

	// Reminder scheduler
	cfg.Reminder.Cron = os.Getenv("REMINDER_CRON")
	if cfg.Reminder.Cron == "" {
		cfg.Reminder.Cron = "*/15 * * * *"
	}
	if cfg.Reminder.Lead, err = durationFromEnv("REMINDER_LEAD", 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.MigrationsPath = os.Getenv("MIGRATIONS_PATH")
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	if c.Database.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the host:port address of the Redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// parseOrigins parses a comma-separated origins list, defaulting to "*"
func parseOrigins(raw string) []string {
	if raw == "" {
		// Allow all origins if not specified (for development)
		return []string{"*"}
	}

	origins := strings.Split(raw, ",")
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		return []string{"*"}
	}
	return allowed
}

func intFromEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
