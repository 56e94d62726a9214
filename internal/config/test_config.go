package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests
// If the database variables are not set, returns a Config with empty database values
// which allows tests to skip database-backed cases
func LoadTestConfig() (*Config, error) {
	// Try loading from project root (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{Env: "test"}

	jwtSecret := os.Getenv("TEST_JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "test-secret-key-for-integration-tests"
	}
	cfg.JWT.Secret = jwtSecret

	expiryStr := os.Getenv("TEST_JWT_EXPIRE")
	if expiryStr == "" {
		expiryStr = "1h"
	}
	expiry, err := time.ParseDuration(expiryStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_JWT_EXPIRE: %w", err)
	}
	cfg.JWT.Expiry = expiry
	cfg.JWT.CookieExpireDays = 1

	dbHost := os.Getenv("TEST_DB_HOST")
	if dbHost == "" {
		return cfg, nil
	}

	dbPort, err := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}

	cfg.Database = DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		DBName:   os.Getenv("TEST_DB_NAME"),
	}

	return cfg, nil
}
