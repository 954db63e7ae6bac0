// Package config - application configuration
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Port        string
	JWTSecret   string
	Database    DatabaseConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string
	// SqliteFile when set, use Sqlite instead of Postgres
	SqliteFile string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	pgPort, err := strconv.Atoi(getEnv("PG_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("PG_PORT is not a number: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "DEVELOPMENT"),
		Port:        getEnv("PORT", "3000"),
		JWTSecret:   jwtSecret,
		Database: DatabaseConfig{
			Host:       getEnv("PG_HOST", "localhost"),
			Port:       pgPort,
			Username:   getEnv("PG_USERNAME", "postgres"),
			Password:   os.Getenv("PG_PASSWORD"),
			Database:   getEnv("PG_DATABASE", "telemetry"),
			SSLMode:    getEnv("PG_SSLMODE", "disable"),
			SqliteFile: os.Getenv("SQLITE_FILE"),
		},
	}, nil
}

// IsProduction whether the deployment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "PRODUCTION"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
