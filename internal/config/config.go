package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	Gemini    GeminiConfig
	Rakuten   RakutenConfig
	Lookup    LookupConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string
	Model  string
}

// RakutenConfig holds Rakuten Ichiba API credentials
type RakutenConfig struct {
	ApplicationID string
	AffiliateID   string
}

// LookupConfig holds tuning for the suggestion pipeline
type LookupConfig struct {
	// Timeout applies independently to each external lookup call.
	Timeout time.Duration
	// MaxHits caps commerce search results per query.
	MaxHits int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "3001"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "hikkoshi"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Rakuten: RakutenConfig{
			ApplicationID: os.Getenv("RAKUTEN_APP_ID"),
			AffiliateID:   os.Getenv("RAKUTEN_AFFILIATE_ID"),
		},
		Lookup: LookupConfig{
			Timeout: time.Duration(getEnvInt("LOOKUP_TIMEOUT_SECONDS", 10)) * time.Second,
			MaxHits: getEnvInt("LOOKUP_MAX_HITS", 5),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
