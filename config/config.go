package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the reporting service.
type Config struct {
	// Database configuration
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Server configuration
	Port           string
	TrustedProxies []string

	// Auth
	JWTSecret   string
	TokenExpiry time.Duration

	// Analysis pipeline
	AMQPURL       string
	AnalysisQueue string
	OpenAIKey     string
	OpenAIModel   string

	// SLA escalation sweep (cron spec)
	SLASweepSpec string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Database defaults
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         getEnv("DB_USER", "server"),
		DBPassword:     getEnv("DB_PASSWORD", "secret_app"),
		DBName:         getEnv("DB_NAME", "civicreport"),
		DBMaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),

		// Server defaults
		Port:           getEnv("PORT", "8080"),
		TrustedProxies: getListEnv("TRUSTED_PROXIES", nil),

		// Auth defaults
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret-key"),
		TokenExpiry: getDurationEnv("TOKEN_EXPIRY", 7*24*time.Hour),

		// Analysis pipeline; empty AMQP URL disables publishing
		AMQPURL:       getEnv("AMQP_URL", ""),
		AnalysisQueue: getEnv("ANALYSIS_QUEUE", "report_analysis"),
		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		// SLA sweep defaults to every 15 minutes
		SLASweepSpec: getEnv("SLA_SWEEP_SPEC", "@every 15m"),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getListEnv gets a comma-separated environment variable or returns a default.
func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
