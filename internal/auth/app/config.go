package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer  string // Issuer claim for access tokens (default: blightstone-auth)
	KeyFile string // Optional: path to a PKCS8 Ed25519 private key PEM; ephemeral key when empty

	DatabaseDriver string // Database driver (sqlite, postgres) (default: sqlite)
	DatabaseURL    string // Postgres DSN, or SQLite file path (default: ./blightstone.db)

	SessionBackend string // Session backend (memory, redis) (default: memory)
	RedisURL       string // Redis URL, required when SessionBackend is redis
	SessionSecret  string // Required outside dev: signs and encrypts the session cookie

	AppBaseURL   string // Public app origin used in emailed links (default: http://localhost:3000)
	ResendAPIKey string // Optional: enables email delivery via Resend
	EmailFrom    string // Sender address for outbound email

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:  getEnvOrDefault("AUTH_ISSUER", "blightstone-auth"),
		KeyFile: os.Getenv("AUTH_KEY_FILE"),

		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", "blightstone.db"),

		SessionBackend: getEnvOrDefault("SESSION_BACKEND", "memory"),
		RedisURL:       os.Getenv("REDIS_URL"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),

		AppBaseURL:   getEnvOrDefault("APP_BASE_URL", "http://localhost:3000"),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnvOrDefault("EMAIL_FROM", "Blightstone <noreply@blightstone.app>"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
