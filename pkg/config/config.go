package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration, read from the environment.
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	// Credential and token settings. JWTSecret is loaded once here and
	// never changes for the process lifetime.
	JWTSecret  string
	JWTIssuer  string
	TokenTTL   time.Duration
	BcryptCost int

	// Storage. Either may be empty, in which case the server falls back
	// to in-memory stores (development and tests).
	DatabaseURL string
	RedisURL    string

	// Rate limiting for the credential endpoints, per client IP.
	AuthRateLimit  int
	AuthRateWindow time.Duration

	StatsInterval time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}

	ttlMinutes, err := intEnv("TOKEN_TTL_MINUTES", 24*60)
	if err != nil {
		return nil, err
	}

	bcryptCost, err := intEnv("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}

	authLimit, err := intEnv("AUTH_RATE_LIMIT", 30)
	if err != nil {
		return nil, err
	}

	authWindowSeconds, err := intEnv("AUTH_RATE_WINDOW_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	statsSeconds, err := intEnv("STATS_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     port,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTIssuer:      getEnv("JWT_ISSUER", "carbook"),
		TokenTTL:       time.Duration(ttlMinutes) * time.Minute,
		BcryptCost:     bcryptCost,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AuthRateLimit:  authLimit,
		AuthRateWindow: time.Duration(authWindowSeconds) * time.Second,
		StatsInterval:  time.Duration(statsSeconds) * time.Second,
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseCSVEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
