package config

import (
	"os"
	"strconv"
	"time"

	"github.com/nodegate/rpc-gateway-backend/internal/models"
)

// Config holds the gateway runtime configuration loaded from environment
// variables.
type Config struct {
	Port     string
	BasePath string

	// Upstream RPC backend
	UpstreamRPCURL  string
	UpstreamTimeout time.Duration

	// Persistent store call budget; QuotaTracker fails open past it,
	// key verification propagates the error.
	StoreTimeout time.Duration

	// Admission defaults applied when a key record carries none
	RateWindow          time.Duration
	DefaultRateLimit    int
	DefaultDailyLimit   models.Limit
	DefaultMonthlyLimit models.Limit

	JWTSecret []byte
}

// Load reads the gateway configuration from the environment
func Load() *Config {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		BasePath:            getEnv("BASE_PATH", "/rpc-gateway-api"),
		UpstreamRPCURL:      getEnv("UPSTREAM_RPC_URL", "http://localhost:8899"),
		UpstreamTimeout:     getEnvAsDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		StoreTimeout:        getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		RateWindow:          getEnvAsDuration("RATE_WINDOW", time.Second),
		DefaultRateLimit:    getEnvAsInt("DEFAULT_RATE_LIMIT", 10),
		DefaultDailyLimit:   models.Limit(getEnvAsInt("DEFAULT_DAILY_LIMIT", -1)),
		DefaultMonthlyLimit: models.Limit(getEnvAsInt("DEFAULT_MONTHLY_LIMIT", -1)),
		JWTSecret:           []byte(jwtSecret),
	}
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
