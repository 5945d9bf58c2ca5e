// Package config loads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the complete router process configuration. Policy content lives
// in the routing table and endpoint catalog files this config points at.
type Config struct {
	// TablePath is the routing table YAML file.
	TablePath string

	// CatalogPath is the endpoint catalog YAML file.
	CatalogPath string

	// WatchTable enables hot reload of the routing table file.
	WatchTable bool

	// FailureThreshold is the consecutive-failure count that degrades an
	// endpoint.
	FailureThreshold int

	// RecordHistory is the size of the in-memory routing record window.
	RecordHistory int

	// HealthCheckInterval is the period between health probe sweeps.
	HealthCheckInterval time.Duration

	// SessionBudgetUSD is the default per-session cost allowance; zero
	// means unlimited.
	SessionBudgetUSD float64

	// LogLevel is the zap log level (debug, info, warn, error).
	LogLevel string
}

// New loads configuration from the environment, reading a .env file first
// when one exists.
func New() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		TablePath:           getEnv("PATCHPANEL_TABLE", "routing_table.yaml"),
		CatalogPath:         getEnv("PATCHPANEL_CATALOG", "endpoints.yaml"),
		WatchTable:          getEnvAsBool("PATCHPANEL_WATCH_TABLE", true),
		FailureThreshold:    getEnvAsInt("PATCHPANEL_FAILURE_THRESHOLD", 3),
		RecordHistory:       getEnvAsInt("PATCHPANEL_RECORD_HISTORY", 4096),
		HealthCheckInterval: getEnvAsDuration("PATCHPANEL_HEALTH_INTERVAL", 30*time.Second),
		SessionBudgetUSD:    getEnvAsFloat("PATCHPANEL_SESSION_BUDGET_USD", 0),
		LogLevel:            getEnv("PATCHPANEL_LOG_LEVEL", "info"),
	}
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
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
