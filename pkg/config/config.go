package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds process-level configuration: everything not specific to one
// bot's strategy parameters (those live in StrategyParams, see params.go).
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Market feed
	FeedWSURL               string
	WSDialTimeout           time.Duration
	WSPongTimeout           time.Duration
	WSPingInterval          time.Duration
	WSReconnectInitialDelay time.Duration
	WSReconnectMaxDelay     time.Duration
	WSReconnectBackoffMult  float64
	WSMessageBufferSize     int

	// Bot runtime
	MaxOrderAge         time.Duration
	MaxPriceDistance    float64
	OrderSubmitDeadline time.Duration
	StopDeadline        time.Duration
	StaleOrderScanEvery time.Duration

	// Strategy metric telemetry buffer (fire-and-forget, drops on overflow)
	MetricBufferSize int

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string

	// Tick-size cache (markets.TickCache)
	TickCacheTTL time.Duration
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		FeedWSURL:               getEnvOrDefault("FEED_WS_URL", "wss://feed.internal/market"),
		WSDialTimeout:           getDurationOrDefault("WS_DIAL_TIMEOUT", 10*time.Second),
		WSPongTimeout:           getDurationOrDefault("WS_PONG_TIMEOUT", 15*time.Second),
		WSPingInterval:          getDurationOrDefault("WS_PING_INTERVAL", 10*time.Second),
		WSReconnectInitialDelay: getDurationOrDefault("WS_RECONNECT_INITIAL_DELAY", 1*time.Second),
		WSReconnectMaxDelay:     getDurationOrDefault("WS_RECONNECT_MAX_DELAY", 30*time.Second),
		WSReconnectBackoffMult:  getFloat64OrDefault("WS_RECONNECT_BACKOFF_MULTIPLIER", 2.0),
		WSMessageBufferSize:     getIntOrDefault("WS_MESSAGE_BUFFER_SIZE", 10000),

		MaxOrderAge:         getDurationOrDefault("MAX_ORDER_AGE", 3*time.Second),
		MaxPriceDistance:    getFloat64OrDefault("MAX_PRICE_DISTANCE", 0.03),
		OrderSubmitDeadline: getDurationOrDefault("ORDER_SUBMIT_DEADLINE", 10*time.Second),
		StopDeadline:        getDurationOrDefault("BOT_STOP_DEADLINE", 5*time.Second),
		StaleOrderScanEvery: getDurationOrDefault("STALE_ORDER_SCAN_INTERVAL", 5*time.Second),

		MetricBufferSize: getIntOrDefault("METRIC_BUFFER_SIZE", 2000),

		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "binarybot"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "binarybot123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "binarybot"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		TickCacheTTL: getDurationOrDefault("TICK_CACHE_TTL", 10*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT cannot be empty")
	}

	if c.FeedWSURL == "" {
		return errors.New("FEED_WS_URL cannot be empty")
	}

	if c.MaxOrderAge <= 0 {
		return fmt.Errorf("MAX_ORDER_AGE must be positive, got %s", c.MaxOrderAge)
	}

	if c.MaxPriceDistance <= 0 {
		return fmt.Errorf("MAX_PRICE_DISTANCE must be positive, got %f", c.MaxPriceDistance)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	if c.MetricBufferSize <= 0 {
		return fmt.Errorf("METRIC_BUFFER_SIZE must be positive, got %d", c.MetricBufferSize)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

