package config

import (
	"os"
	"testing"
	"time"
)

func TestConfig_MessageBufferSize(t *testing.T) {
	t.Run("custom_buffer_size", func(t *testing.T) {
		os.Setenv("WS_MESSAGE_BUFFER_SIZE", "500")
		t.Cleanup(func() {
			os.Unsetenv("WS_MESSAGE_BUFFER_SIZE")
		})

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.WSMessageBufferSize != 500 {
			t.Errorf("expected WSMessageBufferSize to be 500, got %d", cfg.WSMessageBufferSize)
		}
	})

	t.Run("default_buffer_size_is_10000", func(t *testing.T) {
		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.WSMessageBufferSize != 10000 {
			t.Errorf("expected default WSMessageBufferSize to be 10000, got %d", cfg.WSMessageBufferSize)
		}
	})
}

func TestConfig_NegativeValues(t *testing.T) {
	t.Run("negative_max_order_age_rejected", func(t *testing.T) {
		cfg := &Config{
			HTTPPort:         "8080",
			FeedWSURL:        "wss://feed.internal/market",
			MaxOrderAge:      -1 * time.Second,
			MaxPriceDistance: 0.03,
			StorageMode:      "console",
			MetricBufferSize: 2000,
		}

		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected error for negative max order age, got nil")
		}
	})

	t.Run("negative_metric_buffer_rejected", func(t *testing.T) {
		cfg := &Config{
			HTTPPort:         "8080",
			FeedWSURL:        "wss://feed.internal/market",
			MaxOrderAge:      3 * time.Second,
			MaxPriceDistance: 0.03,
			StorageMode:      "console",
			MetricBufferSize: -1,
		}

		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected error for negative metric buffer size, got nil")
		}
	})
}

func TestConfig_StorageModeValidation(t *testing.T) {
	t.Run("invalid_storage_mode_rejected", func(t *testing.T) {
		cfg := &Config{
			HTTPPort:         "8080",
			FeedWSURL:        "wss://feed.internal/market",
			MaxOrderAge:      3 * time.Second,
			MaxPriceDistance: 0.03,
			StorageMode:      "s3",
			MetricBufferSize: 2000,
		}

		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected error for invalid storage mode, got nil")
		}

		expectedMsg := `STORAGE_MODE must be 'postgres' or 'console', got "s3"`
		if err.Error() != expectedMsg {
			t.Errorf("expected error %q, got %q", expectedMsg, err.Error())
		}
	})

	t.Run("postgres_storage_mode_allowed", func(t *testing.T) {
		os.Setenv("STORAGE_MODE", "postgres")
		t.Cleanup(func() {
			os.Unsetenv("STORAGE_MODE")
		})

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.StorageMode != "postgres" {
			t.Errorf("expected StorageMode to be postgres, got %s", cfg.StorageMode)
		}
	})
}

func TestConfig_DefaultStopDeadline(t *testing.T) {
	t.Run("default_stop_deadline_is_5s", func(t *testing.T) {
		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.StopDeadline != 5*time.Second {
			t.Errorf("expected default StopDeadline to be 5s, got %v", cfg.StopDeadline)
		}
	})
}
