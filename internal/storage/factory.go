package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mselser95/binarybot/pkg/config"
)

// New builds the Repository selected by cfg.StorageMode (spec.md §6
// "swappable postgres/console implementations").
func New(cfg *config.Config, logger *zap.Logger) (Repository, error) {
	switch cfg.StorageMode {
	case "postgres":
		return NewPostgresRepository(&PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
	case "console":
		return NewConsoleRepository(logger), nil
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.StorageMode)
	}
}
