// Package commands implements the habit-configure subcommands.
package commands

import (
	"fmt"

	"github.com/pequenospassos/habit-api/internal/config"
	"github.com/pequenospassos/habit-api/internal/storage"
)

// openBackend opens the configured storage backend for CLI use
func openBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		return storage.NewPostgresBackend(cfg.DatabaseURL)
	case config.StorageBackendRedis:
		return storage.NewRedisBackend(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
