package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pequenospassos/habit-api/internal/config"
	"github.com/pequenospassos/habit-api/internal/queue"
	"github.com/pequenospassos/habit-api/internal/storage"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test connectivity",
		Long:  "Verify that the storage backend and RabbitMQ are reachable with the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Printf("Testing storage backend (%s)...\n", cfg.StorageBackend)
			backend, err := openBackend(cfg)
			if err != nil {
				return fmt.Errorf("storage backend unreachable: %w", err)
			}
			defer func() {
				if err := backend.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close backend: %v\n", err)
				}
			}()

			if _, err := backend.Load(context.Background(), storage.KeyCurrentProfile); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("storage backend probe failed: %w", err)
			}
			fmt.Println("✓ Storage backend is reachable")

			fmt.Println("Testing RabbitMQ...")
			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("RabbitMQ unreachable: %w", err)
			}
			defer func() {
				if err := jobQueue.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close RabbitMQ connection: %v\n", err)
				}
			}()

			if err := jobQueue.HealthCheck(context.Background()); err != nil {
				return fmt.Errorf("RabbitMQ health check failed: %w", err)
			}
			fmt.Println("✓ RabbitMQ is reachable")

			return nil
		},
	}
}
