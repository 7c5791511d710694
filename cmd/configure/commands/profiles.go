package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pequenospassos/habit-api/internal/config"
	"github.com/pequenospassos/habit-api/internal/logger"
	"github.com/pequenospassos/habit-api/internal/storage"
)

// NewProfilesCmd creates the profiles command group
func NewProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage user profiles",
		Long:  "List profiles and switch the active one",
	}

	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesSwitchCmd())

	return cmd
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeBackend, err := openService()
			if err != nil {
				return err
			}
			defer closeBackend()

			profiles := svc.AvailableProfiles(context.Background())
			if len(profiles) == 0 {
				fmt.Println("No profiles registered")
				return nil
			}

			current := svc.CurrentProfile()
			fmt.Println("Profiles:")
			for _, p := range profiles {
				marker := " "
				if p == current {
					marker = "*"
				}
				fmt.Printf("  %s %s\n", marker, p)
			}
			return nil
		},
	}
}

func newProfilesSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <name>",
		Short: "Switch the active profile, creating it if unknown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeBackend, err := openService()
			if err != nil {
				return err
			}
			defer closeBackend()

			svc.SetCurrentProfile(context.Background(), args[0])
			fmt.Printf("Active profile: %s\n", args[0])
			return nil
		},
	}
}

// openService loads config and builds the storage service over the
// configured backend
func openService() (*storage.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage backend: %w", err)
	}

	zapLogger, err := logger.NewDevelopmentLogger(false)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	closeBackend := func() {
		if err := backend.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close backend: %v\n", err)
		}
	}
	return storage.NewService(backend, zapLogger), closeBackend, nil
}
