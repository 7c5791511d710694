package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pequenospassos/habit-api/internal/models"
	"github.com/pequenospassos/habit-api/internal/storage"
)

// profileExport is the YAML document written by the export command
type profileExport struct {
	Profile      string               `yaml:"profile"`
	Tasks        []*models.Task       `yaml:"tasks"`
	Categories   []string             `yaml:"categories"`
	Reflections  []*models.Reflection `yaml:"reflections"`
	Gamification models.Profile       `yaml:"gamification"`
	Streak       models.Streak        `yaml:"streak"`
	Medals       models.DailyMedals   `yaml:"medals"`
	Achievements []string             `yaml:"achievements"`
}

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <profile>",
		Short: "Export a profile's data as YAML",
		Long:  "Dump a profile's tasks, reflections and gamification state as a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := args[0]

			svc, closeBackend, err := openService()
			if err != nil {
				return err
			}
			defer closeBackend()

			ctx := context.Background()
			found := false
			for _, p := range svc.AvailableProfiles(ctx) {
				if p == profile {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("unknown profile %q", profile)
			}

			view := svc.View(profile)
			export := profileExport{
				Profile:      profile,
				Gamification: models.NewProfile(),
			}
			view.Get(ctx, storage.KeyTasksData, &export.Tasks)
			view.Get(ctx, storage.KeyTasksCategories, &export.Categories)
			view.Get(ctx, storage.KeyReflections, &export.Reflections)
			view.Get(ctx, storage.KeyGamification, &export.Gamification)
			view.Get(ctx, storage.KeyActivityStreak, &export.Streak)
			view.Get(ctx, storage.KeyDailyMedals, &export.Medals)
			view.Get(ctx, storage.KeyAchievements, &export.Achievements)

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(export); err != nil {
				return fmt.Errorf("failed to encode export: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
