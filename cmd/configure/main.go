package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pequenospassos/habit-api/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "habit-configure",
		Short: "Configuration tool for the habit API",
		Long:  "CLI tool for managing profiles, exporting data and testing connectivity",
	}

	rootCmd.AddCommand(commands.NewProfilesCmd())
	rootCmd.AddCommand(commands.NewExportCmd())
	rootCmd.AddCommand(commands.NewTestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
