package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/scamguard/internal/config"
)

//go:embed templates/scamguard.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new scamguard configuration file",
		Long: `Initialize creates a new .scamguard.yaml configuration file in the current directory.

The generated file includes:
- Provider endpoints and timeouts
- Classifier model and quota settings
- Scan polling and server settings
- Commented placeholders for credentials

Examples:
  # Create .scamguard.yaml in current directory
  scamguard init

  # Create config file at a specific path
  scamguard init -o ~/.config/scamguard/config.yaml

  # Force overwrite existing file
  scamguard init -f`,
		RunE: runInitCmd,
	}

	// Shadows the root --output flag.
	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/scamguard.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The file may hold API keys.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - API keys (or set them in the environment)")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Provider endpoints, timeouts and headers")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Classifier model and minimum balance")

	return nil
}
