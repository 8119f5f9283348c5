package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/sitescraper/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/sitescraper.yaml
var configTemplate embed.FS

const templatePath = "templates/sitescraper.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sitescraper configuration file",
		Long: `Init writes a commented .sitescraper configuration file to the current directory.

The file sets defaults for every site (delay, page limit, User-Agent) and shows
how to give a single site its own headers and ignore/follow patterns.

Examples:
  # Create .sitescraper in the current directory
  sitescraper init

  # Write the file somewhere else
  sitescraper init -o ~/.config/sitescraper/config.yaml

  # Replace an existing file
  sitescraper init --force`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().Bool("force", false,
		"Overwrite an existing configuration file")

	return cmd
}

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
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit it to set per-site options such as:")
	fmt.Fprintln(out, "  - request delay and page limit")
	fmt.Fprintln(out, "  - extra headers (cookies, Accept-Language)")
	fmt.Fprintln(out, "  - URL path patterns to ignore or follow")
	return nil
}
