package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Run without a subcommand it behaves
// like "scrape" and prompts for the domain.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescraper",
		Short: "Scrape the visible text of a website into one document",
		Long: `sitescraper crawls a website breadth-first, stays on the start domain,
and writes the visible text of every distinct page into one document
under ~/website_scrapes.

Run without arguments to be prompted for a domain.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		RunE:          runScrapeCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	addScrapeFlags(cmd)

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
