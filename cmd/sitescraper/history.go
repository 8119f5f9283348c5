package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitescraper/internal/config"
	"github.com/nao1215/sitescraper/internal/database"
	"github.com/spf13/cobra"
)

// ErrRunNotFound is returned when --run names an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

const historyTimeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Show recorded scrapes",
		Long: `History lists the scrapes recorded with "sitescraper scrape --history".

Without arguments it lists every domain in the history database. With a
domain it lists that domain's runs, newest first. With --run it shows the
pages saved by one run.

Examples:
  # Domains with recorded runs
  sitescraper history

  # Runs for one domain
  sitescraper history example.com

  # Pages saved by a run
  sitescraper history --run 6f1c2e7a-0d7b-4d7e-9a63-1f0b8c1d2e3f`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("run", "", "Show the pages saved by this run ID")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	runID, err := cmd.Flags().GetString("run")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	switch {
	case runID != "":
		return showRun(ctx, out, db, runID)
	case len(args) == 1:
		return listRuns(ctx, out, db, args[0], limit)
	default:
		return listDomains(ctx, out, db)
	}
}

func listDomains(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	domains, err := db.ListDomains(ctx)
	if err != nil {
		return err
	}

	if len(domains) == 0 {
		fmt.Fprintln(out, "No recorded scrapes found.")
		fmt.Fprintln(out, "\nUse 'sitescraper scrape --history <domain>' to record one.")
		return nil
	}

	fmt.Fprintf(out, "Recorded domains (%d):\n\n", len(domains))
	for _, domain := range domains {
		fmt.Fprintf(out, "  %s\n", domain)
	}
	fmt.Fprintln(out, "\nUse 'sitescraper history <domain>' to list its runs.")
	return nil
}

func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, domain string, limit int) error {
	runs, err := db.ListRuns(ctx, domain, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No recorded scrapes found for %s\n", domain)
		return nil
	}

	fmt.Fprintf(out, "Scrapes of %s (%d):\n\n", domain, len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %-11s  %7s  %5s  %5s  %6s\n",
		"Run ID", "Started", "State", "Visited", "Saved", "Dups", "Failed")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 103))
	for _, run := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %-11s  %7d  %5d  %5d  %6d\n",
			run.ID,
			run.StartedAt.Local().Format(historyTimeLayout),
			run.State,
			run.Visited,
			run.Saved,
			run.Duplicates,
			run.Failures,
		)
	}
	fmt.Fprintln(out, "\nUse 'sitescraper history --run <id>' to list the pages of a run.")
	return nil
}

func showRun(ctx context.Context, out io.Writer, db *database.HistoryDB, runID string) error {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	pages, err := db.ListPages(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run %s\n", run.ID)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Seed:     %s\n", run.Seed)
	fmt.Fprintf(out, "State:    %s\n", run.State)
	fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(historyTimeLayout))
	fmt.Fprintf(out, "Finished: %s\n", run.FinishedAt.Local().Format(historyTimeLayout))
	fmt.Fprintf(out, "Visited:  %d\n", run.Visited)
	fmt.Fprintf(out, "Saved:    %d (duplicates: %d, failures: %d)\n", run.Saved, run.Duplicates, run.Failures)
	if run.OutputPath != "" {
		fmt.Fprintf(out, "Output:   %s\n", run.OutputPath)
	}

	if len(pages) == 0 {
		return nil
	}
	fmt.Fprintf(out, "\nPages (%d):\n", len(pages))
	for _, page := range pages {
		fmt.Fprintf(out, "  %s  %6d  %s\n", page.ContentHash[:min(12, len(page.ContentHash))], page.TextLength, page.URL)
	}
	return nil
}
