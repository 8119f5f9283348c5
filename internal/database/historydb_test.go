package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitescraper/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newTestResult builds a finished crawl result for domain.
func newTestResult(domain string, started time.Time, pages ...string) *model.CrawlResult {
	result := model.NewCrawlResult("https://"+domain, domain)
	result.StartedAt = started
	result.FinishedAt = started.Add(3 * time.Second)
	result.State = model.StateCompleted
	result.Visited = len(pages) + 1
	result.Failures = 1
	for _, p := range pages {
		result.Records = append(result.Records, model.NewPageRecord("https://"+domain+p, "text of "+p, started.Add(time.Second)))
	}
	return result
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent-db")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when database does not exist")
		}
		if !strings.Contains(err.Error(), "history database not found") {
			t.Errorf("unexpected error %q", err.Error())
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "existing-db")
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		ctx := context.Background()
		id, err := db1.RecordRun(ctx, newTestResult("example.com", time.Now(), "/a"), "/tmp/out.txt")
		if err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
		_ = db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db2.Close()

		run, err := db2.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if run == nil {
			t.Error("expected run to persist")
		}
	})
}

// TestDefaultOptions tests the default options values.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true by default")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true by default")
	}
}

// TestRecordRun tests storing and reading back a run.
func TestRecordRun(t *testing.T) {
	t.Parallel()

	t.Run("stores run and pages", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		started := time.Date(2025, 5, 1, 10, 0, 0, 123456789, time.UTC)
		result := newTestResult("example.com", started, "/", "/about")
		result.Duplicates = 2

		id, err := db.RecordRun(ctx, result, "/home/u/website_scrapes/example_com.txt")
		if err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
		if len(id) != 36 {
			t.Errorf("expected uuid, got %q", id)
		}

		run, err := db.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if run.Seed != "https://example.com" || run.Domain != "example.com" {
			t.Errorf("unexpected run %+v", run)
		}
		if run.State != model.StateCompleted {
			t.Errorf("unexpected state %v", run.State)
		}
		if run.Visited != 3 || run.Saved != 2 || run.Duplicates != 2 || run.Failures != 1 {
			t.Errorf("unexpected counters %+v", run)
		}
		if !run.StartedAt.Equal(started) {
			t.Errorf("StartedAt = %v, expected %v", run.StartedAt, started)
		}
		if run.OutputPath != "/home/u/website_scrapes/example_com.txt" {
			t.Errorf("unexpected output path %q", run.OutputPath)
		}

		pages, err := db.ListPages(ctx, id)
		if err != nil {
			t.Fatalf("failed to list pages: %v", err)
		}
		if len(pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(pages))
		}
		if pages[0].URL != "https://example.com/" || pages[1].URL != "https://example.com/about" {
			t.Errorf("unexpected page order %+v", pages)
		}
		if pages[1].ContentHash != result.Records[1].ContentHash {
			t.Errorf("hash mismatch")
		}
		if pages[1].TextLength != len(result.Records[1].Text) {
			t.Errorf("TextLength = %d, expected %d", pages[1].TextLength, len(result.Records[1].Text))
		}
	})

	t.Run("stores interrupted run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		result := newTestResult("example.com", time.Now())
		result.State = model.StateInterrupted

		id, err := db.RecordRun(ctx, result, "")
		if err != nil {
			t.Fatalf("failed to record run: %v", err)
		}
		run, err := db.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if run.State != model.StateInterrupted {
			t.Errorf("expected interrupted, got %v", run.State)
		}
	})

	t.Run("cancelled context stores nothing", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := db.RecordRun(ctx, newTestResult("example.com", time.Now(), "/a"), ""); err == nil {
			t.Fatal("expected error for cancelled context")
		}
		runs, err := db.ListRuns(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %d", len(runs))
		}
	})

	t.Run("returns nil for unknown run", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		run, err := db.GetRun(context.Background(), "does-not-exist")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run != nil {
			t.Errorf("expected nil, got %+v", run)
		}
	})
}

// TestListRuns tests listing and filtering runs.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, domain := range []string{"a.example", "b.example", "a.example", "a.example"} {
		if _, err := db.RecordRun(ctx, newTestResult(domain, base.Add(time.Duration(i)*time.Hour)), ""); err != nil {
			t.Fatalf("failed to record run %d: %v", i, err)
		}
	}

	t.Run("lists all runs newest first", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 4 {
			t.Fatalf("expected 4 runs, got %d", len(runs))
		}
		for i := 1; i < len(runs); i++ {
			if runs[i].StartedAt.After(runs[i-1].StartedAt) {
				t.Errorf("runs not sorted newest first: %v after %v", runs[i].StartedAt, runs[i-1].StartedAt)
			}
		}
	})

	t.Run("filters by domain", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "a.example", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Errorf("expected 3 runs, got %d", len(runs))
		}
	})

	t.Run("applies limit", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "", 2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
	})

	t.Run("lists domains", func(t *testing.T) {
		t.Parallel()

		domains, err := db.ListDomains(ctx)
		if err != nil {
			t.Fatalf("failed to list domains: %v", err)
		}
		if len(domains) != 2 || domains[0] != "a.example" || domains[1] != "b.example" {
			t.Errorf("unexpected domains %v", domains)
		}
	})
}

// TestParseTimestamp tests timestamp parsing.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	testCases := []string{
		formatTimestamp(want),
		"2025-06-01T12:30:45Z",
		"2025-06-01 12:30:45",
		"2025-06-01T12:30:45",
	}
	for _, s := range testCases {
		t.Run(s, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(s); !got.Equal(want) {
				t.Errorf("parseTimestamp(%q) = %v, expected %v", s, got, want)
			}
		})
	}

	t.Run("invalid returns zero", func(t *testing.T) {
		t.Parallel()
		if got := parseTimestamp("yesterday"); !got.IsZero() {
			t.Errorf("expected zero time, got %v", got)
		}
	})

	t.Run("zero time formats as empty", func(t *testing.T) {
		t.Parallel()
		if s := formatTimestamp(time.Time{}); s != "" {
			t.Errorf("expected empty string, got %q", s)
		}
	})
}
