package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitescraper/internal/database"
	"github.com/nao1215/sitescraper/internal/model"
)

// seedHistory records one run for example.com and returns its ID.
func seedHistory(t *testing.T, dbDir string) string {
	t.Helper()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	result := model.NewCrawlResult("https://example.com", "example.com")
	result.StartedAt = at
	result.FinishedAt = at.Add(time.Minute)
	result.State = model.StateCompleted
	result.Visited = 3
	result.Duplicates = 1
	result.Records = append(result.Records,
		model.NewPageRecord("https://example.com", "Welcome home", at),
		model.NewPageRecord("https://example.com/about", "About us", at),
	)

	id, err := db.RecordRun(context.Background(), result, "/tmp/example_com.txt")
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func executeHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewHistoryCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestHistoryCmd tests listing recorded scrapes.
func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()

		out, err := executeHistory(t, "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No recorded scrapes found.") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("lists domains", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		seedHistory(t, dir)

		out, err := executeHistory(t, "--db-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Recorded domains (1)") || !strings.Contains(out, "example.com") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("lists runs of a domain", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		id := seedHistory(t, dir)

		out, err := executeHistory(t, "--db-dir", dir, "example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Scrapes of example.com (1)", id, "completed"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output %q", want, out)
			}
		}

		out, err = executeHistory(t, "--db-dir", dir, "other.org")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No recorded scrapes found for other.org") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("shows pages of a run", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		id := seedHistory(t, dir)

		out, err := executeHistory(t, "--db-dir", dir, "--run", id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{
			"Seed:     https://example.com",
			"Saved:    2 (duplicates: 1, failures: 0)",
			"Output:   /tmp/example_com.txt",
			"Pages (2):",
			"https://example.com/about",
			model.HashText("About us")[:12],
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output %q", want, out)
			}
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()

		_, err := executeHistory(t, "--db-dir", t.TempDir(), "--run", "nope")
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("too many arguments", func(t *testing.T) {
		t.Parallel()

		if _, err := executeHistory(t, "--db-dir", t.TempDir(), "a", "b"); err == nil {
			t.Error("expected error")
		}
	})
}
