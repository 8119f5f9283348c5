package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitescraper/internal/model"
)

// FileName is the name of the history database file inside its directory.
const FileName = "sitescraper.db"

// HistoryDB records finished scrapes in SQLite.
// It is an audit log: nothing in it is ever used to resume a crawl.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// With CreateIfNotExists false, a missing database is an error.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s (run a scrape with --history first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; batch scrapes share this one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		domain TEXT NOT NULL,
		state TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		visited INTEGER NOT NULL DEFAULT 0,
		saved INTEGER NOT NULL DEFAULT 0,
		duplicates INTEGER NOT NULL DEFAULT 0,
		failures INTEGER NOT NULL DEFAULT 0,
		output_path TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(domain);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		text_length INTEGER NOT NULL,
		fetched_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_hash ON pages(content_hash);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one recorded scrape.
type Run struct {
	ID         string
	Seed       string
	Domain     string
	State      model.CrawlState
	StartedAt  time.Time
	FinishedAt time.Time
	Visited    int
	Saved      int
	Duplicates int
	Failures   int
	OutputPath string
}

// PageEntry is one saved page of a recorded run. The text itself lives in
// the output document; only its hash and length are kept here.
type PageEntry struct {
	RunID       string
	URL         string
	ContentHash string
	TextLength  int
	FetchedAt   time.Time
}

// RecordRun stores result and its pages in one transaction and returns the
// new run ID.
func (h *HistoryDB) RecordRun(ctx context.Context, result *model.CrawlResult, outputPath string) (string, error) {
	id := uuid.NewString()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, seed, domain, state, started_at, finished_at, visited, saved, duplicates, failures, output_path)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		result.Seed,
		result.Domain,
		result.State.String(),
		formatTimestamp(result.StartedAt),
		formatTimestamp(result.FinishedAt),
		result.Visited,
		result.Saved(),
		result.Duplicates,
		result.Failures,
		outputPath,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (run_id, position, url, content_hash, text_length, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range result.Records {
		if _, err := stmt.ExecContext(ctx, id, i, record.URL, record.ContentHash, len(record.Text), formatTimestamp(record.FetchedAt)); err != nil {
			return "", fmt.Errorf("failed to insert page %s: %w", record.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

const runColumns = `id, seed, domain, state, started_at, finished_at, visited, saved, duplicates, failures, output_path`

// GetRun returns the run with the given ID, or nil if there is none.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := h.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns recorded runs, newest first. An empty domain lists every
// domain; limit <= 0 means no limit.
func (h *HistoryDB) ListRuns(ctx context.Context, domain string, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	args := make([]any, 0)

	if domain != "" {
		query += " AND domain = ?"
		args = append(args, domain)
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListDomains returns every domain with at least one recorded run.
func (h *HistoryDB) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT domain FROM runs ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}
	return domains, rows.Err()
}

// ListPages returns the saved pages of a run in the order they were saved.
func (h *HistoryDB) ListPages(ctx context.Context, runID string) ([]PageEntry, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT run_id, url, content_hash, text_length, fetched_at
	FROM pages
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []PageEntry
	for rows.Next() {
		var (
			page      PageEntry
			fetchedAt sql.NullString
		)
		if err := rows.Scan(&page.RunID, &page.URL, &page.ContentHash, &page.TextLength, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		page.FetchedAt = parseTimestamp(fetchedAt.String)
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run                   Run
		state                 string
		startedAt, finishedAt string
		outputPath            sql.NullString
	)
	err := row.Scan(
		&run.ID,
		&run.Seed,
		&run.Domain,
		&state,
		&startedAt,
		&finishedAt,
		&run.Visited,
		&run.Saved,
		&run.Duplicates,
		&run.Failures,
		&outputPath,
	)
	if err != nil {
		return nil, err
	}

	if run.State, err = model.ParseCrawlState(state); err != nil {
		return nil, err
	}
	run.StartedAt = parseTimestamp(startedAt)
	run.FinishedAt = parseTimestamp(finishedAt)
	run.OutputPath = outputPath.String
	return &run, nil
}

// storedLayout is RFC 3339 with fixed-width nanoseconds, so stored UTC
// timestamps sort correctly as text.
const storedLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	storedLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp tries every known format and returns the zero time if none
// matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
