package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/sitescraper/internal/crawler"
	"github.com/nao1215/sitescraper/internal/extract"
	"github.com/nao1215/sitescraper/internal/fetch"
	"github.com/nao1215/sitescraper/internal/model"
	"github.com/nao1215/sitescraper/internal/report"
)

// ErrNoResult is returned by steps that need a crawl result when the crawl
// step did not produce one.
var ErrNoResult = errors.New("job has no crawl result")

// Crawler runs one crawl. *crawler.Engine implements it.
type Crawler interface {
	Run(ctx context.Context, seed string) (*model.CrawlResult, error)
}

// Recorder stores a finished run. *database.HistoryDB implements it.
type Recorder interface {
	RecordRun(ctx context.Context, result *model.CrawlResult, outputPath string) (string, error)
}

// CrawlStep crawls the job's target and stores the result on the job.
type CrawlStep struct {
	crawler Crawler
	logger  *slog.Logger
}

// NewCrawlStep creates a CrawlStep around c.
func NewCrawlStep(c Crawler, logger *slog.Logger) *CrawlStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlStep{crawler: c, logger: logger}
}

// Name returns "crawl".
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do runs the crawl. An interrupted crawl is not an error; its state is
// carried by the result.
func (s *CrawlStep) Do(ctx context.Context, job *model.Job) error {
	result, err := s.crawler.Run(ctx, job.Target)
	if err != nil {
		return err
	}
	job.Result = result

	s.logger.Info("crawl finished",
		"seed", result.Seed,
		"state", result.State.String(),
		"visited", result.Visited,
		"saved", result.Saved(),
		"duplicates", result.Duplicates,
		"failures", result.Failures,
	)
	return nil
}

// WriteStep saves the crawl result as a document in the output directory.
// It runs even after cancellation so that an interrupted crawl is kept.
type WriteStep struct {
	dir      string
	format   report.Format
	jsonOpts []report.JSONWriterOption
	logger   *slog.Logger
}

// NewWriteStep creates a WriteStep writing format documents into dir.
// jsonOpts only apply to the JSON format.
func NewWriteStep(dir string, format report.Format, logger *slog.Logger, jsonOpts ...report.JSONWriterOption) *WriteStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WriteStep{dir: dir, format: format, jsonOpts: jsonOpts, logger: logger}
}

// Name returns "write".
func (s *WriteStep) Name() string {
	return "write"
}

// RunsAfterCancel implements Finisher.
func (s *WriteStep) RunsAfterCancel() bool {
	return true
}

// Do writes job.Result and records the file path on the job.
func (s *WriteStep) Do(_ context.Context, job *model.Job) error {
	if job.Result == nil {
		return ErrNoResult
	}
	path, err := report.Save(s.dir, job.Result, s.format, s.jsonOpts...)
	if err != nil {
		return err
	}
	job.OutputPath = path

	s.logger.Info("document written", "path", path, "format", string(s.format))
	return nil
}

// HistoryStep records the run in the history database.
// A failure here is logged and swallowed: the document is already saved
// and losing one history row is not worth failing the scrape.
type HistoryStep struct {
	recorder Recorder
	logger   *slog.Logger
}

// NewHistoryStep creates a HistoryStep.
func NewHistoryStep(r Recorder, logger *slog.Logger) *HistoryStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStep{recorder: r, logger: logger}
}

// Name returns "history".
func (s *HistoryStep) Name() string {
	return "history"
}

// RunsAfterCancel implements Finisher.
func (s *HistoryStep) RunsAfterCancel() bool {
	return true
}

// Do stores job.Result and sets job.RunID.
func (s *HistoryStep) Do(ctx context.Context, job *model.Job) error {
	if job.Result == nil {
		return ErrNoResult
	}
	id, err := s.recorder.RecordRun(ctx, job.Result, job.OutputPath)
	if err != nil {
		s.logger.Warn("failed to record run", "seed", job.Result.Seed, "error", err)
		return nil
	}
	job.RunID = id
	return nil
}

// ScrapeConfig holds everything needed to build the pipeline for one site.
type ScrapeConfig struct {
	MaxPages       int
	Delay          time.Duration
	Timeout        time.Duration
	UserAgent      string
	MaxBodySize    int64
	Headers        map[string]string
	IgnorePatterns []string
	FollowPatterns []string

	// Proxy routes every request through SOCKS5 when set.
	Proxy *fetch.Proxy

	OutputDir string
	Format    report.Format

	// Version is stamped into JSON documents.
	Version string

	// History records the run when set.
	History Recorder

	// Progress is called for every attempted URL.
	Progress func(model.Progress)

	Logger *slog.Logger
}

// NewScrapePipeline builds the standard crawl, write and (optional)
// history pipeline for cfg.
func NewScrapePipeline(cfg ScrapeConfig, opts ...Option) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	fetchOpts := []fetch.Option{
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithHeaders(cfg.Headers),
		fetch.WithLogger(logger),
	}
	if cfg.Proxy != nil {
		fetchOpts = append(fetchOpts, fetch.WithProxy(cfg.Proxy))
	}

	engineOpts := []crawler.Option{
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithDelay(cfg.Delay),
		crawler.WithLogger(logger),
		crawler.WithProgress(cfg.Progress),
	}
	if len(cfg.IgnorePatterns) > 0 || len(cfg.FollowPatterns) > 0 {
		engineOpts = append(engineOpts, crawler.WithPathFilter(crawler.NewPathFilter(cfg.IgnorePatterns, cfg.FollowPatterns)))
	}

	engine := crawler.NewEngine(
		fetch.NewHTTPFetcher(fetchOpts...),
		extract.NewHTMLExtractor(),
		engineOpts...,
	)

	var jsonOpts []report.JSONWriterOption
	if cfg.Version != "" {
		jsonOpts = append(jsonOpts, report.WithVersion(cfg.Version))
	}

	p := New(append([]Option{WithLogger(logger)}, opts...)...)
	p.AddSteps(
		NewCrawlStep(engine, logger),
		NewWriteStep(cfg.OutputDir, cfg.Format, logger, jsonOpts...),
	)
	if cfg.History != nil {
		p.AddStep(NewHistoryStep(cfg.History, logger))
	}
	return p
}
