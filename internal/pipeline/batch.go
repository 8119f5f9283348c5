package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sitescraper/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of sites processed at once when
// WithConcurrency is not given.
const DefaultConcurrency = 2

// BatchProcessor runs one pipeline per target with bounded concurrency.
// Each crawl is still sequential; only different sites run in parallel.
type BatchProcessor struct {
	// factory builds a fresh pipeline for each target so that per-site
	// settings and crawl state never leak between sites.
	factory     func(target string) *Pipeline
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger for batch-level messages.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many targets run at the same time.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor that calls factory once per target.
func NewBatchProcessor(factory func(target string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every target and returns the jobs in target order.
//
// A failing target does not stop the others; its error is on Job.Err.
// Targets not yet started when ctx is cancelled are skipped and their
// slot in the returned slice is nil. Targets already running finish
// their finisher steps, so their partial results are saved.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) []*model.Job {
	jobs := make([]*model.Job, len(targets))
	bp.run(ctx, targets, func(job *model.Job, index int) {
		jobs[index] = job
	})
	return jobs
}

// ProcessBatchWithCallback is ProcessBatch with streaming: callback is
// invoked for each finished job, from the goroutine that ran it, with the
// index of its target. It must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(job *model.Job, index int),
) {
	bp.run(ctx, targets, callback)
}

func (bp *BatchProcessor) run(ctx context.Context, targets []string, done func(*model.Job, int)) {
	bp.logger.Debug("starting batch",
		"targets", len(targets),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if ctx.Err() != nil {
				bp.logger.Debug("skipping target after cancellation", "target", target)
				return nil
			}

			job := model.NewJob(target)
			if err := bp.factory(target).Execute(ctx, job); err != nil && job.Err != nil {
				bp.logger.Warn("scrape failed", "target", target, "error", err)
			}
			done(job, i)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return an error

	bp.logger.Debug("batch complete",
		"targets", len(targets),
		"elapsed", time.Since(start),
	)
}
