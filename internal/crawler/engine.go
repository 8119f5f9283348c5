package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/nao1215/sitescraper/internal/extract"
	"github.com/nao1215/sitescraper/internal/fetch"
	"github.com/nao1215/sitescraper/internal/model"
)

const (
	// DefaultMaxPages is the page budget used when none is configured.
	DefaultMaxPages = 1000

	// DefaultDelay is the pause between two fetches.
	DefaultDelay = 500 * time.Millisecond
)

var (
	// ErrNoSeed is returned when Run is called with an empty seed URL.
	ErrNoSeed = errors.New("seed URL is required")

	// ErrInvalidSeed is returned when the seed URL has no scheme or host.
	ErrInvalidSeed = errors.New("seed URL must be absolute with a scheme and host")
)

// Engine crawls one domain breadth-first and collects the text of every page
// it reaches.
//
// An Engine holds only configuration. All crawl state (frontier, visited set,
// content hashes, records) lives inside a single Run call, so one Engine can
// run several crawls one after another, and each crawl is strictly sequential.
type Engine struct {
	fetcher   fetch.Fetcher
	extractor extract.Extractor
	maxPages  int
	delay     time.Duration
	filter    *PathFilter
	logger    *slog.Logger
	progress  func(model.Progress)
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPages sets the page budget: the crawl stops once this many distinct
// URLs have been attempted. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithDelay sets the politeness delay between fetches.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.delay = d
	}
}

// WithPathFilter restricts which in-scope links are followed.
func WithPathFilter(f *PathFilter) Option {
	return func(e *Engine) {
		e.filter = f
	}
}

// WithLogger sets the logger for per-page failures and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProgress registers a callback invoked once for every attempted URL.
// It runs on the crawl goroutine and must not block for long.
func WithProgress(fn func(model.Progress)) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// NewEngine creates an Engine that fetches with f and extracts with x.
func NewEngine(f fetch.Fetcher, x extract.Extractor, opts ...Option) *Engine {
	e := &Engine{
		fetcher:   f,
		extractor: x,
		maxPages:  DefaultMaxPages,
		delay:     DefaultDelay,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run crawls from seed until the frontier is empty, the page budget is used
// up, or ctx is cancelled.
//
// Cancellation is not an error: Run returns the records gathered so far with
// State set to model.StateInterrupted so the caller can still save them.
// An error is returned only for an unusable seed.
func (e *Engine) Run(ctx context.Context, seed string) (*model.CrawlResult, error) {
	if seed == "" {
		return nil, ErrNoSeed
	}
	u, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
	}

	c := &crawl{
		Engine:   e,
		domain:   u.Host,
		frontier: NewFrontier(seed),
		visited:  make(map[string]struct{}),
		hashes:   make(map[string]struct{}),
		throttle: NewThrottle(e.delay),
		result:   model.NewCrawlResult(seed, u.Host),
	}
	return c.run(ctx), nil
}

// crawl is the mutable state of one Run.
type crawl struct {
	*Engine

	domain   string
	frontier *Frontier
	visited  map[string]struct{}
	hashes   map[string]struct{}
	throttle *Throttle
	result   *model.CrawlResult
}

func (c *crawl) run(ctx context.Context) *model.CrawlResult {
	c.result.StartedAt = time.Now()
	c.result.State = model.StateRunning
	c.logger.Debug("crawl started", "seed", c.result.Seed, "domain", c.domain, "max_pages", c.maxPages)

	state := model.StateCompleted
	for c.frontier.Len() > 0 && len(c.visited) < c.maxPages {
		if ctx.Err() != nil {
			state = model.StateInterrupted
			break
		}

		raw, _ := c.frontier.Pop()
		pageURL := Normalize(raw)
		if _, seen := c.visited[pageURL]; seen {
			continue
		}
		c.visited[pageURL] = struct{}{}

		if err := c.throttle.Wait(ctx); err != nil {
			state = model.StateInterrupted
			break
		}

		ok := c.visit(ctx, pageURL)
		c.throttle.Done()
		if !ok {
			state = model.StateInterrupted
			break
		}
	}

	c.result.Visited = len(c.visited)
	c.result.State = state
	c.result.FinishedAt = time.Now()
	c.logger.Debug("crawl finished",
		"seed", c.result.Seed,
		"state", state.String(),
		"visited", c.result.Visited,
		"saved", c.result.Saved(),
		"failures", c.result.Failures,
	)
	return c.result
}

// visit processes one URL that has just been added to the visited set.
// It returns false when ctx was cancelled while the page was being fetched;
// in that case nothing about the page is recorded.
func (c *crawl) visit(ctx context.Context, pageURL string) bool {
	resp, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		c.result.Failures++
		c.logFetchError(pageURL, err)
		c.report(pageURL, model.OutcomeFetchFailed, err)
		return true
	}

	if !resp.IsHTML() {
		c.result.Skipped++
		c.logger.Debug("skipping non-HTML response", "url", pageURL, "content_type", resp.ContentType)
		c.report(pageURL, model.OutcomeNotHTML, nil)
		return true
	}

	page, err := c.extractor.Extract(resp.Body, pageURL)
	if err != nil {
		c.result.Failures++
		c.logger.Warn("failed to parse page", "url", pageURL, "error", err)
		c.report(pageURL, model.OutcomeParseFailed, err)
		return true
	}

	if model.IsBlank(page.Text) {
		c.result.Skipped++
		c.report(pageURL, model.OutcomeEmpty, nil)
		return true
	}

	outcome := model.OutcomeSaved
	hash := model.HashText(page.Text)
	if _, dup := c.hashes[hash]; dup {
		c.result.Duplicates++
		outcome = model.OutcomeDuplicate
	} else {
		c.hashes[hash] = struct{}{}
		c.result.Records = append(c.result.Records, model.NewPageRecord(pageURL, page.Text, resp.FetchedAt))
	}

	c.enqueue(page.Links)
	c.report(pageURL, outcome, nil)
	return true
}

// enqueue appends every in-scope, unvisited link to the frontier tail.
func (c *crawl) enqueue(links []string) {
	for _, link := range links {
		normalized := Normalize(link)
		if !InScope(normalized, c.domain) {
			continue
		}
		if _, seen := c.visited[normalized]; seen {
			continue
		}
		if !c.filter.Allow(normalized) {
			continue
		}
		c.frontier.Push(normalized)
	}
}

func (c *crawl) logFetchError(pageURL string, err error) {
	attrs := []any{"url", pageURL, "error", err}
	var fe *fetch.Error
	if errors.As(err, &fe) {
		attrs = append(attrs, "kind", fe.Kind.String())
		if fe.StatusCode != 0 {
			attrs = append(attrs, "status", fe.StatusCode)
		}
	}
	c.logger.Warn("failed to fetch page", attrs...)
}

func (c *crawl) report(pageURL string, outcome model.Outcome, err error) {
	if c.progress == nil {
		return
	}
	c.progress(model.Progress{
		URL:     pageURL,
		Outcome: outcome,
		Visited: len(c.visited),
		Saved:   c.result.Saved(),
		Queued:  c.frontier.Len(),
		Err:     err,
	})
}
