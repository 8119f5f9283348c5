package model

import (
	"fmt"
	"time"
)

// CrawlState is the lifecycle state of a single crawl.
//
//	Idle -> Running -> Completed
//	                -> Interrupted
type CrawlState int

const (
	// StateIdle is the state of a crawl that has not started yet.
	StateIdle CrawlState = iota

	// StateRunning is the state while the engine is draining the frontier.
	StateRunning

	// StateCompleted means the frontier was exhausted or the page budget reached.
	StateCompleted

	// StateInterrupted means the crawl was cancelled before it could complete.
	// The records gathered up to that point are still valid output.
	StateInterrupted
)

// String returns the lower-case name of the state.
func (s CrawlState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so states serialize by name.
func (s CrawlState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CrawlState) UnmarshalText(text []byte) error {
	parsed, err := ParseCrawlState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseCrawlState converts a state name back into a CrawlState.
func ParseCrawlState(name string) (CrawlState, error) {
	switch name {
	case "idle":
		return StateIdle, nil
	case "running":
		return StateRunning, nil
	case "completed":
		return StateCompleted, nil
	case "interrupted":
		return StateInterrupted, nil
	default:
		return StateIdle, fmt.Errorf("unknown crawl state %q", name)
	}
}

// Outcome describes what happened to one dequeued URL.
type Outcome int

const (
	// OutcomeSaved means a new PageRecord was created.
	OutcomeSaved Outcome = iota

	// OutcomeDuplicate means the text hash was already seen; links were still followed.
	OutcomeDuplicate

	// OutcomeEmpty means the page produced no visible text; links were not followed.
	OutcomeEmpty

	// OutcomeNotHTML means the response was not an HTML document.
	OutcomeNotHTML

	// OutcomeFetchFailed means the fetch returned a timeout, HTTP or network error.
	OutcomeFetchFailed

	// OutcomeParseFailed means the extractor could not process the body.
	OutcomeParseFailed
)

// String returns a short label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeEmpty:
		return "empty"
	case OutcomeNotHTML:
		return "not-html"
	case OutcomeFetchFailed:
		return "fetch-failed"
	case OutcomeParseFailed:
		return "parse-failed"
	default:
		return "unknown"
	}
}

// Progress is reported once per attempted URL while a crawl runs.
type Progress struct {
	// URL is the normalized URL that was attempted.
	URL string

	// Outcome is what happened to it.
	Outcome Outcome

	// Visited is the size of the visited set after this URL was added.
	Visited int

	// Saved is the number of records accumulated so far.
	Saved int

	// Queued is the number of entries left in the frontier, duplicates included.
	Queued int

	// Err holds the fetch or parse error for failed outcomes.
	Err error
}

// CrawlResult is everything a single crawl produced.
// The engine returns it for both completed and interrupted crawls.
type CrawlResult struct {
	// Seed is the URL the crawl started from, as given by the user.
	Seed string `json:"seed"`

	// Domain is the host (with port, if any) that bounds the crawl.
	Domain string `json:"domain"`

	// StartedAt is when the engine started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the engine stopped.
	FinishedAt time.Time `json:"finished_at"`

	// State is StateCompleted or StateInterrupted once the engine returns.
	State CrawlState `json:"state"`

	// Visited is the number of distinct URLs that were attempted.
	Visited int `json:"visited"`

	// Duplicates counts pages whose text matched an earlier page.
	Duplicates int `json:"duplicates"`

	// Skipped counts non-HTML responses and pages without visible text.
	Skipped int `json:"skipped"`

	// Failures counts fetch and parse errors.
	Failures int `json:"failures"`

	// Records holds the saved pages in completion order.
	Records []PageRecord `json:"records"`
}

// NewCrawlResult creates an idle result for the given seed and domain.
func NewCrawlResult(seed, domain string) *CrawlResult {
	return &CrawlResult{
		Seed:    seed,
		Domain:  domain,
		State:   StateIdle,
		Records: make([]PageRecord, 0),
	}
}

// Saved returns the number of page records.
func (r *CrawlResult) Saved() int {
	return len(r.Records)
}

// Duration returns how long the crawl ran.
// It is zero until the crawl has finished.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Interrupted reports whether the crawl was cancelled before completion.
func (r *CrawlResult) Interrupted() bool {
	return r.State == StateInterrupted
}

// Job is one scrape target moving through the pipeline.
// Each step reads what earlier steps left on the job and adds its own output.
type Job struct {
	// Target is the validated seed URL.
	Target string

	// Result is filled in by the crawl step.
	Result *CrawlResult

	// OutputPath is the file the write step saved the document to.
	OutputPath string

	// RunID is the history database identifier, empty when history is off.
	RunID string

	// PerformedSteps lists the names of the steps that ran, in order.
	PerformedSteps []string

	// Err is the first step error, if any.
	Err error
}

// NewJob creates a job for the given seed URL.
func NewJob(target string) *Job {
	return &Job{
		Target:         target,
		PerformedSteps: make([]string, 0),
	}
}
