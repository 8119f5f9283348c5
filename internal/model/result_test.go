package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestCrawlStateString tests the String method of CrawlState.
func TestCrawlStateString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		state    CrawlState
		expected string
	}{
		{StateIdle, "idle"},
		{StateRunning, "running"},
		{StateCompleted, "completed"},
		{StateInterrupted, "interrupted"},
		{CrawlState(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.state.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.state.String(), tc.expected)
			}
		})
	}
}

// TestParseCrawlState tests ParseCrawlState.
func TestParseCrawlState(t *testing.T) {
	t.Parallel()

	t.Run("parses known names", func(t *testing.T) {
		t.Parallel()

		for _, s := range []CrawlState{StateIdle, StateRunning, StateCompleted, StateInterrupted} {
			got, err := ParseCrawlState(s.String())
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", s, err)
			}
			if got != s {
				t.Errorf("got %v, expected %v", got, s)
			}
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseCrawlState("paused"); err == nil {
			t.Error("expected error for unknown state")
		}
	})
}

// TestCrawlStateJSON tests that states serialize by name.
func TestCrawlStateJSON(t *testing.T) {
	t.Parallel()

	result := NewCrawlResult("https://example.com", "example.com")
	result.State = StateInterrupted

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"state":"interrupted"`) {
		t.Errorf("expected state by name, got %s", data)
	}

	var decoded CrawlResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.State != StateInterrupted {
		t.Errorf("expected interrupted, got %v", decoded.State)
	}
}

// TestOutcomeString tests the String method of Outcome.
func TestOutcomeString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		outcome  Outcome
		expected string
	}{
		{OutcomeSaved, "saved"},
		{OutcomeDuplicate, "duplicate"},
		{OutcomeEmpty, "empty"},
		{OutcomeNotHTML, "not-html"},
		{OutcomeFetchFailed, "fetch-failed"},
		{OutcomeParseFailed, "parse-failed"},
		{Outcome(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.outcome.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.outcome.String(), tc.expected)
			}
		})
	}
}

// TestCrawlResult tests CrawlResult helpers.
func TestCrawlResult(t *testing.T) {
	t.Parallel()

	t.Run("new result is idle and empty", func(t *testing.T) {
		t.Parallel()

		r := NewCrawlResult("https://example.com", "example.com")
		if r.State != StateIdle {
			t.Errorf("expected idle, got %v", r.State)
		}
		if r.Saved() != 0 {
			t.Errorf("expected 0 saved, got %d", r.Saved())
		}
		if r.Records == nil {
			t.Error("expected non-nil records slice")
		}
	})

	t.Run("duration is zero until finished", func(t *testing.T) {
		t.Parallel()

		r := NewCrawlResult("https://example.com", "example.com")
		r.StartedAt = time.Now()
		if r.Duration() != 0 {
			t.Errorf("expected zero duration, got %v", r.Duration())
		}
		r.FinishedAt = r.StartedAt.Add(3 * time.Second)
		if r.Duration() != 3*time.Second {
			t.Errorf("expected 3s, got %v", r.Duration())
		}
	})

	t.Run("interrupted reflects state", func(t *testing.T) {
		t.Parallel()

		r := NewCrawlResult("https://example.com", "example.com")
		r.State = StateCompleted
		if r.Interrupted() {
			t.Error("completed crawl reported as interrupted")
		}
		r.State = StateInterrupted
		if !r.Interrupted() {
			t.Error("expected interrupted")
		}
	})
}

// TestNewJob tests the NewJob constructor.
func TestNewJob(t *testing.T) {
	t.Parallel()

	job := NewJob("https://example.com")
	if job.Target != "https://example.com" {
		t.Errorf("unexpected target %q", job.Target)
	}
	if job.PerformedSteps == nil {
		t.Error("expected non-nil step list")
	}
	if job.Result != nil {
		t.Error("expected nil result before crawling")
	}
}
