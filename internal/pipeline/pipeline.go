package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/sitescraper/internal/model"
)

// Step is one stage of a scrape job.
// Steps run in order and each one reads and extends the same job.
type Step interface {
	// Do runs the step. Returning an error marks the job as failed.
	Do(ctx context.Context, job *model.Job) error

	// Name identifies the step in logs and in Job.PerformedSteps.
	Name() string
}

// Finisher is a Step that still runs after the context is cancelled.
// Writing out what an interrupted crawl collected is such a step.
// It receives a context that carries the parent's values but is never
// cancelled.
type Finisher interface {
	Step

	// RunsAfterCancel reports whether the step runs once ctx is done.
	RunsAfterCancel() bool
}

// Pipeline runs a fixed list of steps for one job.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after a step fails.
// The first error is still recorded on the job.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order.
//
// Cancellation is checked before each step. Once ctx is done, only steps
// implementing Finisher still run, so an interrupted crawl is saved;
// Execute then returns ctx.Err() if nothing else failed.
func (p *Pipeline) Execute(ctx context.Context, job *model.Job) error {
	var firstErr error

	for _, step := range p.steps {
		stepCtx := ctx
		if ctx.Err() != nil {
			if !runsAfterCancel(step) {
				p.logger.Debug("skipping step after cancellation",
					"step", step.Name(),
					"target", job.Target,
				)
				continue
			}
			stepCtx = context.WithoutCancel(ctx)
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"target", job.Target,
		)

		err := step.Do(stepCtx, job)
		job.PerformedSteps = append(job.PerformedSteps, step.Name())
		if err == nil {
			continue
		}

		p.logger.Error("step failed",
			"step", step.Name(),
			"target", job.Target,
			"error", err,
		)
		if firstErr == nil {
			firstErr = err
			job.Err = err
		}
		if !p.continueOnError {
			return err
		}
	}

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func runsAfterCancel(step Step) bool {
	f, ok := step.(Finisher)
	return ok && f.RunsAfterCancel()
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
