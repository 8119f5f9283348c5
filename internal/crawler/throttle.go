package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle keeps a fixed pause between the end of one request and the start
// of the next. Wait blocks until delay has passed since the last Done; before
// the first Done it returns immediately.
type Throttle struct {
	delay   time.Duration
	limiter *rate.Limiter
}

// NewThrottle creates a Throttle. A delay of zero or less disables waiting.
func NewThrottle(delay time.Duration) *Throttle {
	return &Throttle{delay: delay}
}

// Wait blocks until the next request may be sent or ctx is done.
// It returns ctx.Err() (or a limiter error when ctx's deadline is too close)
// if the wait was abandoned.
func (t *Throttle) Wait(ctx context.Context) error {
	if t.limiter == nil {
		return ctx.Err()
	}
	return t.limiter.Wait(ctx)
}

// Done marks the end of a request. The next Wait is released delay after
// this call, however long the request itself took.
func (t *Throttle) Done() {
	if t.delay <= 0 {
		return
	}
	// A fresh single-token limiter with its token spent at now frees the
	// next token exactly one delay later.
	t.limiter = rate.NewLimiter(rate.Every(t.delay), 1)
	t.limiter.Allow()
}
