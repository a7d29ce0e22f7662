// Package retry implements a bounded retry loop with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/creasty/defaults"
)

// Config defines the retry policy. Zero fields are filled from the default tags.
type Config struct {
	// MaxRetries is the number of additional attempts after the first one.
	// Zero selects the default of 3.
	MaxRetries   int           `default:"3"`
	InitialDelay time.Duration `default:"500ms"`
	Factor       float64       `default:"2"`
}

// OnFailure is invoked after every failed attempt, before the next wait or
// before the final error is returned.
type OnFailure func(attempt int, err error)

// Retry runs operations under a bounded exponential backoff policy.
type Retry struct {
	maxRetries   int
	initialDelay time.Duration
	factor       float64
	onFailure    OnFailure
}

// New creates a Retry from cfg. A nil cfg yields the default policy.
func New(cfg *Config, onFailure OnFailure) (*Retry, error) {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply retry defaults: %w", err)
	}
	if c.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative")
	}
	if c.Factor < 1 {
		c.Factor = 1
	}
	return &Retry{
		maxRetries:   c.MaxRetries,
		initialDelay: c.InitialDelay,
		factor:       c.Factor,
		onFailure:    onFailure,
	}, nil
}

// MaxAttempts returns the total number of attempts, including the first one.
func (r *Retry) MaxAttempts() int {
	return r.maxRetries + 1
}

// Delay returns the wait before the attempt following failureCount failures.
func (r *Retry) Delay(failureCount int) time.Duration {
	if failureCount <= 0 {
		return 0
	}
	d := r.initialDelay
	for i := 1; i < failureCount; i++ {
		d = time.Duration(float64(d) * r.factor)
	}
	return d
}

// Do invokes fn until it succeeds or the attempts are exhausted.
// The error of the last attempt is returned.
func (r *Retry) Do(ctx context.Context, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= r.MaxAttempts(); attempt++ {
		err = fn(attempt)
		if err == nil {
			return nil
		}
		if r.onFailure != nil {
			r.onFailure(attempt, err)
		}
		if attempt == r.MaxAttempts() {
			break
		}
		if werr := r.wait(ctx, attempt); werr != nil {
			return fmt.Errorf("retry aborted after %d attempts: %w (last error: %v)", attempt, werr, err)
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", r.MaxAttempts(), err)
}

func (r *Retry) wait(ctx context.Context, failureCount int) error {
	timer := time.NewTimer(r.Delay(failureCount))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
