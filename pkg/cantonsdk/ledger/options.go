package ledger

import (
	"go.uber.org/zap"
)

// FailureHook observes every failed live attempt of an operation.
type FailureHook func(operation string, attempt int, err error)

// Option configures ledger client settings using
// the functional options pattern.
type Option func(*settings)

type settings struct {
	logger    *zap.Logger
	onFailure FailureHook
	now       func() int64
}

// WithLogger sets a custom logger for the ledger client.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithFailureHook registers a callback invoked on every failed attempt.
func WithFailureHook(h FailureHook) Option {
	return func(s *settings) { s.onFailure = h }
}

// withClock overrides the clock used for mock contract ids.
func withClock(now func() int64) Option {
	return func(s *settings) { s.now = now }
}

func applyOptions(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
