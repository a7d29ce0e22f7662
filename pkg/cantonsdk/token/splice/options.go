package splice

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the bridge.
type Option func(*settings)

type settings struct {
	logger  *zap.Logger
	symbols []SymbolClassifier
	amounts []AmountExtractor
	skipped map[string]bool
	timeout time.Duration
}

// WithLogger sets a custom logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithSymbolClassifiers replaces the symbol classifier chain.
func WithSymbolClassifiers(c ...SymbolClassifier) Option {
	return func(s *settings) { s.symbols = c }
}

// WithAmountExtractors replaces the amount extractor chain.
func WithAmountExtractors(e ...AmountExtractor) Option {
	return func(s *settings) { s.amounts = e }
}

// WithCommandTimeout bounds each ledger call. Non-positive values keep
// the default.
func WithCommandTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{
		logger:  zap.NewNop(),
		symbols: DefaultSymbolClassifiers(),
		amounts: DefaultAmountExtractors(),
		skipped: DefaultSkippedTemplates(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
