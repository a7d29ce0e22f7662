package mock

import (
	"go.uber.org/zap"
)

// DefaultStartingBalance is credited to every seeded party for every seeded symbol.
const DefaultStartingBalance = "1000000.00"

// DefaultParties is the demo roster seeded at construction.
var DefaultParties = []string{"Alice", "Bob", "Charlie", "Operator"}

// DefaultSymbols are the token symbols seeded at construction.
var DefaultSymbols = []string{"CC", "USDC", "CBTC"}

// Option configures the in-memory bridge.
type Option func(*settings)

type settings struct {
	logger  *zap.Logger
	parties []string
	symbols []string
	balance string
}

// WithLogger sets a custom logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithRoster replaces the seeded parties and symbols and their starting balance.
func WithRoster(parties, symbols []string, balance string) Option {
	return func(s *settings) {
		s.parties = parties
		s.symbols = symbols
		s.balance = balance
	}
}

func applyOptions(opts []Option) settings {
	s := settings{
		logger:  zap.NewNop(),
		parties: DefaultParties,
		symbols: DefaultSymbols,
		balance: DefaultStartingBalance,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
