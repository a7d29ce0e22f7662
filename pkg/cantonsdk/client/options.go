package client

import (
	"net/http"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"

	"go.uber.org/zap"
)

// BridgeDecorator wraps the token bridge built by the client.
type BridgeDecorator func(token.Bridge) token.Bridge

// Option configures client settings using the functional options pattern.
type Option func(*settings)

type settings struct {
	logger     *zap.Logger
	httpClient *http.Client
	decorators []BridgeDecorator
}

// WithLogger sets a custom logger for the SDK client.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithHTTPClient sets a custom HTTP client for the SDK client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithBridgeDecorator wraps the token bridge, e.g. to journal results.
// Decorators are applied in order.
func WithBridgeDecorator(d BridgeDecorator) Option {
	return func(s *settings) { s.decorators = append(s.decorators, d) }
}

func applyOptions(opts []Option) settings {
	s := settings{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
