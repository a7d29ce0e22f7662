// Package client provides the high-level Canton SDK client.
//
// It builds the JSON API transport, the generic ledger client and the token
// bridge selected by the configured mode, once, at process start.
package client

import (
	"context"
	"fmt"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/jsonapi"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/ledger"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/retry"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token/cip56"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token/fallback"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token/mock"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token/splice"
	appcfg "github.com/chainsafe/canton-ledger-gateway/pkg/config"

	"go.uber.org/zap"
)

// Client is the SDK facade.
type Client struct {
	Ledger *ledger.Client
	Tokens token.Bridge
	// Transport is nil in mock mode when no JSON API URL is configured.
	Transport *jsonapi.Transport
}

// New creates an SDK client from SDK-native config.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	s := applyOptions(opts)

	if cfg.Mode != ModeMock && cfg.Mode != ModeLive {
		return nil, fmt.Errorf("unknown token bridge mode %q", cfg.Mode)
	}

	var tr *jsonapi.Transport
	if cfg.Transport != nil && cfg.Transport.BaseURL != "" {
		var err error
		tr, err = jsonapi.New(cfg.Transport,
			jsonapi.WithLogger(s.logger.Named("jsonapi")),
			jsonapi.WithHTTPClient(s.httpClient),
		)
		if err != nil {
			return nil, err
		}
	}
	if tr == nil && !cfg.IsMock() {
		return nil, fmt.Errorf("json api url is required in %s mode", ModeLive)
	}

	var lt ledger.Transport
	if tr != nil {
		lt = tr
	}
	l, err := ledger.New(&ledger.Config{Mock: cfg.IsMock(), Retry: cfg.Retry}, lt,
		ledger.WithLogger(s.logger.Named("ledger")),
	)
	if err != nil {
		return nil, err
	}

	tokens, err := newTokenBridge(cfg, tr, s)
	if err != nil {
		return nil, err
	}

	if !cfg.IsMock() && !tokens.IsHealthy(ctx) {
		s.logger.Warn("Ledger participant not ready at startup, continuing")
	}

	s.logger.Info("Canton SDK client initialized",
		zap.String("mode", cfg.Mode),
		zap.Bool("transport", tr != nil),
	)

	return &Client{Ledger: l, Tokens: tokens, Transport: tr}, nil
}

// NewTokenBridge builds the token bridge for cfg.Mode: the in-memory bridge
// in mock mode, the fallback orchestrator in live mode.
func NewTokenBridge(cfg Config, tr *jsonapi.Transport, opts ...Option) (token.Bridge, error) {
	return newTokenBridge(cfg, tr, applyOptions(opts))
}

func newTokenBridge(cfg Config, tr *jsonapi.Transport, s settings) (token.Bridge, error) {
	inMemory, err := mock.New(mock.WithLogger(s.logger.Named("mock")))
	if err != nil {
		return nil, err
	}

	var b token.Bridge = inMemory
	if !cfg.IsMock() {
		if tr == nil {
			return nil, fmt.Errorf("transport is required in %s mode", ModeLive)
		}
		readOnly, err := splice.New(tr,
			splice.WithLogger(s.logger.Named("splice")),
			splice.WithCommandTimeout(cfg.CommandTimeout),
		)
		if err != nil {
			return nil, err
		}
		compliant, err := cip56.New(&cip56.Config{
			Operator:        cfg.Operator,
			TokenContractID: cfg.TokenContractID,
			PackageID:       cfg.PackageID,
			CommandTimeout:  cfg.CommandTimeout,
		}, tr, cip56.WithLogger(s.logger.Named("cip56")))
		if err != nil {
			return nil, err
		}
		b, err = fallback.New(readOnly, compliant, inMemory, fallback.WithLogger(s.logger.Named("fallback")))
		if err != nil {
			return nil, err
		}
	}

	for _, d := range s.decorators {
		if d != nil {
			b = d(b)
		}
	}
	return b, nil
}

// NewFromAppConfig is a convenience adapter for the gateway configuration.
func NewFromAppConfig(ctx context.Context, cfg *appcfg.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return New(ctx, ConfigFromApp(cfg), opts...)
}

// ConfigFromApp maps the gateway configuration onto the SDK configuration.
func ConfigFromApp(cfg *appcfg.Config) Config {
	lc := cfg.Ledger
	return Config{
		Mode: lc.TokenBridgeMode,
		Transport: &jsonapi.Config{
			BaseURL: lc.JSONAPIURL,
			Token:   lc.JWTToken,
			Timeout: lc.CommandTimeout(),
		},
		Retry: &retry.Config{
			MaxRetries:   cfg.Retry.MaxRetries,
			InitialDelay: cfg.Retry.InitialDelay,
			Factor:       cfg.Retry.Factor,
		},
		Operator:        lc.Parties.Operator,
		TokenContractID: lc.TokenContractID,
		PackageID:       lc.PackageID,
		CommandTimeout:  lc.CommandTimeout(),
	}
}
