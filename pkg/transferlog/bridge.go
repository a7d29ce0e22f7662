package transferlog

import (
	"context"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-ledger-gateway/internal/metrics"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
)

// sourceReporter is implemented by bridges that switch between backends.
type sourceReporter interface {
	TransferSource() string
}

type balanceReporter interface {
	BalanceSource() string
}

// Option configures a JournaledBridge.
type Option func(*JournaledBridge)

// WithLogger sets the logger used to report journal failures.
func WithLogger(l *zap.Logger) Option {
	return func(b *JournaledBridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithSource fixes the source recorded for every entry. Without it the
// source is taken from the wrapped bridge.
func WithSource(source string) Option {
	return func(b *JournaledBridge) { b.source = source }
}

// JournaledBridge records every transfer, mint and burn outcome of the
// wrapped bridge. Journal failures never change the returned result.
type JournaledBridge struct {
	inner  token.Bridge
	store  Store
	source string
	logger *zap.Logger
}

var _ token.Bridge = (*JournaledBridge)(nil)

// NewJournaledBridge wraps inner so that its movements are journaled in store.
func NewJournaledBridge(inner token.Bridge, store Store, opts ...Option) *JournaledBridge {
	b := &JournaledBridge{
		inner:  inner,
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TransferSource reports the backend currently serving movements.
func (b *JournaledBridge) TransferSource() string {
	if b.source != "" {
		return b.source
	}
	if r, ok := b.inner.(sourceReporter); ok {
		return r.TransferSource()
	}
	return "unknown"
}

// BalanceSource reports the backend currently serving balances.
func (b *JournaledBridge) BalanceSource() string {
	if r, ok := b.inner.(balanceReporter); ok {
		return r.BalanceSource()
	}
	return b.TransferSource()
}

func (b *JournaledBridge) Transfer(ctx context.Context, req *token.TransferRequest) *token.TransferResult {
	res := b.inner.Transfer(ctx, req)
	if req != nil {
		b.record(ctx, token.OpTransfer, req, res)
	}
	return res
}

func (b *JournaledBridge) Mint(ctx context.Context, party string, amount token.Amount) *token.TransferResult {
	res := b.inner.Mint(ctx, party, amount)
	b.record(ctx, token.OpMint, &token.TransferRequest{To: party, Token: amount}, res)
	return res
}

func (b *JournaledBridge) Burn(ctx context.Context, party string, amount token.Amount) *token.TransferResult {
	res := b.inner.Burn(ctx, party, amount)
	b.record(ctx, token.OpBurn, &token.TransferRequest{From: party, Token: amount}, res)
	return res
}

func (b *JournaledBridge) GetBalance(ctx context.Context, party, symbol string) *token.BalanceResult {
	return b.inner.GetBalance(ctx, party, symbol)
}

func (b *JournaledBridge) IsHealthy(ctx context.Context) bool {
	return b.inner.IsHealthy(ctx)
}

// record runs after the source may have been downgraded, so the entry names
// the backend that actually produced res.
func (b *JournaledBridge) record(ctx context.Context, op string, req *token.TransferRequest, res *token.TransferResult) {
	if res == nil {
		return
	}
	source := b.TransferSource()
	if err := b.store.Record(context.WithoutCancel(ctx), op, req, res, source); err != nil {
		metrics.JournalErrorsTotal.WithLabelValues(op).Inc()
		b.logger.Warn("Failed to journal token movement",
			zap.String("operation", op),
			zap.String("transaction_id", res.TransactionID),
			zap.String("source", source),
			zap.Error(err),
		)
	}
}
