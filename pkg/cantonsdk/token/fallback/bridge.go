// Package fallback composes the read-only, compliant and in-memory token
// bridges behind a single token.Bridge.
//
// Balances are always read from the read-only bridge first, then from the
// compliant bridge, and are never served from the in-memory bridge.
// Token movements go to the compliant bridge until it reports its first
// failure; from then on they are served by the in-memory bridge for the
// remainder of the process.
package fallback

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/chainsafe/canton-ledger-gateway/internal/metrics"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"

	"go.uber.org/zap"
)

// Source kinds exported in metrics.
const (
	KindBalance  = "balance"
	KindTransfer = "transfer"
)

// Bridge is the fallback orchestrator.
type Bridge struct {
	readOnly  token.Bridge
	compliant token.Bridge
	inMemory  token.Bridge
	logger    *zap.Logger

	balanceSource  atomic.Value
	transferSource atomic.Value
}

var _ token.Bridge = (*Bridge)(nil)

// Option configures the orchestrator.
type Option func(*Bridge)

// WithLogger sets a custom logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// New creates an orchestrator over the three bridges.
func New(readOnly, compliant, inMemory token.Bridge, opts ...Option) (*Bridge, error) {
	if readOnly == nil || compliant == nil || inMemory == nil {
		return nil, fmt.Errorf("read-only, compliant and in-memory bridges are required")
	}
	b := &Bridge{
		readOnly:  readOnly,
		compliant: compliant,
		inMemory:  inMemory,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	b.balanceSource.Store(token.BackendSplice)
	b.transferSource.Store(token.BackendCIP56)
	metrics.SetSource(KindBalance, token.BackendSplice, token.BackendCIP56, token.BackendMock)
	metrics.SetSource(KindTransfer, token.BackendCIP56, token.BackendMock)
	return b, nil
}

// BalanceSource returns the backend that served the last balance read.
func (b *Bridge) BalanceSource() string {
	return b.balanceSource.Load().(string)
}

// TransferSource returns the backend serving token movements.
func (b *Bridge) TransferSource() string {
	return b.transferSource.Load().(string)
}

func (b *Bridge) Transfer(ctx context.Context, req *token.TransferRequest) *token.TransferResult {
	if err := req.Validate(); err != nil {
		return token.Failed(err, nil)
	}
	return b.move(token.OpTransfer, func(br token.Bridge) *token.TransferResult {
		return br.Transfer(ctx, req)
	})
}

func (b *Bridge) Mint(ctx context.Context, party string, amount token.Amount) *token.TransferResult {
	if err := validateSupply(party, amount); err != nil {
		return token.Failed(err, nil)
	}
	return b.move(token.OpMint, func(br token.Bridge) *token.TransferResult {
		return br.Mint(ctx, party, amount)
	})
}

func (b *Bridge) Burn(ctx context.Context, party string, amount token.Amount) *token.TransferResult {
	if err := validateSupply(party, amount); err != nil {
		return token.Failed(err, nil)
	}
	return b.move(token.OpBurn, func(br token.Bridge) *token.TransferResult {
		return br.Burn(ctx, party, amount)
	})
}

// validateSupply rejects mint and burn input before any backend sees it, so
// a malformed call cannot trip the downgrade.
func validateSupply(party string, amount token.Amount) error {
	if party == "" {
		return fmt.Errorf("%w: party is required", token.ErrUnknownParty)
	}
	return amount.Validate()
}

func (b *Bridge) move(op string, call func(token.Bridge) *token.TransferResult) *token.TransferResult {
	if b.TransferSource() == token.BackendCIP56 {
		res := call(b.compliant)
		if !res.Failed() {
			return res
		}
		b.downgrade(op, res.Reason())
	}
	return call(b.inMemory)
}

// downgrade switches token movements to the in-memory bridge. There is no
// way back.
func (b *Bridge) downgrade(op, reason string) {
	if !b.transferSource.CompareAndSwap(token.BackendCIP56, token.BackendMock) {
		return
	}
	metrics.SetSource(KindTransfer, token.BackendMock, token.BackendCIP56)
	b.logger.Warn("Compliant bridge failed, token movements now served in memory",
		zap.String("operation", op),
		zap.String("reason", reason),
	)
}

// GetBalance reads fresh balances on every call.
func (b *Bridge) GetBalance(ctx context.Context, party, symbol string) *token.BalanceResult {
	if res := b.readOnly.GetBalance(ctx, party, symbol); hasBalances(res) {
		b.setBalanceSource(token.BackendSplice)
		return res
	}
	if res := b.compliant.GetBalance(ctx, party, symbol); hasBalances(res) {
		b.setBalanceSource(token.BackendCIP56)
		return res
	}
	b.setBalanceSource(token.BackendMock)
	return token.EmptyBalance(party)
}

func (b *Bridge) setBalanceSource(src string) {
	prev := b.balanceSource.Swap(src)
	if prev == src {
		return
	}
	metrics.SetSource(KindBalance, src, token.BackendSplice, token.BackendCIP56, token.BackendMock)
	b.logger.Info("Balance source changed",
		zap.Any("from", prev),
		zap.String("to", src),
	)
}

func (b *Bridge) IsHealthy(ctx context.Context) bool {
	if b.BalanceSource() == token.BackendMock && b.TransferSource() == token.BackendMock {
		return true
	}
	return b.readOnly.IsHealthy(ctx)
}

func hasBalances(res *token.BalanceResult) bool {
	return res != nil && len(res.Balances) > 0
}
