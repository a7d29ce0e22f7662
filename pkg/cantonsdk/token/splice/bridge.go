// Package splice implements a read-only token bridge that derives balances
// from the active contracts visible to a party.
//
// Contracts are classified with an ordered chain of symbol classifiers and
// amount extractors. Contracts that no strategy recognizes are skipped.
package splice

import (
	"context"
	"fmt"
	"time"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/jsonapi"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/values"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HealthTimeout bounds the readiness probe.
const HealthTimeout = 2 * time.Second

// Ledger is the subset of the JSON API used by the bridge.
type Ledger interface {
	LedgerEnd(ctx context.Context) (int64, error)
	ActiveContracts(ctx context.Context, req *jsonapi.ActiveContractsRequest) ([]jsonapi.ActiveContractEntry, error)
	Ready(ctx context.Context, timeout time.Duration) error
}

// Bridge is the read-only balance bridge.
type Bridge struct {
	ledger  Ledger
	logger  *zap.Logger
	symbols []SymbolClassifier
	amounts []AmountExtractor
	skipped map[string]bool
	timeout time.Duration
}

var _ token.Bridge = (*Bridge)(nil)

// New creates a read-only bridge.
func New(l Ledger, opts ...Option) (*Bridge, error) {
	if l == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	s := applyOptions(opts)
	return &Bridge{
		ledger:  l,
		logger:  s.logger,
		symbols: s.symbols,
		amounts: s.amounts,
		skipped: s.skipped,
		timeout: s.timeout,
	}, nil
}

func (b *Bridge) Transfer(_ context.Context, req *token.TransferRequest) *token.TransferResult {
	details := map[string]any{"backend": token.BackendSplice}
	if req != nil {
		details["from"] = req.From
		details["to"] = req.To
	}
	return token.Observe(token.BackendSplice, token.OpTransfer, token.Failed(token.ErrReadOnly, details))
}

func (b *Bridge) Mint(_ context.Context, party string, _ token.Amount) *token.TransferResult {
	return token.Observe(token.BackendSplice, token.OpMint,
		token.Failed(token.ErrReadOnly, map[string]any{"backend": token.BackendSplice, "party": party}))
}

func (b *Bridge) Burn(_ context.Context, party string, _ token.Amount) *token.TransferResult {
	return token.Observe(token.BackendSplice, token.OpBurn,
		token.Failed(token.ErrReadOnly, map[string]any{"backend": token.BackendSplice, "party": party}))
}

// GetBalance sums the balance-carrying active contracts of party.
func (b *Bridge) GetBalance(ctx context.Context, party, symbol string) (out *token.BalanceResult) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Splice balance read panicked", zap.String("party", party), zap.Any("panic", r))
			out = token.EmptyBalance(party)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	offset, err := b.ledger.LedgerEnd(ctx)
	if err != nil {
		b.logger.Debug("Ledger end unavailable, reading at offset 0", zap.Error(err))
		offset = 0
	}

	entries, err := b.ledger.ActiveContracts(ctx, &jsonapi.ActiveContractsRequest{
		Filter: jsonapi.TransactionFilter{
			FiltersByParty: map[string]jsonapi.PartyFilter{
				party: {TemplateFilters: []jsonapi.TemplateFilter{}},
			},
		},
		ActiveAtOffset: offset,
	})
	if err != nil {
		b.logger.Debug("Active contracts unavailable", zap.String("party", party), zap.Error(err))
		return token.EmptyBalance(party)
	}

	return b.summarize(party, symbol, entries)
}

func (b *Bridge) summarize(party, symbol string, entries []jsonapi.ActiveContractEntry) *token.BalanceResult {
	totals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		ev := e.CreatedEvent()
		if ev == nil || b.skipped[shortName(ev.TemplateID)] {
			continue
		}
		payload, _ := values.Decode(ev.Arguments())

		sym, ok := classifySymbol(b.symbols, ev.TemplateID, payload)
		if !ok {
			continue
		}
		if symbol != "" && sym != symbol {
			continue
		}
		amt, ok := extractAmount(b.amounts, payload)
		if !ok {
			continue
		}
		totals[sym] = totals[sym].Add(amt)
	}

	out := token.EmptyBalance(party)
	for sym, amt := range totals {
		if !amt.IsPositive() {
			continue
		}
		out.Balances = append(out.Balances, token.Amount{Symbol: sym, Amount: token.FormatAmount(amt)})
	}
	token.SortBalances(out.Balances)
	return out
}

// IsHealthy probes the participant readiness endpoint.
func (b *Bridge) IsHealthy(ctx context.Context) bool {
	if err := b.ledger.Ready(ctx, HealthTimeout); err != nil {
		b.logger.Debug("Splice readiness probe failed", zap.Error(err))
		return false
	}
	return true
}
