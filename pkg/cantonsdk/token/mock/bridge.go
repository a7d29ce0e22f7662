// Package mock implements a process-local token bridge with deterministic
// starting balances, used in sandbox deployments and as the transfer
// fallback of the live bridge.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Bridge keeps party balances in memory. A single mutex guards the whole
// map so that balance checks and updates are atomic.
type Bridge struct {
	logger *zap.Logger

	mu       sync.Mutex
	balances map[string]map[string]decimal.Decimal
}

var _ token.Bridge = (*Bridge)(nil)

// New creates a bridge seeded with the configured roster.
func New(opts ...Option) (*Bridge, error) {
	s := applyOptions(opts)

	start, err := decimal.NewFromString(s.balance)
	if err != nil {
		return nil, fmt.Errorf("invalid starting balance %q: %w", s.balance, err)
	}

	balances := make(map[string]map[string]decimal.Decimal, len(s.parties))
	for _, p := range s.parties {
		m := make(map[string]decimal.Decimal, len(s.symbols))
		for _, sym := range s.symbols {
			m[sym] = start
		}
		balances[p] = m
	}

	return &Bridge{logger: s.logger, balances: balances}, nil
}

func (b *Bridge) Transfer(_ context.Context, req *token.TransferRequest) *token.TransferResult {
	return token.Observe(token.BackendMock, token.OpTransfer, b.transfer(req))
}

func (b *Bridge) transfer(req *token.TransferRequest) *token.TransferResult {
	if err := req.Validate(); err != nil {
		return token.Failed(err, nil)
	}
	amount, _ := token.ParseAmount(req.Token.Amount)
	sym := req.Token.Symbol

	details := map[string]any{
		"from":    req.From,
		"to":      req.To,
		"symbol":  sym,
		"amount":  req.Token.Amount,
		"backend": token.BackendMock,
	}
	if req.Reference != "" {
		details["reference"] = req.Reference
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.debitLocked(req.From, sym, amount); err != nil {
		return token.Failed(err, details)
	}
	b.creditLocked(req.To, sym, amount)

	b.logger.Debug("Mock transfer applied",
		zap.String("from", req.From),
		zap.String("to", req.To),
		zap.String("symbol", sym),
		zap.String("amount", req.Token.Amount),
	)
	return token.Completed(mockTransactionID(), details)
}

func (b *Bridge) Mint(_ context.Context, party string, amount token.Amount) *token.TransferResult {
	return token.Observe(token.BackendMock, token.OpMint, b.mint(party, amount))
}

func (b *Bridge) mint(party string, amount token.Amount) *token.TransferResult {
	details := map[string]any{"party": party, "symbol": amount.Symbol, "amount": amount.Amount, "backend": token.BackendMock}
	if party == "" {
		return token.Failed(token.ErrUnknownParty, details)
	}
	if err := amount.Validate(); err != nil {
		return token.Failed(err, details)
	}
	d, _ := token.ParseAmount(amount.Amount)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.creditLocked(party, amount.Symbol, d)

	return token.Completed(mockTransactionID(), details)
}

func (b *Bridge) Burn(_ context.Context, party string, amount token.Amount) *token.TransferResult {
	return token.Observe(token.BackendMock, token.OpBurn, b.burn(party, amount))
}

func (b *Bridge) burn(party string, amount token.Amount) *token.TransferResult {
	details := map[string]any{"party": party, "symbol": amount.Symbol, "amount": amount.Amount, "backend": token.BackendMock}
	if err := amount.Validate(); err != nil {
		return token.Failed(err, details)
	}
	d, _ := token.ParseAmount(amount.Amount)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.debitLocked(party, amount.Symbol, d); err != nil {
		return token.Failed(err, details)
	}

	return token.Completed(mockTransactionID(), details)
}

func (b *Bridge) GetBalance(_ context.Context, party, symbol string) *token.BalanceResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	held := b.balances[party]
	if symbol != "" {
		return &token.BalanceResult{
			Party:    party,
			Balances: []token.Amount{{Symbol: symbol, Amount: token.FormatAmount(held[symbol])}},
		}
	}

	out := token.EmptyBalance(party)
	for sym, amt := range held {
		out.Balances = append(out.Balances, token.Amount{Symbol: sym, Amount: token.FormatAmount(amt)})
	}
	token.SortBalances(out.Balances)
	return out
}

func (b *Bridge) IsHealthy(context.Context) bool { return true }

func (b *Bridge) debitLocked(party, symbol string, amount decimal.Decimal) error {
	held, ok := b.balances[party]
	if !ok {
		return fmt.Errorf("%w: %s", token.ErrUnknownParty, party)
	}
	if held[symbol].LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s %s", token.ErrInsufficientBalance, party, token.FormatAmount(held[symbol]), symbol)
	}
	held[symbol] = held[symbol].Sub(amount)
	return nil
}

func (b *Bridge) creditLocked(party, symbol string, amount decimal.Decimal) {
	held, ok := b.balances[party]
	if !ok {
		held = make(map[string]decimal.Decimal)
		b.balances[party] = held
	}
	held[symbol] = held[symbol].Add(amount)
}

func mockTransactionID() string {
	return "mock-tx-" + uuid.NewString()
}
