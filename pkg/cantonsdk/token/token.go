// Package token defines the token bridge capability shared by every token
// backend, together with the value types passed across bridge boundaries.
//
// Bridges never return errors: every fault is encoded as a failed
// TransferResult or an empty BalanceResult so that bridges compose without
// error handling at each call site.
package token

import (
	"context"
	"errors"

	"github.com/chainsafe/canton-ledger-gateway/internal/metrics"
)

// Backend names.
const (
	BackendMock   = "mock"
	BackendCIP56  = "cip56"
	BackendSplice = "splice"
)

// Operation names.
const (
	OpTransfer = "transfer"
	OpMint     = "mint"
	OpBurn     = "burn"
	OpBalance  = "balance"
)

var (
	// ErrInsufficientBalance indicates the party holds less than the requested amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrUnknownParty indicates the bridge has no record of the party.
	ErrUnknownParty = errors.New("unknown party")
	// ErrInvalidAmount indicates an amount that is not a positive decimal.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrReadOnly is reported by bridges that cannot move tokens.
	ErrReadOnly = errors.New("read-only bridge: tokens are not owned by this bridge")
)

// Bridge moves tokens and reports balances.
type Bridge interface {
	// Transfer moves req.Token from req.From to req.To.
	Transfer(ctx context.Context, req *TransferRequest) *TransferResult

	// Mint credits amount to party.
	Mint(ctx context.Context, party string, amount Amount) *TransferResult

	// Burn debits amount from party.
	Burn(ctx context.Context, party string, amount Amount) *TransferResult

	// GetBalance returns the balances of party. A non-empty symbol restricts
	// the result to that symbol.
	GetBalance(ctx context.Context, party, symbol string) *BalanceResult

	// IsHealthy reports whether the backend is reachable.
	IsHealthy(ctx context.Context) bool
}

// Observe records res in the bridge operation metrics and returns it.
func Observe(backend, op string, res *TransferResult) *TransferResult {
	status := string(StatusFailed)
	if res != nil {
		status = string(res.Status)
	}
	metrics.TokenBridgeOperations.WithLabelValues(backend, op, status).Inc()
	return res
}
