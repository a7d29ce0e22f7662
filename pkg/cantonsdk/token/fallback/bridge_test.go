package fallback

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBridge struct {
	TransferFunc   func(ctx context.Context, req *token.TransferRequest) *token.TransferResult
	MintFunc       func(ctx context.Context, party string, amount token.Amount) *token.TransferResult
	BurnFunc       func(ctx context.Context, party string, amount token.Amount) *token.TransferResult
	GetBalanceFunc func(ctx context.Context, party, symbol string) *token.BalanceResult
	IsHealthyFunc  func(ctx context.Context) bool

	mu    sync.Mutex
	calls int
}

func (f *fakeBridge) count() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
}

func (f *fakeBridge) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBridge) Transfer(ctx context.Context, req *token.TransferRequest) *token.TransferResult {
	f.count()
	return f.TransferFunc(ctx, req)
}

func (f *fakeBridge) Mint(ctx context.Context, party string, amount token.Amount) *token.TransferResult {
	f.count()
	return f.MintFunc(ctx, party, amount)
}

func (f *fakeBridge) Burn(ctx context.Context, party string, amount token.Amount) *token.TransferResult {
	f.count()
	return f.BurnFunc(ctx, party, amount)
}

func (f *fakeBridge) GetBalance(ctx context.Context, party, symbol string) *token.BalanceResult {
	f.count()
	return f.GetBalanceFunc(ctx, party, symbol)
}

func (f *fakeBridge) IsHealthy(ctx context.Context) bool {
	return f.IsHealthyFunc(ctx)
}

func balances(party string, amounts ...token.Amount) func(context.Context, string, string) *token.BalanceResult {
	return func(context.Context, string, string) *token.BalanceResult {
		return &token.BalanceResult{Party: party, Balances: amounts}
	}
}

func newOrchestrator(t *testing.T, readOnly, compliant *fakeBridge) (*Bridge, *mock.Bridge) {
	t.Helper()
	mem, err := mock.New()
	require.NoError(t, err)
	b, err := New(readOnly, compliant, mem)
	require.NoError(t, err)
	return b, mem
}

var transferReq = &token.TransferRequest{From: "Alice", To: "Bob", Token: token.Amount{Symbol: "CC", Amount: "10"}}

func TestGetBalance_PrefersReadOnly(t *testing.T) {
	readOnly := &fakeBridge{GetBalanceFunc: balances("Alice", token.Amount{Symbol: "CC", Amount: "5.00"})}
	compliant := &fakeBridge{GetBalanceFunc: balances("Alice", token.Amount{Symbol: "USDC", Amount: "1.00"})}
	b, _ := newOrchestrator(t, readOnly, compliant)

	res := b.GetBalance(context.Background(), "Alice", "")
	assert.Equal(t, []token.Amount{{Symbol: "CC", Amount: "5.00"}}, res.Balances)
	assert.Equal(t, token.BackendSplice, b.BalanceSource())
	assert.Equal(t, 0, compliant.Calls())
}

func TestGetBalance_FallsBackToCompliant(t *testing.T) {
	readOnly := &fakeBridge{GetBalanceFunc: balances("Alice")}
	compliant := &fakeBridge{GetBalanceFunc: balances("Alice", token.Amount{Symbol: "USDC", Amount: "1.00"})}
	b, _ := newOrchestrator(t, readOnly, compliant)

	res := b.GetBalance(context.Background(), "Alice", "")
	assert.Equal(t, []token.Amount{{Symbol: "USDC", Amount: "1.00"}}, res.Balances)
	assert.Equal(t, token.BackendCIP56, b.BalanceSource())
}

func TestGetBalance_NeverFabricatesFunds(t *testing.T) {
	readOnly := &fakeBridge{GetBalanceFunc: balances("Alice")}
	compliant := &fakeBridge{GetBalanceFunc: func(context.Context, string, string) *token.BalanceResult { return nil }}
	b, _ := newOrchestrator(t, readOnly, compliant)

	res := b.GetBalance(context.Background(), "Alice", "")
	assert.Equal(t, "Alice", res.Party)
	assert.Empty(t, res.Balances)
	assert.Equal(t, token.BackendMock, b.BalanceSource())
}

func TestGetBalance_ReadsFreshEveryCall(t *testing.T) {
	readOnlyCalls := 0
	readOnly := &fakeBridge{GetBalanceFunc: func(ctx context.Context, party, symbol string) *token.BalanceResult {
		readOnlyCalls++
		if readOnlyCalls == 1 {
			return token.EmptyBalance(party)
		}
		return &token.BalanceResult{Party: party, Balances: []token.Amount{{Symbol: "CC", Amount: "3.00"}}}
	}}
	compliant := &fakeBridge{GetBalanceFunc: balances("Alice")}
	b, _ := newOrchestrator(t, readOnly, compliant)
	ctx := context.Background()

	b.GetBalance(ctx, "Alice", "")
	assert.Equal(t, token.BackendMock, b.BalanceSource())

	res := b.GetBalance(ctx, "Alice", "")
	assert.Len(t, res.Balances, 1)
	assert.Equal(t, token.BackendSplice, b.BalanceSource())
}

func TestTransfer_UsesCompliantWhileHealthy(t *testing.T) {
	compliant := &fakeBridge{TransferFunc: func(context.Context, *token.TransferRequest) *token.TransferResult {
		return token.Completed("ledger-tx", nil)
	}}
	b, mem := newOrchestrator(t, &fakeBridge{}, compliant)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res := b.Transfer(ctx, transferReq)
		assert.Equal(t, "ledger-tx", res.TransactionID)
	}
	assert.Equal(t, 3, compliant.Calls())
	assert.Equal(t, token.BackendCIP56, b.TransferSource())
	assert.Equal(t, "1000000.00", mem.GetBalance(ctx, "Alice", "CC").Balances[0].Amount)
}

func TestTransfer_StickyDowngrade(t *testing.T) {
	failNext := true
	compliant := &fakeBridge{
		TransferFunc: func(context.Context, *token.TransferRequest) *token.TransferResult {
			if failNext {
				failNext = false
				return token.Failed(errors.New("ledger unavailable"), nil)
			}
			return token.Completed("ledger-tx", nil)
		},
		MintFunc: func(context.Context, string, token.Amount) *token.TransferResult {
			return token.Completed("ledger-mint", nil)
		},
	}
	b, mem := newOrchestrator(t, &fakeBridge{}, compliant)
	ctx := context.Background()

	res := b.Transfer(ctx, transferReq)
	require.Equal(t, token.StatusCompleted, res.Status)
	assert.Regexp(t, `^mock-tx-`, res.TransactionID)
	assert.Equal(t, token.BackendMock, b.TransferSource())

	res = b.Transfer(ctx, transferReq)
	assert.Regexp(t, `^mock-tx-`, res.TransactionID)

	res = b.Mint(ctx, "Alice", token.Amount{Symbol: "CC", Amount: "5"})
	assert.Regexp(t, `^mock-tx-`, res.TransactionID)

	res = b.Burn(ctx, "Bob", token.Amount{Symbol: "CC", Amount: "1"})
	assert.Regexp(t, `^mock-tx-`, res.TransactionID)

	assert.Equal(t, 1, compliant.Calls())
	assert.Equal(t, "999985.00", mem.GetBalance(ctx, "Alice", "CC").Balances[0].Amount)
	assert.Equal(t, "1000019.00", mem.GetBalance(ctx, "Bob", "CC").Balances[0].Amount)
}

func TestTransfer_InvalidRequestKeepsSource(t *testing.T) {
	compliant := &fakeBridge{}
	b, _ := newOrchestrator(t, &fakeBridge{}, compliant)

	res := b.Transfer(context.Background(), &token.TransferRequest{From: "Alice", To: "Bob", Token: token.Amount{Symbol: "CC", Amount: "0"}})
	assert.True(t, res.Failed())
	assert.Equal(t, token.BackendCIP56, b.TransferSource())
	assert.Equal(t, 0, compliant.Calls())
}

func TestMint_EmptyPartyKeepsSource(t *testing.T) {
	compliant := &fakeBridge{
		MintFunc: func(context.Context, string, token.Amount) *token.TransferResult {
			return token.Failed(token.ErrUnknownParty, nil)
		},
		BurnFunc: func(context.Context, string, token.Amount) *token.TransferResult {
			return token.Failed(token.ErrUnknownParty, nil)
		},
	}
	b, _ := newOrchestrator(t, &fakeBridge{}, compliant)
	amount := token.Amount{Symbol: "CC", Amount: "5"}

	res := b.Mint(context.Background(), "", amount)
	assert.True(t, res.Failed())
	assert.Contains(t, res.Reason(), token.ErrUnknownParty.Error())

	res = b.Burn(context.Background(), "", amount)
	assert.True(t, res.Failed())

	assert.Equal(t, token.BackendCIP56, b.TransferSource())
	assert.Equal(t, 0, compliant.Calls())
}

func TestIsHealthy(t *testing.T) {
	probes := 0
	readOnly := &fakeBridge{
		GetBalanceFunc: balances("Alice"),
		IsHealthyFunc: func(context.Context) bool {
			probes++
			return false
		},
	}
	compliant := &fakeBridge{
		GetBalanceFunc: balances("Alice"),
		BurnFunc: func(context.Context, string, token.Amount) *token.TransferResult {
			return token.Failed(errors.New("denied"), nil)
		},
	}
	b, _ := newOrchestrator(t, readOnly, compliant)
	ctx := context.Background()

	assert.False(t, b.IsHealthy(ctx))
	assert.Equal(t, 1, probes)

	b.GetBalance(ctx, "Alice", "")
	b.Burn(ctx, "Alice", token.Amount{Symbol: "CC", Amount: "1"})
	require.Equal(t, token.BackendMock, b.BalanceSource())
	require.Equal(t, token.BackendMock, b.TransferSource())

	assert.True(t, b.IsHealthy(ctx))
	assert.Equal(t, 1, probes)
}

func TestNew_RequiresBridges(t *testing.T) {
	_, err := New(nil, &fakeBridge{}, &fakeBridge{})
	require.Error(t, err)
}
