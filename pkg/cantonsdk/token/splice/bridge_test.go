package splice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/jsonapi"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	LedgerEndFunc       func(ctx context.Context) (int64, error)
	ActiveContractsFunc func(ctx context.Context, req *jsonapi.ActiveContractsRequest) ([]jsonapi.ActiveContractEntry, error)
	ReadyFunc           func(ctx context.Context, timeout time.Duration) error
}

func (f *fakeLedger) LedgerEnd(ctx context.Context) (int64, error) {
	return f.LedgerEndFunc(ctx)
}

func (f *fakeLedger) ActiveContracts(ctx context.Context, req *jsonapi.ActiveContractsRequest) ([]jsonapi.ActiveContractEntry, error) {
	return f.ActiveContractsFunc(ctx, req)
}

func (f *fakeLedger) Ready(ctx context.Context, timeout time.Duration) error {
	return f.ReadyFunc(ctx, timeout)
}

func entries(t *testing.T, raw string) []jsonapi.ActiveContractEntry {
	t.Helper()
	var out []jsonapi.ActiveContractEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

const acsFixture = `[
	{"contractEntry":{"JsActiveContract":{"createdEvent":{"contractId":"c1","templateId":"pkg:Splice.Amulet:Amulet","createArgument":{"owner":"Alice","amount":{"initialAmount":"100.5","createdAt":{"number":"1"}}}}}}},
	{"contractEntry":{"JsActiveContract":{"createdEvent":{"contractId":"c2","templateId":"pkg:Splice.Amulet:Amulet","createArgument":{"owner":"Alice","amount":{"initialAmount":"0.5"}}}}}},
	{"contractEntry":{"JsActiveContract":{"createdEvent":{"contractId":"c3","templateId":"pkg:Splice.Amulet:LockedAmulet","createArgument":{"amulet":{"amount":{"initialAmount":"50"}}}}}}},
	{"contractEntry":{"JsActiveContract":{"createdEvent":{"contractId":"c4","templateId":"pkg:Bridge:WrappedBitcoinHolding","createArgument":{"owner":"Alice","amount":"0.25000000"}}}}},
	{"contractEntry":{"JsActiveContract":{"createdEvent":{"contractId":"c5","templateId":"pkg:Token:Holding","payload":{"asset":{"symbol":"USDC"},"balance":"42"}}}}},
	{"contractEntry":{"JsActiveContract":{"createdEvent":{"contractId":"c6","templateId":"pkg:Unknown:Thing","createArgument":{"amount":"7"}}}}},
	{"contractEntry":{"JsActiveContract":{"createdEvent":{"contractId":"c7","templateId":"pkg:Token:Holding","createArgument":{"symbol":"ZERO","amount":"0"}}}}},
	{"offsetCheckpoint":{"offset":12}}
]`

func TestGetBalance_ClassifiesActiveContracts(t *testing.T) {
	var gotReq *jsonapi.ActiveContractsRequest
	l := &fakeLedger{
		LedgerEndFunc: func(context.Context) (int64, error) { return 12, nil },
		ActiveContractsFunc: func(_ context.Context, req *jsonapi.ActiveContractsRequest) ([]jsonapi.ActiveContractEntry, error) {
			gotReq = req
			return entries(t, acsFixture), nil
		},
	}
	b, err := New(l)
	require.NoError(t, err)

	res := b.GetBalance(context.Background(), "Alice", "")
	assert.Equal(t, "Alice", res.Party)
	assert.Equal(t, []token.Amount{
		{Symbol: "CBTC", Amount: "0.25000000"},
		{Symbol: "CC", Amount: "101.00"},
		{Symbol: "USDC", Amount: "42.00"},
	}, res.Balances)

	require.NotNil(t, gotReq)
	assert.Equal(t, int64(12), gotReq.ActiveAtOffset)
	require.Contains(t, gotReq.Filter.FiltersByParty, "Alice")
	assert.Empty(t, gotReq.Filter.FiltersByParty["Alice"].TemplateFilters)
	assert.NotNil(t, gotReq.Filter.FiltersByParty["Alice"].TemplateFilters)
}

func TestGetBalance_SymbolFilter(t *testing.T) {
	l := &fakeLedger{
		LedgerEndFunc: func(context.Context) (int64, error) { return 1, nil },
		ActiveContractsFunc: func(context.Context, *jsonapi.ActiveContractsRequest) ([]jsonapi.ActiveContractEntry, error) {
			return entries(t, acsFixture), nil
		},
	}
	b, err := New(l)
	require.NoError(t, err)

	res := b.GetBalance(context.Background(), "Alice", "CC")
	assert.Equal(t, []token.Amount{{Symbol: "CC", Amount: "101.00"}}, res.Balances)
}

func TestGetBalance_LedgerEndFailureFallsBackToZero(t *testing.T) {
	var offset int64 = -1
	l := &fakeLedger{
		LedgerEndFunc: func(context.Context) (int64, error) { return 0, errors.New("unavailable") },
		ActiveContractsFunc: func(_ context.Context, req *jsonapi.ActiveContractsRequest) ([]jsonapi.ActiveContractEntry, error) {
			offset = req.ActiveAtOffset
			return nil, nil
		},
	}
	b, err := New(l)
	require.NoError(t, err)

	res := b.GetBalance(context.Background(), "Bob", "")
	assert.Empty(t, res.Balances)
	assert.Equal(t, int64(0), offset)
}

func TestGetBalance_MalformedIsEmpty(t *testing.T) {
	l := &fakeLedger{
		LedgerEndFunc: func(context.Context) (int64, error) { return 5, nil },
		ActiveContractsFunc: func(context.Context, *jsonapi.ActiveContractsRequest) ([]jsonapi.ActiveContractEntry, error) {
			return nil, jsonapi.ErrMalformedResponse
		},
	}
	b, err := New(l)
	require.NoError(t, err)

	res := b.GetBalance(context.Background(), "Bob", "")
	assert.NotNil(t, res.Balances)
	assert.Empty(t, res.Balances)
}

func TestGetBalance_PanicIsEmpty(t *testing.T) {
	l := &fakeLedger{
		LedgerEndFunc: func(context.Context) (int64, error) { panic("boom") },
	}
	b, err := New(l)
	require.NoError(t, err)

	res := b.GetBalance(context.Background(), "Bob", "")
	assert.Equal(t, "Bob", res.Party)
	assert.Empty(t, res.Balances)
}

func TestWritesAreRejected(t *testing.T) {
	b, err := New(&fakeLedger{})
	require.NoError(t, err)
	ctx := context.Background()

	results := []*token.TransferResult{
		b.Transfer(ctx, &token.TransferRequest{From: "Alice", To: "Bob", Token: token.Amount{Symbol: "CC", Amount: "1"}}),
		b.Mint(ctx, "Alice", token.Amount{Symbol: "CC", Amount: "1"}),
		b.Burn(ctx, "Alice", token.Amount{Symbol: "CC", Amount: "1"}),
	}
	for _, res := range results {
		assert.Equal(t, token.StatusFailed, res.Status)
		assert.Equal(t, "read-only bridge: tokens are not owned by this bridge", res.Reason())
	}
}

func TestIsHealthy(t *testing.T) {
	var gotTimeout time.Duration
	ok := &fakeLedger{ReadyFunc: func(_ context.Context, timeout time.Duration) error {
		gotTimeout = timeout
		return nil
	}}
	b, err := New(ok)
	require.NoError(t, err)
	assert.True(t, b.IsHealthy(context.Background()))
	assert.Equal(t, HealthTimeout, gotTimeout)

	down := &fakeLedger{ReadyFunc: func(context.Context, time.Duration) error { return errors.New("refused") }}
	b, err = New(down)
	require.NoError(t, err)
	assert.False(t, b.IsHealthy(context.Background()))
}

func TestNew_RequiresLedger(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
