package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/jsonapi"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	QueryFunc    func(ctx context.Context, req *jsonapi.QueryRequest) ([]jsonapi.Contract, error)
	FetchFunc    func(ctx context.Context, req *jsonapi.FetchRequest) (*jsonapi.Contract, error)
	ExerciseFunc func(ctx context.Context, req *jsonapi.ExerciseRequest) (*jsonapi.ExerciseResponse, error)
	CreateFunc   func(ctx context.Context, req *jsonapi.CreateRequest) (*jsonapi.CreateResponse, error)
}

func (f *fakeTransport) Query(ctx context.Context, req *jsonapi.QueryRequest) ([]jsonapi.Contract, error) {
	return f.QueryFunc(ctx, req)
}

func (f *fakeTransport) Fetch(ctx context.Context, req *jsonapi.FetchRequest) (*jsonapi.Contract, error) {
	return f.FetchFunc(ctx, req)
}

func (f *fakeTransport) Exercise(ctx context.Context, req *jsonapi.ExerciseRequest) (*jsonapi.ExerciseResponse, error) {
	return f.ExerciseFunc(ctx, req)
}

func (f *fakeTransport) Create(ctx context.Context, req *jsonapi.CreateRequest) (*jsonapi.CreateResponse, error) {
	return f.CreateFunc(ctx, req)
}

type poolPayload struct {
	Operator       string `json:"operator"`
	PoolID         string `json:"poolId"`
	Asset          string `json:"asset"`
	TotalLiquidity string `json:"totalLiquidity"`
}

type holdingPayload struct {
	Owner string `json:"owner"`
	Asset struct {
		Symbol string `json:"symbol"`
		Amount string `json:"amount"`
	} `json:"asset"`
}

func newMockClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(&Config{Mock: true}, nil, opts...)
	require.NoError(t, err)
	return c
}

func fastRetry() *retry.Config {
	return &retry.Config{MaxRetries: 3, InitialDelay: time.Millisecond, Factor: 2}
}

func TestMock_QueryFixtures(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()

	pools, err := QueryContracts[poolPayload](ctx, c, "pkg:Lending.Pool:Pool", nil)
	require.NoError(t, err)
	require.Len(t, pools, 2)
	assert.Equal(t, "mock-pool-001", pools[0].ContractID)
	assert.Equal(t, "pkg:Lending.Pool:Pool", pools[0].TemplateID)
	assert.Equal(t, "POOL-USDC-01", pools[0].Payload.PoolID)
	assert.Equal(t, "2500000.00", pools[0].Payload.TotalLiquidity)
	assert.Equal(t, []string{"Operator"}, pools[0].Signatories)

	for _, name := range []string{"LendingOffer", "Loan", "Institution", "Token", "Holding"} {
		raw, err := c.Query(ctx, "pkg:Mod:"+name, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, raw, name)
	}
}

func TestMock_QueryUnknownTemplate(t *testing.T) {
	c := newMockClient(t)

	out, err := QueryContracts[map[string]any](context.Background(), c, "pkg:Mod:Nope", nil)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestMock_QueryAppliesFilter(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()

	holdings, err := QueryContracts[holdingPayload](ctx, c, "Holding", Query{"owner": "Alice", "asset.symbol": "CBTC"})
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "1.25000000", holdings[0].Payload.Asset.Amount)

	either, err := QueryContracts[holdingPayload](ctx, c, "Holding", Or(Query{"owner": "Bob"}, Query{"asset.symbol": "USDC"}))
	require.NoError(t, err)
	require.Len(t, either, 2)
	assert.Equal(t, "mock-holding-001", either[0].ContractID)
	assert.Equal(t, "mock-holding-002", either[1].ContractID)

	none, err := c.Query(ctx, "Loan", Or(Query{"lender": "Zed"}, Query{"borrower": "Zed"}))
	require.NoError(t, err)
	require.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMock_FetchByKey(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()

	inst, err := QueryContractByKey[map[string]any](ctx, c, "pkg:Registry:Institution", "Bob")
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, "mock-institution-001", inst.ContractID)

	missing, err := QueryContractByKey[map[string]any](ctx, c, "pkg:Registry:Unknown", "x")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMock_ExerciseAndCreate(t *testing.T) {
	c := newMockClient(t)
	ctx := context.Background()

	res, err := c.ExerciseChoice(ctx, "pkg:Lending.Pool:Pool", "mock-pool-001", "Deposit", map[string]any{"amount": "10"})
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.JSONEq(t, `{"status":"success"}`, string(res.ExerciseResult))

	created, err := c.CreateContract(ctx, "pkg:Lending.Offer:LendingOffer", map[string]any{"lender": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "pkg:Lending.Offer:LendingOffer", created.TemplateID)
	assert.Regexp(t, regexp.MustCompile(`^mock-LendingOffer-\d+$`), created.ContractID)
}

func TestMock_CreateUsesClock(t *testing.T) {
	c := newMockClient(t, withClock(func() int64 { return 42 }))

	created, err := c.CreateContract(context.Background(), "Loan", nil)
	require.NoError(t, err)
	assert.Equal(t, "mock-Loan-42", created.ContractID)
}

func TestNew_LiveRequiresTransport(t *testing.T) {
	_, err := New(&Config{}, nil)
	require.Error(t, err)

	_, err = New(nil, nil)
	require.Error(t, err)
}

func TestLive_QuerySendsFilter(t *testing.T) {
	var got *jsonapi.QueryRequest
	tr := &fakeTransport{
		QueryFunc: func(_ context.Context, req *jsonapi.QueryRequest) ([]jsonapi.Contract, error) {
			got = req
			return []jsonapi.Contract{{
				ContractID: "cid-1",
				TemplateID: req.TemplateID,
				Payload:    json.RawMessage(`{"owner":"Alice","asset":{"symbol":"CC","amount":"5.0"}}`),
			}}, nil
		},
	}
	c, err := New(&Config{Retry: fastRetry()}, tr)
	require.NoError(t, err)

	out, err := QueryContracts[holdingPayload](context.Background(), c, "pkg:Token:Holding", Query{"owner": "Alice"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "CC", out[0].Payload.Asset.Symbol)
	assert.Equal(t, "pkg:Token:Holding", got.TemplateID)
	assert.Equal(t, "Alice", got.Query["owner"])
}

func TestLive_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	var mu sync.Mutex
	var hooked []int
	tr := &fakeTransport{
		CreateFunc: func(_ context.Context, req *jsonapi.CreateRequest) (*jsonapi.CreateResponse, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("connection refused")
			}
			return &jsonapi.CreateResponse{ContractID: "cid-9"}, nil
		},
	}
	c, err := New(&Config{Retry: fastRetry()}, tr, WithFailureHook(func(op string, attempt int, _ error) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, OpCreate, op)
		hooked = append(hooked, attempt)
	}))
	require.NoError(t, err)

	res, err := c.CreateContract(context.Background(), "pkg:Mod:Loan", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "cid-9", res.ContractID)
	assert.Equal(t, "pkg:Mod:Loan", res.TemplateID)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, hooked)
}

func TestLive_GivesUpAfterMaxAttempts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	tr := &fakeTransport{
		ExerciseFunc: func(context.Context, *jsonapi.ExerciseRequest) (*jsonapi.ExerciseResponse, error) {
			calls++
			return nil, boom
		},
	}
	c, err := New(&Config{Retry: fastRetry()}, tr)
	require.NoError(t, err)

	_, err = c.ExerciseChoice(context.Background(), "T", "cid", "Archive", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, calls)
}

func TestLive_FetchNil(t *testing.T) {
	tr := &fakeTransport{
		FetchFunc: func(context.Context, *jsonapi.FetchRequest) (*jsonapi.Contract, error) {
			return nil, nil
		},
	}
	c, err := New(&Config{Retry: fastRetry()}, tr)
	require.NoError(t, err)

	out, err := QueryContractByKey[map[string]any](context.Background(), c, "T", "k")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestLive_MalformedPayload(t *testing.T) {
	tr := &fakeTransport{
		QueryFunc: func(context.Context, *jsonapi.QueryRequest) ([]jsonapi.Contract, error) {
			return []jsonapi.Contract{{ContractID: "cid", Payload: json.RawMessage(`"not an object"`)}}, nil
		},
	}
	c, err := New(&Config{Retry: fastRetry()}, tr)
	require.NoError(t, err)

	_, err = QueryContracts[poolPayload](context.Background(), c, "T", nil)
	require.ErrorIs(t, err, jsonapi.ErrMalformedResponse)
}
