package transferlog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
	"github.com/chainsafe/canton-ledger-gateway/pkg/pgutil"
	mghelper "github.com/chainsafe/canton-ledger-gateway/pkg/pgutil/migrations"
)

func setupStore(t *testing.T) (context.Context, *pgStore) {
	t.Helper()
	ctx := context.Background()
	db := pgutil.SetupTestDB(t)
	require.NoError(t, mghelper.CreateSchema(ctx, db, &TransferDao{}))
	return ctx, NewStore(db)
}

func transfer(from, to, amount string) *token.TransferRequest {
	return &token.TransferRequest{From: from, To: to, Token: token.Amount{Symbol: "CC", Amount: amount}}
}

func TestPGStore_RecordAndList(t *testing.T) {
	ctx, store := setupStore(t)

	require.NoError(t, store.Record(ctx, token.OpTransfer, transfer("Alice", "Bob", "12.50"),
		token.Completed("tx-1", nil), token.BackendCIP56))
	require.NoError(t, store.Record(ctx, token.OpMint, transfer("", "Alice", "3"),
		token.Completed("tx-2", nil), token.BackendMock))
	require.NoError(t, store.Record(ctx, token.OpTransfer, transfer("Charlie", "Bob", "1"),
		token.Completed("tx-3", nil), token.BackendMock))

	entries, err := store.ListByParty(ctx, "Alice", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, "tx-2", entries[0].TransactionID)
	assert.Empty(t, entries[0].Sender)
	assert.Equal(t, "Alice", entries[0].Receiver)
	assert.Equal(t, token.BackendMock, entries[0].Source)

	assert.Equal(t, "tx-1", entries[1].TransactionID)
	assert.Equal(t, token.OpTransfer, entries[1].Operation)
	assert.Equal(t, string(token.StatusCompleted), entries[1].Status)
	assert.True(t, decimal.RequireFromString("12.5").Equal(decimal.RequireFromString(entries[1].Amount)))
	assert.False(t, entries[1].CreatedAt.IsZero())

	limited, err := store.ListByParty(ctx, "Bob", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "tx-3", limited[0].TransactionID)
}

func TestPGStore_RecordFailure(t *testing.T) {
	ctx, store := setupStore(t)

	res := token.Failed(token.ErrInsufficientBalance, nil)
	require.NoError(t, store.Record(ctx, token.OpTransfer, transfer("Alice", "Bob", "not-a-number"), res, token.BackendMock))

	entries, err := store.ListByParty(ctx, "Bob", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(token.StatusFailed), entries[0].Status)
	assert.Equal(t, token.ErrInsufficientBalance.Error(), entries[0].Error)
	assert.Empty(t, entries[0].Amount)
}

func TestPGStore_RecordRequiresInput(t *testing.T) {
	ctx, store := setupStore(t)
	require.Error(t, store.Record(ctx, token.OpTransfer, nil, nil, token.BackendMock))
}
