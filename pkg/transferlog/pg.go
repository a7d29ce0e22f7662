package transferlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
)

type pgStore struct {
	db *bun.DB
}

var _ Store = (*pgStore)(nil)

// NewStore creates a postgres implementation of the journal store.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) Record(
	ctx context.Context,
	op string,
	req *token.TransferRequest,
	res *token.TransferResult,
	source string,
) error {
	if req == nil || res == nil {
		return errors.New("request and result are required")
	}
	dao := &TransferDao{
		TransactionID: res.TransactionID,
		Operation:     op,
		Sender:        optional(req.From),
		Receiver:      optional(req.To),
		Symbol:        req.Token.Symbol,
		Status:        string(res.Status),
		Error:         optional(res.Reason()),
		Source:        source,
	}
	// malformed amounts are still journaled, without the numeric column
	if d, err := token.ParseAmount(req.Token.Amount); err == nil {
		dao.Amount = optional(d.String())
	}

	if _, err := s.db.NewInsert().Model(dao).Exec(ctx); err != nil {
		return fmt.Errorf("failed to record %s: %w", op, err)
	}
	return nil
}

func (s *pgStore) ListByParty(ctx context.Context, party string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var daos []TransferDao
	err := s.db.NewSelect().
		Model(&daos).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("sender = ?", party).WhereOr("receiver = ?", party)
		}).
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}

	out := make([]*Entry, 0, len(daos))
	for i := range daos {
		out = append(out, toEntry(&daos[i]))
	}
	return out, nil
}
