package transferlog

import (
	"time"

	"github.com/uptrace/bun"
)

// TransferDao maps to the 'transfer_journal' table in PostgreSQL.
type TransferDao struct {
	bun.BaseModel `bun:"table:transfer_journal,alias:tj"`
	ID            int64     `bun:"id,pk,autoincrement"`
	TransactionID string    `bun:"transaction_id,notnull,type:varchar(255)"`
	Operation     string    `bun:"operation,notnull,type:varchar(16)"`
	Sender        *string   `bun:"sender,nullzero,type:varchar(255)"`
	Receiver      *string   `bun:"receiver,nullzero,type:varchar(255)"`
	Symbol        string    `bun:"symbol,notnull,type:varchar(32)"`
	Amount        *string   `bun:"amount,nullzero,type:numeric(38,18)"`
	Status        string    `bun:"status,notnull,type:varchar(16)"`
	Error         *string   `bun:"error,nullzero,type:text"`
	Source        string    `bun:"source,notnull,type:varchar(16)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toEntry(dao *TransferDao) *Entry {
	return &Entry{
		ID:            dao.ID,
		TransactionID: dao.TransactionID,
		Operation:     dao.Operation,
		Sender:        deref(dao.Sender),
		Receiver:      deref(dao.Receiver),
		Symbol:        dao.Symbol,
		Amount:        deref(dao.Amount),
		Status:        dao.Status,
		Error:         deref(dao.Error),
		Source:        dao.Source,
		CreatedAt:     dao.CreatedAt,
	}
}
