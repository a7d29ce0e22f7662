// Package transferlog keeps an append-only journal of token movements.
package transferlog

import (
	"context"
	"time"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
)

// DefaultListLimit caps ListByParty when no limit is given.
const DefaultListLimit = 50

// Entry is one journaled transfer, mint or burn.
type Entry struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transactionId"`
	Operation     string    `json:"operation"`
	Sender        string    `json:"sender,omitempty"`
	Receiver      string    `json:"receiver,omitempty"`
	Symbol        string    `json:"symbol"`
	Amount        string    `json:"amount,omitempty"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Store persists journal entries.
type Store interface {
	// Record appends the outcome of op. For mints the request has no
	// sender, for burns no receiver.
	Record(ctx context.Context, op string, req *token.TransferRequest, res *token.TransferResult, source string) error
	// ListByParty returns the newest entries where party is sender or receiver.
	ListByParty(ctx context.Context, party string, limit int) ([]*Entry, error)
}
