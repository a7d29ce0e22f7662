package token

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Status is the outcome of a token movement.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// DetailError is the details key carrying the failure reason.
const DetailError = "error"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Amount is a quantity of one token. Amount is a decimal string.
type Amount struct {
	Symbol   string `json:"symbol" validate:"required"`
	Amount   string `json:"amount" validate:"required,numeric"`
	Decimals *int   `json:"decimals,omitempty" validate:"omitempty,min=0,max=18"`
}

// Validate checks that the amount is a well-formed positive decimal.
func (a Amount) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if _, err := ParseAmount(a.Amount); err != nil {
		return err
	}
	return nil
}

// TransferRequest asks to move Token from one party to another.
type TransferRequest struct {
	From      string `json:"from" validate:"required"`
	To        string `json:"to" validate:"required"`
	Token     Amount `json:"token"`
	Reference string `json:"reference,omitempty"`
}

// Validate checks the request.
func (r *TransferRequest) Validate() error {
	if r == nil {
		return errors.New("nil transfer request")
	}
	if err := validate.Struct(r); err != nil {
		return err
	}
	return r.Token.Validate()
}

// TransferResult is the outcome of Transfer, Mint or Burn.
type TransferResult struct {
	TransactionID string         `json:"transactionId"`
	Status        Status         `json:"status"`
	Timestamp     time.Time      `json:"timestamp"`
	Details       map[string]any `json:"details,omitempty"`
}

// Failed reports whether the operation failed.
func (r *TransferResult) Failed() bool {
	return r == nil || r.Status == StatusFailed
}

// Reason returns the failure reason, if any.
func (r *TransferResult) Reason() string {
	if r == nil {
		return "no result"
	}
	s, _ := r.Details[DetailError].(string)
	return s
}

// Completed builds a successful result for the given transaction.
func Completed(transactionID string, details map[string]any) *TransferResult {
	return &TransferResult{
		TransactionID: transactionID,
		Status:        StatusCompleted,
		Timestamp:     time.Now().UTC(),
		Details:       details,
	}
}

// Failed builds a failed result. The transaction id is generated locally
// since no ledger transaction took place.
func Failed(reason error, details map[string]any) *TransferResult {
	d := make(map[string]any, len(details)+1)
	for k, v := range details {
		d[k] = v
	}
	d[DetailError] = reason.Error()
	return &TransferResult{
		TransactionID: LocalTransactionID(),
		Status:        StatusFailed,
		Timestamp:     time.Now().UTC(),
		Details:       d,
	}
}

// LocalTransactionID returns a transaction id that does not refer to the ledger.
func LocalTransactionID() string {
	return "local-" + uuid.NewString()
}

// BalanceResult lists the balances of one party.
type BalanceResult struct {
	Party    string   `json:"party"`
	Balances []Amount `json:"balances"`
}

// EmptyBalance returns a result without balances.
func EmptyBalance(party string) *BalanceResult {
	return &BalanceResult{Party: party, Balances: []Amount{}}
}

// SortBalances orders balances by symbol.
func SortBalances(b []Amount) {
	sort.Slice(b, func(i, j int) bool { return b[i].Symbol < b[j].Symbol })
}
