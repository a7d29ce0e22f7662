package service

import (
	"encoding/json"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/ledger"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
)

// Health is the gateway health report.
type Health struct {
	Healthy        bool   `json:"healthy"`
	Environment    string `json:"environment"`
	Mode           string `json:"mode"`
	BalanceSource  string `json:"balanceSource,omitempty"`
	TransferSource string `json:"transferSource,omitempty"`
}

// SupplyRequest asks to mint tokens to, or burn tokens from, one party.
type SupplyRequest struct {
	Party string       `json:"party" validate:"required"`
	Token token.Amount `json:"token"`
}

// QueryRequest selects active contracts of one template.
type QueryRequest struct {
	TemplateID string       `json:"templateId" validate:"required"`
	Query      ledger.Query `json:"query,omitempty"`
}

// FetchRequest looks up one contract by key.
type FetchRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
	Key        any    `json:"key" validate:"required"`
}

// CreateRequest creates a contract.
type CreateRequest struct {
	TemplateID string          `json:"templateId" validate:"required"`
	Payload    json.RawMessage `json:"payload" validate:"required"`
}

// ExerciseRequest exercises a choice on a contract.
type ExerciseRequest struct {
	TemplateID string          `json:"templateId" validate:"required"`
	ContractID string          `json:"contractId" validate:"required"`
	Choice     string          `json:"choice" validate:"required"`
	Argument   json.RawMessage `json:"argument,omitempty"`
}
