package jsonapi

import (
	"bytes"
	"encoding/json"
)

// JSON Ledger API endpoints.
const (
	PathQueries         = "/v2/queries"
	PathFetch           = "/v2/fetch"
	PathExercise        = "/v2/exercise"
	PathCreate          = "/v2/create"
	PathLedgerEnd       = "/v2/state/ledger-end"
	PathActiveContracts = "/v2/state/active-contracts"
	PathReady           = "/readyz"
)

// Contract is a ledger contract as returned by the query and fetch endpoints.
type Contract struct {
	ContractID  string          `json:"contractId"`
	TemplateID  string          `json:"templateId"`
	Payload     json.RawMessage `json:"payload"`
	Signatories []string        `json:"signatories"`
	Observers   []string        `json:"observers"`
}

// QueryRequest is the body of POST /v2/queries.
type QueryRequest struct {
	TemplateID string         `json:"templateId"`
	Query      map[string]any `json:"query,omitempty"`
}

type queryResponse struct {
	Result *[]Contract `json:"result"`
}

// FetchRequest is the body of POST /v2/fetch.
type FetchRequest struct {
	TemplateID string `json:"templateId"`
	Key        any    `json:"key"`
}

type fetchResponse struct {
	Result json.RawMessage `json:"result"`
}

// ExerciseRequest is the body of POST /v2/exercise.
type ExerciseRequest struct {
	TemplateID string `json:"templateId"`
	ContractID string `json:"contractId"`
	Choice     string `json:"choice"`
	Argument   any    `json:"argument"`
}

// ExerciseResponse is the result of a choice exercise.
type ExerciseResponse struct {
	ExerciseResult json.RawMessage   `json:"exerciseResult"`
	Events         []json.RawMessage `json:"events"`
}

// CreateRequest is the body of POST /v2/create.
type CreateRequest struct {
	TemplateID string `json:"templateId"`
	Payload    any    `json:"payload"`
}

// CreateResponse is the result of a contract creation.
type CreateResponse struct {
	ContractID string `json:"contractId"`
	TemplateID string `json:"templateId"`
}

type ledgerEndResponse struct {
	Offset *int64 `json:"offset"`
}

// TemplateFilter selects a single template. An empty filter list on a
// PartyFilter selects every template visible to the party.
type TemplateFilter struct {
	TemplateID string `json:"templateId"`
}

// PartyFilter restricts active contracts for one party.
type PartyFilter struct {
	TemplateFilters []TemplateFilter `json:"templateFilters"`
}

// TransactionFilter is keyed by party.
type TransactionFilter struct {
	FiltersByParty map[string]PartyFilter `json:"filtersByParty"`
}

// ActiveContractsRequest is the body of POST /v2/state/active-contracts.
type ActiveContractsRequest struct {
	Filter         TransactionFilter `json:"filter"`
	ActiveAtOffset int64             `json:"activeAtOffset"`
}

// ActiveContractEntry is one element of the active contracts response.
// Entries without a created event (e.g. offset checkpoints) are valid.
type ActiveContractEntry struct {
	ContractEntry *struct {
		JsActiveContract *struct {
			CreatedEvent *CreatedEvent `json:"createdEvent"`
		} `json:"JsActiveContract"`
	} `json:"contractEntry"`
}

// CreatedEvent returns the created event carried by the entry, if any.
func (e ActiveContractEntry) CreatedEvent() *CreatedEvent {
	if e.ContractEntry == nil || e.ContractEntry.JsActiveContract == nil {
		return nil
	}
	return e.ContractEntry.JsActiveContract.CreatedEvent
}

// CreatedEvent describes an active contract in the state service.
type CreatedEvent struct {
	ContractID     string          `json:"contractId"`
	TemplateID     string          `json:"templateId"`
	CreateArgument json.RawMessage `json:"createArgument"`
	Payload        json.RawMessage `json:"payload"`
	Signatories    []string        `json:"signatories"`
	Observers      []string        `json:"observers"`
}

// Arguments returns the contract arguments, accepting both the
// createArgument and payload spellings.
func (e *CreatedEvent) Arguments() json.RawMessage {
	if len(bytes.TrimSpace(e.CreateArgument)) > 0 {
		return e.CreateArgument
	}
	return e.Payload
}
