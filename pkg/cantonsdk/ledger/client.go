// Package ledger implements the generic Canton ledger client.
//
// It issues contract queries, point lookups, choice exercises and contract
// creations against the JSON Ledger API. In mock mode every operation is
// answered from embedded fixtures without any network traffic. Live calls
// run under a bounded retry policy.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chainsafe/canton-ledger-gateway/internal/metrics"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/jsonapi"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/retry"

	"go.uber.org/zap"
)

// ErrContractNotFound is returned by callers that require a contract
// which the ledger does not know.
var ErrContractNotFound = errors.New("contract not found")

// Operation names used for logging and metrics.
const (
	OpQuery    = "query"
	OpFetch    = "fetch"
	OpExercise = "exercise"
	OpCreate   = "create"
)

// Transport is the subset of the JSON API used by the client.
type Transport interface {
	Query(ctx context.Context, req *jsonapi.QueryRequest) ([]jsonapi.Contract, error)
	Fetch(ctx context.Context, req *jsonapi.FetchRequest) (*jsonapi.Contract, error)
	Exercise(ctx context.Context, req *jsonapi.ExerciseRequest) (*jsonapi.ExerciseResponse, error)
	Create(ctx context.Context, req *jsonapi.CreateRequest) (*jsonapi.CreateResponse, error)
}

// Contract is a ledger contract with a typed payload.
type Contract[T any] struct {
	ContractID  string   `json:"contractId"`
	TemplateID  string   `json:"templateId"`
	Payload     T        `json:"payload"`
	Signatories []string `json:"signatories"`
	Observers   []string `json:"observers"`
}

// ExerciseResult is the outcome of a choice exercise.
type ExerciseResult struct {
	ExerciseResult json.RawMessage   `json:"exerciseResult"`
	Events         []json.RawMessage `json:"events"`
}

// CreateResult identifies a newly created contract.
type CreateResult struct {
	ContractID string `json:"contractId"`
	TemplateID string `json:"templateId"`
}

// Client is the ledger client. It is safe for concurrent use.
type Client struct {
	transport Transport
	mock      bool
	fixtures  fixtureSet
	retry     *retry.Retry
	logger    *zap.Logger
	onFailure FailureHook
	now       func() int64
}

// New creates a ledger client. The transport may be nil in mock mode.
func New(cfg *Config, transport Transport, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	s := applyOptions(opts)

	c := &Client{
		transport: transport,
		mock:      cfg.Mock,
		logger:    s.logger,
		onFailure: s.onFailure,
		now:       s.now,
	}
	if c.now == nil {
		c.now = func() int64 { return time.Now().UnixNano() }
	}

	if cfg.Mock {
		fixtures, err := loadFixtures(fixturesYAML)
		if err != nil {
			return nil, err
		}
		c.fixtures = fixtures
		s.logger.Info("Ledger client running in mock mode", zap.Int("fixture_templates", len(fixtures)))
		return c, nil
	}

	if transport == nil {
		return nil, fmt.Errorf("transport is required in live mode")
	}
	r, err := retry.New(cfg.Retry, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	c.retry = r
	return c, nil
}

// IsMock reports whether the client synthesizes responses.
func (c *Client) IsMock() bool { return c.mock }

// Query returns the raw contracts of templateID matching query. In mock mode
// the query filters the fixtures too, so a known template can yield an empty
// list when no fixture matches.
func (c *Client) Query(ctx context.Context, templateID string, query Query) ([]jsonapi.Contract, error) {
	if c.mock {
		return c.fixtures.contracts(templateID, query)
	}

	var out []jsonapi.Contract
	err := c.withRetry(ctx, OpQuery, func(ctx context.Context) error {
		res, err := c.transport.Query(ctx, &jsonapi.QueryRequest{TemplateID: templateID, Query: query})
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", templateID, err)
	}
	return out, nil
}

// Fetch looks up a contract by key. A nil contract means no match.
func (c *Client) Fetch(ctx context.Context, templateID string, key any) (*jsonapi.Contract, error) {
	if c.mock {
		all, err := c.fixtures.contracts(templateID, nil)
		if err != nil || len(all) == 0 {
			return nil, err
		}
		return &all[0], nil
	}

	var out *jsonapi.Contract
	err := c.withRetry(ctx, OpFetch, func(ctx context.Context) error {
		res, err := c.transport.Fetch(ctx, &jsonapi.FetchRequest{TemplateID: templateID, Key: key})
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", templateID, err)
	}
	return out, nil
}

// ExerciseChoice exercises choice on the given contract.
func (c *Client) ExerciseChoice(
	ctx context.Context,
	templateID, contractID, choice string,
	argument any,
) (*ExerciseResult, error) {
	if c.mock {
		c.logger.Debug("Mock exercise",
			zap.String("template_id", templateID),
			zap.String("contract_id", contractID),
			zap.String("choice", choice),
		)
		return &ExerciseResult{
			ExerciseResult: json.RawMessage(`{"status":"success"}`),
			Events:         []json.RawMessage{},
		}, nil
	}

	var out *ExerciseResult
	err := c.withRetry(ctx, OpExercise, func(ctx context.Context) error {
		res, err := c.transport.Exercise(ctx, &jsonapi.ExerciseRequest{
			TemplateID: templateID,
			ContractID: contractID,
			Choice:     choice,
			Argument:   argument,
		})
		if err != nil {
			return err
		}
		out = &ExerciseResult{ExerciseResult: res.ExerciseResult, Events: res.Events}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("exercise %s on %s: %w", choice, contractID, err)
	}
	return out, nil
}

// CreateContract creates a contract of templateID with payload.
func (c *Client) CreateContract(ctx context.Context, templateID string, payload any) (*CreateResult, error) {
	if c.mock {
		return &CreateResult{
			ContractID: mockContractID(templateID, c.now()),
			TemplateID: templateID,
		}, nil
	}

	var out *CreateResult
	err := c.withRetry(ctx, OpCreate, func(ctx context.Context) error {
		res, err := c.transport.Create(ctx, &jsonapi.CreateRequest{TemplateID: templateID, Payload: payload})
		if err != nil {
			return err
		}
		out = &CreateResult{ContractID: res.ContractID, TemplateID: res.TemplateID}
		if out.TemplateID == "" {
			out.TemplateID = templateID
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", templateID, err)
	}
	return out, nil
}

func (c *Client) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := c.retry.Do(ctx, func(attempt int) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		metrics.LedgerRequestRetries.WithLabelValues(op).Inc()
		c.logger.Warn("Ledger request attempt failed",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.retry.MaxAttempts()),
			zap.Error(err),
		)
		if c.onFailure != nil {
			c.onFailure(op, attempt, err)
		}
		return err
	})
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.LedgerRequestsTotal.WithLabelValues(op, status).Inc()
	return err
}

// QueryContracts returns the contracts of templateID matching query, with
// payloads decoded into T. Mock mode applies query to the fixtures; pass a
// nil query to get every fixture of a known template.
func QueryContracts[T any](ctx context.Context, c *Client, templateID string, query Query) ([]*Contract[T], error) {
	raw, err := c.Query(ctx, templateID, query)
	if err != nil {
		return nil, err
	}
	out := make([]*Contract[T], 0, len(raw))
	for i := range raw {
		ct, err := decodeContract[T](&raw[i])
		if err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, nil
}

// QueryContractByKey fetches the contract of templateID identified by key.
// It returns nil when there is no such contract.
func QueryContractByKey[T any](ctx context.Context, c *Client, templateID string, key any) (*Contract[T], error) {
	raw, err := c.Fetch(ctx, templateID, key)
	if err != nil || raw == nil {
		return nil, err
	}
	return decodeContract[T](raw)
}

func decodeContract[T any](raw *jsonapi.Contract) (*Contract[T], error) {
	ct := &Contract[T]{
		ContractID:  raw.ContractID,
		TemplateID:  raw.TemplateID,
		Signatories: raw.Signatories,
		Observers:   raw.Observers,
	}
	if len(raw.Payload) > 0 {
		if err := json.Unmarshal(raw.Payload, &ct.Payload); err != nil {
			return nil, fmt.Errorf("%w: payload of %s: %v", jsonapi.ErrMalformedResponse, raw.ContractID, err)
		}
	}
	return ct, nil
}
