// Package cip56 implements a token bridge that moves tokens with ledger
// commands against an operator-owned token contract.
//
// The bridge talks to the JSON API transport directly. Every fault is
// converted into a failed result or an empty balance.
package cip56

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/jsonapi"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/values"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errNoTokenContract = errors.New("token contract id is not configured")

// Ledger is the subset of the JSON API used by the bridge.
type Ledger interface {
	Query(ctx context.Context, req *jsonapi.QueryRequest) ([]jsonapi.Contract, error)
	Exercise(ctx context.Context, req *jsonapi.ExerciseRequest) (*jsonapi.ExerciseResponse, error)
	Create(ctx context.Context, req *jsonapi.CreateRequest) (*jsonapi.CreateResponse, error)
	Ready(ctx context.Context, timeout time.Duration) error
}

// Bridge is the compliant transfer bridge.
type Bridge struct {
	cfg    Config
	ledger Ledger
	logger *zap.Logger
}

var _ token.Bridge = (*Bridge)(nil)

// New creates a bridge on top of the given ledger transport.
func New(cfg *Config, l Ledger, opts ...Option) (*Bridge, error) {
	if cfg == nil || l == nil {
		return nil, fmt.Errorf("config and ledger are required")
	}
	c := *cfg
	if err := c.setDefaults(); err != nil {
		return nil, fmt.Errorf("invalid cip56 config: %w", err)
	}
	s := applyOptions(opts)
	return &Bridge{cfg: c, ledger: l, logger: s.logger}, nil
}

// Transfer creates a transfer record contract.
func (b *Bridge) Transfer(ctx context.Context, req *token.TransferRequest) *token.TransferResult {
	return token.Observe(token.BackendCIP56, token.OpTransfer, b.transfer(ctx, req))
}

func (b *Bridge) transfer(ctx context.Context, req *token.TransferRequest) *token.TransferResult {
	if err := req.Validate(); err != nil {
		return token.Failed(err, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.CommandTimeout)
	defer cancel()

	templateID := b.cfg.templateID(TemplateTransferRecord)
	res, err := b.ledger.Create(ctx, &jsonapi.CreateRequest{
		TemplateID: templateID,
		Payload: map[string]any{
			"operator": b.cfg.Operator,
			"sender":   req.From,
			"receiver": req.To,
			"asset": map[string]any{
				"symbol": req.Token.Symbol,
				"amount": req.Token.Amount,
			},
			"reference": req.Reference,
		},
	})
	if err != nil {
		b.logger.Warn("CIP56 transfer failed",
			zap.String("from", req.From),
			zap.String("to", req.To),
			zap.String("symbol", req.Token.Symbol),
			zap.Error(err),
		)
		return token.Failed(err, map[string]any{"backend": token.BackendCIP56})
	}

	return token.Completed(res.ContractID, map[string]any{
		"backend":    token.BackendCIP56,
		"templateId": templateID,
		"contractId": res.ContractID,
	})
}

// Mint exercises MintTokens on the token contract.
func (b *Bridge) Mint(ctx context.Context, party string, amount token.Amount) *token.TransferResult {
	return token.Observe(token.BackendCIP56, token.OpMint, b.exercise(ctx, ChoiceMint, party, amount))
}

// Burn exercises BurnTokens on the token contract.
func (b *Bridge) Burn(ctx context.Context, party string, amount token.Amount) *token.TransferResult {
	return token.Observe(token.BackendCIP56, token.OpBurn, b.exercise(ctx, ChoiceBurn, party, amount))
}

func (b *Bridge) exercise(ctx context.Context, choice, party string, amount token.Amount) *token.TransferResult {
	details := map[string]any{"backend": token.BackendCIP56, "choice": choice}
	if party == "" {
		return token.Failed(token.ErrUnknownParty, details)
	}
	if err := amount.Validate(); err != nil {
		return token.Failed(err, details)
	}
	if b.cfg.TokenContractID == "" {
		return token.Failed(errNoTokenContract, details)
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.CommandTimeout)
	defer cancel()

	res, err := b.ledger.Exercise(ctx, &jsonapi.ExerciseRequest{
		TemplateID: b.cfg.templateID(TemplateTokenContract),
		ContractID: b.cfg.TokenContractID,
		Choice:     choice,
		Argument: map[string]any{
			"owner":  party,
			"amount": amount.Amount,
			"symbol": amount.Symbol,
		},
	})
	if err != nil {
		b.logger.Warn("CIP56 exercise failed",
			zap.String("choice", choice),
			zap.String("party", party),
			zap.Error(err),
		)
		return token.Failed(err, details)
	}

	details["events"] = len(res.Events)
	return token.Completed(transactionID(res.ExerciseResult), details)
}

// GetBalance sums the holdings of party per symbol.
func (b *Bridge) GetBalance(ctx context.Context, party, symbol string) *token.BalanceResult {
	out := token.EmptyBalance(party)

	query := map[string]any{"owner": party}
	if symbol != "" {
		query["asset.symbol"] = symbol
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.CommandTimeout)
	defer cancel()

	contracts, err := b.ledger.Query(ctx, &jsonapi.QueryRequest{
		TemplateID: b.cfg.templateID(TemplateHolding),
		Query:      query,
	})
	if err != nil {
		b.logger.Debug("CIP56 holdings query failed", zap.String("party", party), zap.Error(err))
		return out
	}

	totals := make(map[string]decimal.Decimal)
	for _, c := range contracts {
		rec, ok := values.Decode(c.Payload)
		if !ok || values.Party(rec["owner"]) != party {
			continue
		}
		asset, ok := values.Nested(rec["asset"])
		if !ok {
			continue
		}
		sym := values.Text(asset["symbol"])
		amt, ok := values.Numeric(asset["amount"])
		if sym == "" || !ok {
			continue
		}
		if symbol != "" && sym != symbol {
			continue
		}
		totals[sym] = totals[sym].Add(amt)
	}

	for sym, amt := range totals {
		out.Balances = append(out.Balances, token.Amount{Symbol: sym, Amount: token.FormatAmount(amt)})
	}
	token.SortBalances(out.Balances)
	return out
}

// IsHealthy probes the participant readiness endpoint.
func (b *Bridge) IsHealthy(ctx context.Context) bool {
	if err := b.ledger.Ready(ctx, HealthTimeout); err != nil {
		b.logger.Debug("CIP56 readiness probe failed", zap.Error(err))
		return false
	}
	return true
}

// transactionID extracts the ledger transaction id from an exercise result.
// The result is either a plain id or an object carrying one.
func transactionID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	if rec, ok := values.Decode(raw); ok {
		for _, key := range []string{"transactionId", "updateId", "contractId"} {
			if id := values.Text(rec[key]); id != "" {
				return id
			}
		}
	}
	return token.LocalTransactionID()
}
