// Package service exposes the token bridge and the ledger client to HTTP
// callers.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/canton-ledger-gateway/pkg/app/errors"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/jsonapi"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/ledger"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
	"github.com/chainsafe/canton-ledger-gateway/pkg/transferlog"
)

// ErrJournalDisabled is returned by Transfers when no journal is configured.
var ErrJournalDisabled = errors.New("transfer journal is disabled")

// Ledger is the subset of the ledger client used by the service.
type Ledger interface {
	Query(ctx context.Context, templateID string, query ledger.Query) ([]jsonapi.Contract, error)
	Fetch(ctx context.Context, templateID string, key any) (*jsonapi.Contract, error)
	ExerciseChoice(ctx context.Context, templateID, contractID, choice string, argument any) (*ledger.ExerciseResult, error)
	CreateContract(ctx context.Context, templateID string, payload any) (*ledger.CreateResult, error)
}

// Journal lists journaled token movements.
type Journal interface {
	ListByParty(ctx context.Context, party string, limit int) ([]*transferlog.Entry, error)
}

// Service defines the gateway operations.
//
// Token movements never fail with an error: a rejected movement is a
// TransferResult with status failed. Errors are reserved for invalid input
// and ledger failures.
type Service interface {
	Health(ctx context.Context) *Health
	Balance(ctx context.Context, party, symbol string) (*token.BalanceResult, error)
	Transfer(ctx context.Context, req *token.TransferRequest) (*token.TransferResult, error)
	Mint(ctx context.Context, req *SupplyRequest) (*token.TransferResult, error)
	Burn(ctx context.Context, req *SupplyRequest) (*token.TransferResult, error)
	Transfers(ctx context.Context, party string, limit int) ([]*transferlog.Entry, error)
	QueryContracts(ctx context.Context, req *QueryRequest) ([]jsonapi.Contract, error)
	FetchContract(ctx context.Context, req *FetchRequest) (*jsonapi.Contract, error)
	CreateContract(ctx context.Context, req *CreateRequest) (*ledger.CreateResult, error)
	ExerciseChoice(ctx context.Context, req *ExerciseRequest) (*ledger.ExerciseResult, error)
}

// Config describes the deployment reported by Health.
type Config struct {
	Environment string
	Mode        string
}

type sources interface {
	BalanceSource() string
	TransferSource() string
}

type tokenService struct {
	cfg      Config
	bridge   token.Bridge
	ledger   Ledger
	journal  Journal
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates the gateway service. journal may be nil.
func NewService(cfg Config, bridge token.Bridge, l Ledger, journal Journal, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &tokenService{
		cfg:      cfg,
		bridge:   bridge,
		ledger:   l,
		journal:  journal,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (s *tokenService) Health(ctx context.Context) *Health {
	h := &Health{
		Healthy:     s.bridge.IsHealthy(ctx),
		Environment: s.cfg.Environment,
		Mode:        s.cfg.Mode,
	}
	if src, ok := s.bridge.(sources); ok {
		h.BalanceSource = src.BalanceSource()
		h.TransferSource = src.TransferSource()
	}
	return h
}

func (s *tokenService) Balance(ctx context.Context, party, symbol string) (*token.BalanceResult, error) {
	if party == "" {
		return nil, apperrors.BadRequestError(nil, "party is required")
	}
	return s.bridge.GetBalance(ctx, party, symbol), nil
}

func (s *tokenService) Transfer(ctx context.Context, req *token.TransferRequest) (*token.TransferResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid transfer request: "+err.Error())
	}
	return s.bridge.Transfer(ctx, req), nil
}

func (s *tokenService) Mint(ctx context.Context, req *SupplyRequest) (*token.TransferResult, error) {
	if err := s.validateSupply(req); err != nil {
		return nil, err
	}
	return s.bridge.Mint(ctx, req.Party, req.Token), nil
}

func (s *tokenService) Burn(ctx context.Context, req *SupplyRequest) (*token.TransferResult, error) {
	if err := s.validateSupply(req); err != nil {
		return nil, err
	}
	return s.bridge.Burn(ctx, req.Party, req.Token), nil
}

func (s *tokenService) validateSupply(req *SupplyRequest) error {
	if req == nil {
		return apperrors.BadRequestError(nil, "request body is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return apperrors.BadRequestError(err, "invalid request: "+err.Error())
	}
	if err := req.Token.Validate(); err != nil {
		return apperrors.BadRequestError(err, "invalid request: "+err.Error())
	}
	return nil
}

func (s *tokenService) Transfers(ctx context.Context, party string, limit int) ([]*transferlog.Entry, error) {
	if s.journal == nil {
		return nil, apperrors.NotSupportedError(ErrJournalDisabled, ErrJournalDisabled.Error())
	}
	entries, err := s.journal.ListByParty(ctx, party, limit)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return entries, nil
}

func (s *tokenService) QueryContracts(ctx context.Context, req *QueryRequest) ([]jsonapi.Contract, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	contracts, err := s.ledger.Query(ctx, req.TemplateID, req.Query)
	if err != nil {
		return nil, ledgerError(err)
	}
	return contracts, nil
}

func (s *tokenService) FetchContract(ctx context.Context, req *FetchRequest) (*jsonapi.Contract, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	contract, err := s.ledger.Fetch(ctx, req.TemplateID, req.Key)
	if err != nil {
		return nil, ledgerError(err)
	}
	if contract == nil {
		return nil, apperrors.ResourceNotFoundError(ledger.ErrContractNotFound, "contract not found")
	}
	return contract, nil
}

func (s *tokenService) CreateContract(ctx context.Context, req *CreateRequest) (*ledger.CreateResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	res, err := s.ledger.CreateContract(ctx, req.TemplateID, req.Payload)
	if err != nil {
		return nil, ledgerError(err)
	}
	return res, nil
}

func (s *tokenService) ExerciseChoice(ctx context.Context, req *ExerciseRequest) (*ledger.ExerciseResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	argument := req.Argument
	if len(argument) == 0 {
		argument = json.RawMessage(`{}`)
	}
	res, err := s.ledger.ExerciseChoice(ctx, req.TemplateID, req.ContractID, req.Choice, argument)
	if err != nil {
		return nil, ledgerError(err)
	}
	return res, nil
}

func (s *tokenService) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return apperrors.BadRequestError(err, "invalid request: "+err.Error())
	}
	return nil
}

// ledgerError maps a ledger client failure onto a service error.
func ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrContractNotFound), jsonapi.IsStatus(err, http.StatusNotFound):
		return apperrors.ResourceNotFoundError(err, "contract not found")
	case jsonapi.IsStatus(err, http.StatusBadRequest):
		return apperrors.BadRequestError(err, "ledger rejected the request")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.TimeoutError(err, "ledger request timed out")
	default:
		return apperrors.DependencyError(err, "ledger request failed")
	}
}
