package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/jsonapi"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/ledger"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
	"github.com/chainsafe/canton-ledger-gateway/pkg/transferlog"
)

const serviceName = "TokenService"

// logService wraps Service with logging of every call
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the token Service.
// It logs method completion, duration and errors. Token movements that
// produced a failed result are logged as warnings.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{svc: svc, logger: logger}
}

func (ls *logService) done(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Debug(method+" completed", fields...)
}

func (ls *logService) movement(method string, start time.Time, res *token.TransferResult, err error, fields ...zap.Field) {
	if err != nil || res == nil {
		ls.done(method, start, err, fields...)
		return
	}
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.String("transaction_id", res.TransactionID),
		zap.String("status", string(res.Status)),
		zap.Duration("duration", time.Since(start)),
	)
	if res.Failed() {
		ls.logger.Warn(method+" rejected", append(fields, zap.String("reason", res.Reason()))...)
		return
	}
	ls.logger.Info(method+" completed", fields...)
}

func (ls *logService) Health(ctx context.Context) *Health {
	return ls.svc.Health(ctx)
}

func (ls *logService) Balance(ctx context.Context, party, symbol string) (res *token.BalanceResult, err error) {
	defer func(start time.Time) {
		ls.done("Balance", start, err, zap.String("party", party), zap.String("symbol", symbol))
	}(time.Now())
	return ls.svc.Balance(ctx, party, symbol)
}

func (ls *logService) Transfer(ctx context.Context, req *token.TransferRequest) (res *token.TransferResult, err error) {
	defer func(start time.Time) {
		if req == nil {
			ls.movement("Transfer", start, res, err)
			return
		}
		ls.movement("Transfer", start, res, err,
			zap.String("from", req.From),
			zap.String("to", req.To),
			zap.String("symbol", req.Token.Symbol),
			zap.String("amount", req.Token.Amount),
		)
	}(time.Now())
	return ls.svc.Transfer(ctx, req)
}

func (ls *logService) Mint(ctx context.Context, req *SupplyRequest) (res *token.TransferResult, err error) {
	defer func(start time.Time) {
		ls.movement("Mint", start, res, err, supplyFields(req)...)
	}(time.Now())
	return ls.svc.Mint(ctx, req)
}

func (ls *logService) Burn(ctx context.Context, req *SupplyRequest) (res *token.TransferResult, err error) {
	defer func(start time.Time) {
		ls.movement("Burn", start, res, err, supplyFields(req)...)
	}(time.Now())
	return ls.svc.Burn(ctx, req)
}

func (ls *logService) Transfers(ctx context.Context, party string, limit int) (res []*transferlog.Entry, err error) {
	defer func(start time.Time) {
		ls.done("Transfers", start, err, zap.String("party", party), zap.Int("entries", len(res)))
	}(time.Now())
	return ls.svc.Transfers(ctx, party, limit)
}

func (ls *logService) QueryContracts(ctx context.Context, req *QueryRequest) (res []jsonapi.Contract, err error) {
	defer func(start time.Time) {
		ls.done("QueryContracts", start, err, zap.String("template_id", templateOf(req)), zap.Int("contracts", len(res)))
	}(time.Now())
	return ls.svc.QueryContracts(ctx, req)
}

func (ls *logService) FetchContract(ctx context.Context, req *FetchRequest) (res *jsonapi.Contract, err error) {
	defer func(start time.Time) {
		var tid string
		if req != nil {
			tid = req.TemplateID
		}
		ls.done("FetchContract", start, err, zap.String("template_id", tid))
	}(time.Now())
	return ls.svc.FetchContract(ctx, req)
}

func (ls *logService) CreateContract(ctx context.Context, req *CreateRequest) (res *ledger.CreateResult, err error) {
	defer func(start time.Time) {
		fields := []zap.Field{}
		if req != nil {
			fields = append(fields, zap.String("template_id", req.TemplateID))
		}
		if res != nil {
			fields = append(fields, zap.String("contract_id", res.ContractID))
		}
		ls.done("CreateContract", start, err, fields...)
	}(time.Now())
	return ls.svc.CreateContract(ctx, req)
}

func (ls *logService) ExerciseChoice(ctx context.Context, req *ExerciseRequest) (res *ledger.ExerciseResult, err error) {
	defer func(start time.Time) {
		fields := []zap.Field{}
		if req != nil {
			fields = append(fields,
				zap.String("template_id", req.TemplateID),
				zap.String("contract_id", req.ContractID),
				zap.String("choice", req.Choice),
			)
		}
		ls.done("ExerciseChoice", start, err, fields...)
	}(time.Now())
	return ls.svc.ExerciseChoice(ctx, req)
}

func supplyFields(req *SupplyRequest) []zap.Field {
	if req == nil {
		return nil
	}
	return []zap.Field{
		zap.String("party", req.Party),
		zap.String("symbol", req.Token.Symbol),
		zap.String("amount", req.Token.Amount),
	}
}

func templateOf(req *QueryRequest) string {
	if req == nil {
		return ""
	}
	return req.TemplateID
}
