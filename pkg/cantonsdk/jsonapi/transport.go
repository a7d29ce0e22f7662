// Package jsonapi is a typed client for the Canton JSON Ledger API.
//
// It performs single attempts only: callers decide whether to retry
// (the ledger client) or to convert failures into values (token bridges).
package jsonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/chainsafe/canton-ledger-gateway/internal/metrics"
)

// Transport issues JSON requests against one participant.
type Transport struct {
	client *resty.Client
	logger *zap.Logger
}

// New creates a Transport for cfg.
func New(cfg *Config, opts ...Option) (*Transport, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	c := *cfg
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	s := applyOptions(opts)

	var rc *resty.Client
	if s.httpClient != nil {
		rc = resty.NewWithClient(s.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(c.BaseURL, "/")).
		SetTimeout(c.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if c.Token != "" {
		rc.SetAuthToken(c.Token)
		info, err := InspectToken(c.Token)
		switch {
		case err != nil:
			s.logger.Warn("Ledger token is not a parseable JWT", zap.Error(err))
		case info.Expired(time.Now()):
			s.logger.Warn("Ledger token is expired",
				zap.String("subject", info.Subject),
				zap.Time("expiry", info.Expiry))
		default:
			s.logger.Info("Using ledger bearer token", zap.String("subject", info.Subject))
		}
	}

	t := &Transport{client: rc, logger: s.logger}
	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		t.logger.Debug("ledger request", zap.String("method", r.Method), zap.String("url", r.URL))
		return nil
	})
	rc.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		t.logger.Debug("ledger response",
			zap.String("method", r.Request.Method),
			zap.String("url", r.Request.URL),
			zap.Int("status", r.StatusCode()),
			zap.Duration("duration", r.Time()))
		return nil
	})

	return t, nil
}

// Query runs a template query. The result is never nil on success.
func (t *Transport) Query(ctx context.Context, req *QueryRequest) ([]Contract, error) {
	var resp queryResponse
	if err := t.do(ctx, http.MethodPost, PathQueries, req, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%s: missing result: %w", PathQueries, ErrMalformedResponse)
	}
	return *resp.Result, nil
}

// Fetch looks a contract up by key. A nil contract means no match.
func (t *Transport) Fetch(ctx context.Context, req *FetchRequest) (*Contract, error) {
	var resp fetchResponse
	if err := t.do(ctx, http.MethodPost, PathFetch, req, &resp); err != nil {
		return nil, err
	}
	raw := bytes.TrimSpace(resp.Result)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: missing result: %w", PathFetch, ErrMalformedResponse)
	}
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var contract Contract
	if err := json.Unmarshal(raw, &contract); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", PathFetch, ErrMalformedResponse, err)
	}
	return &contract, nil
}

// Exercise exercises a choice on a contract.
func (t *Transport) Exercise(ctx context.Context, req *ExerciseRequest) (*ExerciseResponse, error) {
	var resp ExerciseResponse
	if err := t.do(ctx, http.MethodPost, PathExercise, req, &resp); err != nil {
		return nil, err
	}
	if resp.Events == nil {
		resp.Events = []json.RawMessage{}
	}
	return &resp, nil
}

// Create creates a contract.
func (t *Transport) Create(ctx context.Context, req *CreateRequest) (*CreateResponse, error) {
	var resp CreateResponse
	if err := t.do(ctx, http.MethodPost, PathCreate, req, &resp); err != nil {
		return nil, err
	}
	if resp.ContractID == "" {
		return nil, fmt.Errorf("%s: missing contractId: %w", PathCreate, ErrMalformedResponse)
	}
	return &resp, nil
}

// LedgerEnd returns the current ledger end offset.
func (t *Transport) LedgerEnd(ctx context.Context) (int64, error) {
	var resp ledgerEndResponse
	if err := t.do(ctx, http.MethodGet, PathLedgerEnd, nil, &resp); err != nil {
		return 0, err
	}
	if resp.Offset == nil {
		return 0, fmt.Errorf("%s: missing offset: %w", PathLedgerEnd, ErrMalformedResponse)
	}
	return *resp.Offset, nil
}

// ActiveContracts returns the active contract set entries for the request.
func (t *Transport) ActiveContracts(ctx context.Context, req *ActiveContractsRequest) ([]ActiveContractEntry, error) {
	var entries []ActiveContractEntry
	if err := t.do(ctx, http.MethodPost, PathActiveContracts, req, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Ready probes the participant's readiness endpoint with the given timeout.
func (t *Transport) Ready(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return t.do(ctx, http.MethodGet, PathReady, nil, nil)
}

func (t *Transport) do(ctx context.Context, method, path string, body, out any) error {
	req := t.client.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	metrics.LedgerRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Body:       truncateBody(resp.Body()),
		}
	}
	if out == nil {
		return nil
	}

	raw := bytes.TrimSpace(resp.Body())
	if len(raw) == 0 {
		return fmt.Errorf("%s %s: empty body: %w", method, path, ErrMalformedResponse)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrMalformedResponse, err)
	}
	return nil
}
