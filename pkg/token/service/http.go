package service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/canton-ledger-gateway/pkg/app/errors"
	apphttp "github.com/chainsafe/canton-ledger-gateway/pkg/app/http"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
)

const maxBodyBytes = 1 << 20

// HTTP serves the gateway endpoints.
type HTTP struct {
	service Service
}

// RegisterRoutes mounts the gateway endpoints on r.
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{service: service}

	r.Get("/health", h.health)
	r.Get("/balances/{party}", apphttp.HandleError(logger, h.balance))
	r.Post("/transfers", apphttp.HandleError(logger, h.transfer))
	r.Get("/transfers/{party}", apphttp.HandleError(logger, h.transfers))
	r.Post("/mint", apphttp.HandleError(logger, h.mint))
	r.Post("/burn", apphttp.HandleError(logger, h.burn))

	r.Route("/contracts", func(r chi.Router) {
		r.Post("/query", apphttp.HandleError(logger, h.queryContracts))
		r.Post("/fetch", apphttp.HandleError(logger, h.fetchContract))
		r.Post("/create", apphttp.HandleError(logger, h.createContract))
		r.Post("/exercise", apphttp.HandleError(logger, h.exerciseChoice))
	})
}

func (h *HTTP) health(w http.ResponseWriter, r *http.Request) {
	res := h.service.Health(r.Context())
	status := http.StatusOK
	if !res.Healthy {
		status = http.StatusServiceUnavailable
	}
	apphttp.WriteJSON(w, status, res)
}

func (h *HTTP) balance(w http.ResponseWriter, r *http.Request) error {
	res, err := h.service.Balance(r.Context(), chi.URLParam(r, "party"), r.URL.Query().Get("symbol"))
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, res)
	return nil
}

func (h *HTTP) transfer(w http.ResponseWriter, r *http.Request) error {
	var req token.TransferRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.Transfer(r.Context(), &req)
	if err != nil {
		return err
	}
	writeResult(w, res)
	return nil
}

func (h *HTTP) mint(w http.ResponseWriter, r *http.Request) error {
	var req SupplyRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.Mint(r.Context(), &req)
	if err != nil {
		return err
	}
	writeResult(w, res)
	return nil
}

func (h *HTTP) burn(w http.ResponseWriter, r *http.Request) error {
	var req SupplyRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.Burn(r.Context(), &req)
	if err != nil {
		return err
	}
	writeResult(w, res)
	return nil
}

func (h *HTTP) transfers(w http.ResponseWriter, r *http.Request) error {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return apperrors.BadRequestError(err, "limit must be a non-negative integer")
		}
		limit = n
	}
	entries, err := h.service.Transfers(r.Context(), chi.URLParam(r, "party"), limit)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, entries)
	return nil
}

func (h *HTTP) queryContracts(w http.ResponseWriter, r *http.Request) error {
	var req QueryRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.QueryContracts(r.Context(), &req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, res)
	return nil
}

func (h *HTTP) fetchContract(w http.ResponseWriter, r *http.Request) error {
	var req FetchRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.FetchContract(r.Context(), &req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, res)
	return nil
}

func (h *HTTP) createContract(w http.ResponseWriter, r *http.Request) error {
	var req CreateRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.CreateContract(r.Context(), &req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusCreated, res)
	return nil
}

func (h *HTTP) exerciseChoice(w http.ResponseWriter, r *http.Request) error {
	var req ExerciseRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	res, err := h.service.ExerciseChoice(r.Context(), &req)
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, res)
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.BadRequestError(err, "request body too large")
		}
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	return nil
}

// writeResult answers 422 for failed movements, with the result as body.
func writeResult(w http.ResponseWriter, res *token.TransferResult) {
	status := http.StatusOK
	if res.Failed() {
		status = http.StatusUnprocessableEntity
	}
	apphttp.WriteJSON(w, status, res)
}
