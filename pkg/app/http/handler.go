// Package http provides chi-compatible error-returning handlers.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/chainsafe/canton-ledger-gateway/pkg/app/errors"
)

// HandlerFunc defines a function that returns an error for clean error handling
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// ErrorResponse is the body written for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// HandleError wraps an error-returning HandlerFunc into a standard http.HandlerFunc.
//
//	r.Post("/transfers", apphttp.HandleError(logger, h.transfer))
func HandleError(logger *zap.Logger, h HandlerFunc) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(w, logger, r, err)
		}
	}
}

// WriteError writes err as an ErrorResponse. Only the message of a
// ServiceError reaches the client; anything else becomes a 500.
func WriteError(w http.ResponseWriter, logger *zap.Logger, r *http.Request, err error) {
	resp := ErrorResponse{Error: "Unexpected Service Error", Code: http.StatusInternalServerError}

	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		resp = ErrorResponse{Error: svcErr.Message, Code: svcErr.StatusCode()}
	}

	if resp.Code >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", resp.Code),
			zap.Error(err),
		)
	}

	WriteJSON(w, resp.Code, &resp)
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
