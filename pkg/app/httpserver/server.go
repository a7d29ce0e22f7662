// Package httpserver runs HTTP servers until the process is asked to stop.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultShutdownTimeout is used when no positive timeout is configured.
const DefaultShutdownTimeout = 30 * time.Second

// ServeAndWait starts every server in its own goroutine and blocks until ctx
// is canceled or one of them fails. All servers are then shut down
// gracefully within shutdownTimeout.
//
// The first unexpected serve error is returned, otherwise the first shutdown
// error.
func ServeAndWait(ctx context.Context, logger *zap.Logger, shutdownTimeout time.Duration, servers ...*http.Server) error {
	if len(servers) == 0 {
		return fmt.Errorf("no http server to run")
	}
	for _, srv := range servers {
		if srv == nil {
			return fmt.Errorf("nil http server")
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Info("HTTP server listening", zap.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("%s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errCh:
		logger.Error("HTTP server error", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down HTTP servers", zap.Duration("timeout", shutdownTimeout))

	var shutdownErr error
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", zap.String("address", srv.Addr), zap.Error(err))
			if shutdownErr == nil {
				shutdownErr = fmt.Errorf("http shutdown: %w", err)
			}
		}
	}

	if runErr != nil {
		return fmt.Errorf("http server failed: %w", runErr)
	}
	if shutdownErr != nil {
		return shutdownErr
	}

	logger.Info("HTTP servers stopped")
	return nil
}
