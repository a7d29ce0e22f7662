// Package api implements app.Runner for the gateway process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/chainsafe/canton-ledger-gateway/pkg/app/httpserver"
	canton "github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/client"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
	"github.com/chainsafe/canton-ledger-gateway/pkg/config"
	"github.com/chainsafe/canton-ledger-gateway/pkg/pgutil"
	tokenservice "github.com/chainsafe/canton-ledger-gateway/pkg/token/service"
	"github.com/chainsafe/canton-ledger-gateway/pkg/transferlog"
)

const defaultRequestTimeout = 60 * time.Second

// Server holds cfg to init the gateway.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new gateway server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("gateway config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging, "gateway")
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ledger gateway",
		zap.String("environment", cfg.Ledger.Environment),
		zap.String("mode", cfg.Ledger.TokenBridgeMode),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	var journal tokenservice.Journal
	opts := []canton.Option{canton.WithLogger(logger)}
	if cfg.Database.Enabled {
		db, err := s.openDB(ctx, logger)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		store := transferlog.NewStore(db)
		journal = store
		opts = append(opts, canton.WithBridgeDecorator(s.journalDecorator(store, logger)))
	}

	client, err := canton.NewFromAppConfig(ctx, cfg, opts...)
	if err != nil {
		return fmt.Errorf("create canton client: %w", err)
	}

	svc := tokenservice.NewService(
		tokenservice.Config{Environment: cfg.Ledger.Environment, Mode: cfg.Ledger.TokenBridgeMode},
		client.Tokens,
		client.Ledger,
		journal,
		logger,
	)

	servers := []*http.Server{s.apiServer(s.setupRouter(tokenservice.NewLog(svc, logger), logger))}
	if cfg.Monitoring.Enabled {
		servers = append(servers, s.metricsServer())
	}

	return httpserver.ServeAndWait(ctx, logger, cfg.Shutdown.Timeout, servers...)
}

func (s *Server) openDB(ctx context.Context, logger *zap.Logger) (*bun.DB, error) {
	db, err := pgutil.ConnectDB(ctx, &s.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	logger.Info("Connected to transfer journal database",
		zap.String("host", s.cfg.Database.Host),
		zap.String("database", s.cfg.Database.Database),
	)
	return db, nil
}

func (s *Server) journalDecorator(store transferlog.Store, logger *zap.Logger) canton.BridgeDecorator {
	opts := []transferlog.Option{transferlog.WithLogger(logger.Named("journal"))}
	if s.cfg.Ledger.IsMock() {
		opts = append(opts, transferlog.WithSource(token.BackendMock))
	}
	return func(b token.Bridge) token.Bridge {
		return transferlog.NewJournaledBridge(b, store, opts...)
	}
}

func (s *Server) setupRouter(svc tokenservice.Service, logger *zap.Logger) chi.Router {
	timeout := s.cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	tokenservice.RegisterRoutes(r, svc, logger)
	return r
}

func (s *Server) apiServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) metricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Monitoring.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
