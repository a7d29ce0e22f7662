package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/ledger"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/token/mock"
	"github.com/chainsafe/canton-ledger-gateway/pkg/config"
	tokenservice "github.com/chainsafe/canton-ledger-gateway/pkg/token/service"
	"github.com/chainsafe/canton-ledger-gateway/pkg/transferlog"
)

type nopStore struct{ records int }

func (s *nopStore) Record(context.Context, string, *token.TransferRequest, *token.TransferResult, string) error {
	s.records++
	return nil
}

func (s *nopStore) ListByParty(context.Context, string, int) ([]*transferlog.Entry, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server:     config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Ledger:     config.LedgerConfig{Environment: config.EnvironmentSandbox, TokenBridgeMode: config.TokenBridgeModeMock},
		Monitoring: config.MonitoringConfig{Enabled: true, MetricsPort: 9090},
	}
}

func TestRun_NilConfig(t *testing.T) {
	require.Error(t, NewServer(nil).Run())
}

func TestSetupRouter_ServesGateway(t *testing.T) {
	s := NewServer(testConfig())
	bridge, err := mock.New()
	require.NoError(t, err)
	l, err := ledger.New(&ledger.Config{Mock: true}, nil)
	require.NoError(t, err)
	svc := tokenservice.NewService(tokenservice.Config{Mode: "mock"}, bridge, l, nil, zap.NewNop())

	router := s.setupRouter(svc, zap.NewNop())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestJournalDecorator_MockSource(t *testing.T) {
	s := NewServer(testConfig())
	store := &nopStore{}
	bridge, err := mock.New()
	require.NoError(t, err)

	decorated := s.journalDecorator(store, zap.NewNop())(bridge)
	jb, ok := decorated.(*transferlog.JournaledBridge)
	require.True(t, ok)
	assert.Equal(t, token.BackendMock, jb.TransferSource())

	jb.Mint(context.Background(), "Alice", token.Amount{Symbol: "CC", Amount: "1"})
	assert.Equal(t, 1, store.records)
}

func TestServers_Addresses(t *testing.T) {
	s := NewServer(testConfig())
	assert.Equal(t, "127.0.0.1:8080", s.apiServer(http.NotFoundHandler()).Addr)
	assert.Equal(t, "127.0.0.1:9090", s.metricsServer().Addr)
}
