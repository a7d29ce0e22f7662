package client

import (
	"time"

	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/jsonapi"
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/retry"
)

// Token bridge modes.
const (
	ModeMock = "mock"
	ModeLive = "live"
)

// Config contains the configuration required to initialize the SDK client.
// It aggregates all sub-component configurations needed by the SDK.
type Config struct {
	// Mode selects between the in-memory bridge (mock) and the fallback
	// orchestrator over the real ledger (live).
	Mode string

	// Transport is optional in mock mode.
	Transport *jsonapi.Config
	Retry     *retry.Config

	Operator        string
	TokenContractID string
	PackageID       string
	CommandTimeout  time.Duration
}

// IsMock reports whether the client synthesizes ledger responses.
func (c *Config) IsMock() bool {
	return c.Mode == ModeMock
}
