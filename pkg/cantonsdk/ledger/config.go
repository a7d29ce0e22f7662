package ledger

import (
	"github.com/chainsafe/canton-ledger-gateway/pkg/cantonsdk/retry"
)

// Config contains the settings of the ledger client.
type Config struct {
	// Mock makes every operation synthesize a deterministic response
	// instead of calling the participant.
	Mock bool

	Retry *retry.Config
}
