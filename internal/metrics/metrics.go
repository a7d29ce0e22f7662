package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerRequestsTotal counts ledger client operations by outcome
	LedgerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_requests_total",
			Help: "Total number of ledger client operations",
		},
		[]string{"operation", "status"},
	)

	// LedgerRequestRetries counts failed attempts that were retried or exhausted
	LedgerRequestRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_request_retries_total",
			Help: "Total number of failed ledger request attempts",
		},
		[]string{"operation"},
	)

	// LedgerRequestDuration tracks JSON API round trip time
	LedgerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_request_duration_seconds",
			Help:    "JSON API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// TokenBridgeOperations counts token bridge operations by backend and result status
	TokenBridgeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_bridge_operations_total",
			Help: "Total number of token bridge operations",
		},
		[]string{"backend", "operation", "status"},
	)

	// TokenBridgeSource reports the active fallback source (1) per kind
	TokenBridgeSource = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "token_bridge_source",
			Help: "Currently selected token bridge source by kind (balance, transfer)",
		},
		[]string{"kind", "source"},
	)

	// JournalErrorsTotal counts failures to persist transfer results
	JournalErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_journal_errors_total",
			Help: "Total number of transfer journal write failures",
		},
		[]string{"operation"},
	)
)

// SetSource marks source as the active one for kind and clears the others.
func SetSource(kind, source string, all ...string) {
	for _, s := range all {
		TokenBridgeSource.WithLabelValues(kind, s).Set(0)
	}
	TokenBridgeSource.WithLabelValues(kind, source).Set(1)
}
