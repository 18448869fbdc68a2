package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
)

var deposits = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_deposits_total",
		Help: "How many deposits and withdrawals have been committed, partitioned by whether they were effective immediately or delayed.",
	},
	[]string{"kind"},
)

var replays = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ledger_replays_total",
		Help: "How many full replays of the log have been committed.",
	},
)

var replayEntries = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "ledger_replay_entries",
		Help:    "Number of log entries processed per full replay.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	},
)

var operationErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_operation_errors_total",
		Help: "How many ledger operations failed, partitioned by operation.",
	},
	[]string{"operation"},
)

// Collectors returns the Prometheus collectors of the ledger.
//
// They are not registered automatically.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		deposits,
		replays,
		replayEntries,
		operationErrors,
	}
}
