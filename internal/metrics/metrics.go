// Package metrics exposes prometheus collectors for engine outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TxExecutions counts Execute calls per engine and outcome.
	TxExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coincore",
		Name:      "tx_executions_total",
		Help:      "Executed transactions by engine and outcome.",
	}, []string{"engine", "outcome"})

	// ValidationFailures counts recovered validation failures by state.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coincore",
		Name:      "tx_validation_failures_total",
		Help:      "Validation failures by resulting state.",
	}, []string{"state"})

	// QuoteRefreshes counts quote engine refreshes by pair.
	QuoteRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coincore",
		Name:      "quote_refreshes_total",
		Help:      "Quote refreshes by pair.",
	}, []string{"pair"})
)
