package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the shared rate/cost limiter, grounded on
// fyrsmithlabs-contextd/internal/vectorstore/metrics.go's promauto idiom:
// package-level collectors registered once at init, updated from plain
// method calls rather than threading a registry through every caller.
var (
	callsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartxdr",
			Subsystem: "ratelimit",
			Name:      "calls_rejected_total",
			Help:      "Total number of LLM calls rejected by the limiter, by reason",
		},
		[]string{"reason"},
	)

	dailyCostUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "smartxdr",
			Subsystem: "ratelimit",
			Name:      "daily_cost_usd",
			Help:      "Running actual LLM cost recorded for the current local day",
		},
	)

	callsInWindow = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "smartxdr",
			Subsystem: "ratelimit",
			Name:      "calls_in_window",
			Help:      "Number of LLM calls recorded in the current rolling one-minute window",
		},
	)
)
