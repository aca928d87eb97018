package rag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the query pipeline, same promauto idiom as
// internal/ratelimit/metrics.go and fyrsmithlabs-contextd/internal/vectorstore/metrics.go.
var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartxdr",
			Subsystem: "rag",
			Name:      "queries_total",
			Help:      "Total number of RAG queries, by terminal status",
		},
		[]string{"status"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartxdr",
			Subsystem: "rag",
			Name:      "cache_lookups_total",
			Help:      "Total number of response cache lookups, by outcome",
		},
		[]string{"outcome"},
	)

	queryCostUSD = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "smartxdr",
			Subsystem: "rag",
			Name:      "query_cost_usd_total",
			Help:      "Cumulative estimated LLM cost spent answering RAG queries",
		},
	)
)
