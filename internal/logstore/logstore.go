// Package logstore is the out-of-scope "log store" collaborator contract
// spec.md §4.9's AlertSummarizer queries: an external index of
// ML-classified security events. Grounded on
// original_source/app/services/elasticsearch_service.py's alert query
// shape.
package logstore

import (
	"context"
	"time"
)

// Record is one ML-classified log entry, normalized from whatever shape
// the underlying store returns.
type Record struct {
	SourceIP    string
	Agent       string
	Severity    string // one of INFO, WARNING, ERROR
	Probability float64
	MLInput     string
	Timestamp   time.Time
}

// Adapter is the log-store collaborator. QueryAlerts returns records in
// the last windowMinutes whose ML classification is one of
// INFO/WARNING/ERROR, probability >= minProbability, and ml_input is
// present and non-empty — per spec.md §4.9 step 1. sourceIP and
// indexPattern are optional filters; empty strings mean "no filter"/"use
// the adapter's default index".
type Adapter interface {
	QueryAlerts(ctx context.Context, windowMinutes int, minProbability float64, sourceIP, indexPattern string) ([]Record, error)
}
