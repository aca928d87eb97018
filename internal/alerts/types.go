package alerts

import "time"

// LogEntry is one classified log entry as fed into grouping, normalized
// from a logstore.Record.
type LogEntry struct {
	SourceIP    string
	AgentName   string
	Severity    string // INFO, WARNING, or ERROR
	Probability float64
	MLInput     string
	Timestamp   time.Time
}

// Group is spec.md §3's AlertGroup: log entries sharing a (source IP,
// detected pattern, severity) key.
type Group struct {
	GroupKey       string     `json:"group_key"`
	SourceIP       string     `json:"source_ip"`
	Pattern        string     `json:"pattern"`
	Severity       string     `json:"severity"`
	AlertCount     int        `json:"alert_count"`
	AvgProbability float64    `json:"avg_probability"`
	Agents         []string   `json:"agents"`
	SampleAlerts   []LogEntry `json:"sample_alerts"`
}

// Digest is the full result of one summarize_alerts run, spec.md §4.9's
// return shape.
type Digest struct {
	Success            bool    `json:"success"`
	Status             string  `json:"status"`
	Message            string  `json:"message,omitempty"`
	Error              string  `json:"error,omitempty"`
	Count              int     `json:"count"`
	GroupedAlerts      []Group `json:"grouped_alerts"`
	Summary            string  `json:"summary"`
	RiskScore          float64 `json:"risk_score"`
	TimeWindowMinutes  int     `json:"time_window_minutes"`
	Timestamp          string  `json:"timestamp,omitempty"`
	Visualization      string  `json:"visualization,omitempty"`
	AIAnalysis         string  `json:"ai_analysis,omitempty"`
	AIAnalysisCost     float64 `json:"ai_analysis_cost,omitempty"`
}
