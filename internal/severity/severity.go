// Package severity centralizes risk-level thresholds, recommended-action
// tables, and attack-pattern descriptions, grounded on
// original_source/app/core/severity.py's SeverityManager. Two distinct
// threshold tables are used in SPEC_FULL.md: spec.md §4.9's alert risk
// score (70/50/30, matching the original's default table verbatim) and
// §4.8's IOC enrichment risk score (80/60/30, spec-mandated and distinct
// from the alert table) — both are instances of the same Manager type.
package severity

import "fmt"

// Level is a risk/severity label.
type Level string

const (
	Critical Level = "CRITICAL"
	High     Level = "HIGH"
	Medium   Level = "MEDIUM"
	Low      Level = "LOW"
)

// Threshold pairs a minimum score with the level it maps to, plus display
// metadata carried over from the original's RiskThreshold dataclass.
type Threshold struct {
	Level       Level
	MinScore    float64
	ColorHex    string
	ColorName   string
	Description string
}

// Manager looks up levels, colors, descriptions, and recommended actions
// for a risk score against a fixed, ordered threshold table (checked
// highest to lowest, first match wins).
type Manager struct {
	thresholds      []Threshold
	recommendations map[Level][]string
}

// NewManager builds a Manager from thresholds (must be ordered highest
// MinScore first) and a level-to-recommendations table.
func NewManager(thresholds []Threshold, recommendations map[Level][]string) *Manager {
	return &Manager{thresholds: thresholds, recommendations: recommendations}
}

// AlertThresholds is spec.md §4.9's alert risk-score table, reproduced
// verbatim from severity.py's default THRESHOLDS.
var AlertThresholds = []Threshold{
	{Level: Critical, MinScore: 70, ColorHex: "#d32f2f", ColorName: "red", Description: "Immediate action required. Critical security incident."},
	{Level: High, MinScore: 50, ColorHex: "#f57c00", ColorName: "orange", Description: "Significant security concern requiring prompt attention."},
	{Level: Medium, MinScore: 30, ColorHex: "#fbc02d", ColorName: "yellow", Description: "Monitor closely. Take precautionary measures."},
	{Level: Low, MinScore: 0, ColorHex: "#388e3c", ColorName: "green", Description: "Routine security activity. Continue standard monitoring."},
}

// EnrichmentThresholds is spec.md §4.8's IOC enrichment risk-level table
// (≥80 CRITICAL, ≥60 HIGH, ≥30 MEDIUM, else LOW) — distinct from
// AlertThresholds per the spec's explicit bands for this operation.
var EnrichmentThresholds = []Threshold{
	{Level: Critical, MinScore: 80, ColorHex: "#d32f2f", ColorName: "red", Description: "Immediate action required. Critical security incident."},
	{Level: High, MinScore: 60, ColorHex: "#f57c00", ColorName: "orange", Description: "Significant security concern requiring prompt attention."},
	{Level: Medium, MinScore: 30, ColorHex: "#fbc02d", ColorName: "yellow", Description: "Monitor closely. Take precautionary measures."},
	{Level: Low, MinScore: 0, ColorHex: "#388e3c", ColorName: "green", Description: "Routine security activity. Continue standard monitoring."},
}

// DefaultRecommendations is severity.py's RECOMMENDATIONS table, reproduced verbatim.
var DefaultRecommendations = map[Level][]string{
	Critical: {
		"IMMEDIATE: Block or isolate affected source IPs",
		"Investigate active sessions from affected IPs",
		"Review and reset credentials for compromised accounts",
		"Escalate to Security Operations Center (SOC)",
		"Document incident for forensic analysis",
	},
	High: {
		"Conduct in-depth analysis of alert patterns",
		"Enable enhanced monitoring for affected assets",
		"Prepare incident response procedures",
		"Alert security team for investigation",
	},
	Medium: {
		"Monitor trends and pattern changes",
		"Investigate high-confidence alerts",
		"Review firewall and access control rules",
		"Update threat intelligence",
	},
	Low: {
		"Continue routine monitoring",
		"Archive alerts for audit trail",
		"Review and update detection rules",
	},
}

// PatternDescriptions is severity.py's PATTERN_DESCRIPTIONS table, used by
// internal/alerts to describe a detected attack pattern.
var PatternDescriptions = map[string]string{
	"reconnaissance":     "Information gathering to identify targets and vulnerabilities",
	"brute_force":        "Credential attack attempts (login, password bruteforce)",
	"lateral_movement":   "Movement within network to compromise additional systems",
	"exfiltration":       "Data theft or unauthorized data transfer",
	"network_attack":     "Network-level attacks (DDoS, flooding, amplification)",
	"malware":            "Malware, trojan, virus, ransomware, or exploit detection",
	"web_attack":         "Web application attacks (SQL injection, XSS, etc.)",
	"blocked_traffic":    "Firewall blocked connections and denied traffic",
	"suspicious_traffic": "Suspicious or anomalous network activity",
	"unknown":            "Unclassified security activity",
}

func PatternDescription(pattern string) string {
	if d, ok := PatternDescriptions[pattern]; ok {
		return d
	}
	return "Security event"
}

func (m *Manager) threshold(score float64) Threshold {
	for _, t := range m.thresholds {
		if score >= t.MinScore {
			return t
		}
	}
	return m.thresholds[len(m.thresholds)-1]
}

func (m *Manager) Level(score float64) Level       { return m.threshold(score).Level }
func (m *Manager) Color(score float64) string      { return m.threshold(score).ColorHex }
func (m *Manager) ColorName(score float64) string  { return m.threshold(score).ColorName }
func (m *Manager) Description(score float64) string { return m.threshold(score).Description }

func (m *Manager) Recommendations(score float64) []string {
	level := m.Level(score)
	if recs, ok := m.recommendations[level]; ok {
		return recs
	}
	return m.recommendations[Low]
}

func (m *Manager) FormatRiskAssessment(score float64) string {
	return fmt.Sprintf("%s RISK (%.1f/100)\n%s", m.Level(score), score, m.Description(score))
}
