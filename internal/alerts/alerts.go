package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cyberfortress-labs/smartxdr-core/internal/logstore"
	"github.com/cyberfortress-labs/smartxdr-core/internal/promptbuilder"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rag"
	"github.com/cyberfortress-labs/smartxdr-core/internal/severity"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
	"github.com/google/uuid"
)

const maxPatternSummaryGroups = 5

// RAGQuerier is the subset of *rag.Pipeline the AI-analysis step needs;
// satisfied directly by *rag.Pipeline (ask_rag in the original).
type RAGQuerier interface {
	Query(ctx context.Context, text string, topK int, filters *store.Filter, sessionID string) (*rag.Result, error)
}

// Config holds the summarizer's tunable defaults, sourced from
// config.Config.
type Config struct {
	DefaultWindowMinutes int
	MinProbability       float64
	WhitelistIPs         []string
	EnableVisualization  bool
	EnableAIAnalysis     bool
}

// Summarizer implements spec.md §4.9's summarize_alerts operation.
type Summarizer struct {
	logs      logstore.Adapter
	rag       RAGQuerier
	prompts   *promptbuilder.Builder
	audit     *AuditLog
	severity  *severity.Manager
	whitelist map[string]bool
	cfg       Config
	now       func() time.Time
}

// New builds a Summarizer. rag, prompts, and audit may all be nil: AI
// analysis and digest persistence are both best-effort additions.
func New(logs logstore.Adapter, ragPipeline RAGQuerier, prompts *promptbuilder.Builder, audit *AuditLog, cfg Config) *Summarizer {
	if cfg.DefaultWindowMinutes <= 0 {
		cfg.DefaultWindowMinutes = 60
	}
	if cfg.MinProbability <= 0 {
		cfg.MinProbability = 0.5
	}
	return &Summarizer{
		logs:      logs,
		rag:       ragPipeline,
		prompts:   prompts,
		audit:     audit,
		severity:  severity.NewManager(severity.AlertThresholds, severity.DefaultRecommendations),
		whitelist: whitelistSet(cfg.WhitelistIPs),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Summarize runs the full pipeline: query, group, score, summarize,
// visualize (best-effort), and — when requested — an AI analysis pass.
func (s *Summarizer) Summarize(ctx context.Context, windowMinutes int, sourceIP, indexPattern string) (*Digest, error) {
	if windowMinutes <= 0 {
		windowMinutes = s.cfg.DefaultWindowMinutes
	}

	records, err := s.logs.QueryAlerts(ctx, windowMinutes, s.cfg.MinProbability, sourceIP, indexPattern)
	if err != nil {
		return &Digest{Success: false, Status: "error", Error: fmt.Sprintf("querying log store: %v", err)}, nil
	}
	if len(records) == 0 {
		return &Digest{
			Success:           true,
			Status:            "no_alerts",
			Message:           "No alerts found in the specified time window",
			Count:             0,
			TimeWindowMinutes: windowMinutes,
		}, nil
	}

	entries := make([]LogEntry, len(records))
	for i, r := range records {
		entries[i] = LogEntry{
			SourceIP:    r.SourceIP,
			AgentName:   r.Agent,
			Severity:    r.Severity,
			Probability: r.Probability,
			MLInput:     r.MLInput,
			Timestamp:   r.Timestamp,
		}
	}

	groups := groupAlerts(entries, s.whitelist)
	riskScore := calculateRiskScore(groups)
	summaryText := buildSummary(s.severity, groups, riskScore)

	digest := &Digest{
		Success:           true,
		Status:            "completed",
		Count:             len(records),
		GroupedAlerts:     groups,
		Summary:           summaryText,
		RiskScore:         riskScore,
		TimeWindowMinutes: windowMinutes,
		Timestamp:         s.now().UTC().Format(time.RFC3339),
	}

	if s.cfg.EnableVisualization {
		if viz, err := generateVisualization(groups, riskScore); err == nil && viz != "" {
			digest.Visualization = viz
		}
	}

	if s.cfg.EnableAIAnalysis && s.rag != nil && s.prompts != nil {
		analysis, cost := s.aiAnalysis(ctx, groups, riskScore)
		digest.AIAnalysis = analysis
		digest.AIAnalysisCost = cost
	}

	if s.audit != nil {
		groupsJSON, err := json.Marshal(groups)
		if err != nil {
			groupsJSON = []byte("[]")
		}
		rec := DigestRecord{
			ID:             uuid.NewString(),
			CreatedAt:      s.now(),
			WindowStart:    s.now().Add(-time.Duration(windowMinutes) * time.Minute),
			WindowEnd:      s.now(),
			AlertCount:     digest.Count,
			GroupCount:     len(groups),
			RiskScore:      riskScore,
			RiskLevel:      strings.ToLower(string(s.severity.Level(riskScore))),
			Summary:        summaryText,
			Recommendation: strings.Join(s.severity.Recommendations(riskScore), "; "),
			Groups:         groupsJSON,
		}
		_ = s.audit.Record(ctx, rec)
	}

	return digest, nil
}

// aiAnalysis builds a compact pattern summary and runs it through the RAG
// pipeline (ask_rag in the original), returning a short free-text
// recommendation and its estimated cost. Failures are swallowed, matching
// the original's "log and return empty string" behavior — AI analysis is
// an enrichment of the deterministic summary, never a hard dependency.
func (s *Summarizer) aiAnalysis(ctx context.Context, groups []Group, riskScore float64) (string, float64) {
	top := groups
	if len(top) > maxPatternSummaryGroups {
		top = top[:maxPatternSummaryGroups]
	}

	type patternStat struct {
		count int
		ips   map[string]bool
	}
	stats := make(map[string]*patternStat)
	var order []string
	totalAlerts := 0
	for _, g := range top {
		if _, ok := stats[g.Pattern]; !ok {
			stats[g.Pattern] = &patternStat{ips: make(map[string]bool)}
			order = append(order, g.Pattern)
		}
		stats[g.Pattern].count += g.AlertCount
		stats[g.Pattern].ips[g.SourceIP] = true
		totalAlerts += g.AlertCount
	}

	var patternLines strings.Builder
	for _, pattern := range order {
		st := stats[pattern]
		fmt.Fprintf(&patternLines, "- %s: %d alerts, %d IPs\n", strings.ToUpper(pattern), st.count, len(st.ips))
	}

	messages, err := s.prompts.Build("alert_ai_analysis", map[string]string{
		"risk_score":      fmt.Sprintf("%.1f", riskScore),
		"total_alerts":    strconv.Itoa(totalAlerts),
		"attack_patterns": patternLines.String(),
	})
	if err != nil {
		return "", 0
	}

	var query strings.Builder
	for _, m := range messages {
		query.WriteString(m.Content)
		query.WriteString("\n")
	}

	result, err := s.rag.Query(ctx, query.String(), 5, &store.Filter{}, "")
	if err != nil || result == nil || result.Status != "success" {
		return "", 0
	}
	return result.Answer, result.Cost
}
