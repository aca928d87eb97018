// Package enrichment implements spec.md §4.8's IOC enrichment orchestrator:
// pulling a third-party report through a case-management adapter,
// normalizing it through the AnalyzerRegistry, asking an LLM for an
// analyst-facing explanation enriched with organization RAG context, and
// writing the result back as a case comment and (optionally) an IOC
// description update. Grounded on
// original_source/app/services/{enrich_service,llm_service}.py.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cyberfortress-labs/smartxdr-core/internal/analyzer"
	"github.com/cyberfortress-labs/smartxdr-core/internal/llm"
	"github.com/cyberfortress-labs/smartxdr-core/internal/promptbuilder"
	"github.com/cyberfortress-labs/smartxdr-core/internal/severity"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

const (
	maxFindings        = 15
	maxRAGContextChars = 1500
	ragTopK            = 5
)

// ContextProvider is the RAG collaborator LLMEnricher pulls
// organization-specific guidance from, satisfied by *rag.Pipeline.
type ContextProvider interface {
	BuildContextFromQuery(ctx context.Context, text string, topK int, filters *store.Filter, useReranking bool) (string, []string, error)
}

// ExplainResult is the outcome of analyzing one IOC's raw reports.
type ExplainResult struct {
	Analysis        string
	RiskLevel       severity.Level
	Findings        []map[string]any
	Recommendations []string
	Cost            float64
}

// LLMEnricher turns a raw third-party enrichment report into an
// analyst-facing explanation, per spec.md §4.8 step 3.
type LLMEnricher struct {
	registry    *analyzer.Registry
	provider    llm.Provider
	prompts     *promptbuilder.Builder
	rag         ContextProvider
	severityMgr *severity.Manager

	chatModel        string
	inputPricePer1M  float64
	outputPricePer1M float64
}

// NewLLMEnricher builds an LLMEnricher. chatModel is the full-size model
// used for the analysis itself (the cheaper summary model is applied later,
// by Orchestrator, when condensing the analysis for an IOC description).
func NewLLMEnricher(registry *analyzer.Registry, provider llm.Provider, prompts *promptbuilder.Builder, rag ContextProvider, chatModel string, inputPricePer1M, outputPricePer1M float64) *LLMEnricher {
	return &LLMEnricher{
		registry:         registry,
		provider:         provider,
		prompts:          prompts,
		rag:              rag,
		severityMgr:      severity.NewManager(severity.EnrichmentThresholds, severity.DefaultRecommendations),
		chatModel:        chatModel,
		inputPricePer1M:  inputPricePer1M,
		outputPricePer1M: outputPricePer1M,
	}
}

// Explain implements spec.md §4.8 step 3: for each successful analyzer
// sub-report, look up its handler; collect Summarize outputs sorted by
// handler priority descending, capped at maxFindings; compute risk_level
// from the maximum RiskScore across sub-reports; fetch RAG context tailored
// to the IOC type and risk level; call the LLM for an analysis.
func (e *LLMEnricher) Explain(ctx context.Context, rawData any, iocValue, iocType string) (*ExplainResult, error) {
	reports := extractAnalyzerReports(rawData)

	findings, maxRisk := e.collectFindings(reports)
	riskLevel := e.severityMgr.Level(float64(maxRisk))

	ragQuery := buildRAGQuery(iocType, maxRisk)
	ragContext := ""
	if e.rag != nil {
		if text, _, err := e.rag.BuildContextFromQuery(ctx, ragQuery, ragTopK, &store.Filter{}, true); err == nil {
			ragContext = text
		}
	}
	if len(ragContext) > maxRAGContextChars {
		ragContext = ragContext[:maxRAGContextChars] + "..."
	}

	findingsJSON, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("enrichment: marshalling findings: %w", err)
	}

	messages, err := e.prompts.Build("ioc_enrichment", map[string]string{
		"ioc_value":  iocValue,
		"risk_level": string(riskLevel),
		"findings":   string(findingsJSON),
		"context":    ragContext,
	})
	if err != nil {
		return nil, fmt.Errorf("enrichment: building prompt: %w", err)
	}

	model := e.chatModel
	estInputTokens := 0
	for _, m := range messages {
		estInputTokens += llm.EstimateTokens(model, m.Content)
	}
	_ = llm.EstimateCost(model, estInputTokens, 1500, e.inputPricePer1M, e.outputPricePer1M)

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   1500,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("enrichment: llm call failed: %w", err)
	}

	cost := llm.EstimateCost(model, resp.InputTokens, resp.OutputTokens, e.inputPricePer1M, e.outputPricePer1M)

	return &ExplainResult{
		Analysis:        resp.Content,
		RiskLevel:       riskLevel,
		Findings:        findings,
		Recommendations: extractRecommendations(resp.Content),
		Cost:            cost,
	}, nil
}

// collectFindings normalizes every successful analyzer sub-report through
// the registry, returning findings sorted by handler priority descending
// (capped at maxFindings) and the maximum risk score seen.
func (e *LLMEnricher) collectFindings(reports []analyzerReport) ([]map[string]any, int) {
	type scored struct {
		priority int
		finding  map[string]any
	}
	var withPriority []scored
	maxRisk := 0

	for _, r := range reports {
		if !strings.EqualFold(r.Status, "SUCCESS") {
			continue
		}
		handler := e.registry.Get(r.Name)
		if handler == nil {
			continue
		}

		if score := handler.RiskScore(r.Report); score > maxRisk {
			maxRisk = score
		}

		summary := handler.Summarize(map[string]any{
			"name":   r.Name,
			"report": r.Report,
			"status": r.Status,
		})
		if summary == nil {
			continue
		}
		withPriority = append(withPriority, scored{priority: handler.Priority(), finding: summary})
	}

	sort.SliceStable(withPriority, func(i, j int) bool { return withPriority[i].priority > withPriority[j].priority })

	if len(withPriority) > maxFindings {
		withPriority = withPriority[:maxFindings]
	}
	findings := make([]map[string]any, len(withPriority))
	for i, s := range withPriority {
		findings[i] = s.finding
	}
	return findings, maxRisk
}

// analyzerReport is one entry of raw_data's analyzer_reports list.
type analyzerReport struct {
	Name   string
	Status string
	Report any
}

// extractAnalyzerReports pulls the analyzer_reports list out of a raw
// report value of unknown shape (typically map[string]any decoded from
// JSON), tolerating a missing or malformed list.
func extractAnalyzerReports(rawData any) []analyzerReport {
	m, ok := rawData.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := m["analyzer_reports"].([]any)
	if !ok {
		return nil
	}

	var out []analyzerReport
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		status, _ := entry["status"].(string)
		out = append(out, analyzerReport{Name: name, Status: status, Report: entry["report"]})
	}
	return out
}

// buildRAGQuery composes a query tailored to the IOC type and the
// precomputed max risk score, so RAG retrieval favors organization guidance
// relevant to this kind of indicator and its severity.
func buildRAGQuery(iocType string, maxRisk int) string {
	var parts []string
	switch iocType {
	case "ip":
		parts = append(parts, "IP address threat response firewall rules network policy")
	case "domain":
		parts = append(parts, "domain DNS blocking threat intelligence MISP")
	case "hash":
		parts = append(parts, "malware hash file detection endpoint security")
	default:
		parts = append(parts, "threat detection security response")
	}

	switch {
	case maxRisk >= 80:
		parts = append(parts, "critical incident response isolation containment")
	case maxRisk >= 60:
		parts = append(parts, "high risk alert investigation")
	case maxRisk >= 30:
		parts = append(parts, "medium risk monitoring")
	}

	return strings.Join(parts, " ")
}

// extractRecommendations pulls bullet/numbered lines out of free-form LLM
// analysis text, capped at 5 — the same light heuristic extraction the
// original service applies to its AI response rather than asking the model
// for structured output.
func extractRecommendations(analysis string) []string {
	var out []string
	for _, line := range strings.Split(analysis, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		isBullet := strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•")
		isNumbered := len(line) > 0 && line[0] >= '0' && line[0] <= '9' && strings.Contains(line, ".")
		if !isBullet && !isNumbered {
			continue
		}
		out = append(out, strings.TrimLeft(line, "-*•0123456789. "))
		if len(out) == 5 {
			break
		}
	}
	return out
}
