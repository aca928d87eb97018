package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cyberfortress-labs/smartxdr-core/internal/caseadapter"
	"github.com/cyberfortress-labs/smartxdr-core/internal/llm"
	"github.com/cyberfortress-labs/smartxdr-core/internal/promptbuilder"
	"github.com/cyberfortress-labs/smartxdr-core/internal/severity"
)

const (
	maxDescriptionSummaryChars = 1000
	smartxdrSectionHeader      = "--- [SmartXDR AI Analysis"
)

// Result is enrich_ioc's response shape, per spec.md §4.8 step 6.
type Result struct {
	Status             string   `json:"status"`
	Message            string   `json:"message,omitempty"`
	Summary            string   `json:"summary,omitempty"`
	RiskLevel          string   `json:"risk_level,omitempty"`
	Recommendations    []string `json:"recommendations,omitempty"`
	DescriptionUpdated bool     `json:"description_updated"`
	DataSource         string   `json:"data_source,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// Orchestrator implements spec.md §4.8's enrich_ioc operation: fetch a
// report through a case-management adapter, explain it via an
// LLMEnricher, post the analysis as a comment, and optionally fold a
// condensed summary into the IOC's description.
type Orchestrator struct {
	adapter  caseadapter.Adapter
	enricher *LLMEnricher
	provider llm.Provider
	prompts  *promptbuilder.Builder

	summaryModel     string
	inputPricePer1M  float64
	outputPricePer1M float64

	now func() time.Time
}

// NewOrchestrator builds an Orchestrator. summaryModel is the cheaper model
// used to condense the analysis for the IOC description (spec.md §4.8
// step 5), distinct from the LLMEnricher's full-size chat model.
func NewOrchestrator(adapter caseadapter.Adapter, enricher *LLMEnricher, provider llm.Provider, prompts *promptbuilder.Builder, summaryModel string, inputPricePer1M, outputPricePer1M float64) *Orchestrator {
	return &Orchestrator{
		adapter:          adapter,
		enricher:         enricher,
		provider:         provider,
		prompts:          prompts,
		summaryModel:     summaryModel,
		inputPricePer1M:  inputPricePer1M,
		outputPricePer1M: outputPricePer1M,
		now:              time.Now,
	}
}

// EnrichIOC runs the full 6-step flow from spec.md §4.8.
func (o *Orchestrator) EnrichIOC(ctx context.Context, caseID, iocID string, updateDescription bool) (*Result, error) {
	report, err := o.adapter.FetchReport(ctx, caseID, iocID)
	if err != nil {
		return &Result{Status: "error", Error: fmt.Sprintf("fetching report: %v", err)}, nil
	}
	if report == nil {
		return &Result{Status: "no_report", Message: "No enrichment report found for this IOC"}, nil
	}

	iocType := report.IOCType
	if iocType == "" {
		iocType = ClassifyIOC(report.IOCValue)
	}

	explained, err := o.enricher.Explain(ctx, report.RawData, report.IOCValue, iocType)
	if err != nil {
		return &Result{Status: "analysis_failed", Error: err.Error()}, nil
	}

	sourceLabel := "SmartXDR AI Analysis"
	if report.Source != "" {
		sourceLabel += " (source:" + report.Source + ")"
	}
	if err := o.adapter.PostComment(ctx, caseID, iocID, sourceLabel, explained.Analysis); err != nil {
		return &Result{Status: "error", Error: fmt.Sprintf("posting comment: %v", err)}, nil
	}

	result := &Result{
		Status:          "success",
		Summary:         explained.Analysis,
		RiskLevel:       string(explained.RiskLevel),
		Recommendations: explained.Recommendations,
		DataSource:      report.Source,
	}

	if !updateDescription {
		return result, nil
	}

	summary, err := o.summarizeForDescription(ctx, explained.Analysis)
	if err != nil {
		result.Error = fmt.Sprintf("description summary failed: %v", err)
		return result, nil
	}
	result.Summary = summary

	newSection := formatDescriptionSection(summary, explained.RiskLevel, o.now())
	priorDescription := stripPriorSections(report.Description)

	fullDescription := newSection
	if priorDescription != "" {
		fullDescription += "\n\n" + priorDescription
	}

	tags := mergeTags(explained.RiskLevel, report.Source)
	if err := o.adapter.UpdateDescription(ctx, caseID, iocID, fullDescription, tags); err != nil {
		result.Error = fmt.Sprintf("updating description: %v", err)
		return result, nil
	}
	result.DescriptionUpdated = true
	return result, nil
}

// summarizeForDescription condenses analysis to at most
// maxDescriptionSummaryChars characters, skipping the LLM call entirely
// when the analysis is already short enough — mirroring the original
// service's "if already short enough, just clean it" shortcut.
func (o *Orchestrator) summarizeForDescription(ctx context.Context, analysis string) (string, error) {
	clean := strings.TrimSpace(analysis)
	if len(clean) <= maxDescriptionSummaryChars {
		return clean, nil
	}

	messages, err := o.prompts.Build("ioc_description_summary", map[string]string{"analysis": clean})
	if err != nil {
		return "", fmt.Errorf("building summary prompt: %w", err)
	}

	resp, err := o.provider.Complete(ctx, llm.CompletionRequest{
		Model:       o.summaryModel,
		Messages:    messages,
		MaxTokens:   500,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summary llm call failed: %w", err)
	}

	summary := strings.TrimSpace(resp.Content)
	if len(summary) > maxDescriptionSummaryChars {
		summary = summary[:maxDescriptionSummaryChars]
	}
	return summary, nil
}

// formatDescriptionSection builds the timestamped, risk-tagged section
// prepended to an IOC's description.
func formatDescriptionSection(summary string, risk severity.Level, when time.Time) string {
	return fmt.Sprintf("%s %s] ---\nRisk Level: %s\n%s", smartxdrSectionHeader, when.UTC().Format("2006-01-02 15:04 MST"), risk, summary)
}

// stripPriorSections drops any previously-written SmartXDR analysis
// section (and everything generated after it) from an existing
// description, keeping only analyst-authored text that precedes the first
// section header. Go's RE2-backed regexp has no lookahead, so this uses a
// plain substring search instead of a single greedy regex.
func stripPriorSections(description string) string {
	idx := strings.Index(description, smartxdrSectionHeader)
	if idx == -1 {
		return strings.TrimSpace(description)
	}
	return strings.TrimSpace(description[:idx])
}

// mergeTags builds the IOC tag set spec.md §4.8 step 5 requires:
// smartxdr-analyzed, risk:<level>, and source:<intel_source>.
func mergeTags(risk severity.Level, source string) []string {
	tags := []string{"smartxdr-analyzed", "risk:" + strings.ToLower(string(risk))}
	if source != "" {
		tags = append(tags, "source:"+source)
	}
	return tags
}
