package enrichment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cyberfortress-labs/smartxdr-core/internal/analyzer"
	"github.com/cyberfortress-labs/smartxdr-core/internal/caseadapter"
	"github.com/cyberfortress-labs/smartxdr-core/internal/promptbuilder"
)

type fakeAdapter struct {
	report             *caseadapter.Report
	fetchErr           error
	postedComments     []string
	postedSourceLabels []string
	updatedSections    []string
	updatedTags        [][]string
	updateErr          error
}

func (f *fakeAdapter) FetchReport(ctx context.Context, caseID, iocID string) (*caseadapter.Report, error) {
	return f.report, f.fetchErr
}

func (f *fakeAdapter) PostComment(ctx context.Context, caseID, iocID, sourceLabel, comment string) error {
	f.postedSourceLabels = append(f.postedSourceLabels, sourceLabel)
	f.postedComments = append(f.postedComments, comment)
	return nil
}

func (f *fakeAdapter) UpdateDescription(ctx context.Context, caseID, iocID, newSection string, tags []string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedSections = append(f.updatedSections, newSection)
	f.updatedTags = append(f.updatedTags, tags)
	return nil
}

func newTestOrchestrator(t *testing.T, adapter *fakeAdapter, analysisText string) *Orchestrator {
	t.Helper()
	enricher := newTestEnricher(t, analysisText)
	builder := promptbuilder.New()
	builder.RegisterDefaults()
	o := NewOrchestrator(adapter, enricher, &fakeProvider{response: "Short summary."}, builder, "claude-haiku-4-5-20251001", 0.8, 4.0)
	o.now = func() time.Time { return time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC) }
	return o
}

func TestEnrichIOCReturnsNoReportWhenAdapterHasNothing(t *testing.T) {
	adapter := &fakeAdapter{report: nil}
	o := newTestOrchestrator(t, adapter, "analysis")

	result, err := o.EnrichIOC(context.Background(), "1", "10", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "no_report" {
		t.Fatalf("expected no_report status, got %s", result.Status)
	}
}

func TestEnrichIOCSuccessPostsCommentAndUpdatesDescription(t *testing.T) {
	adapter := &fakeAdapter{report: &caseadapter.Report{
		IOCValue: "1.2.3.4",
		IOCType:  "ip",
		Source:   "primary",
		RawData: rawDataWith(map[string]any{
			"name":   "virustotal",
			"status": "SUCCESS",
			"report": vtReportV3(12, 2),
		}),
		Description: "Analyst note about this indicator.",
	}}
	o := newTestOrchestrator(t, adapter, "- Block immediately\nCritical indicator detected.")

	result, err := o.EnrichIOC(context.Background(), "1", "10", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("expected success status, got %s: %s", result.Status, result.Error)
	}
	if !result.DescriptionUpdated {
		t.Fatalf("expected description to be updated, result: %+v", result)
	}
	if result.DataSource != "primary" {
		t.Fatalf("expected data_source=primary, got %q", result.DataSource)
	}
	if len(adapter.postedComments) != 1 {
		t.Fatalf("expected one posted comment, got %d", len(adapter.postedComments))
	}
	if len(adapter.updatedSections) != 1 {
		t.Fatalf("expected one description update, got %d", len(adapter.updatedSections))
	}
	if !strings.Contains(adapter.updatedSections[0], "Analyst note about this indicator.") {
		t.Fatalf("expected prior analyst description preserved, got %q", adapter.updatedSections[0])
	}
	if !strings.Contains(adapter.updatedSections[0], smartxdrSectionHeader) {
		t.Fatal("expected new section header present")
	}
	tags := adapter.updatedTags[0]
	foundRisk, foundSource, foundAnalyzed := false, false, false
	for _, tag := range tags {
		if tag == "smartxdr-analyzed" {
			foundAnalyzed = true
		}
		if strings.HasPrefix(tag, "risk:") {
			foundRisk = true
		}
		if tag == "source:primary" {
			foundSource = true
		}
	}
	if !foundRisk || !foundSource || !foundAnalyzed {
		t.Fatalf("expected smartxdr-analyzed/risk/source tags, got %v", tags)
	}
}

func TestEnrichIOCWithoutDescriptionUpdateSkipsIt(t *testing.T) {
	adapter := &fakeAdapter{report: &caseadapter.Report{
		IOCValue: "evil.com",
		IOCType:  "domain",
		Source:   "misp",
		RawData:  rawDataWith(map[string]any{"name": "misp", "status": "SUCCESS", "report": map[string]any{"response": "Found"}}),
	}}
	o := newTestOrchestrator(t, adapter, "Some analysis text.")

	result, err := o.EnrichIOC(context.Background(), "1", "10", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DescriptionUpdated {
		t.Fatal("expected description not to be updated")
	}
	if len(adapter.updatedSections) != 0 {
		t.Fatal("expected no UpdateDescription call")
	}
}

func TestStripPriorSectionsKeepsAnalystTextOnly(t *testing.T) {
	desc := "Original analyst note.\n\n--- [SmartXDR AI Analysis 2026-01-01 00:00 UTC] ---\nRisk Level: HIGH\nOld summary."
	got := stripPriorSections(desc)
	if got != "Original analyst note." {
		t.Fatalf("unexpected stripped description: %q", got)
	}
}

func TestStripPriorSectionsNoPriorSection(t *testing.T) {
	desc := "Just an analyst note."
	if got := stripPriorSections(desc); got != desc {
		t.Fatalf("expected unchanged description, got %q", got)
	}
}

func TestMergeTagsIncludesRiskAndSource(t *testing.T) {
	tags := mergeTags("HIGH", "virustotal")
	want := []string{"smartxdr-analyzed", "risk:high", "source:virustotal"}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tags)
		}
	}
}

func TestEnrichIOCAnalysisFailurePropagatesError(t *testing.T) {
	adapter := &fakeAdapter{report: &caseadapter.Report{IOCValue: "1.2.3.4", Source: "primary", RawData: nil}}
	enricherPrompts := promptbuilder.New()
	enricherPrompts.RegisterDefaults()
	enricher := NewLLMEnricher(analyzer.NewRegistry(), &fakeProvider{err: assertErr}, enricherPrompts, &fakeContextProvider{}, "claude-sonnet-4-5-20250929", 3.0, 15.0)
	builder := promptbuilder.New()
	builder.RegisterDefaults()
	o := NewOrchestrator(adapter, enricher, &fakeProvider{}, builder, "claude-haiku-4-5-20251001", 0.8, 4.0)

	result, err := o.EnrichIOC(context.Background(), "1", "10", true)
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}
	if result.Status != "analysis_failed" {
		t.Fatalf("expected analysis_failed status, got %s", result.Status)
	}
}

var assertErr = errors.New("llm unavailable")
