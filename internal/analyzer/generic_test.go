package analyzer

import "testing"

func TestGenericRiskScoreEmptyReport(t *testing.T) {
	h := GenericHandler{}
	if got := h.RiskScore(nil); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestGenericRiskScoreStringReport(t *testing.T) {
	h := GenericHandler{}
	if got := h.RiskScore("this host shows clear exploit attempts"); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
}

func TestGenericRiskScoreDetectionRatio(t *testing.T) {
	h := GenericHandler{}
	report := map[string]any{"detected": float64(4), "total": float64(10)}
	got := h.RiskScore(report)
	if got != 60 {
		t.Fatalf("expected 60 (40%% ratio + 20 baseline), got %d", got)
	}
}

func TestGenericRiskScoreMaliciousFlag(t *testing.T) {
	h := GenericHandler{}
	report := map[string]any{"is_malicious": true}
	if got := h.RiskScore(report); got != 80 {
		t.Fatalf("expected 80, got %d", got)
	}
}

func TestGenericRiskScoreBaselineForAnyData(t *testing.T) {
	h := GenericHandler{}
	report := map[string]any{"some_unrecognized_field": "value"}
	if got := h.RiskScore(report); got != 25 {
		t.Fatalf("expected 25 baseline, got %d", got)
	}
}

func TestGenericSummarizeVerdictFromScore(t *testing.T) {
	h := GenericHandler{}
	analyzer := map[string]any{
		"name":   "Custom",
		"report": map[string]any{"score": float64(80)},
	}
	summary := h.Summarize(analyzer)
	if summary["verdict"] != string(VerdictMalicious) {
		t.Fatalf("expected malicious, got %v", summary["verdict"])
	}
}

func TestGenericIsMaliciousThreshold(t *testing.T) {
	h := GenericHandler{}
	if h.IsMalicious(map[string]any{"some_unrecognized_field": "value"}) {
		t.Fatal("baseline score 25 should not be malicious")
	}
	if !h.IsMalicious(map[string]any{"is_malicious": true}) {
		t.Fatal("score 80 should be malicious")
	}
}

func TestGenericExtractStatsListReport(t *testing.T) {
	h := GenericHandler{}
	stats := h.ExtractStats([]any{"a", "b", "c"})
	if stats["count"] != 3 || stats["type"] != "list" {
		t.Fatalf("unexpected stats: %v", stats)
	}
}
