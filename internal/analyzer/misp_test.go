package analyzer

import "testing"

func TestMISPRiskScoreNotFound(t *testing.T) {
	h := MISPHandler{}
	if got := h.RiskScore(nil); got != 0 {
		t.Fatalf("expected 0 for no report, got %d", got)
	}
}

func TestMISPRiskScoreHighThreatLevel(t *testing.T) {
	h := MISPHandler{}
	report := map[string]any{
		"Event": []any{
			map[string]any{"Event": map[string]any{"id": "1", "info": "apt campaign", "threat_level_id": "1"}},
		},
	}
	if got := h.RiskScore(report); got != 100 {
		t.Fatalf("expected 100 for threat_level 1, got %d", got)
	}
}

func TestMISPRiskScoreMultipleEventsBonus(t *testing.T) {
	h := MISPHandler{}
	report := map[string]any{
		"Event": []any{
			map[string]any{"Event": map[string]any{"info": "a", "threat_level_id": "3"}},
			map[string]any{"Event": map[string]any{"info": "b", "threat_level_id": "3"}},
			map[string]any{"Event": map[string]any{"info": "c", "threat_level_id": "3"}},
		},
	}
	got := h.RiskScore(report)
	want := 70 + 2*5
	if got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMISPExtractStatsEmptyReport(t *testing.T) {
	h := MISPHandler{}
	stats := h.ExtractStats(map[string]any{})
	found, _ := stats["found"].(bool)
	if found {
		t.Fatal("expected found=false for empty report")
	}
}

func TestMISPSummarizeFoundIsMalicious(t *testing.T) {
	h := MISPHandler{}
	analyzer := map[string]any{
		"name":   "MISP",
		"report": []any{map[string]any{"Event": map[string]any{"info": "known bad ip", "threat_level_id": "2"}}},
	}
	summary := h.Summarize(analyzer)
	if summary["verdict"] != string(VerdictMalicious) {
		t.Fatalf("expected malicious, got %v", summary["verdict"])
	}
}

func TestMISPSummarizeNotFoundIsClean(t *testing.T) {
	h := MISPHandler{}
	summary := h.Summarize(map[string]any{"name": "MISP", "report": nil})
	if summary["verdict"] != string(VerdictClean) {
		t.Fatalf("expected clean, got %v", summary["verdict"])
	}
}
