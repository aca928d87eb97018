package analyzer

import "testing"

func TestVirusTotalRiskScoreBands(t *testing.T) {
	h := VirusTotalHandler{}
	cases := []struct {
		positives int
		wantMin   int
		wantMax   int
	}{
		{0, 0, 0},
		{1, 36, 36},
		{5, 60, 60},
		{6, 64, 64},
		{10, 80, 80},
		{11, 82, 82},
		{50, 100, 100},
	}
	for _, c := range cases {
		report := map[string]any{"positives": float64(c.positives), "total": float64(100)}
		got := h.RiskScore(report)
		if got < c.wantMin || got > c.wantMax {
			t.Errorf("positives=%d: got %d, want in [%d,%d]", c.positives, got, c.wantMin, c.wantMax)
		}
	}
}

func TestVirusTotalRiskScoreV3Format(t *testing.T) {
	h := VirusTotalHandler{}
	report := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"last_analysis_stats": map[string]any{
					"malicious":  float64(8),
					"suspicious": float64(2),
				},
			},
		},
	}
	got := h.RiskScore(report)
	if got != 60+(10-5)*4 {
		t.Fatalf("expected 80, got %d", got)
	}
}

func TestVirusTotalSummarizeV2(t *testing.T) {
	h := VirusTotalHandler{}
	analyzer := map[string]any{
		"name":   "VT",
		"report": map[string]any{"positives": float64(3), "total": float64(60)},
	}
	summary := h.Summarize(analyzer)
	if summary["verdict"] != string(VerdictMalicious) {
		t.Fatalf("expected malicious verdict, got %v", summary["verdict"])
	}
}

func TestVirusTotalSummarizeEmptyReportReturnsNil(t *testing.T) {
	h := VirusTotalHandler{}
	if s := h.Summarize(map[string]any{"name": "VT", "report": nil}); s != nil {
		t.Fatalf("expected nil summary for empty report, got %v", s)
	}
}

func TestVirusTotalExtractStatsV3(t *testing.T) {
	h := VirusTotalHandler{}
	report := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"last_analysis_stats": map[string]any{"malicious": float64(2)},
				"reputation":          float64(-10),
			},
		},
	}
	stats := h.ExtractStats(report)
	if stats["malicious"] != 2 {
		t.Fatalf("expected malicious=2, got %v", stats["malicious"])
	}
	if stats["api_version"] != "v3" {
		t.Fatalf("expected api_version v3, got %v", stats["api_version"])
	}
}

func TestVirusTotalIsMalicious(t *testing.T) {
	h := VirusTotalHandler{}
	report := map[string]any{"positives": float64(10), "total": float64(60)}
	if !h.IsMalicious(report) {
		t.Fatal("expected malicious at 10/60 positives")
	}
}
