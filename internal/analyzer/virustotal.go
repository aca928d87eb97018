package analyzer

import "strconv"

// VirusTotalHandler handles both VT API v2 (`positives`/`total`) and v3
// (`data.attributes.last_analysis_stats`) report shapes, grounded on
// virustotal_handler.py.
type VirusTotalHandler struct{}

func (VirusTotalHandler) DisplayName() string { return "VirusTotal" }
func (VirusTotalHandler) Priority() int       { return 100 }

func (VirusTotalHandler) ExtractStats(report any) map[string]any {
	if isEmptyReport(report) {
		return map[string]any{"error": "Empty report"}
	}
	if _, ok := asString(report); ok {
		return map[string]any{"error": "Invalid report format"}
	}
	m, ok := asMap(report)
	if !ok {
		return map[string]any{"error": "Invalid report format"}
	}

	if data, ok := asMap(m["data"]); ok {
		attrs, _ := asMap(data["attributes"])
		lastAnalysis, _ := asMap(attrs["last_analysis_stats"])
		tags, _ := asSlice(attrs["tags"])
		if len(tags) > 5 {
			tags = tags[:5]
		}
		country, _ := asString(attrs["country"])
		return map[string]any{
			"malicious":   intOrZero(lastAnalysis["malicious"]),
			"suspicious":  intOrZero(lastAnalysis["suspicious"]),
			"harmless":    intOrZero(lastAnalysis["harmless"]),
			"undetected":  intOrZero(lastAnalysis["undetected"]),
			"reputation":  intOrZero(attrs["reputation"]),
			"tags":        tags,
			"country":     country,
			"api_version": "v3",
		}
	}

	return map[string]any{
		"malicious":   intOrZero(m["positives"]),
		"total":       intOrZero(m["total"]),
		"scan_date":   stringOrEmpty(m["scan_date"]),
		"api_version": "v2",
	}
}

func (h VirusTotalHandler) Summarize(analyzer map[string]any) map[string]any {
	name, _ := asString(analyzer["name"])
	if name == "" {
		name = "VirusTotal"
	}
	report := analyzer["report"]
	if isEmptyReport(report) {
		return nil
	}
	if _, ok := asString(report); ok {
		return nil
	}
	m, ok := asMap(report)
	if !ok {
		return nil
	}

	summary := map[string]any{"analyzer": name, "type": "virustotal"}

	if data, ok := asMap(m["data"]); ok {
		attrs, _ := asMap(data["attributes"])
		lastAnalysis, _ := asMap(attrs["last_analysis_stats"])

		malicious := intOrZero(lastAnalysis["malicious"])
		suspicious := intOrZero(lastAnalysis["suspicious"])
		total := 0
		for _, v := range lastAnalysis {
			total += intOrZero(v)
		}

		verdict := VerdictClean
		if malicious > 0 {
			verdict = VerdictMalicious
		} else if suspicious > 0 {
			verdict = VerdictSuspicious
		}
		summary["verdict"] = string(verdict)
		summary["score"] = sprintDetections(malicious, total)
		summary["reputation"] = intOrZero(attrs["reputation"])

		lastAnalysisResults, _ := asMap(attrs["last_analysis_results"])
		detected := make([]map[string]any, 0, 5)
		for engine, raw := range lastAnalysisResults {
			result, ok := asMap(raw)
			if !ok {
				continue
			}
			if category, _ := asString(result["category"]); category == "malicious" {
				if len(detected) < 5 {
					detected = append(detected, map[string]any{"engine": engine, "result": stringOrEmpty(result["result"])})
				}
			}
		}
		summary["detections"] = detected
	} else {
		positives := intOrZero(m["positives"])
		total := intOrZero(m["total"])
		verdict := VerdictClean
		if positives > 0 {
			verdict = VerdictMalicious
		}
		summary["verdict"] = string(verdict)
		summary["score"] = sprintDetections(positives, total)
	}

	return summary
}

// RiskScore maps detection counts to bands: 0 -> 0, 1-5 -> 36-60,
// 6-10 -> 64-80, >10 -> 82-100 (capped at 100).
func (VirusTotalHandler) RiskScore(report any) int {
	if isEmptyReport(report) {
		return 0
	}
	if _, ok := asString(report); ok {
		return 0
	}
	m, ok := asMap(report)
	if !ok {
		return 0
	}

	var malicious, suspicious int
	if data, ok := asMap(m["data"]); ok {
		attrs, _ := asMap(data["attributes"])
		stats, _ := asMap(attrs["last_analysis_stats"])
		malicious = intOrZero(stats["malicious"])
		suspicious = intOrZero(stats["suspicious"])
	} else {
		malicious = intOrZero(m["positives"])
	}

	totalBad := malicious + suspicious
	switch {
	case totalBad == 0:
		return 0
	case totalBad <= 5:
		return 30 + totalBad*6
	case totalBad <= 10:
		return 60 + (totalBad-5)*4
	default:
		return clampInt(80+(totalBad-10)*2, 0, 100)
	}
}

func (h VirusTotalHandler) IsMalicious(report any) bool {
	return h.RiskScore(report) > 50
}

func intOrZero(v any) int {
	n, _ := asInt(v)
	return n
}

func stringOrEmpty(v any) string {
	s, _ := asString(v)
	return s
}

func sprintDetections(n, total int) string {
	return strconv.Itoa(n) + "/" + strconv.Itoa(total) + " engines detected"
}
