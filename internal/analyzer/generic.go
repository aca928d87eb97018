package analyzer

import "strings"

// GenericHandler is the always-registered fallback handler (priority 10)
// for analyzers with no dedicated handler. It auto-detects common field
// names across vendor report shapes instead of erroring out, grounded on
// generic_handler.py.
type GenericHandler struct{}

func (GenericHandler) DisplayName() string { return "Generic Analyzer" }
func (GenericHandler) Priority() int       { return 10 }

var genericFieldAliases = map[string][]string{
	"malicious":    {"malicious", "is_malicious", "isMalicious"},
	"score":        {"score", "risk_score", "threat_score", "confidence", "abuseConfidenceScore"},
	"verdict":      {"verdict", "result", "status", "classification"},
	"detected":     {"detected", "positive", "positives", "detections"},
	"total":        {"total", "count", "total_reports", "totalReports"},
	"threat_level": {"threat_level", "threat_level_id", "severity"},
	"category":     {"category", "type", "threat_type"},
	"data":         {"data", "results", "response", "report"},
}

// genericFieldOrder fixes iteration order over genericFieldAliases so
// output is deterministic.
var genericFieldOrder = []string{"malicious", "score", "verdict", "detected", "total", "threat_level", "category", "data"}

func (GenericHandler) ExtractStats(report any) map[string]any {
	if isEmptyReport(report) {
		return map[string]any{"found": false}
	}

	if s, ok := asString(report); ok {
		return map[string]any{"found": strings.TrimSpace(s) != "", "type": "string", "length": len(s)}
	}
	if list, ok := asSlice(report); ok {
		return map[string]any{"found": len(list) > 0, "type": "list", "count": len(list)}
	}

	m, ok := asMap(report)
	if !ok {
		return map[string]any{"found": false}
	}

	stats := map[string]any{"found": true, "type": "dict"}
	for _, statName := range genericFieldOrder {
		aliases := genericFieldAliases[statName]
		v, _, found := firstField(m, aliases...)
		if !found {
			continue
		}
		switch val := v.(type) {
		case string, float64, bool, int:
			stats[statName] = val
		case []any:
			stats[statName] = len(val)
		case map[string]any:
			stats[statName] = len(val)
		}
	}
	stats["has_data"] = len(m) > 0
	stats["field_count"] = len(m)
	return stats
}

func (h GenericHandler) Summarize(analyzer map[string]any) map[string]any {
	name, _ := asString(analyzer["name"])
	if name == "" {
		name = "Unknown Analyzer"
	}
	status, _ := asString(analyzer["status"])
	if status == "" {
		status = "UNKNOWN"
	}
	report := analyzer["report"]

	summary := map[string]any{"analyzer": name, "type": "generic", "status": status}

	if isEmptyReport(report) {
		summary["found"] = false
		summary["verdict"] = string(VerdictUnknown)
		return summary
	}

	if s, ok := asString(report); ok {
		summary["found"] = strings.TrimSpace(s) != ""
		summary["verdict"] = string(VerdictUnknown)
		summary["note"] = "String response"
		return summary
	}

	if list, ok := asSlice(report); ok {
		summary["found"] = len(list) > 0
		if len(list) > 0 {
			summary["verdict"] = string(VerdictSuspicious)
		} else {
			summary["verdict"] = string(VerdictUnknown)
		}
		summary["result_count"] = len(list)
		return summary
	}

	stats := h.ExtractStats(report)
	hasData, _ := stats["has_data"].(bool)
	summary["found"] = hasData

	verdict := VerdictUnknown
	switch {
	case asBool(stats["malicious"]):
		verdict = VerdictMalicious
	case stats["detected"] != nil:
		if n, ok := asInt(stats["detected"]); ok && n > 0 {
			verdict = VerdictMalicious
		} else if b, ok := stats["detected"].(bool); ok && b {
			verdict = VerdictMalicious
		}
	case stats["score"] != nil:
		if score, ok := asFloat(stats["score"]); ok {
			switch {
			case score > 70:
				verdict = VerdictMalicious
			case score > 40:
				verdict = VerdictSuspicious
			default:
				verdict = VerdictClean
			}
		}
	case stats["verdict"] != nil:
		raw := strings.ToLower(asAnyString(stats["verdict"]))
		switch {
		case containsAny(raw, "malicious", "bad", "danger", "high"):
			verdict = VerdictMalicious
		case containsAny(raw, "suspicious", "medium", "warning"):
			verdict = VerdictSuspicious
		case containsAny(raw, "clean", "safe", "good", "low"):
			verdict = VerdictClean
		}
	}
	summary["verdict"] = string(verdict)

	for _, key := range []string{"score", "detected", "total", "threat_level", "category"} {
		if v, ok := stats[key]; ok {
			summary[key] = v
		}
	}
	return summary
}

func (GenericHandler) RiskScore(report any) int {
	if isEmptyReport(report) {
		return 0
	}

	if s, ok := asString(report); ok {
		lower := strings.ToLower(s)
		switch {
		case containsAny(lower, "malicious", "threat", "attack", "exploit"):
			return 60
		case containsAny(lower, "suspicious", "warning", "risk"):
			return 40
		case strings.TrimSpace(s) != "":
			return 20
		default:
			return 0
		}
	}

	if list, ok := asSlice(report); ok {
		switch {
		case len(list) > 10:
			return 70
		case len(list) > 5:
			return 50
		case len(list) > 0:
			return 30
		default:
			return 0
		}
	}

	m, ok := asMap(report)
	if !ok {
		return 0
	}

	score := 0
	if v, _, found := firstField(m, "score", "risk_score", "threat_score", "confidence", "abuseConfidenceScore"); found {
		if f, ok := asFloat(v); ok {
			switch {
			case f >= 0 && f <= 1:
				score = maxInt(score, int(f*100))
			case f >= 0 && f <= 100:
				score = maxInt(score, int(f))
			}
		}
	}

	if v, _, found := firstField(m, "positives", "detected"); found {
		if detected, ok := asInt(v); ok && detected > 0 {
			total := detected
			if t, ok := asInt(m["total"]); ok && t > 0 {
				total = t
			}
			ratio := 0.0
			if total > 0 {
				ratio = float64(detected) / float64(total)
			}
			detectionScore := clampInt(int(ratio*100)+20, 0, 100)
			score = maxInt(score, detectionScore)
		}
	}

	for _, f := range []string{"malicious", "is_malicious", "isMalicious", "is_bad"} {
		if b, ok := m[f].(bool); ok && b {
			score = maxInt(score, 80)
			break
		}
	}

	if v, ok := m["threat_level_id"]; ok {
		if tl, ok := asInt(v); ok {
			switch tl {
			case 1:
				score = maxInt(score, 90)
			case 2:
				score = maxInt(score, 70)
			case 3:
				score = maxInt(score, 50)
			}
		}
	}

	if score == 0 && len(m) > 0 {
		score = 25
	}

	return clampInt(score, 0, 100)
}

func (h GenericHandler) IsMalicious(report any) bool {
	return h.RiskScore(report) >= 60
}

func asAnyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
