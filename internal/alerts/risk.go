package alerts

import "math"

// calculateRiskScore reproduces _calculate_risk_score verbatim: a base
// score, a logarithmic volume score (diminishing returns on alert count),
// a severity score where ERROR dominates over WARNING and INFO, a
// (deliberately lightly weighted) ML-confidence score, and an escalation
// bonus for multi-stage attack sequences. Capped at 100, rounded to 0.1.
func calculateRiskScore(groups []Group) float64 {
	if len(groups) == 0 {
		return 0.0
	}

	var total, errorCount, warningCount, infoCount int
	var weightedProbability float64
	for _, g := range groups {
		total += g.AlertCount
		weightedProbability += g.AvgProbability * float64(g.AlertCount)
		switch g.Severity {
		case "ERROR":
			errorCount += g.AlertCount
		case "WARNING":
			warningCount += g.AlertCount
		case "INFO":
			infoCount += g.AlertCount
		}
	}
	if total == 0 {
		return 0.0
	}

	const baseScore = 0.5
	volumeScore := math.Log10(float64(total)+1) * 8

	errorPct := float64(errorCount) / float64(total)
	warningPct := float64(warningCount) / float64(total)
	infoPct := float64(infoCount) / float64(total)
	severityScore := errorPct*40 + warningPct*8 + infoPct*2

	avgConfidence := weightedProbability / float64(total)
	confidenceScore := avgConfidence * 15

	escalationScore := detectEscalation(groups) * 10

	final := baseScore + volumeScore + severityScore + confidenceScore + escalationScore
	final = math.Round(final*10) / 10
	if final > 100 {
		final = 100
	}
	return final
}
