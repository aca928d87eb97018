package alerts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cyberfortress-labs/smartxdr-core/internal/severity"
)

// buildSummary builds the deterministic textual summary from
// _build_detailed_summary: risk assessment, attack-pattern breakdown, top
// affected assets, and a recommendations block, all sourced from
// internal/severity's AlertThresholds table.
func buildSummary(mgr *severity.Manager, groups []Group, riskScore float64) string {
	if len(groups) == 0 {
		return buildFallbackSummary(groups)
	}

	var b strings.Builder
	b.WriteString("ML Alert Analysis\n\n")
	b.WriteString("Risk Assessment:\n")
	b.WriteString(mgr.FormatRiskAssessment(riskScore))
	b.WriteString("\n\n")

	b.WriteString("Detected Attack Patterns:\n")
	byPattern := make(map[string][]Group)
	var patternOrder []string
	for _, g := range groups {
		if _, ok := byPattern[g.Pattern]; !ok {
			patternOrder = append(patternOrder, g.Pattern)
		}
		byPattern[g.Pattern] = append(byPattern[g.Pattern], g)
	}
	for _, pattern := range patternOrder {
		members := byPattern[pattern]
		totalAlerts := 0
		probSum := 0.0
		ipSet := make(map[string]bool)
		for _, g := range members {
			totalAlerts += g.AlertCount
			probSum += g.AvgProbability
			ipSet[g.SourceIP] = true
		}
		avgProb := probSum / float64(len(members))

		fmt.Fprintf(&b, "\n  - %s\n", strings.ToUpper(strings.ReplaceAll(pattern, "_", " ")))
		fmt.Fprintf(&b, "    Description: %s\n", severity.PatternDescription(pattern))
		fmt.Fprintf(&b, "    Total Alerts: %d\n", totalAlerts)
		fmt.Fprintf(&b, "    Avg Confidence: %.1f%%\n", avgProb*100)
		fmt.Fprintf(&b, "    Affected IPs: %d\n", len(ipSet))
	}

	b.WriteString("\n\nTop Affected Assets:\n")
	topIPs := make([]Group, len(groups))
	copy(topIPs, groups)
	sort.SliceStable(topIPs, func(i, j int) bool { return topIPs[i].AlertCount > topIPs[j].AlertCount })
	if len(topIPs) > 3 {
		topIPs = topIPs[:3]
	}
	for i, g := range topIPs {
		fmt.Fprintf(&b, "\n  %d. %s\n", i+1, g.SourceIP)
		fmt.Fprintf(&b, "     Alerts: %d\n", g.AlertCount)
		fmt.Fprintf(&b, "     Pattern: %s\n", strings.ToUpper(g.Pattern))
		fmt.Fprintf(&b, "     Severity: %s\n", g.Severity)
		fmt.Fprintf(&b, "     Probability: %.1f%%\n", g.AvgProbability*100)
	}

	b.WriteString("\nRecommended Actions:\n")
	for _, rec := range mgr.Recommendations(riskScore) {
		fmt.Fprintf(&b, "  - %s\n", rec)
	}

	return b.String()
}

// buildFallbackSummary is used when buildSummary's inputs are empty or a
// richer summary otherwise can't be built.
func buildFallbackSummary(groups []Group) string {
	if len(groups) == 0 {
		return "No alerts to summarize."
	}
	total := 0
	errorGroups := 0
	for _, g := range groups {
		total += g.AlertCount
		if g.Severity == "ERROR" {
			errorGroups++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Alert Summary: %d total alerts detected. ", total)
	fmt.Fprintf(&b, "%d with ERROR severity. ", errorGroups)

	seen := make(map[string]bool)
	var patterns []string
	limit := groups
	if len(limit) > 3 {
		limit = limit[:3]
	}
	for _, g := range limit {
		if !seen[g.Pattern] {
			seen[g.Pattern] = true
			patterns = append(patterns, g.Pattern)
		}
	}
	if len(patterns) > 0 && patterns[0] != "unknown" {
		fmt.Fprintf(&b, "Detected patterns: %s. ", strings.Join(patterns, ", "))
	}
	b.WriteString("Review individual alert groups for detailed analysis.")
	return b.String()
}

// buildAlertContext builds the RAG-query-friendly context string fed into
// AI analysis, top 5 groups only, mirroring _build_alert_context.
func buildAlertContext(groups []Group, riskScore float64) string {
	var b strings.Builder
	b.WriteString("ML Alert Summary Context:\n\n")

	top := groups
	if len(top) > 5 {
		top = top[:5]
	}
	for i, g := range top {
		fmt.Fprintf(&b, "Group %d:\n", i+1)
		fmt.Fprintf(&b, "  Source IP: %s\n", g.SourceIP)
		fmt.Fprintf(&b, "  Pattern: %s\n", g.Pattern)
		fmt.Fprintf(&b, "  Severity: %s\n", g.Severity)
		fmt.Fprintf(&b, "  Alert Count: %d\n", g.AlertCount)
		fmt.Fprintf(&b, "  Avg ML Probability: %v\n", g.AvgProbability)
		fmt.Fprintf(&b, "  Agents: %s\n", strings.Join(g.Agents, ", "))
		if len(g.SampleAlerts) > 0 {
			sample := g.SampleAlerts[0].MLInput
			if len(sample) > 100 {
				sample = sample[:100]
			}
			fmt.Fprintf(&b, "  Sample: %s...\n\n", sample)
		} else {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "Overall Risk Score: %v/100\n", riskScore)
	return b.String()
}
