package alerts

import (
	"fmt"
	"sort"
)

// groupAlerts buckets entries by (source_ip, detected_pattern, severity),
// skipping any entry whose source IP is in whitelist (system
// infrastructure, never analyzed — original_source's WHITELIST_IP_QUERY
// check, applied here rather than in internal/logstore since the original
// applies it in this grouping loop, not the Elasticsearch query).
// Groups are returned sorted by alert_count descending.
func groupAlerts(entries []LogEntry, whitelist map[string]bool) []Group {
	buckets := make(map[string][]LogEntry)
	order := make([]string, 0)

	for _, e := range entries {
		sourceIP := e.SourceIP
		if sourceIP == "" {
			sourceIP = e.AgentName
		}
		if sourceIP == "" {
			sourceIP = "unknown"
		}
		if whitelist[sourceIP] {
			continue
		}

		severity := e.Severity
		if severity == "" {
			severity = "INFO"
		}
		pattern := detectPattern(e.MLInput)
		key := fmt.Sprintf("%s_%s_%s", sourceIP, pattern, severity)

		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		entry := e
		entry.SourceIP = sourceIP
		entry.Severity = severity
		buckets[key] = append(buckets[key], entry)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		items := buckets[key]
		total := 0.0
		agentSet := make(map[string]bool)
		for _, item := range items {
			total += item.Probability
			agentSet[item.AgentName] = true
		}
		agents := make([]string, 0, len(agentSet))
		for a := range agentSet {
			agents = append(agents, a)
		}
		sort.Strings(agents)

		samples := items
		if len(samples) > 5 {
			samples = samples[:5]
		}

		groups = append(groups, Group{
			GroupKey:       key,
			SourceIP:       items[0].SourceIP,
			Pattern:        detectPattern(items[0].MLInput),
			Severity:       items[0].Severity,
			AlertCount:     len(items),
			AvgProbability: round3(total / float64(len(items))),
			Agents:         agents,
			SampleAlerts:   samples,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].AlertCount > groups[j].AlertCount
	})
	return groups
}

func round3(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}

func whitelistSet(ips []string) map[string]bool {
	set := make(map[string]bool, len(ips))
	for _, ip := range ips {
		set[ip] = true
	}
	return set
}
