package analyzer

import "strconv"

// MISPHandler handles MISP event/attribute reports, grounded on
// misp_handler.py.
type MISPHandler struct{}

func (MISPHandler) DisplayName() string { return "MISP" }
func (MISPHandler) Priority() int       { return 90 }

type mispEvent struct {
	ID          string `json:"id"`
	Info        string `json:"info"`
	ThreatLevel string `json:"threat_level"`
	Date        string `json:"date"`
}

// mispItems extracts the list of event-like items from a MISP report,
// which arrives as a bare list, or a dict keyed by "response"/"Attribute"/
// "Event" (itself possibly a single dict rather than a list).
func mispItems(report any) []any {
	if list, ok := asSlice(report); ok {
		return list
	}
	m, ok := asMap(report)
	if !ok {
		return nil
	}
	v, _, found := firstField(m, "response", "Attribute", "Event")
	if !found {
		return nil
	}
	if list, ok := asSlice(v); ok {
		return list
	}
	if single, ok := asMap(v); ok {
		return []any{single}
	}
	return nil
}

func mispEvents(report any, limit int) ([]mispEvent, map[string]bool) {
	items := mispItems(report)
	events := make([]mispEvent, 0, limit)
	tags := make(map[string]bool)

	for _, raw := range items {
		if len(events) >= limit {
			break
		}
		item, ok := asMap(raw)
		if !ok {
			continue
		}
		eventInfo, ok := asMap(item["Event"])
		if !ok {
			eventInfo = item
		}
		info := stringOrEmpty(eventInfo["info"])
		if len(info) > 100 {
			info = info[:100]
		}
		events = append(events, mispEvent{
			ID:          stringOrEmpty(eventInfo["id"]),
			Info:        info,
			ThreatLevel: stringOrEmpty(eventInfo["threat_level_id"]),
			Date:        stringOrEmpty(eventInfo["date"]),
		})

		eventTags, _ := asSlice(eventInfo["Tag"])
		for i, rawTag := range eventTags {
			if i >= 5 {
				break
			}
			if tag, ok := asMap(rawTag); ok {
				if name := stringOrEmpty(tag["name"]); name != "" {
					tags[name] = true
				}
			}
		}
	}
	return events, tags
}

func (MISPHandler) ExtractStats(report any) map[string]any {
	if isEmptyReport(report) {
		return map[string]any{"found": false}
	}
	events, tags := mispEvents(report, 10)

	topEvents := events
	if len(topEvents) > 5 {
		topEvents = topEvents[:5]
	}
	tagList := make([]string, 0, len(tags))
	for t := range tags {
		if len(tagList) >= 10 {
			break
		}
		tagList = append(tagList, t)
	}

	return map[string]any{
		"found":       len(events) > 0,
		"event_count": len(events),
		"events":      topEvents,
		"tags":        tagList,
	}
}

func (MISPHandler) Summarize(analyzer map[string]any) map[string]any {
	name, _ := asString(analyzer["name"])
	if name == "" {
		name = "MISP"
	}
	report := analyzer["report"]

	summary := map[string]any{"analyzer": name, "type": "misp"}
	if isEmptyReport(report) {
		summary["found"] = false
		summary["verdict"] = string(VerdictClean)
		return summary
	}

	events, tags := mispEvents(report, 5)
	tagList := make([]string, 0, len(tags))
	for t := range tags {
		if len(tagList) >= 5 {
			break
		}
		tagList = append(tagList, t)
	}

	summary["found"] = len(events) > 0
	if len(events) > 0 {
		summary["verdict"] = string(VerdictMalicious)
	} else {
		summary["verdict"] = string(VerdictClean)
	}
	summary["event_count"] = len(events)
	summary["events"] = events
	summary["tags"] = tagList
	return summary
}

// RiskScore: found in MISP is a baseline of 70, adjusted by the lowest
// (most severe) threat_level_id among events (1=100, 2=85, 3=70), with a
// +5 bonus per additional event beyond the first, capped at 100.
func (h MISPHandler) RiskScore(report any) int {
	stats := h.ExtractStats(report)
	found, _ := stats["found"].(bool)
	if !found {
		return 0
	}

	baseScore := 70
	events, _ := stats["events"].([]mispEvent)
	maxThreat := 4
	for _, e := range events {
		tl, err := strconv.Atoi(e.ThreatLevel)
		if err != nil {
			continue
		}
		if tl < maxThreat {
			maxThreat = tl
		}
	}

	switch maxThreat {
	case 1:
		baseScore = 100
	case 2:
		baseScore = 85
	case 3:
		baseScore = 70
	}

	eventCount, _ := stats["event_count"].(int)
	if eventCount > 1 {
		baseScore = clampInt(baseScore+(eventCount-1)*5, 0, 100)
	}
	return baseScore
}

func (h MISPHandler) IsMalicious(report any) bool {
	return h.RiskScore(report) > 50
}

