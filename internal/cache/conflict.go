package cache

import (
	"math"
	"regexp"
	"strings"
)

// cosineSimilarity mirrors Tgenz1213-ArchGuard/internal/index/search.go's
// cosineSimilarity: dot product over the product of L2 norms, 0 on length
// mismatch or a zero-norm vector.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// opposingActionPairs lists verb pairs whose presence on opposite sides of
// two queries means they cannot share a cached answer even if semantically
// similar, e.g. "enable X" vs "disable X". Bilingual (Vietnamese/English)
// per the original's _OPPOSITE_ACTIONS table.
var opposingActionPairs = [][2]string{
	{"bật", "tắt"},
	{"mở", "đóng"},
	{"enable", "disable"},
	{"start", "stop"},
	{"on", "off"},
	{"open", "close"},
	{"add", "remove"},
	{"create", "delete"},
	{"install", "uninstall"},
	{"activate", "deactivate"},
	{"allow", "block"},
	{"permit", "deny"},
	{"grant", "revoke"},
}

// entityPattern is one named regex used to extract IOC-like entities from
// query text for conflict detection.
type entityPattern struct {
	name string
	re   *regexp.Regexp
}

// entityPatterns is the full 10-type table from the original's
// _ENTITY_PATTERNS, a superset of the 3 types internal/rag/cache.go uses
// for its own cache-key normalization (that subset only needs to be
// stable and order-independent; this table exists to decide whether two
// queries are about different concrete entities).
var entityPatterns = []entityPattern{
	{"ip", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
	{"ipv6", regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){2,7}[0-9a-fA-F]{1,4}\b`)},
	{"domain", regexp.MustCompile(`\b[a-zA-Z0-9][a-zA-Z0-9-]{0,61}\.[a-zA-Z]{2,}(?:\.[a-zA-Z]{2,})*\b`)},
	{"hash_sha256", regexp.MustCompile(`\b[a-fA-F0-9]{64}\b`)},
	{"hash_sha1", regexp.MustCompile(`\b[a-fA-F0-9]{40}\b`)},
	{"hash_md5", regexp.MustCompile(`\b[a-fA-F0-9]{32}\b`)},
	{"cve", regexp.MustCompile(`(?i)\bcve-\d{4}-\d+\b`)},
	{"mitre", regexp.MustCompile(`(?i)\bta?\d{4}(?:\.\d{3})?\b`)},
	{"port", regexp.MustCompile(`\bport\s+\d{1,5}\b`)},
	{"email", regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)},
}

// extractEntities returns, per entity type name, the set of distinct
// matched substrings (lowercased) found in text. Patterns are evaluated in
// entityPatterns order, and a span consumed by an earlier (more specific)
// pattern is not re-matched by a later, more general one — mirroring the
// original's sequential-consume extraction so a sha256 hash isn't also
// reported as a stray hex-looking domain fragment.
func extractEntities(text string) map[string]map[string]bool {
	result := make(map[string]map[string]bool)
	remaining := text
	for _, p := range entityPatterns {
		matches := p.re.FindAllString(remaining, -1)
		if len(matches) == 0 {
			continue
		}
		set := make(map[string]bool)
		for _, m := range matches {
			set[strings.ToLower(m)] = true
			remaining = strings.Replace(remaining, m, "", 1)
		}
		result[p.name] = set
	}
	return result
}

// hasConflict reports whether two queries that matched as semantically
// similar are nonetheless about different things: an opposing action verb
// pair, or a concrete entity of the same type present in one query but
// absent (or different) in the other.
func hasConflict(queryA, queryB string) bool {
	la, lb := strings.ToLower(queryA), strings.ToLower(queryB)
	for _, pair := range opposingActionPairs {
		aHasFirst, bHasFirst := strings.Contains(la, pair[0]), strings.Contains(lb, pair[0])
		aHasSecond, bHasSecond := strings.Contains(la, pair[1]), strings.Contains(lb, pair[1])
		if (aHasFirst && bHasSecond) || (aHasSecond && bHasFirst) {
			return true
		}
	}

	entitiesA := extractEntities(queryA)
	entitiesB := extractEntities(queryB)
	for entityType, setA := range entitiesA {
		setB, ok := entitiesB[entityType]
		if !ok {
			continue
		}
		if !sameSet(setA, setB) {
			return true
		}
	}
	return false
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
