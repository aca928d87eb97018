package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"

	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

// Cache is the subset of internal/cache's ResponseCache the pipeline
// depends on, kept small and local so the pipeline doesn't import the
// cache package's conflict-detection machinery it never needs directly.
type Cache interface {
	Get(ctx context.Context, key string, query string) (string, bool)
	Set(ctx context.Context, key string, query string, response string)
}

// ConversationMemory is the out-of-scope collaborator spec.md §4.3 step 2
// allows: it returns recent conversation turns formatted as a single
// string, or empty when there is none.
type ConversationMemory interface {
	RecentContext(ctx context.Context, sessionID string) string
}

var (
	cacheIPPattern    = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	cacheMITREPattern = regexp.MustCompile(`(?i)\bt\d{4}(?:\.\d{3})?\b`)
	cacheCVEPattern   = regexp.MustCompile(`(?i)\bcve-\d{4}-\d+\b`)
	trailingPunct     = regexp.MustCompile(`[?!.…]+$`)
	collapseSpace     = regexp.MustCompile(`\s+`)
)

// normalizeQuery applies the lightweight cache-key normalization from
// spec.md §4.4: lowercase, strip trailing punctuation, collapse whitespace,
// then pull out IPv4/MITRE/CVE identifiers and prepend them (sorted,
// uppercased) so differently-phrased queries referencing the same
// identifiers produce the same key.
func normalizeQuery(query string) string {
	if query == "" {
		return ""
	}
	normalized := strings.ToLower(strings.TrimSpace(query))
	normalized = trailingPunct.ReplaceAllString(normalized, "")
	normalized = collapseSpace.ReplaceAllString(normalized, " ")

	var entities []string
	entities = append(entities, cacheIPPattern.FindAllString(normalized, -1)...)
	entities = append(entities, cacheMITREPattern.FindAllString(normalized, -1)...)
	entities = append(entities, cacheCVEPattern.FindAllString(normalized, -1)...)
	if len(entities) == 0 {
		return strings.TrimSpace(normalized)
	}

	seen := make(map[string]bool)
	var upper []string
	for _, e := range entities {
		u := strings.ToUpper(e)
		if !seen[u] {
			seen[u] = true
			upper = append(upper, u)
		}
		normalized = strings.ReplaceAll(normalized, strings.ToLower(e), "")
	}
	sort.Strings(upper)
	normalized = collapseSpace.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(strings.Join(upper, " ") + " " + strings.TrimSpace(normalized))
}

// contextHash derives a stable hash over the parts of the request that
// change what "the same text" should retrieve: the active metadata filters.
// Two identical query texts under different filters must not collide in the
// cache. It deliberately excludes session_id — original_source/app/services/
// llm_service.py always calls get_cache_key(query, "") regardless of
// session_id ("Cache works even with session_id - helps with repeated
// questions"), so a session-scoped call can still hit a cache entry an
// anonymous call populated for the same question under the same filters.
func contextHash(filters *store.Filter) string {
	var parts []string
	if filters != nil {
		if filters.SourceID != nil {
			parts = append(parts, "source_id="+*filters.SourceID)
		}
		if filters.Source != nil {
			parts = append(parts, "source="+*filters.Source)
		}
		if filters.Version != nil {
			parts = append(parts, "version="+*filters.Version)
		}
		if filters.IsActive != nil {
			if *filters.IsActive {
				parts = append(parts, "is_active=true")
			} else {
				parts = append(parts, "is_active=false")
			}
		}
		if len(filters.Tags) > 0 {
			tags := append([]string(nil), filters.Tags...)
			sort.Strings(tags)
			parts = append(parts, "tags="+strings.Join(tags, ","))
		}
	}
	sort.Strings(parts)
	h := sha256.Sum256([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(h[:])
}

// cacheKey computes the cache lookup key per spec.md §4.3 step 3. It does
// not vary by session_id; see contextHash.
func cacheKey(query string, filters *store.Filter) string {
	combined := normalizeQuery(query) + ":" + contextHash(filters)
	h := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(h[:])
}
