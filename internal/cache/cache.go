// Package cache implements the two-tier response cache from spec.md §4.4:
// an in-process L1 map plus an optional L2 key-value store, with an
// optional semantic fallback match and conflict detection against
// conflicting cached queries, grounded on
// original_source/app/utils/cache.py.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cyberfortress-labs/smartxdr-core/internal/config"
	"github.com/cyberfortress-labs/smartxdr-core/internal/embeddings"
	"github.com/cyberfortress-labs/smartxdr-core/internal/kvstore"
)

// entry is one cached response, with enough metadata to support TTL
// eviction, the original query (for conflict detection), and an optional
// embedding (semantic-match scan).
type entry struct {
	Response      string    `json:"response"`
	OriginalQuery string    `json:"original_query"`
	CreatedAt     time.Time `json:"created_at"`
	Embedding     []float32 `json:"-"`
}

func (e entry) expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.CreatedAt) >= ttl
}

// redisEntry is the subset of entry persisted to L2 — no embedding, to
// keep L2 payloads small and JSON-serializable without a float32 codec
// concern, matching the original's "without embedding" L2 write.
type redisEntry struct {
	Response      string    `json:"response"`
	OriginalQuery string    `json:"original_query"`
	CreatedAt     time.Time `json:"created_at"`
}

const l2KeyPrefix = "rag_cache:"

// ResponseCache is the two-tier cache. It satisfies internal/rag.Cache.
type ResponseCache struct {
	mu    sync.RWMutex
	l1    map[string]entry
	l2    kvstore.Store
	embed embeddings.Embedder
	cfg   Config
}

// Config holds the cache's tunables, sourced from config.Config.
type Config struct {
	TTL                 time.Duration
	Enabled             bool
	SemanticEnabled     bool
	SimilarityThreshold float64
}

// FromAppConfig derives cache Config from the application configuration.
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		TTL:                 time.Duration(cfg.CacheTTLSeconds) * time.Second,
		Enabled:             cfg.CacheEnabled,
		SemanticEnabled:     cfg.SemanticCacheEnabled,
		SimilarityThreshold: cfg.SimilarityThreshold,
	}
}

// New constructs a ResponseCache. l2 and embed may both be nil: a nil l2
// disables the L2 tier (L1-only, still correct); a nil embed disables
// semantic matching regardless of cfg.SemanticEnabled.
func New(l2 kvstore.Store, embed embeddings.Embedder, cfg Config) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 0.85
	}
	return &ResponseCache{
		l1:    make(map[string]entry),
		l2:    l2,
		embed: embed,
		cfg:   cfg,
	}
}

// Get implements the three-step lookup from spec.md §4.4: L1, then L2
// (promoting a hit back into L1), then — only if query is non-empty and
// semantic matching is enabled — a linear semantic scan over L1 with
// conflict detection against the candidate's original query.
func (c *ResponseCache) Get(ctx context.Context, key string, query string) (string, bool) {
	if !c.cfg.Enabled {
		return "", false
	}

	now := time.Now()

	c.mu.Lock()
	if e, ok := c.l1[key]; ok {
		if !e.expired(c.cfg.TTL, now) {
			c.mu.Unlock()
			return e.Response, true
		}
		delete(c.l1, key)
	}
	c.mu.Unlock()

	if c.l2 != nil && c.l2.Available() {
		if raw, ok, err := c.l2.Get(ctx, l2KeyPrefix+key); err == nil && ok {
			var re redisEntry
			if err := json.Unmarshal([]byte(raw), &re); err == nil {
				promoted := entry{Response: re.Response, OriginalQuery: re.OriginalQuery, CreatedAt: re.CreatedAt}
				c.mu.Lock()
				c.l1[key] = promoted
				c.mu.Unlock()
				return re.Response, true
			}
		}
	}

	if c.cfg.SemanticEnabled && c.embed != nil && query != "" {
		if response, ok := c.semanticMatch(ctx, query, now); ok {
			return response, true
		}
	}

	return "", false
}

// semanticMatch embeds query and scans L1 entries carrying embeddings for
// the highest cosine similarity, returning a hit only if it clears the
// similarity threshold and survives conflict detection against the
// matched entry's original query.
func (c *ResponseCache) semanticMatch(ctx context.Context, query string, now time.Time) (string, bool) {
	vecs, err := c.embed.Embed(ctx, []string{query})
	if err != nil || len(vecs) == 0 {
		return "", false
	}
	queryVec := vecs[0]

	c.mu.RLock()
	var bestKey string
	var bestEntry entry
	bestSimilarity := 0.0
	for key, e := range c.l1 {
		if e.Embedding == nil || e.expired(c.cfg.TTL, now) {
			continue
		}
		sim := cosineSimilarity(queryVec, e.Embedding)
		if sim > bestSimilarity {
			bestSimilarity = sim
			bestKey = key
			bestEntry = e
		}
	}
	c.mu.RUnlock()

	if bestKey == "" || bestSimilarity < c.cfg.SimilarityThreshold {
		return "", false
	}
	if hasConflict(query, bestEntry.OriginalQuery) {
		return "", false
	}
	return bestEntry.Response, true
}

// Set writes to L1 (with an embedding if semantic caching is enabled and
// query is supplied) and, best-effort, to L2 without the embedding.
func (c *ResponseCache) Set(ctx context.Context, key string, query string, response string) {
	if !c.cfg.Enabled {
		return
	}

	now := time.Now()
	e := entry{Response: response, OriginalQuery: query, CreatedAt: now}

	if c.cfg.SemanticEnabled && c.embed != nil && query != "" {
		if vecs, err := c.embed.Embed(ctx, []string{query}); err == nil && len(vecs) > 0 {
			e.Embedding = vecs[0]
		}
	}

	c.mu.Lock()
	c.l1[key] = e
	c.mu.Unlock()

	if c.l2 != nil && c.l2.Available() {
		data, err := json.Marshal(redisEntry{Response: response, OriginalQuery: query, CreatedAt: now})
		if err == nil {
			_ = c.l2.SetEX(ctx, l2KeyPrefix+key, string(data), c.cfg.TTL)
		}
	}
}

// Clear empties L1 and best-effort clears every L2 key under this cache's
// namespace.
func (c *ResponseCache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.l1 = make(map[string]entry)
	c.mu.Unlock()

	if c.l2 != nil && c.l2.Available() {
		keys, err := c.l2.Keys(ctx, l2KeyPrefix+"*")
		if err == nil {
			for _, k := range keys {
				_ = c.l2.Delete(ctx, k)
			}
		}
	}
}

// ClearExpired removes expired L1 entries. L2 entries expire on their own
// via the store's native TTL.
func (c *ResponseCache) ClearExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.l1 {
		if e.expired(c.cfg.TTL, now) {
			delete(c.l1, k)
		}
	}
}

// Stats reports current cache state, per spec.md §4.4's get_stats.
type Stats struct {
	L1Size          int  `json:"l1_cache_size"`
	L2Available     bool `json:"l2_available"`
	Enabled         bool `json:"enabled"`
	SemanticEnabled bool `json:"semantic_cache_enabled"`
}

func (c *ResponseCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l2Available := c.l2 != nil && c.l2.Available()
	return Stats{
		L1Size:          len(c.l1),
		L2Available:     l2Available,
		Enabled:         c.cfg.Enabled,
		SemanticEnabled: c.cfg.SemanticEnabled,
	}
}
