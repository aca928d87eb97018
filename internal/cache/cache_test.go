package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

type fakeStore struct {
	data      map[string]string
	available bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string), available: true}
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}
func (s *fakeStore) SetEX(ctx context.Context, key, value string, ttl time.Duration) error {
	s.data[key] = value
	return nil
}
func (s *fakeStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}
func (s *fakeStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
func (s *fakeStore) Available() bool { return s.available }

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{1, 0, 0}
		}
	}
	return out, nil
}
func (e *fakeEmbedder) Dimensions() int { return 3 }
func (e *fakeEmbedder) Name() string    { return "fake" }

func TestGetMissOnEmptyCache(t *testing.T) {
	c := New(nil, nil, Config{Enabled: true, TTL: time.Hour})
	if _, ok := c.Get(context.Background(), "k", "query"); ok {
		t.Fatal("expected a miss on empty cache")
	}
}

func TestSetThenGetL1Hit(t *testing.T) {
	c := New(nil, nil, Config{Enabled: true, TTL: time.Hour})
	ctx := context.Background()
	c.Set(ctx, "k1", "what is CVE-2024-1234", "it's a vuln")
	resp, ok := c.Get(ctx, "k1", "what is CVE-2024-1234")
	if !ok || resp != "it's a vuln" {
		t.Fatalf("expected L1 hit with response, got ok=%v resp=%q", ok, resp)
	}
}

func TestGetExpiredL1EntryIsMiss(t *testing.T) {
	c := New(nil, nil, Config{Enabled: true, TTL: time.Nanosecond})
	ctx := context.Background()
	c.Set(ctx, "k1", "q", "resp")
	time.Sleep(2 * time.Millisecond)
	if _, ok := c.Get(ctx, "k1", "q"); ok {
		t.Fatal("expected expired entry to be treated as a miss")
	}
}

func TestDisabledCacheNeverHits(t *testing.T) {
	c := New(nil, nil, Config{Enabled: false, TTL: time.Hour})
	ctx := context.Background()
	c.Set(ctx, "k1", "q", "resp")
	if _, ok := c.Get(ctx, "k1", "q"); ok {
		t.Fatal("expected disabled cache to never hit")
	}
}

func TestL2HitPromotesToL1(t *testing.T) {
	store := newFakeStore()
	c := New(store, nil, Config{Enabled: true, TTL: time.Hour})
	ctx := context.Background()

	data, _ := json.Marshal(redisEntry{Response: "from l2", OriginalQuery: "q", CreatedAt: time.Now()})
	store.data[l2KeyPrefix+"k1"] = string(data)

	resp, ok := c.Get(ctx, "k1", "q")
	if !ok || resp != "from l2" {
		t.Fatalf("expected L2 hit, got ok=%v resp=%q", ok, resp)
	}

	c2 := New(nil, nil, Config{Enabled: true, TTL: time.Hour})
	c2.l1 = c.l1
	if resp2, ok2 := c2.Get(ctx, "k1", "q"); !ok2 || resp2 != "from l2" {
		t.Fatalf("expected L2 hit to have promoted into L1, got ok=%v resp=%q", ok2, resp2)
	}
}

func TestSemanticMatchAboveThreshold(t *testing.T) {
	embed := &fakeEmbedder{vectors: map[string][]float32{
		"how do I enable logging":  {1, 0, 0},
		"how can I turn on logging": {0.99, 0.01, 0},
	}}
	c := New(nil, embed, Config{Enabled: true, SemanticEnabled: true, TTL: time.Hour, SimilarityThreshold: 0.9})
	ctx := context.Background()
	c.Set(ctx, "k1", "how do I enable logging", "run `set logging on`")

	resp, ok := c.Get(ctx, "different-key", "how can I turn on logging")
	if !ok || resp != "run `set logging on`" {
		t.Fatalf("expected semantic hit, got ok=%v resp=%q", ok, resp)
	}
}

func TestSemanticMatchBlockedByOpposingAction(t *testing.T) {
	embed := &fakeEmbedder{vectors: map[string][]float32{
		"how do I enable logging":  {1, 0, 0},
		"how do I disable logging": {0.99, 0.01, 0},
	}}
	c := New(nil, embed, Config{Enabled: true, SemanticEnabled: true, TTL: time.Hour, SimilarityThreshold: 0.9})
	ctx := context.Background()
	c.Set(ctx, "k1", "how do I enable logging", "run `set logging on`")

	if _, ok := c.Get(ctx, "different-key", "how do I disable logging"); ok {
		t.Fatal("expected opposing-action conflict to block the semantic hit")
	}
}

func TestSemanticMatchBlockedByDifferentEntity(t *testing.T) {
	embed := &fakeEmbedder{vectors: map[string][]float32{
		"is 10.0.0.1 malicious":   {1, 0, 0},
		"is 10.0.0.2 malicious": {0.99, 0.01, 0},
	}}
	c := New(nil, embed, Config{Enabled: true, SemanticEnabled: true, TTL: time.Hour, SimilarityThreshold: 0.9})
	ctx := context.Background()
	c.Set(ctx, "k1", "is 10.0.0.1 malicious", "no known reports")

	if _, ok := c.Get(ctx, "different-key", "is 10.0.0.2 malicious"); ok {
		t.Fatal("expected different-IP conflict to block the semantic hit")
	}
}

func TestClearEmptiesL1AndL2(t *testing.T) {
	store := newFakeStore()
	c := New(store, nil, Config{Enabled: true, TTL: time.Hour})
	ctx := context.Background()
	c.Set(ctx, "k1", "q", "resp")
	c.Clear(ctx)

	if _, ok := c.Get(ctx, "k1", "q"); ok {
		t.Fatal("expected cache to be empty after Clear")
	}
	if len(store.data) != 0 {
		t.Fatalf("expected L2 store emptied, still has %d keys", len(store.data))
	}
}

func TestClearExpiredRemovesOnlyExpiredEntries(t *testing.T) {
	c := New(nil, nil, Config{Enabled: true, TTL: time.Hour})
	ctx := context.Background()
	c.Set(ctx, "fresh", "q1", "r1")
	c.l1["stale"] = entry{Response: "r2", OriginalQuery: "q2", CreatedAt: time.Now().Add(-2 * time.Hour)}

	c.ClearExpired()

	if _, ok := c.Get(ctx, "fresh", "q1"); !ok {
		t.Fatal("expected fresh entry to survive ClearExpired")
	}
	c.mu.RLock()
	_, staleStillThere := c.l1["stale"]
	c.mu.RUnlock()
	if staleStillThere {
		t.Fatal("expected stale entry to be removed by ClearExpired")
	}
}

func TestStatsReportsSizeAndFlags(t *testing.T) {
	store := newFakeStore()
	c := New(store, nil, Config{Enabled: true, SemanticEnabled: true, TTL: time.Hour})
	c.Set(context.Background(), "k1", "q", "resp")

	stats := c.Stats()
	if stats.L1Size != 1 || !stats.L2Available || !stats.Enabled || !stats.SemanticEnabled {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
