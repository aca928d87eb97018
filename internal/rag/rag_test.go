package rag

import (
	"context"
	"testing"

	"github.com/cyberfortress-labs/smartxdr-core/internal/document"
	"github.com/cyberfortress-labs/smartxdr-core/internal/llm"
	"github.com/cyberfortress-labs/smartxdr-core/internal/promptbuilder"
	"github.com/cyberfortress-labs/smartxdr-core/internal/ratelimit"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rerank"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

// fakeRepository returns a fixed query result regardless of input text,
// sufficient for exercising threshold filtering, re-ranking, and MMR
// without a real embedder or vector index.
type fakeRepository struct {
	result document.QueryResult
}

func (f *fakeRepository) Add(ctx context.Context, id, content string, meta document.Metadata) (string, error) {
	return id, nil
}
func (f *fakeRepository) AddBatch(ctx context.Context, contents []string, metas []document.Metadata, ids []string) ([]string, error) {
	return ids, nil
}
func (f *fakeRepository) Get(ctx context.Context, id string) (*document.Document, error) {
	return nil, nil
}
func (f *fakeRepository) Update(ctx context.Context, id string, content *string, meta *document.Metadata) (bool, error) {
	return false, nil
}
func (f *fakeRepository) Delete(ctx context.Context, id string) (bool, error)     { return true, nil }
func (f *fakeRepository) SoftDelete(ctx context.Context, id string) (bool, error) { return true, nil }
func (f *fakeRepository) Query(ctx context.Context, text string, n int, where *store.Filter) (document.QueryResult, error) {
	qr := f.result
	if n < len(qr.Documents) {
		qr.Documents = qr.Documents[:n]
		qr.Distances = qr.Distances[:n]
		qr.Metadatas = qr.Metadatas[:n]
		qr.IDs = qr.IDs[:n]
	}
	return qr, nil
}
func (f *fakeRepository) List(ctx context.Context, where *store.Filter, limit, offset int) ([]document.Document, error) {
	return nil, nil
}
func (f *fakeRepository) Count(ctx context.Context, where *store.Filter) (int, error) { return 0, nil }
func (f *fakeRepository) DeactivateOldVersions(ctx context.Context, sourceID, keepVersion string) (int, error) {
	return 0, nil
}
func (f *fakeRepository) Stats(ctx context.Context) (store.Stats, error) { return store.Stats{}, nil }
func (f *fakeRepository) Persist(ctx context.Context, path string) error { return nil }
func (f *fakeRepository) Load(ctx context.Context, path string) error    { return nil }

type fakeProvider struct {
	response string
	calls    int
}

func (p *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	return &llm.CompletionResponse{Content: p.response, InputTokens: 50, OutputTokens: 20, Model: req.Model}, nil
}
func (p *fakeProvider) Name() string { return "fake" }

type fakeCache struct {
	entries map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{entries: make(map[string]string)} }

func (c *fakeCache) Get(ctx context.Context, key, query string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}
func (c *fakeCache) Set(ctx context.Context, key, query, response string) {
	c.entries[key] = response
}

func repoWithDocs(docs []string, distances []float64) *fakeRepository {
	metas := make([]document.Metadata, len(docs))
	ids := make([]string, len(docs))
	for i := range docs {
		metas[i] = document.Metadata{Source: "doc" + string(rune('a'+i)), IsActive: true}
		ids[i] = "id" + string(rune('a'+i))
	}
	return &fakeRepository{result: document.QueryResult{Documents: docs, Distances: distances, Metadatas: metas, IDs: ids}}
}

func newTestPipeline(repo store.Repository, provider llm.Provider, cache Cache) *Pipeline {
	prompts := promptbuilder.New()
	prompts.RegisterDefaults()
	limiter := ratelimit.New(60, 100)
	return New(repo, provider, rerank.NewDistanceReranker(), limiter, prompts, cache, nil, Config{
		DefaultResults:      3,
		MaxRerankCandidates: 10,
		StrictThreshold:     1.0,
		FallbackThreshold:   1.4,
		MaxContextChars:     6000,
		UseReranking:        true,
		ChatModel:           "gpt-4o-mini",
	})
}

func TestQueryReturnsSuccessWithContext(t *testing.T) {
	repo := repoWithDocs(
		[]string{"isolate the compromised host", "rotate exposed credentials"},
		[]float64{0.3, 0.5},
	)
	provider := &fakeProvider{response: "Isolate the host first."}
	p := newTestPipeline(repo, provider, nil)

	result, err := p.Query(context.Background(), "how do I respond to this incident", 5, nil, "")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("expected status success, got %q (error=%s)", result.Status, result.Error)
	}
	if result.Answer != "Isolate the host first." {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
	if result.Cached {
		t.Error("expected a fresh call to not be marked cached")
	}
	if result.Cost <= 0 {
		t.Error("expected a positive recorded cost")
	}
}

func TestQueryRateLimitDenied(t *testing.T) {
	repo := repoWithDocs([]string{"doc"}, []float64{0.3})
	provider := &fakeProvider{response: "answer"}
	p := newTestPipeline(repo, provider, nil)
	p.limiter = ratelimit.New(0, 100)

	result, err := p.Query(context.Background(), "anything", 3, nil, "")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if result.Status != "error" || result.ErrorType != "rate_limit" {
		t.Errorf("expected rate_limit error, got status=%q error_type=%q", result.Status, result.ErrorType)
	}
	if provider.calls != 0 {
		t.Error("expected the LLM to never be called when rate-limited")
	}
}

func TestQueryCacheHitSkipsLLMCall(t *testing.T) {
	repo := repoWithDocs([]string{"doc"}, []float64{0.3})
	provider := &fakeProvider{response: "fresh answer"}
	cache := newFakeCache()
	p := newTestPipeline(repo, provider, cache)

	key := cacheKey("repeat me", nil)
	cache.entries[key] = "cached answer"

	result, err := p.Query(context.Background(), "repeat me", 3, nil, "")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if !result.Cached {
		t.Error("expected a cache hit")
	}
	if result.Answer != "cached answer" {
		t.Errorf("expected cached answer, got %q", result.Answer)
	}
	if provider.calls != 0 {
		t.Error("expected the LLM to never be called on a cache hit")
	}
}

func TestQueryCacheHitAppliesAcrossSessions(t *testing.T) {
	repo := repoWithDocs([]string{"doc"}, []float64{0.3})
	provider := &fakeProvider{response: "fresh answer"}
	cache := newFakeCache()
	p := newTestPipeline(repo, provider, cache)

	key := cacheKey("repeat me", nil)
	cache.entries[key] = "cached answer"

	result, err := p.Query(context.Background(), "repeat me", 3, nil, "session-123")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if !result.Cached {
		t.Error("expected a session-scoped query to still hit a cache entry populated anonymously")
	}
	if result.Answer != "cached answer" {
		t.Errorf("expected cached answer, got %q", result.Answer)
	}
	if provider.calls != 0 {
		t.Error("expected the LLM to never be called on a cache hit")
	}
}

func TestQuerySessionScopedResultIsNotStoredInCache(t *testing.T) {
	repo := repoWithDocs([]string{"doc"}, []float64{0.3})
	provider := &fakeProvider{response: "fresh answer"}
	cache := newFakeCache()
	p := newTestPipeline(repo, provider, cache)

	result, err := p.Query(context.Background(), "a brand new question", 3, nil, "session-123")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if result.Cached {
		t.Error("expected a fresh call to not be marked cached")
	}

	key := cacheKey("a brand new question", nil)
	if _, ok := cache.entries[key]; ok {
		t.Error("expected a session-scoped answer to not be written back into the shared cache")
	}
}

func TestQueryNoDocumentsFallsBackToGeneralKnowledgeHint(t *testing.T) {
	repo := repoWithDocs(nil, nil)
	provider := &fakeProvider{response: "general answer"}
	p := newTestPipeline(repo, provider, nil)

	result, err := p.Query(context.Background(), "something with no matches", 3, nil, "")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("expected success with fallback context, got %q", result.Status)
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no sources when nothing matched, got %v", result.Sources)
	}
}

func TestBuildContextFromQueryRerankAndMMRWithManyCandidates(t *testing.T) {
	repo := repoWithDocs(
		[]string{
			"isolate the compromised host from the network",
			"rotate all exposed api credentials immediately",
			"review firewall egress rules for lateral movement",
			"check endpoint detection logs for persistence",
			"notify the on-call incident commander",
		},
		[]float64{0.9, 0.8, 0.7, 0.6, 0.5},
	)
	p := newTestPipeline(repo, &fakeProvider{}, nil)

	contextText, sources, err := p.BuildContextFromQuery(context.Background(), "incident response steps", 3, nil, true)
	if err != nil {
		t.Fatalf("BuildContextFromQuery() error: %v", err)
	}
	if contextText == noContextHint {
		t.Fatal("expected real context, not the fallback hint")
	}
	if len(sources) == 0 {
		t.Error("expected sources to be populated")
	}
}

func TestBuildContextFromQueryAboveFallbackThresholdIsExcluded(t *testing.T) {
	repo := repoWithDocs([]string{"too far"}, []float64{2.0})
	p := newTestPipeline(repo, &fakeProvider{}, nil)

	contextText, sources, err := p.BuildContextFromQuery(context.Background(), "q", 3, nil, true)
	if err != nil {
		t.Fatalf("BuildContextFromQuery() error: %v", err)
	}
	if contextText != noContextHint {
		t.Errorf("expected the no-context hint, got %q", contextText)
	}
	if len(sources) != 0 {
		t.Errorf("expected no sources, got %v", sources)
	}
}
