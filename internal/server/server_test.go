package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cyberfortress-labs/smartxdr-core/internal/alerts"
	"github.com/cyberfortress-labs/smartxdr-core/internal/document"
	"github.com/cyberfortress-labs/smartxdr-core/internal/enrichment"
	"github.com/cyberfortress-labs/smartxdr-core/internal/httpapi"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rag"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

// stubRepo satisfies store.Repository with no-op behavior; the server
// tests below only exercise transport-level concerns (health, CORS),
// not repository semantics, which internal/httpapi's own tests cover.
type stubRepo struct{}

func (stubRepo) Add(ctx context.Context, id, content string, meta document.Metadata) (string, error) {
	return id, nil
}
func (stubRepo) AddBatch(ctx context.Context, contents []string, metas []document.Metadata, ids []string) ([]string, error) {
	return ids, nil
}
func (stubRepo) Get(ctx context.Context, id string) (*document.Document, error) { return nil, nil }
func (stubRepo) Update(ctx context.Context, id string, content *string, meta *document.Metadata) (bool, error) {
	return false, nil
}
func (stubRepo) Delete(ctx context.Context, id string) (bool, error)     { return false, nil }
func (stubRepo) SoftDelete(ctx context.Context, id string) (bool, error) { return false, nil }
func (stubRepo) Query(ctx context.Context, text string, n int, where *store.Filter) (document.QueryResult, error) {
	return document.QueryResult{}, nil
}
func (stubRepo) List(ctx context.Context, where *store.Filter, limit, offset int) ([]document.Document, error) {
	return nil, nil
}
func (stubRepo) Count(ctx context.Context, where *store.Filter) (int, error) { return 0, nil }
func (stubRepo) DeactivateOldVersions(ctx context.Context, sourceID, keepVersion string) (int, error) {
	return 0, nil
}
func (stubRepo) Stats(ctx context.Context) (store.Stats, error)     { return store.Stats{}, nil }
func (stubRepo) Persist(ctx context.Context, path string) error    { return nil }
func (stubRepo) Load(ctx context.Context, path string) error       { return nil }

type stubPipeline struct{}

func (stubPipeline) Query(ctx context.Context, text string, topK int, filters *store.Filter, sessionID string) (*rag.Result, error) {
	return &rag.Result{Status: "success"}, nil
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(ctx context.Context, windowMinutes int, sourceIP, indexPattern string) (*alerts.Digest, error) {
	return &alerts.Digest{Status: "no_alerts"}, nil
}

type stubOrchestrator struct{}

func (stubOrchestrator) EnrichIOC(ctx context.Context, caseID, iocID string, updateDescription bool) (*enrichment.Result, error) {
	return &enrichment.Result{Status: "success"}, nil
}

func testDeps() httpapi.Deps {
	return httpapi.Deps{
		Repo:         stubRepo{},
		Pipeline:     stubPipeline{},
		Summarizer:   stubSummarizer{},
		Orchestrator: stubOrchestrator{},
	}
}

func TestHealthCheck(t *testing.T) {
	srv := New(Config{ListenAddr: ":0"}, testDeps())

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{ListenAddr: ":0", AllowAll: true}, testDeps())

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestMetricsEndpointIsMounted(t *testing.T) {
	srv := New(Config{ListenAddr: ":0"}, testDeps())

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Error("expected non-empty Prometheus exposition body")
	}
}

func TestRAGRoutesAreMounted(t *testing.T) {
	srv := New(Config{ListenAddr: ":0"}, testDeps())

	req := httptest.NewRequest("GET", "/rag/stats", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /rag/stats, got %d", w.Code)
	}
}
