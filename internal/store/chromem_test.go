package store

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cyberfortress-labs/smartxdr-core/internal/document"
)

// mockEmbedder returns deterministic embeddings based on text content.
type mockEmbedder struct {
	dims int
}

func newMockEmbedder(dims int) *mockEmbedder { return &mockEmbedder{dims: dims} }

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.deterministicVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func meta(source, sourceID, version string) document.Metadata {
	return document.Metadata{Source: source, SourceID: sourceID, Version: version, IsActive: true}
}

func TestChromemRepository_AddAndQuery(t *testing.T) {
	ctx := context.Background()
	repo, err := NewChromemRepository(newMockEmbedder(64))
	if err != nil {
		t.Fatalf("NewChromemRepository: %v", err)
	}

	id, err := repo.Add(ctx, "", "The authentication module handles user login", meta("auth.go", "auth.go", "v1"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	if _, err := repo.Add(ctx, "", "Database connection pool configuration", meta("pool.go", "pool.go", "v1")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	count, err := repo.Count(ctx, nil)
	if err != nil || count != 2 {
		t.Fatalf("Count: got %d, err %v, want 2", count, err)
	}

	qr, err := repo.Query(ctx, "user authentication login", 1, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if qr.Len() == 0 {
		t.Fatal("Query returned no results")
	}
}

func TestChromemRepository_AddRejectsEmptyContent(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewChromemRepository(newMockEmbedder(32))
	if _, err := repo.Add(ctx, "", "", meta("x", "x", "v1")); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestChromemRepository_GetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewChromemRepository(newMockEmbedder(32))

	id, err := repo.Add(ctx, "", "original content", meta("s1", "s1", "v1"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	doc, err := repo.Get(ctx, id)
	if err != nil || doc == nil {
		t.Fatalf("Get: doc=%v err=%v", doc, err)
	}
	if doc.Content != "original content" {
		t.Errorf("Content = %q", doc.Content)
	}

	newContent := "updated content"
	ok, err := repo.Update(ctx, id, &newContent, nil)
	if err != nil || !ok {
		t.Fatalf("Update: ok=%v err=%v", ok, err)
	}
	doc, _ = repo.Get(ctx, id)
	if doc.Content != newContent {
		t.Errorf("after update Content = %q", doc.Content)
	}
	if doc.Metadata.CreatedAt.IsZero() {
		t.Error("CreatedAt should be preserved across update")
	}

	ok, err = repo.Delete(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	doc, err = repo.Get(ctx, id)
	if err != nil || doc != nil {
		t.Errorf("expected nil after delete, got %v", doc)
	}
}

func TestChromemRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewChromemRepository(newMockEmbedder(32))

	id, _ := repo.Add(ctx, "", "content", meta("s1", "s1", "v1"))
	ok, err := repo.SoftDelete(ctx, id)
	if err != nil || !ok {
		t.Fatalf("SoftDelete: ok=%v err=%v", ok, err)
	}
	doc, _ := repo.Get(ctx, id)
	if doc == nil || doc.Metadata.IsActive {
		t.Error("expected IsActive=false after soft delete")
	}
}

func TestChromemRepository_DeactivateOldVersions(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewChromemRepository(newMockEmbedder(32))

	repo.Add(ctx, "", "v1 content", meta("s1", "s1", "v1"))
	repo.Add(ctx, "", "v2 content", meta("s1", "s1", "v2"))
	repo.Add(ctx, "", "v3 content", meta("s1", "s1", "v3"))

	n, err := repo.DeactivateOldVersions(ctx, "s1", "v3")
	if err != nil {
		t.Fatalf("DeactivateOldVersions: %v", err)
	}
	if n != 2 {
		t.Errorf("deactivated %d, want 2", n)
	}

	active := true
	count, _ := repo.Count(ctx, &Filter{SourceID: strPtr("s1"), IsActive: &active})
	if count != 1 {
		t.Errorf("active count for s1 = %d, want 1", count)
	}
}

func TestChromemRepository_Stats(t *testing.T) {
	ctx := context.Background()
	repo, _ := NewChromemRepository(newMockEmbedder(32))

	m1 := meta("a.md", "a.md", "v1")
	m1.Tags = []string{"network"}
	m2 := meta("b.md", "b.md", "v1")
	m2.Tags = []string{"network", "alerts"}

	repo.Add(ctx, "", "content a", m1)
	repo.Add(ctx, "", "content b", m2)

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 || stats.Active != 2 {
		t.Errorf("Stats total/active = %d/%d, want 2/2", stats.Total, stats.Active)
	}
	if stats.TagsDistribution["network"] != 2 {
		t.Errorf("tags_distribution[network] = %d, want 2", stats.TagsDistribution["network"])
	}
}

func TestChromemRepository_PersistAndLoad(t *testing.T) {
	ctx := context.Background()
	embedder := newMockEmbedder(64)
	repo, err := NewChromemRepository(embedder)
	if err != nil {
		t.Fatalf("NewChromemRepository: %v", err)
	}

	repo.Add(ctx, "", "persistent document about authentication", meta("auth.go", "auth.go", "v1"))
	repo.Add(ctx, "", "persistent document about database queries", meta("db.go", "db.go", "v1"))

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "store.gob.gz")

	if err := repo.Persist(ctx, path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	repo2, err := NewChromemRepository(embedder)
	if err != nil {
		t.Fatalf("NewChromemRepository for load: %v", err)
	}
	if err := repo2.Load(ctx, path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	count, err := repo2.Count(ctx, nil)
	if err != nil || count != 2 {
		t.Fatalf("Count after load: got %d, err %v, want 2", count, err)
	}

	if _, err := os.Stat(sidecarPath(path)); err != nil {
		t.Errorf("expected sidecar index file: %v", err)
	}
}

func strPtr(s string) *string { return &s }
