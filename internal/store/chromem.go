package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/cyberfortress-labs/smartxdr-core/internal/document"
	"github.com/cyberfortress-labs/smartxdr-core/internal/embeddings"
)

const collectionName = "security_corpus"

// ChromemRepository implements Repository using chromem-go for vector
// search and an in-process map as the system of record for exact-ID
// lookups, updates, and aggregate stats — chromem-go's collection has no
// native get-by-id/list-all operation, the same gap the teacher worked
// around with a where-clause query in GetByFilePath.
type ChromemRepository struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc

	mu   sync.RWMutex
	docs map[string]document.Document
}

// NewChromemRepository creates a new in-memory repository backed by
// chromem-go, using embedder for both indexing and query-time embedding.
func NewChromemRepository(embedder embeddings.Embedder) (*ChromemRepository, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemRepository{
		db:         db,
		collection: col,
		embedFunc:  ef,
		docs:       make(map[string]document.Document),
	}, nil
}

func (r *ChromemRepository) Add(ctx context.Context, id string, content string, meta document.Metadata) (string, error) {
	if content == "" {
		return "", fmt.Errorf("add: content must not be empty")
	}
	if meta.Source == "" {
		return "", fmt.Errorf("add: source must not be empty")
	}
	if id == "" {
		id = document.ComputeID(meta.SourceID, meta.Version, content)
	}
	now := time.Now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now

	doc := document.Document{ID: id, Content: content, Metadata: meta}

	if err := r.upsertChromem(ctx, doc); err != nil {
		return "", fmt.Errorf("store_error: %w", err)
	}

	r.mu.Lock()
	r.docs[id] = doc
	r.mu.Unlock()

	return id, nil
}

func (r *ChromemRepository) AddBatch(ctx context.Context, contents []string, metas []document.Metadata, ids []string) ([]string, error) {
	if len(contents) != len(metas) {
		return nil, fmt.Errorf("add_batch: contents and metadatas length mismatch (%d vs %d)", len(contents), len(metas))
	}
	if ids != nil && len(ids) != len(contents) {
		return nil, fmt.Errorf("add_batch: ids length mismatch (%d vs %d)", len(ids), len(contents))
	}

	resultIDs := make([]string, len(contents))
	now := time.Now().UTC()
	chromDocs := make([]chromem.Document, 0, len(contents))

	for i, content := range contents {
		if content == "" {
			return nil, fmt.Errorf("store_error: add_batch: content[%d] must not be empty", i)
		}
		meta := metas[i]
		id := ""
		if ids != nil {
			id = ids[i]
		}
		if id == "" {
			id = document.ComputeID(meta.SourceID, meta.Version, content)
		}
		if meta.CreatedAt.IsZero() {
			meta.CreatedAt = now
		}
		meta.UpdatedAt = now

		doc := document.Document{ID: id, Content: content, Metadata: meta}
		resultIDs[i] = id
		chromDocs = append(chromDocs, chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: metadataToMap(doc.Metadata),
		})

		r.mu.Lock()
		r.docs[id] = doc
		r.mu.Unlock()
	}

	if err := r.collection.AddDocuments(ctx, chromDocs, 1); err != nil {
		return nil, fmt.Errorf("store_error: add_batch: %w", err)
	}
	return resultIDs, nil
}

func (r *ChromemRepository) Get(ctx context.Context, id string) (*document.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (r *ChromemRepository) Update(ctx context.Context, id string, content *string, meta *document.Metadata) (bool, error) {
	r.mu.Lock()
	existing, ok := r.docs[id]
	r.mu.Unlock()
	if !ok {
		return false, nil
	}

	createdAt := existing.Metadata.CreatedAt
	if content != nil {
		existing.Content = *content
	}
	if meta != nil {
		newMeta := *meta
		newMeta.CreatedAt = createdAt
		newMeta.UpdatedAt = time.Now().UTC()
		existing.Metadata = newMeta
	} else {
		existing.Metadata.UpdatedAt = time.Now().UTC()
	}

	if err := r.upsertChromem(ctx, existing); err != nil {
		return false, fmt.Errorf("store_error: %w", err)
	}

	r.mu.Lock()
	r.docs[id] = existing
	r.mu.Unlock()
	return true, nil
}

func (r *ChromemRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	_, ok := r.docs[id]
	if ok {
		delete(r.docs, id)
	}
	r.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := r.collection.Delete(ctx, nil, nil, id); err != nil {
		return false, fmt.Errorf("store_error: %w", err)
	}
	return true, nil
}

func (r *ChromemRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	doc, ok := r.docs[id]
	r.mu.Unlock()
	if !ok {
		return false, nil
	}
	doc.Metadata.IsActive = false
	doc.Metadata.UpdatedAt = time.Now().UTC()
	if err := r.upsertChromem(ctx, doc); err != nil {
		return false, fmt.Errorf("store_error: %w", err)
	}
	r.mu.Lock()
	r.docs[id] = doc
	r.mu.Unlock()
	return true, nil
}

// Query performs a semantic search, over-fetching from chromem when a
// filter is present (chromem's where-clause only supports flat equality,
// not the repository's richer Filter semantics) and then narrowing to n.
func (r *ChromemRepository) Query(ctx context.Context, text string, n int, where *Filter) (document.QueryResult, error) {
	if n <= 0 {
		n = 10
	}
	fetch := n
	if where != nil {
		fetch = n * 4
	}
	if count := r.collection.Count(); count == 0 {
		return document.QueryResult{}, nil
	} else if fetch > count {
		fetch = count
	}

	results, err := r.collection.Query(ctx, text, fetch, nil, nil)
	if err != nil {
		return document.QueryResult{}, fmt.Errorf("store_error: query: %w", err)
	}

	qr := document.QueryResult{}
	for _, res := range results {
		meta := mapToMetadata(res.Metadata)
		if where != nil && !matchesFilter(meta, where) {
			continue
		}
		qr.Documents = append(qr.Documents, res.Content)
		qr.Metadatas = append(qr.Metadatas, meta)
		qr.Distances = append(qr.Distances, 1-float64(res.Similarity))
		qr.IDs = append(qr.IDs, res.ID)
		if len(qr.Documents) >= n {
			break
		}
	}
	return qr, nil
}

func (r *ChromemRepository) List(ctx context.Context, where *Filter, limit, offset int) ([]document.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]document.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		if where == nil || matchesFilter(doc.Metadata, where) {
			matched = append(matched, doc)
		}
	}
	sortDocumentsByCreatedAt(matched)

	if offset >= len(matched) {
		return nil, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

func (r *ChromemRepository) Count(ctx context.Context, where *Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if where == nil {
		return len(r.docs), nil
	}
	n := 0
	for _, doc := range r.docs {
		if matchesFilter(doc.Metadata, where) {
			n++
		}
	}
	return n, nil
}

func (r *ChromemRepository) DeactivateOldVersions(ctx context.Context, sourceID, keepVersion string) (int, error) {
	r.mu.RLock()
	var toDeactivate []string
	for id, doc := range r.docs {
		if doc.Metadata.SourceID == sourceID && doc.Metadata.Version != keepVersion && doc.Metadata.IsActive {
			toDeactivate = append(toDeactivate, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range toDeactivate {
		if _, err := r.SoftDelete(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(toDeactivate), nil
}

func (r *ChromemRepository) Stats(ctx context.Context) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		TagsDistribution:    make(map[string]int),
		VersionDistribution: make(map[string]int),
	}
	sources := make(map[string]struct{})
	sourceIDs := make(map[string]struct{})

	stats.Total = len(r.docs)
	for _, doc := range r.docs {
		if doc.Metadata.IsActive {
			stats.Active++
		}
		sources[doc.Metadata.Source] = struct{}{}
		sourceIDs[doc.Metadata.SourceID] = struct{}{}
		for _, tag := range doc.Metadata.Tags {
			stats.TagsDistribution[tag]++
		}
		if doc.Metadata.Version != "" {
			stats.VersionDistribution[doc.Metadata.Version]++
		}
	}
	stats.UniqueSources = len(sources)
	stats.UniqueSourceIDs = len(sourceIDs)
	return stats, nil
}

// Persist exports the chromem-go collection plus a JSON sidecar of the
// map that is this repository's real system of record for exact-ID
// lookups (chromem-go has no list-all/get-by-id call the sidecar could
// reuse, the same gap NewChromemRepository documents above).
func (r *ChromemRepository) Persist(ctx context.Context, path string) error {
	if err := r.db.ExportToFile(path, true, ""); err != nil {
		return fmt.Errorf("export chromem db: %w", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, err := json.Marshal(r.docs)
	if err != nil {
		return fmt.Errorf("marshal document index: %w", err)
	}
	if err := os.WriteFile(sidecarPath(path), data, 0644); err != nil {
		return fmt.Errorf("write document index: %w", err)
	}
	return nil
}

func (r *ChromemRepository) Load(ctx context.Context, path string) error {
	if err := r.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}
	col := r.db.GetCollection(collectionName, r.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	r.collection = col

	data, err := os.ReadFile(sidecarPath(path))
	if err != nil {
		return fmt.Errorf("read document index: %w", err)
	}
	docs := make(map[string]document.Document)
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("unmarshal document index: %w", err)
	}

	r.mu.Lock()
	r.docs = docs
	r.mu.Unlock()
	return nil
}

func sidecarPath(path string) string {
	return path + ".index.json"
}

func (r *ChromemRepository) upsertChromem(ctx context.Context, doc document.Document) error {
	if err := r.collection.Delete(ctx, nil, nil, doc.ID); err != nil {
		// Deleting a not-yet-indexed ID is not an error for this backend.
		_ = err
	}
	return r.collection.AddDocuments(ctx, []chromem.Document{{
		ID:       doc.ID,
		Content:  doc.Content,
		Metadata: metadataToMap(doc.Metadata),
	}}, 1)
}

func matchesFilter(m document.Metadata, f *Filter) bool {
	if f.SourceID != nil && m.SourceID != *f.SourceID {
		return false
	}
	if f.Source != nil && m.Source != *f.Source {
		return false
	}
	if f.Version != nil && m.Version != *f.Version {
		return false
	}
	if f.IsActive != nil && m.IsActive != *f.IsActive {
		return false
	}
	if len(f.Tags) > 0 {
		tagSet := make(map[string]struct{}, len(m.Tags))
		for _, t := range m.Tags {
			tagSet[t] = struct{}{}
		}
		for _, want := range f.Tags {
			if _, ok := tagSet[want]; !ok {
				return false
			}
		}
	}
	return true
}

func sortDocumentsByCreatedAt(docs []document.Document) {
	for i := 1; i < len(docs); i++ {
		for j := i; j > 0 && docs[j].Metadata.CreatedAt.Before(docs[j-1].Metadata.CreatedAt); j-- {
			docs[j], docs[j-1] = docs[j-1], docs[j]
		}
	}
}

// metadataToMap flattens Metadata into chromem-go's map[string]string
// metadata representation.
func metadataToMap(m document.Metadata) map[string]string {
	md := map[string]string{
		"source":     m.Source,
		"source_id":  m.SourceID,
		"version":    m.Version,
		"is_active":  strconv.FormatBool(m.IsActive),
		"tags":       strings.Join(m.Tags, ","),
		"created_at": m.CreatedAt.Format(time.RFC3339),
		"updated_at": m.UpdatedAt.Format(time.RFC3339),
		"file_hash":  m.FileHash,
		"chunk":      strconv.Itoa(m.Chunk),
		"total":      strconv.Itoa(m.Total),
	}
	for k, v := range m.CustomMetadata {
		md["custom:"+k] = v
	}
	return md
}

func mapToMetadata(m map[string]string) document.Metadata {
	isActive, _ := strconv.ParseBool(m["is_active"])
	chunk, _ := strconv.Atoi(m["chunk"])
	total, _ := strconv.Atoi(m["total"])
	createdAt, _ := time.Parse(time.RFC3339, m["created_at"])
	updatedAt, _ := time.Parse(time.RFC3339, m["updated_at"])

	var tags []string
	if t := m["tags"]; t != "" {
		tags = strings.Split(t, ",")
	}

	custom := make(map[string]string)
	for k, v := range m {
		if strings.HasPrefix(k, "custom:") {
			custom[strings.TrimPrefix(k, "custom:")] = v
		}
	}
	if len(custom) == 0 {
		custom = nil
	}

	return document.Metadata{
		Source:         m["source"],
		SourceID:       m["source_id"],
		Version:        m["version"],
		IsActive:       isActive,
		Tags:           tags,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
		FileHash:       m["file_hash"],
		Chunk:          chunk,
		Total:          total,
		CustomMetadata: custom,
	}
}
