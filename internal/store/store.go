// Package store implements the Repository abstraction over the vector
// store backend.
package store

import (
	"context"

	"github.com/cyberfortress-labs/smartxdr-core/internal/document"
)

// Filter narrows list/query/count operations by metadata fields. Nil
// pointers/empty slices mean "no constraint on this field".
type Filter struct {
	SourceID *string
	Source   *string
	Version  *string
	Tags     []string
	IsActive *bool
}

// Stats summarizes the repository's contents, per §4.1.
type Stats struct {
	Total               int            `json:"total"`
	Active              int            `json:"active"`
	UniqueSources       int            `json:"unique_sources"`
	UniqueSourceIDs     int            `json:"unique_source_ids"`
	TagsDistribution    map[string]int `json:"tags_distribution"`
	VersionDistribution map[string]int `json:"version_distribution"`
}

// Repository abstracts the vector store. All operations are retry-safe at
// the caller layer; the repository itself performs no retries. Backend
// unreachability is fatal to the current request, not process-fatal.
type Repository interface {
	Add(ctx context.Context, id string, content string, meta document.Metadata) (string, error)
	AddBatch(ctx context.Context, contents []string, metas []document.Metadata, ids []string) ([]string, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	Update(ctx context.Context, id string, content *string, meta *document.Metadata) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
	Query(ctx context.Context, text string, n int, where *Filter) (document.QueryResult, error)
	List(ctx context.Context, where *Filter, limit, offset int) ([]document.Document, error)
	Count(ctx context.Context, where *Filter) (int, error)
	DeactivateOldVersions(ctx context.Context, sourceID, keepVersion string) (int, error)
	Stats(ctx context.Context) (Stats, error)

	// Persist/Load mirror the teacher's gob.gz export/import for the
	// in-process chromem-go backend.
	Persist(ctx context.Context, path string) error
	Load(ctx context.Context, path string) error
}
