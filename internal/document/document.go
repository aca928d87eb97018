// Package document defines the core content types shared by the vector
// store repository, the sync engine, and the RAG pipeline.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata is the flat mapping of recognized keys attached to a Document,
// per the data model's metadata table.
type Metadata struct {
	Source         string            `json:"source"`
	SourceID       string            `json:"source_id"`
	Version        string            `json:"version"`
	IsActive       bool              `json:"is_active"`
	Tags           []string          `json:"tags,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	FileHash       string            `json:"file_hash,omitempty"`
	Chunk          int               `json:"chunk"`
	Total          int               `json:"total"`
	CustomMetadata map[string]string `json:"custom_metadata,omitempty"`
}

// Document is a single stored chunk: content plus its metadata, keyed by a
// deterministic ID.
type Document struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// QueryResult holds the parallel arrays returned by a repository query:
// documents, metadatas, distances, and ids all share the same length and
// index alignment. distances[i] is a cosine distance in [0,2]; lower is
// closer.
type QueryResult struct {
	Documents []string
	Metadatas []Metadata
	Distances []float64
	IDs       []string
}

// Len returns the number of results, derived from Documents.
func (q QueryResult) Len() int {
	return len(q.Documents)
}

// ComputeID derives the deterministic document ID from sha256 over
// (source_id, version, content), truncated to 32 hex characters. A chunk's
// position is not part of the hash, so identical content under the same
// source_id and version yields the same ID.
func ComputeID(sourceID, version, content string) string {
	h := sha256.New()
	h.Write([]byte(sourceID))
	h.Write([]byte{0})
	h.Write([]byte(version))
	h.Write([]byte{0})
	h.Write([]byte(content))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:32]
}

// HashContent returns the hex SHA-256 digest of the given bytes, used for
// file_hash change-detection in the sync engine.
func HashContent(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
