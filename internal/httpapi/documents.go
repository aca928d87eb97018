package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cyberfortress-labs/smartxdr-core/internal/document"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

// createDocumentRequest is POST /rag/documents's body, per spec.md §6.
type createDocumentRequest struct {
	Content  string          `json:"content"`
	Metadata metadataRequest `json:"metadata"`
}

type metadataRequest struct {
	Source         string            `json:"source"`
	SourceID       string            `json:"source_id"`
	Version        string            `json:"version"`
	IsActive       *bool             `json:"is_active,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	CustomMetadata map[string]string `json:"custom_metadata,omitempty"`
}

func (r metadataRequest) toMetadata() document.Metadata {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}
	now := time.Now().UTC()
	return document.Metadata{
		Source:         r.Source,
		SourceID:       r.SourceID,
		Version:        r.Version,
		IsActive:       isActive,
		Tags:           r.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
		CustomMetadata: r.CustomMetadata,
	}
}

func handleCreateDocument(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}
		if req.Metadata.SourceID == "" {
			writeError(w, http.StatusBadRequest, "metadata.source_id is required")
			return
		}

		meta := req.Metadata.toMetadata()
		id := document.ComputeID(meta.SourceID, meta.Version, req.Content)
		storedID, err := deps.Repo.Add(r.Context(), id, req.Content, meta)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"id":         storedID,
			"content":    req.Content,
			"metadata":   meta,
			"created_at": meta.CreatedAt,
		})
	}
}

func handleCreateDocumentsBatch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reqs []createDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(reqs) == 0 {
			writeError(w, http.StatusBadRequest, "request body must be a non-empty array")
			return
		}

		contents := make([]string, len(reqs))
		metas := make([]document.Metadata, len(reqs))
		ids := make([]string, len(reqs))
		for i, req := range reqs {
			if req.Content == "" || req.Metadata.SourceID == "" {
				writeError(w, http.StatusBadRequest, "content and metadata.source_id are required for every document")
				return
			}
			meta := req.Metadata.toMetadata()
			contents[i] = req.Content
			metas[i] = meta
			ids[i] = document.ComputeID(meta.SourceID, meta.Version, req.Content)
		}

		storedIDs, err := deps.Repo.AddBatch(r.Context(), contents, metas, ids)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"document_ids": storedIDs,
			"count":        len(storedIDs),
		})
	}
}

func handleGetDocument(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		doc, err := deps.Repo.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if doc == nil {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

type updateDocumentRequest struct {
	Content  *string          `json:"content,omitempty"`
	Metadata *metadataRequest `json:"metadata,omitempty"`
}

func handleUpdateDocument(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req updateDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var meta *document.Metadata
		if req.Metadata != nil {
			m := req.Metadata.toMetadata()
			meta = &m
		}

		ok, err := deps.Repo.Update(r.Context(), id, req.Content, meta)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func handleDeleteDocument(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		hard := r.URL.Query().Get("hard") == "true"

		var ok bool
		var err error
		if hard {
			ok, err = deps.Repo.Delete(r.Context(), id)
		} else {
			ok, err = deps.Repo.SoftDelete(r.Context(), id)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleListDocuments(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := store.Filter{}
		if v := q.Get("source_id"); v != "" {
			filter.SourceID = &v
		}
		if v := q.Get("source"); v != "" {
			filter.Source = &v
		}
		if v := q.Get("version"); v != "" {
			filter.Version = &v
		}
		if v := q.Get("tags"); v != "" {
			filter.Tags = strings.Split(v, ",")
		}
		if v := q.Get("is_active"); v != "" {
			b := v == "true"
			filter.IsActive = &b
		}

		page := 1
		if v := q.Get("page"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				page = n
			}
		}
		pageSize := 20
		if v := q.Get("page_size"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				pageSize = n
			}
		}

		total, err := deps.Repo.Count(r.Context(), &filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		docs, err := deps.Repo.List(r.Context(), &filter, pageSize, (page-1)*pageSize)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if docs == nil {
			docs = []document.Document{}
		}

		totalPages := total / pageSize
		if total%pageSize != 0 {
			totalPages++
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"documents":   docs,
			"total":       total,
			"page":        page,
			"page_size":   pageSize,
			"total_pages": totalPages,
		})
	}
}
