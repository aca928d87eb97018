package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

// queryRequest is POST /rag/query's body, per spec.md §6.
type queryRequest struct {
	Query          string   `json:"query"`
	TopK           int      `json:"top_k,omitempty"`
	Filters        *filters `json:"filters,omitempty"`
	IncludeSources *bool    `json:"include_sources,omitempty"`
	SessionID      string   `json:"session_id,omitempty"`
}

type filters struct {
	SourceID *string  `json:"source_id,omitempty"`
	Source   *string  `json:"source,omitempty"`
	Version  *string  `json:"version,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	IsActive *bool    `json:"is_active,omitempty"`
}

func (f *filters) toStoreFilter() *store.Filter {
	if f == nil {
		return nil
	}
	return &store.Filter{
		SourceID: f.SourceID,
		Source:   f.Source,
		Version:  f.Version,
		Tags:     f.Tags,
		IsActive: f.IsActive,
	}
}

const maxTopK = 20

func handleQuery(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Query == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}

		topK := req.TopK
		if topK <= 0 {
			topK = deps.DefaultTopK
		}
		if topK > maxTopK {
			topK = maxTopK
		}

		result, err := deps.Pipeline.Query(r.Context(), req.Query, topK, req.Filters.toStoreFilter(), req.SessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		sources := result.Sources
		if req.IncludeSources != nil && !*req.IncludeSources {
			sources = nil
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":  result.Status,
			"answer":  result.Answer,
			"sources": sources,
			"cached":  result.Cached,
			"metadata": map[string]any{
				"documents_retrieved": len(result.Sources),
				"processing_time_ms":  time.Since(start).Milliseconds(),
				"cost":                result.Cost,
				"error_type":          result.ErrorType,
			},
		})
	}
}

func handleStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Repo.Stats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
