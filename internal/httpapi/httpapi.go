// Package httpapi wires spec.md §6's HTTP surface — document CRUD, RAG
// query, alert summarization, and IOC enrichment — onto a chi router.
// Grounded on the teacher's internal/backlog route package: one
// RegisterRoutes entry point per feature area, handlers built as
// closures over their collaborators, http.Error with a literal JSON
// body for failures, json.NewEncoder(w).Encode for success.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cyberfortress-labs/smartxdr-core/internal/alerts"
	"github.com/cyberfortress-labs/smartxdr-core/internal/enrichment"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rag"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

// RAGPipeline is the subset of *rag.Pipeline the query handler depends on.
type RAGPipeline interface {
	Query(ctx context.Context, text string, topK int, filters *store.Filter, sessionID string) (*rag.Result, error)
}

// AlertSummarizer is the subset of *alerts.Summarizer the triage handler
// depends on.
type AlertSummarizer interface {
	Summarize(ctx context.Context, windowMinutes int, sourceIP, indexPattern string) (*alerts.Digest, error)
}

// IOCOrchestrator is the subset of *enrichment.Orchestrator the enrich
// handler depends on.
type IOCOrchestrator interface {
	EnrichIOC(ctx context.Context, caseID, iocID string, updateDescription bool) (*enrichment.Result, error)
}

// Deps collects every collaborator the HTTP surface needs. All fields are
// required; Server-construction code (cmd/serve.go) is responsible for
// wiring them from config.
type Deps struct {
	Repo         store.Repository
	Pipeline     RAGPipeline
	Summarizer   AlertSummarizer
	Orchestrator IOCOrchestrator

	// DefaultTopK is used when a /rag/query request omits top_k.
	DefaultTopK int
	// DefaultAlertWindowMinutes is used when a /triage/summarize-alerts
	// request omits time_window_minutes.
	DefaultAlertWindowMinutes int
	// DefaultIndexPattern is used when a /triage/summarize-alerts request
	// omits index_pattern.
	DefaultIndexPattern string
}

// RegisterRoutes mounts every spec.md §6 route under r.
func RegisterRoutes(r chi.Router, deps Deps) {
	r.Route("/rag/documents", func(r chi.Router) {
		r.Post("/", handleCreateDocument(deps))
		r.Post("/batch", handleCreateDocumentsBatch(deps))
		r.Get("/", handleListDocuments(deps))
		r.Get("/{id}", handleGetDocument(deps))
		r.Put("/{id}", handleUpdateDocument(deps))
		r.Delete("/{id}", handleDeleteDocument(deps))
	})
	r.Post("/rag/query", handleQuery(deps))
	r.Get("/rag/stats", handleStats(deps))
	r.Post("/triage/summarize-alerts", handleSummarizeAlerts(deps))
	r.Post("/enrich/explain_ioc", handleExplainIOC(deps))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, `{"error":"`+msg+`"}`, status)
}
