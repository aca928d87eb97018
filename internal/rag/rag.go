// Package rag implements the stateless per-request retrieval-augmented
// generation pipeline: retrieval, threshold filtering, cross-encoder
// re-ranking, MMR diversity selection, token-budgeted context assembly,
// and rate/cost-limited LLM invocation.
package rag

import (
	"time"

	"github.com/cyberfortress-labs/smartxdr-core/internal/config"
	"github.com/cyberfortress-labs/smartxdr-core/internal/llm"
	"github.com/cyberfortress-labs/smartxdr-core/internal/promptbuilder"
	"github.com/cyberfortress-labs/smartxdr-core/internal/ratelimit"
	"github.com/cyberfortress-labs/smartxdr-core/internal/rerank"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

// Config holds the pipeline's tunable thresholds, sourced from
// config.Config so operators can adjust retrieval behavior without a
// rebuild.
type Config struct {
	DefaultResults      int
	MaxRerankCandidates int
	StrictThreshold     float64
	FallbackThreshold   float64
	MaxContextChars     int
	UseReranking        bool
	ChatModel           string
	InputPricePer1M     float64
	OutputPricePer1M    float64
}

// FromAppConfig derives pipeline Config from the application configuration.
func FromAppConfig(cfg *config.Config) Config {
	return Config{
		DefaultResults:      cfg.DefaultResults,
		MaxRerankCandidates: cfg.MaxRerankCandidates,
		StrictThreshold:     cfg.StrictThreshold,
		FallbackThreshold:   cfg.FallbackThreshold,
		MaxContextChars:     cfg.MaxContextChars,
		UseReranking:        true,
		ChatModel:           cfg.ChatModel,
		InputPricePer1M:     cfg.InputPricePer1M,
		OutputPricePer1M:    cfg.OutputPricePer1M,
	}
}

// Pipeline composes the collaborators named in spec.md §4.3. Cache and
// ConversationMemory are both optional (nil-safe) — the pipeline functions
// correctly, just without caching or conversation-aware query enhancement,
// when they aren't wired in.
type Pipeline struct {
	repo     store.Repository
	provider llm.Provider
	reranker rerank.Reranker
	limiter  *ratelimit.Limiter
	prompts  *promptbuilder.Builder
	cache    Cache
	memory   ConversationMemory
	cfg      Config
	now      func() time.Time
}

// New constructs a Pipeline. reranker, cache, and memory may be nil.
func New(repo store.Repository, provider llm.Provider, reranker rerank.Reranker, limiter *ratelimit.Limiter, prompts *promptbuilder.Builder, cache Cache, memory ConversationMemory, cfg Config) *Pipeline {
	if cfg.DefaultResults <= 0 {
		cfg.DefaultResults = 5
	}
	if cfg.MaxRerankCandidates <= 0 {
		cfg.MaxRerankCandidates = 20
	}
	if cfg.StrictThreshold <= 0 {
		cfg.StrictThreshold = 1.0
	}
	if cfg.FallbackThreshold <= 0 {
		cfg.FallbackThreshold = 1.4
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 6000
	}
	return &Pipeline{
		repo:     repo,
		provider: provider,
		reranker: reranker,
		limiter:  limiter,
		prompts:  prompts,
		cache:    cache,
		memory:   memory,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Result is the outcome of a Query call, shaped to serialize directly as
// the JSON response spec.md §4.3 step 12 describes.
type Result struct {
	Status    string   `json:"status"`
	Answer    string   `json:"answer,omitempty"`
	Cached    bool     `json:"cached"`
	Sources   []string `json:"sources,omitempty"`
	Cost      float64  `json:"cost"`
	ErrorType string   `json:"error_type,omitempty"`
	Error     string   `json:"error,omitempty"`
}
