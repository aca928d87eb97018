package rag

import (
	"context"
	"fmt"

	"github.com/cyberfortress-labs/smartxdr-core/internal/llm"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

// Query runs the full 12-step pipeline from spec.md §4.3: rate-limit guard,
// optional conversation-context enhancement, cache lookup, retrieval with
// threshold filtering, re-ranking, MMR diversification, context assembly,
// prompt build, rate/cost-checked LLM invocation, and cache store.
func (p *Pipeline) Query(ctx context.Context, text string, topK int, filters *store.Filter, sessionID string) (*Result, error) {
	if p.limiter != nil && !p.limiter.CheckRateLimit() {
		queriesTotal.WithLabelValues("rate_limit").Inc()
		return &Result{Status: "error", ErrorType: "rate_limit", Error: "rate limit exceeded"}, nil
	}

	queryText := text
	if sessionID != "" && p.memory != nil {
		if history := p.memory.RecentContext(ctx, sessionID); history != "" {
			queryText = history + "\n" + text
		}
	}

	// Cache lookup applies regardless of session_id — it only affects the
	// store below (spec.md §4.3 step 11: "Not cached when session_id is
	// set"). A repeated question still hits a cache an anonymous call
	// populated earlier.
	key := cacheKey(text, filters)
	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, key, text); ok {
			cacheLookupsTotal.WithLabelValues("hit").Inc()
			queriesTotal.WithLabelValues("success").Inc()
			return &Result{Status: "success", Answer: cached, Cached: true}, nil
		}
		cacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	contextText, sources, err := p.BuildContextFromQuery(ctx, queryText, topK, filters, p.cfg.UseReranking)
	if err != nil {
		queriesTotal.WithLabelValues("error").Inc()
		return &Result{Status: "error", Error: err.Error()}, nil
	}

	messages, err := p.prompts.Build("rag", map[string]string{"context": contextText, "query": text})
	if err != nil {
		queriesTotal.WithLabelValues("error").Inc()
		return &Result{Status: "error", Error: err.Error()}, nil
	}

	model := p.cfg.ChatModel
	estInputTokens := 0
	for _, m := range messages {
		estInputTokens += llm.EstimateTokens(model, m.Content)
	}
	estCost := llm.EstimateCost(model, estInputTokens, 512, p.cfg.InputPricePer1M, p.cfg.OutputPricePer1M)
	if p.limiter != nil && !p.limiter.CheckDailyCost(estCost) {
		queriesTotal.WithLabelValues("cost_limit").Inc()
		return &Result{Status: "error", ErrorType: "cost_limit", Error: "daily cost budget exceeded"}, nil
	}

	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		queriesTotal.WithLabelValues("error").Inc()
		return &Result{Status: "error", Error: fmt.Sprintf("llm call failed: %v", err)}, nil
	}

	actualCost := llm.EstimateCost(model, resp.InputTokens, resp.OutputTokens, p.cfg.InputPricePer1M, p.cfg.OutputPricePer1M)
	if p.limiter != nil {
		p.limiter.RecordCall(actualCost)
	}
	queryCostUSD.Add(actualCost)

	if sessionID == "" && p.cache != nil {
		p.cache.Set(ctx, key, text, resp.Content)
	}
	// Session-scoped queries are answered fresh but not persisted back into
	// the shared cache, so they can't leak one session's conversational
	// framing into another caller's lookup.

	queriesTotal.WithLabelValues("success").Inc()
	return &Result{
		Status:  "success",
		Answer:  resp.Content,
		Cached:  false,
		Sources: sources,
		Cost:    actualCost,
	}, nil
}
