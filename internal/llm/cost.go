package llm

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable maps model identifiers to their pricing.
var priceTable = map[string]modelPricing{
	// Anthropic models
	"claude-sonnet-4-5-20250929": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-haiku-4-5-20251001":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},
	"claude-opus-4-6":            {InputPerMillion: 15.00, OutputPerMillion: 75.00},

	// OpenAI models
	"gpt-4o":      {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60},

	// Google models
	"gemini-2.0-flash": {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gemini-1.5-pro":   {InputPerMillion: 1.25, OutputPerMillion: 5.00},
}

// EstimateCost returns the estimated cost in USD for the given model and
// token counts. Falls back to fallbackInput/fallbackOutput (the operator's
// configured input_price_per_1m/output_price_per_1m) when the model is not
// in the built-in price table.
func EstimateCost(model string, inputTokens, outputTokens int, fallbackInputPer1M, fallbackOutputPer1M float64) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		pricing = modelPricing{InputPerMillion: fallbackInputPer1M, OutputPerMillion: fallbackOutputPer1M}
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return inputCost + outputCost
}

var (
	tokenizerMu    sync.Mutex
	tokenizerCache = make(map[string]*tiktoken.Tiktoken)
)

// getTokenizer resolves a tiktoken encoding for the given model, falling
// back to cl100k_base when the model is unknown to tiktoken-go — the same
// fallback idiom the codebase uses elsewhere for unfamiliar model names.
func getTokenizer(model string) (*tiktoken.Tiktoken, error) {
	tokenizerMu.Lock()
	defer tokenizerMu.Unlock()

	if tk, ok := tokenizerCache[model]; ok {
		return tk, nil
	}

	tk, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tk, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	tokenizerCache[model] = tk
	return tk, nil
}

// EstimateTokens returns the token count for text under model's tokenizer,
// falling back to a char/4 heuristic if tiktoken-go cannot resolve any
// encoding at all (e.g. the vendored BPE ranks are unavailable offline).
func EstimateTokens(model, text string) int {
	if text == "" {
		return 0
	}
	tk, err := getTokenizer(model)
	if err != nil {
		n := len(text) / 4
		if n == 0 {
			return 1
		}
		return n
	}
	return len(tk.Encode(text, nil, nil))
}
