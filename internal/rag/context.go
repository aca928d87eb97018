package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/cyberfortress-labs/smartxdr-core/internal/document"
	"github.com/cyberfortress-labs/smartxdr-core/internal/store"
)

const noContextHint = "No relevant context found. Use general cybersecurity knowledge to answer if possible."

// candidateSet is the parallel documents/distances/metadatas triple carried
// through retrieval, filtering, re-ranking, and MMR — mirrors the original
// service's zip(documents, distances, metadatas) idiom as a named type
// instead of three separately-indexed slices.
type candidateSet struct {
	documents []string
	distances []float64
	metadatas []document.Metadata
}

func (c candidateSet) len() int { return len(c.documents) }

// BuildContextFromQuery retrieves, filters, re-ranks, and diversifies
// documents for text, then assembles a token-budgeted context string with a
// leading quality marker, per spec.md §4.3's exposed
// build_context_from_query operation. It is used directly by callers that
// want their own LLM prompt (enrichment, alert summarization) as well as
// internally by Query.
func (p *Pipeline) BuildContextFromQuery(ctx context.Context, text string, topK int, filters *store.Filter, useReranking bool) (string, []string, error) {
	if topK <= 0 {
		topK = p.cfg.DefaultResults
	}

	retrieveK := topK
	if useReranking {
		retrieveK = topK * 2
		if retrieveK > p.cfg.MaxRerankCandidates {
			retrieveK = p.cfg.MaxRerankCandidates
		}
	}

	where := cloneFilter(filters)
	if where.IsActive == nil {
		active := true
		where.IsActive = &active
	}

	qr, err := p.repo.Query(ctx, text, retrieveK, &where)
	if err != nil {
		return "", nil, fmt.Errorf("rag: retrieval failed: %w", err)
	}

	candidates := filterByThreshold(qr, p.cfg.FallbackThreshold)
	if candidates.len() == 0 {
		return noContextHint, nil, nil
	}

	sources := uniqueSources(candidates.metadatas)

	if strict := filterCandidateThreshold(candidates, p.cfg.StrictThreshold); strict.len() > 0 {
		candidates = strict
	}

	if useReranking && candidates.len() > 3 && p.reranker != nil {
		docs, dists, err := p.reranker.Rerank(ctx, text, candidates.documents, candidates.distances)
		if err == nil {
			candidates = reorderMetadatas(candidates, docs, dists)
		}
	}

	if candidates.len() > topK {
		candidates = applyMMR(candidates, topK, 0.5)
	}

	return buildContextText(candidates, p.cfg.MaxContextChars), sources, nil
}

// cloneFilter returns a usable store.Filter value even when f is nil, so
// callers can set IsActive without mutating the caller's filter.
func cloneFilter(f *store.Filter) store.Filter {
	if f == nil {
		return store.Filter{}
	}
	return *f
}

func uniqueSources(metas []document.Metadata) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range metas {
		if !seen[m.Source] {
			seen[m.Source] = true
			out = append(out, m.Source)
		}
	}
	return out
}

// filterByThreshold keeps only results with distance strictly below
// threshold, per spec.md §4.3 step 4/5.
func filterByThreshold(qr document.QueryResult, threshold float64) candidateSet {
	var c candidateSet
	for i, dist := range qr.Distances {
		if dist < threshold {
			c.documents = append(c.documents, qr.Documents[i])
			c.distances = append(c.distances, dist)
			c.metadatas = append(c.metadatas, qr.Metadatas[i])
		}
	}
	return c
}

func filterCandidateThreshold(c candidateSet, threshold float64) candidateSet {
	var out candidateSet
	for i, dist := range c.distances {
		if dist < threshold {
			out.documents = append(out.documents, c.documents[i])
			out.distances = append(out.distances, dist)
			out.metadatas = append(out.metadatas, c.metadatas[i])
		}
	}
	return out
}

// reorderMetadatas re-aligns metadatas to match a reranker's reordered
// documents/distances, by matching on original distance+document identity.
// Re-ranking only ever permutes the existing candidates, so a stable
// (document, distance) pairing lookup is sufficient to recover metadata.
func reorderMetadatas(original candidateSet, docs []string, dists []float64) candidateSet {
	type key struct {
		doc  string
		dist float64
	}
	index := make(map[key][]document.Metadata)
	for i := range original.documents {
		k := key{original.documents[i], original.distances[i]}
		index[k] = append(index[k], original.metadatas[i])
	}

	out := candidateSet{documents: docs, distances: dists, metadatas: make([]document.Metadata, len(docs))}
	for i := range docs {
		k := key{docs[i], dists[i]}
		if metas := index[k]; len(metas) > 0 {
			out.metadatas[i] = metas[0]
			index[k] = metas[1:]
		}
	}
	return out
}

// applyMMR greedily selects k diverse documents: the top-ranked candidate
// is always kept, then each subsequent candidate is accepted only if its
// word-overlap with every already-selected document is at or below
// diversityThreshold. If diversity rejection leaves fewer than k selected,
// the remainder is filled with the highest-ranked unselected candidates —
// exact semantics of _apply_mmr/_text_overlap.
func applyMMR(c candidateSet, k int, diversityThreshold float64) candidateSet {
	if c.len() <= k {
		return c
	}

	selected := []int{0}
	for i := 1; i < c.len() && len(selected) < k; i++ {
		diverse := true
		for _, sel := range selected {
			if textOverlap(c.documents[i], c.documents[sel]) > diversityThreshold {
				diverse = false
				break
			}
		}
		if diverse {
			selected = append(selected, i)
		}
	}

	if len(selected) < k {
		taken := make(map[int]bool, len(selected))
		for _, i := range selected {
			taken[i] = true
		}
		for i := 0; i < c.len() && len(selected) < k; i++ {
			if !taken[i] {
				selected = append(selected, i)
			}
		}
	}

	out := candidateSet{}
	for _, i := range selected {
		out.documents = append(out.documents, c.documents[i])
		out.distances = append(out.distances, c.distances[i])
		out.metadatas = append(out.metadatas, c.metadatas[i])
	}
	return out
}

// textOverlap is the intersection-over-smaller-set word overlap ratio used
// by MMR's diversity check.
func textOverlap(a, b string) float64 {
	words1 := wordSet(a)
	words2 := wordSet(b)
	if len(words1) == 0 || len(words2) == 0 {
		return 0
	}

	intersection := 0
	smaller, larger := words1, words2
	if len(words2) < len(words1) {
		smaller, larger = words2, words1
	}
	for w := range smaller {
		if larger[w] {
			intersection++
		}
	}

	minLen := len(words1)
	if len(words2) < minLen {
		minLen = len(words2)
	}
	return float64(intersection) / float64(minLen)
}

func wordSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = true
	}
	return out
}

// buildContextText assembles the final context string: a leading quality
// marker keyed off best_distance, then each document as
// "[Document i]\n<text>" joined by "\n\n---\n\n", truncating the last
// document that would overflow maxChars, with a trailing low-confidence
// hint when avg_distance exceeds 1.3 — per spec.md §4.3 step 8.
func buildContextText(c candidateSet, maxChars int) string {
	if c.len() == 0 {
		return noContextHint
	}

	best, avg := bestAndAvgDistance(c.distances)

	var parts []string
	parts = append(parts, "[Context Quality: "+qualityHint(best)+"]")
	parts = append(parts, "")
	currentLength := len(parts[0])

	for i, doc := range c.documents {
		docText := fmt.Sprintf("[Document %d]\n%s", i+1, doc)
		if currentLength+len(docText)+10 > maxChars {
			remaining := maxChars - currentLength - 50
			if remaining > 200 {
				if remaining > len(doc) {
					remaining = len(doc)
				}
				parts = append(parts, fmt.Sprintf("[Document %d]\n%s...", i+1, doc[:remaining]))
			}
			break
		}
		parts = append(parts, docText)
		currentLength += len(docText) + 10
	}

	contextText := strings.Join(parts, "\n\n---\n\n")
	if avg > 1.3 && c.len() > 0 {
		contextText += "\n\n[NOTE: Context quality is low. If the above information doesn't directly answer the question, use your general knowledge about the topic to provide a helpful response.]"
	}
	return contextText
}

func bestAndAvgDistance(distances []float64) (best, avg float64) {
	if len(distances) == 0 {
		return 0, 0
	}
	best = distances[0]
	sum := 0.0
	for _, d := range distances {
		if d < best {
			best = d
		}
		sum += d
	}
	return best, sum / float64(len(distances))
}

func qualityHint(bestDistance float64) string {
	switch {
	case bestDistance < 0.6:
		return "HIGH CONFIDENCE CONTEXT (exact match found)"
	case bestDistance < 1.0:
		return "GOOD CONTEXT (relevant documents found)"
	case bestDistance < 1.3:
		return "MODERATE CONTEXT (loosely related documents)"
	default:
		return "LOW CONFIDENCE CONTEXT (may need inference)"
	}
}
