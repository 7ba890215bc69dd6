package rag

import (
	"context"
	"fmt"
)

// RelevanceThreshold is the similarity above which a candidate is marked relevant.
const RelevanceThreshold = 0.3

// Ranked is a candidate text scored against a query.
type Ranked struct {
	Text     string
	Score    float64
	Relevant bool
}

// Rank embeds query and candidates and scores every candidate. Results keep
// the candidates' order.
func Rank(ctx context.Context, embedder Embedder, query string, candidates []string) ([]Ranked, error) {
	queryVec, err := embedder.EmbedDocument(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	vectors, err := embedder.EmbedDocuments(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to embed candidates: %w", err)
	}
	if len(vectors) != len(candidates) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d candidates", len(vectors), len(candidates))
	}

	out := make([]Ranked, len(candidates))
	for i, text := range candidates {
		score, err := CosineSimilarity(queryVec, vectors[i])
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		out[i] = Ranked{Text: text, Score: score, Relevant: score > RelevanceThreshold}
	}
	return out, nil
}

// VectorRetriever answers queries by embedding them and searching an index.
type VectorRetriever struct {
	embedder Embedder
	index    VectorIndex
}

// NewVectorRetriever creates a retriever over index.
func NewVectorRetriever(embedder Embedder, index VectorIndex) *VectorRetriever {
	return &VectorRetriever{embedder: embedder, index: index}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, k int) ([]SearchResult, error) {
	vec, err := r.embedder.EmbedDocument(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return r.index.Query(ctx, vec, k)
}
