package store

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/smallnest/langgraphlab/rag"
)

// MockEmbedder is a deterministic offline embedder. Each lower-cased word is
// hashed into one of Dimension buckets, so texts sharing words score higher
// cosine similarity. Vectors are L2-normalized.
type MockEmbedder struct {
	Dimension int
}

var _ rag.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a new MockEmbedder
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{
		Dimension: dimension,
	}
}

func (e *MockEmbedder) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	return e.generateEmbedding(text), nil
}

func (e *MockEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = e.generateEmbedding(text)
	}
	return embeddings, nil
}

func (e *MockEmbedder) GetDimension() int {
	return e.Dimension
}

func (e *MockEmbedder) generateEmbedding(text string) []float32 {
	embedding := make([]float32, e.Dimension)
	if e.Dimension == 0 {
		return embedding
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		embedding[h.Sum32()%uint32(e.Dimension)]++
	}

	var norm float64
	for _, v := range embedding {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range embedding {
			embedding[i] /= n
		}
	}
	return embedding
}
