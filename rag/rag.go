// Package rag provides the retrieval-augmented generation building blocks
// used by the TechCorp knowledge-base workflows: documents, embedders,
// vector indexes, an indexing pipeline and a question-answering graph that
// retrieves context, generates a grounded answer and cites its sources.
//
// Implementations live in subpackages:
//
//   - rag/store: in-memory cosine index, offline mock embedder and an
//     adapter for langchaingo embedders
//   - rag/splitter: recursive character and paragraph-overlap chunkers
//   - rag/loader: static and section-directory document loaders
package rag

import (
	"context"
	"errors"
	"math"
)

// ErrDimensionMismatch is returned when vectors of different length are compared or stored together.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Document is a unit of retrievable text.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Source returns the "source" metadata value, or "" when absent.
func (d Document) Source() string {
	s, _ := d.Metadata["source"].(string)
	return s
}

// SearchResult is a document with its similarity to a query.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Embedder converts text into vectors.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	GetDimension() int
}

// VectorIndex stores documents with their vectors and answers nearest
// neighbour queries by cosine similarity.
type VectorIndex interface {
	// Add stores docs with their vectors. An existing ID is replaced.
	Add(ctx context.Context, docs []Document, vectors [][]float32) error

	// Query returns up to k documents ordered by descending similarity.
	Query(ctx context.Context, vector []float32, k int) ([]SearchResult, error)

	// Delete removes documents by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids ...string) error

	// Count returns the number of stored documents.
	Count() int
}

// TextSplitter splits text into chunks.
type TextSplitter interface {
	SplitText(text string) ([]string, error)
}

// DocumentLoader loads documents from a source.
type DocumentLoader interface {
	Load(ctx context.Context) ([]Document, error)
}

// Retriever finds the documents most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]SearchResult, error)
}

// CosineSimilarity returns the cosine of the angle between a and b. It is 0
// when either vector has zero length.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
