// Package store provides vector indexes and embedders for the rag package.
package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/smallnest/langgraphlab/rag"
)

// InMemoryIndex is a cosine-similarity index held in memory. It is safe for
// concurrent use.
type InMemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	docs      map[string]rag.Document
	vectors   map[string][]float32
}

var _ rag.VectorIndex = (*InMemoryIndex)(nil)

// NewInMemoryIndex creates an empty index. The dimension is fixed by the
// first vector added.
func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{
		docs:    make(map[string]rag.Document),
		vectors: make(map[string][]float32),
	}
}

func (s *InMemoryIndex) Add(_ context.Context, docs []rag.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("documents and embeddings must have same length: %d != %d", len(docs), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dimension
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document %d has no ID", i)
		}
		if dim == 0 {
			dim = len(vectors[i])
		}
		if len(vectors[i]) != dim || dim == 0 {
			return fmt.Errorf("%w: document %s has %d, index has %d", rag.ErrDimensionMismatch, doc.ID, len(vectors[i]), dim)
		}
	}

	s.dimension = dim
	for i, doc := range docs {
		if _, exists := s.docs[doc.ID]; !exists {
			s.ids = append(s.ids, doc.ID)
		}
		doc.Metadata = maps.Clone(doc.Metadata)
		s.docs[doc.ID] = doc
		s.vectors[doc.ID] = slices.Clone(vectors[i])
	}
	return nil
}

func (s *InMemoryIndex) Query(ctx context.Context, vector []float32, k int) ([]rag.SearchResult, error) {
	return s.QueryWithThreshold(ctx, vector, k, -1)
}

// QueryWithThreshold is Query restricted to results scoring at least minScore.
func (s *InMemoryIndex) QueryWithThreshold(_ context.Context, vector []float32, k int, minScore float64) ([]rag.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.ids) == 0 {
		return []rag.SearchResult{}, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d, index has %d", rag.ErrDimensionMismatch, len(vector), s.dimension)
	}

	results := make([]rag.SearchResult, 0, len(s.ids))
	for _, id := range s.ids {
		score, err := rag.CosineSimilarity(vector, s.vectors[id])
		if err != nil {
			return nil, err
		}
		if score < minScore {
			continue
		}
		doc := s.docs[id]
		doc.Metadata = maps.Clone(doc.Metadata)
		results = append(results, rag.SearchResult{Document: doc, Score: score})
	}

	// stable: equal scores keep insertion order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (s *InMemoryIndex) Delete(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.docs[id]; !ok {
			continue
		}
		delete(s.docs, id)
		delete(s.vectors, id)
		s.ids = slices.DeleteFunc(s.ids, func(x string) bool { return x == id })
	}
	if len(s.ids) == 0 {
		s.dimension = 0
	}
	return nil
}

func (s *InMemoryIndex) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Get returns a stored document by ID.
func (s *InMemoryIndex) Get(id string) (rag.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	doc.Metadata = maps.Clone(doc.Metadata)
	return doc, ok
}
