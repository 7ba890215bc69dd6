package store

import (
	"context"
	"sync/atomic"

	"github.com/tmc/langchaingo/embeddings"

	"github.com/smallnest/langgraphlab/rag"
)

// LangChainEmbedder adapts a langchaingo embeddings.Embedder to rag.Embedder.
type LangChainEmbedder struct {
	embedder embeddings.Embedder

	dimension atomic.Int64
}

var _ rag.Embedder = (*LangChainEmbedder)(nil)

// NewLangChainEmbedder creates a new adapter for langchaingo embedders
func NewLangChainEmbedder(embedder embeddings.Embedder) *LangChainEmbedder {
	return &LangChainEmbedder{
		embedder: embedder,
	}
}

func (l *LangChainEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	v, err := l.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	l.remember(len(v))
	return v, nil
}

func (l *LangChainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vs, err := l.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vs) > 0 {
		l.remember(len(vs[0]))
	}
	return vs, nil
}

// GetDimension returns the dimension of the vectors seen so far, or 0
// before the first call.
func (l *LangChainEmbedder) GetDimension() int {
	return int(l.dimension.Load())
}

func (l *LangChainEmbedder) remember(n int) {
	l.dimension.CompareAndSwap(0, int64(n))
}
