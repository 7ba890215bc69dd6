package rag

import (
	"context"
	"fmt"
	"maps"

	"github.com/smallnest/langgraphlab/log"
)

// Indexer splits documents into chunks, embeds them and adds them to an index.
type Indexer struct {
	splitter TextSplitter
	embedder Embedder
	index    VectorIndex
	logger   log.Logger
}

// NewIndexer creates an indexer. A nil splitter indexes documents whole.
func NewIndexer(splitter TextSplitter, embedder Embedder, index VectorIndex) *Indexer {
	return &Indexer{
		splitter: splitter,
		embedder: embedder,
		index:    index,
		logger:   log.GetDefaultLogger(),
	}
}

// SetLogger sets the logger used to report progress.
func (ix *Indexer) SetLogger(logger log.Logger) {
	ix.logger = logger
}

// Index adds docs to the index and returns the number of chunks stored.
// Chunk IDs are "<document id>_chunk_<n>".
func (ix *Indexer) Index(ctx context.Context, docs []Document) (int, error) {
	chunks, err := SplitDocuments(ix.splitter, docs)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if err := ix.index.Add(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("failed to add chunks: %w", err)
	}

	ix.logger.Info("indexed %d documents as %d chunks", len(docs), len(chunks))
	return len(chunks), nil
}

// SplitDocuments splits every document with splitter, copying metadata to
// each chunk. A nil splitter yields one chunk per document.
func SplitDocuments(splitter TextSplitter, docs []Document) ([]Document, error) {
	var out []Document
	for _, doc := range docs {
		parts := []string{doc.Content}
		if splitter != nil {
			var err error
			parts, err = splitter.SplitText(doc.Content)
			if err != nil {
				return nil, fmt.Errorf("failed to split document %s: %w", doc.ID, err)
			}
		}
		for i, p := range parts {
			out = append(out, Document{
				ID:       fmt.Sprintf("%s_chunk_%d", doc.ID, i),
				Content:  p,
				Metadata: maps.Clone(doc.Metadata),
			})
		}
	}
	return out, nil
}
