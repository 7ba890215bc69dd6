// Package loader reads documents for indexing.
package loader

import (
	"context"
	"maps"

	"github.com/smallnest/langgraphlab/rag"
)

// StaticDocumentLoader loads documents from a static list
type StaticDocumentLoader struct {
	Documents []rag.Document
}

var _ rag.DocumentLoader = (*StaticDocumentLoader)(nil)

// NewStaticDocumentLoader creates a new StaticDocumentLoader
func NewStaticDocumentLoader(documents []rag.Document) *StaticDocumentLoader {
	return &StaticDocumentLoader{
		Documents: documents,
	}
}

// NewTextsLoader wraps plain strings as documents with IDs "<prefix>_<i>".
func NewTextsLoader(prefix string, texts []string) *StaticDocumentLoader {
	docs := make([]rag.Document, len(texts))
	for i, t := range texts {
		docs[i] = rag.Document{
			ID:       docID(prefix, i),
			Content:  t,
			Metadata: map[string]any{"source": prefix, "index": i},
		}
	}
	return NewStaticDocumentLoader(docs)
}

// Load returns copies of the static documents.
func (l *StaticDocumentLoader) Load(ctx context.Context) ([]rag.Document, error) {
	return l.LoadWithMetadata(ctx, nil)
}

// LoadWithMetadata returns the static documents with metadata merged into
// copies of each document's metadata.
func (l *StaticDocumentLoader) LoadWithMetadata(_ context.Context, metadata map[string]any) ([]rag.Document, error) {
	docs := make([]rag.Document, len(l.Documents))
	for i, doc := range l.Documents {
		newDoc := doc
		newDoc.Metadata = maps.Clone(doc.Metadata)
		if len(metadata) > 0 {
			if newDoc.Metadata == nil {
				newDoc.Metadata = make(map[string]any, len(metadata))
			}
			maps.Copy(newDoc.Metadata, metadata)
		}
		docs[i] = newDoc
	}
	return docs, nil
}
