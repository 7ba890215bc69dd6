// Package splitter provides the chunking strategies used before embedding.
package splitter

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/smallnest/langgraphlab/rag"
)

// Default chunking parameters.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
	DefaultOverlapRatio = 0.2
)

// DefaultSeparators are tried in order, from paragraphs down to single characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Recursive splits on the first separator that yields chunks within the size
// limit, falling back to finer separators. It wraps langchaingo's
// RecursiveCharacter splitter.
type Recursive struct {
	splitter textsplitter.RecursiveCharacter
}

var _ rag.TextSplitter = (*Recursive)(nil)

// RecursiveOption configures a Recursive splitter.
type RecursiveOption func(*recursiveOptions)

type recursiveOptions struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) RecursiveOption {
	return func(o *recursiveOptions) {
		o.chunkSize = size
	}
}

// WithChunkOverlap sets how many characters consecutive chunks share.
func WithChunkOverlap(overlap int) RecursiveOption {
	return func(o *recursiveOptions) {
		o.chunkOverlap = overlap
	}
}

// WithSeparators replaces DefaultSeparators.
func WithSeparators(separators []string) RecursiveOption {
	return func(o *recursiveOptions) {
		o.separators = separators
	}
}

// NewRecursive creates a recursive splitter, 500 characters with 100 overlap
// unless configured otherwise.
func NewRecursive(opts ...RecursiveOption) *Recursive {
	o := recursiveOptions{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   DefaultSeparators,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Recursive{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(o.chunkSize),
			textsplitter.WithChunkOverlap(o.chunkOverlap),
			textsplitter.WithSeparators(o.separators),
		),
	}
}

func (s *Recursive) SplitText(text string) ([]string, error) {
	return s.splitter.SplitText(text)
}

// Paragraph makes one chunk per paragraph: the tail of the previous
// paragraph (OverlapRatio of its length), the paragraph itself and the next
// paragraph, joined by spaces.
type Paragraph struct {
	OverlapRatio float64
}

var _ rag.TextSplitter = (*Paragraph)(nil)

// NewParagraph creates a paragraph splitter with the default 0.2 overlap ratio.
func NewParagraph() *Paragraph {
	return &Paragraph{OverlapRatio: DefaultOverlapRatio}
}

func (s *Paragraph) SplitText(text string) ([]string, error) {
	paragraphs := strings.Split(text, "\n\n")
	chunks := make([]string, 0, len(paragraphs))

	for i := range paragraphs {
		var parts []string
		if i > 0 && s.OverlapRatio > 0 {
			prev := []rune(paragraphs[i-1])
			if n := int(float64(len(prev)) * s.OverlapRatio); n > 0 {
				parts = append(parts, string(prev[len(prev)-n:]))
			}
		}
		parts = append(parts, paragraphs[i])
		if i+1 < len(paragraphs) {
			parts = append(parts, paragraphs[i+1])
		}
		chunks = append(chunks, strings.Join(parts, " "))
	}
	return chunks, nil
}
