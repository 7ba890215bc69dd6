package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/smallnest/langgraphlab/rag"
)

// DirectoryLoader reads a knowledge base laid out as <root>/<section>/<name>.md.
// Each file becomes one document with ID "<section>_<stem>" and metadata
// "source" (file name) and "section". Files directly under root and
// non-markdown files are skipped.
type DirectoryLoader struct {
	root    string
	pattern string
}

var _ rag.DocumentLoader = (*DirectoryLoader)(nil)

// NewDirectoryLoader creates a loader for root reading "*.md" files.
func NewDirectoryLoader(root string) *DirectoryLoader {
	return &DirectoryLoader{root: root, pattern: "*.md"}
}

// WithPattern returns a copy of the loader matching file names against a
// filepath.Match pattern instead of "*.md".
func (l *DirectoryLoader) WithPattern(pattern string) *DirectoryLoader {
	return &DirectoryLoader{root: l.root, pattern: pattern}
}

// Load reads sections and files in lexical order.
func (l *DirectoryLoader) Load(ctx context.Context) ([]rag.Document, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.root, err)
	}

	var docs []rag.Document
	for _, section := range entries {
		if !section.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := filepath.Join(l.root, section.Name())
		files, err := filepath.Glob(filepath.Join(dir, l.pattern))
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", l.pattern, err)
		}
		slices.Sort(files)

		for _, path := range files {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read file %s: %w", path, err)
			}
			name := filepath.Base(path)
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			docs = append(docs, rag.Document{
				ID:      section.Name() + "_" + stem,
				Content: string(content),
				Metadata: map[string]any{
					"source":  name,
					"section": section.Name(),
				},
			})
		}
	}
	return docs, nil
}

func docID(prefix string, i int) string {
	return prefix + "_" + strconv.Itoa(i)
}
