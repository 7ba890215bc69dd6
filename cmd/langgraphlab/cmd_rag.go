package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smallnest/langgraphlab/graph"
	"github.com/smallnest/langgraphlab/rag"
	"github.com/smallnest/langgraphlab/rag/loader"
	"github.com/smallnest/langgraphlab/rag/splitter"
	"github.com/smallnest/langgraphlab/rag/store"
)

func newRAGCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rag",
		Short: "Index a knowledge base and answer questions from it",
		Long: "The knowledge base is a directory of <section>/<name>.md files. The\n" +
			"index is kept in memory, so search and ask index --docs on every run.",
	}
	cmd.AddCommand(newRAGIndexCmd(a), newRAGSearchCmd(a), newRAGAskCmd(a))
	return cmd
}

// buildIndex loads dir, chunks it with the configured splitter and indexes it.
func (a *app) buildIndex(ctx context.Context, dir string) (*store.InMemoryIndex, rag.Embedder, []rag.Document, int, error) {
	docs, err := loader.NewDirectoryLoader(dir).Load(ctx)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	embedder, err := a.embedder()
	if err != nil {
		return nil, nil, nil, 0, err
	}
	index := store.NewInMemoryIndex()
	ix := rag.NewIndexer(splitter.NewRecursive(
		splitter.WithChunkSize(a.cfg.RAG.ChunkSize),
		splitter.WithChunkOverlap(a.cfg.RAG.ChunkOverlap),
	), embedder, index)
	ix.SetLogger(a.logger)
	n, err := ix.Index(ctx, docs)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	return index, embedder, docs, n, nil
}

func (a *app) docsDir(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.RAG.DocsDir
}

func newRAGIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index [dir]",
		Short: "Load, chunk and embed a knowledge base",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.RAG.DocsDir
			if len(args) == 1 {
				dir = args[0]
			}
			_, embedder, docs, chunks, err := a.buildIndex(cmd.Context(), dir)
			if err != nil {
				return err
			}
			sections := map[string]int{}
			var order []string
			for _, d := range docs {
				s, _ := d.Metadata["section"].(string)
				if sections[s] == 0 {
					order = append(order, s)
				}
				sections[s]++
			}

			p := a.printer(cmd)
			p.Title("Indexed " + dir)
			for _, s := range order {
				p.Field(s, fmt.Sprintf("%d documents", sections[s]))
			}
			p.Field("Documents", len(docs))
			p.Field("Chunks", chunks)
			p.Field("Dimension", embedder.GetDimension())
			return nil
		},
	}
}

func newRAGSearchCmd(a *app) *cobra.Command {
	var docs string
	var topK int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Show the chunks most similar to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			index, embedder, _, _, err := a.buildIndex(ctx, a.docsDir(docs))
			if err != nil {
				return err
			}
			if topK <= 0 {
				topK = a.cfg.RAG.TopK
			}
			query := strings.Join(args, " ")
			results, err := rag.NewVectorRetriever(embedder, index).Retrieve(ctx, query, topK)
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			p.Title("Search: " + query)
			if len(results) == 0 {
				p.Note("no matching chunks")
			}
			for _, r := range results {
				p.Field(r.Document.ID, fmt.Sprintf("%.3f (%s)", r.Score, r.Document.Source()))
				p.Panel(r.Document.Content)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&docs, "docs", "", "knowledge base directory (default from config)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of chunks (default from config)")
	return cmd
}

func newRAGAskCmd(a *app) *cobra.Command {
	var docs string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the knowledge base with citations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			index, embedder, _, _, err := a.buildIndex(ctx, a.docsDir(docs))
			if err != nil {
				return err
			}
			model, err := a.model()
			if err != nil {
				return err
			}

			listeners := a.listeners()
			pipeline, err := rag.NewQAPipeline(rag.NewVectorRetriever(embedder, index), model, rag.QAConfig{
				TopK:        a.cfg.RAG.TopK,
				Temperature: a.cfg.RAG.Temperature,
				MaxTokens:   a.cfg.RAG.MaxTokens,
			}, func(g *graph.StateGraph[rag.QAState]) {
				g.SetLogger(a.logger)
				for _, l := range listeners {
					g.AddListener(l)
				}
			})
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			out, err := pipeline.Runnable().InvokeWithConfig(ctx, rag.QAState{Question: question}, a.runConfig())
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			p.Title(question)
			p.Panel(out.Response)
			p.Field("Chunks", len(out.Chunks))
			a.noteRun(p)
			return nil
		},
	}
	cmd.Flags().StringVar(&docs, "docs", "", "knowledge base directory (default from config)")
	return cmd
}
