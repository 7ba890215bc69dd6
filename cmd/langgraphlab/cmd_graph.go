package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langgraphlab/graph"
	"github.com/smallnest/langgraphlab/prebuilt"
	"github.com/smallnest/langgraphlab/rag"
	"github.com/smallnest/langgraphlab/rag/store"
	"github.com/smallnest/langgraphlab/tool"
)

var graphNames = []string{"greeting", "content", "router", "calculator", "research", "rag"}

var errDrawOnly = errors.New("model not available when drawing a graph")

// drawOnlyModel satisfies llms.Model for graphs that are compiled only to be drawn.
type drawOnlyModel struct{}

func (drawOnlyModel) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return nil, errDrawOnly
}

func (drawOnlyModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", errDrawOnly
}

func newGraphCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:       "graph <name>",
		Short:     "Draw a workflow graph",
		Long:      "Draw one of the workflow graphs: " + strings.Join(graphNames, ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: graphNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			return drawGraph(cmd.OutOrStdout(), args[0], format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "mermaid, dot or ascii")
	return cmd
}

func drawGraph(w io.Writer, name, format string) error {
	var model drawOnlyModel
	switch name {
	case "greeting":
		r, err := prebuilt.CreateGreetingPipeline()
		return draw(w, r, err, format)
	case "content":
		r, err := prebuilt.CreateContentPipeline()
		return draw(w, r, err, format)
	case "router":
		r, err := prebuilt.CreateQueryRouter()
		return draw(w, r, err, format)
	case "calculator":
		r, err := prebuilt.CreateCalculatorAgent(model)
		return draw(w, r, err, format)
	case "research":
		r, err := prebuilt.CreateResearchAgent(model, tool.NewDuckDuckGo())
		return draw(w, r, err, format)
	case "rag":
		retriever := rag.NewVectorRetriever(store.NewMockEmbedder(8), store.NewInMemoryIndex())
		p, err := rag.NewQAPipeline(retriever, model, rag.QAConfig{})
		if err != nil {
			return err
		}
		return draw(w, p.Runnable(), nil, format)
	default:
		return fmt.Errorf("unknown graph %q, want one of %s", name, strings.Join(graphNames, ", "))
	}
}

func draw[S any](w io.Writer, r *graph.StateRunnable[S], err error, format string) error {
	if err != nil {
		return err
	}
	e := graph.NewExporter(r)
	var out string
	switch format {
	case "mermaid":
		out = e.DrawMermaid()
	case "dot":
		out = e.DrawDOT()
	case "ascii":
		out = e.DrawASCII()
	default:
		return fmt.Errorf("unknown format %q, want mermaid, dot or ascii", format)
	}
	_, err = io.WriteString(w, out)
	return err
}
