package prebuilt

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langgraphlab/graph"
	"github.com/smallnest/langgraphlab/tool"
)

const (
	// ResearchMaxResults is the number of search hits the search step asks for.
	ResearchMaxResults = 2

	langGraphInfo     = "LangGraph is a framework for building stateful, multi-step AI workflows using graphs."
	langGraphFallback = "LangGraph is a framework for building stateful AI agents with graphs."
	snippetLength     = 100
)

var mathIndicators = append(append([]string{}, mathKeywords...), "multiply", "add", "subtract")

// ResearchState is the state of the research agent.
type ResearchState struct {
	Query     string `json:"query"`
	QueryType string `json:"query_type"`
	Result    string `json:"result"`
}

// CreateResearchAgent builds classify -> (calculator_tool | search_tool) -> END.
// Math questions go to model, everything else to searcher.
func CreateResearchAgent(model llms.Model, searcher tool.Searcher, opts ...Option) (*graph.StateRunnable[ResearchState], error) {
	if model == nil || searcher == nil {
		return nil, fmt.Errorf("research agent needs a model and a searcher")
	}
	o := buildOptions(opts)
	temperature := o.temperatureOr(0.7)

	g := graph.NewStateGraph[ResearchState](graph.MustStructSchema(ResearchState{}))

	g.AddNode("classify", "decides between math and search", func(_ context.Context, s ResearchState) (graph.Update, error) {
		queryType := "search"
		if IsMathQuery(s.Query, mathIndicators) {
			queryType = "math"
		}
		return graph.Update{"query_type": queryType}, nil
	}, graph.WithWrites("query_type"))

	g.AddNode("calculator_tool", "asks the model for the answer", func(ctx context.Context, s ResearchState) (graph.Update, error) {
		out, err := llms.GenerateFromSinglePrompt(ctx, model,
			"Calculate and return ONLY the answer: "+s.Query,
			llms.WithTemperature(temperature))
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}
		return graph.Update{"result": "Calculation result: " + strings.TrimSpace(out)}, nil
	}, graph.WithWrites("result"))

	g.AddNode("search_tool", "searches the web", func(ctx context.Context, s ResearchState) (graph.Update, error) {
		return graph.Update{"result": searchSummary(ctx, searcher, s.Query)}, nil
	}, graph.WithWrites("result"))

	g.SetEntryPoint("classify")
	g.AddConditionalEdges("classify", func(_ context.Context, s ResearchState) string {
		if s.QueryType == "math" {
			return "calculator_tool"
		}
		return "search_tool"
	}, map[string]string{
		"calculator_tool": "calculator_tool",
		"search_tool":     "search_tool",
	}, graph.WithLabels("calculator_tool", "search_tool"))
	g.AddEdge("calculator_tool", graph.END)
	g.AddEdge("search_tool", graph.END)
	return compile(g, o)
}

// searchSummary never fails: search errors and empty results fall back to
// canned text.
func searchSummary(ctx context.Context, searcher tool.Searcher, query string) string {
	mentionsLangGraph := strings.Contains(strings.ToLower(query), "langgraph")

	results, err := searcher.Search(ctx, query, ResearchMaxResults)
	if err != nil {
		if mentionsLangGraph {
			return langGraphFallback
		}
		return fmt.Sprintf("Search unavailable, but I can tell you: %s is an interesting topic!", query)
	}
	if len(results) == 0 {
		if mentionsLangGraph {
			return "Info: " + langGraphInfo
		}
		return "No search results found"
	}

	if len(results) > ResearchMaxResults {
		results = results[:ResearchMaxResults]
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s: %s...", r.Title, truncateRunes(r.Body, snippetLength)))
	}
	return "Search results:\n" + strings.Join(lines, "\n")
}
