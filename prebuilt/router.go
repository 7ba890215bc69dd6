package prebuilt

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/smallnest/langgraphlab/graph"
)

// ShortQueryLimit is the rune count below which a query counts as short.
const ShortQueryLimit = 20

// QueryState is the state of the query router.
type QueryState struct {
	Query       string `json:"query"`
	QueryLength string `json:"query_length"`
	Response    string `json:"response"`
}

// RouteByLength sends short queries to "quick" and everything else to "detailed".
func RouteByLength(_ context.Context, s QueryState) string {
	if s.QueryLength == "short" {
		return "quick"
	}
	return "detailed"
}

// CreateQueryRouter builds analyze -> (quick | detailed) -> END.
func CreateQueryRouter(opts ...Option) (*graph.StateRunnable[QueryState], error) {
	g := graph.NewStateGraph[QueryState](graph.MustStructSchema(QueryState{}))

	g.AddNode("analyze", "measures the query", func(_ context.Context, s QueryState) (graph.Update, error) {
		length := "long"
		if utf8.RuneCountInString(s.Query) < ShortQueryLimit {
			length = "short"
		}
		return graph.Update{"query_length": length}, nil
	}, graph.WithWrites("query_length"))
	g.AddNode("quick", "answers briefly", func(_ context.Context, s QueryState) (graph.Update, error) {
		return graph.Update{"response": fmt.Sprintf("Quick answer: %s...", truncateRunes(s.Query, ShortQueryLimit))}, nil
	}, graph.WithWrites("response"))
	g.AddNode("detailed", "answers at length", func(_ context.Context, s QueryState) (graph.Update, error) {
		return graph.Update{"response": fmt.Sprintf("Detailed analysis: Let me thoroughly explain '%s'", s.Query)}, nil
	}, graph.WithWrites("response"))

	g.SetEntryPoint("analyze")
	g.AddConditionalEdges("analyze", RouteByLength, map[string]string{
		"quick":    "quick",
		"detailed": "detailed",
	}, graph.WithLabels("quick", "detailed"))
	g.AddEdge("quick", graph.END)
	g.AddEdge("detailed", graph.END)
	return compile(g, buildOptions(opts))
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
