package prebuilt

import (
	"context"
	"fmt"

	"github.com/smallnest/langgraphlab/graph"
)

// ContentState is the state of the content pipeline.
type ContentState struct {
	Topic   string `json:"topic"`
	Outline string `json:"outline"`
	Draft   string `json:"draft"`
	Final   string `json:"final"`
}

// CreateContentPipeline builds outline -> draft -> review -> END. Each step
// writes only its own field.
func CreateContentPipeline(opts ...Option) (*graph.StateRunnable[ContentState], error) {
	g := graph.NewStateGraph[ContentState](graph.MustStructSchema(ContentState{}))

	g.AddNode("outline", "creates an outline for the topic", func(_ context.Context, s ContentState) (graph.Update, error) {
		return graph.Update{
			"outline": fmt.Sprintf("Outline for '%s':\n1. Introduction\n2. Main Points\n3. Conclusion", s.Topic),
		}, nil
	}, graph.WithWrites("outline"))
	g.AddNode("draft", "drafts from the outline", func(_ context.Context, s ContentState) (graph.Update, error) {
		return graph.Update{"draft": fmt.Sprintf("Draft: Expanding on the outline for '%s'...", s.Topic)}, nil
	}, graph.WithWrites("draft"))
	g.AddNode("review", "reviews and finalizes", func(_ context.Context, s ContentState) (graph.Update, error) {
		return graph.Update{
			"final": fmt.Sprintf("Final: Reviewed and polished content about '%s'. Ready to publish!", s.Topic),
		}, nil
	}, graph.WithWrites("final"))

	g.SetEntryPoint("outline")
	g.AddEdge("outline", "draft")
	g.AddEdge("draft", "review")
	g.AddEdge("review", graph.END)
	return compile(g, buildOptions(opts))
}
