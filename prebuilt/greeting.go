package prebuilt

import (
	"context"
	"fmt"

	"github.com/smallnest/langgraphlab/graph"
)

// DefaultGreetingSuffix is appended by the enhance step unless WithSuffix is given.
const DefaultGreetingSuffix = " How are you?"

// GreetingState is the state of the greeting pipeline.
type GreetingState struct {
	Name     string `json:"name"`
	Greeting string `json:"greeting"`
}

// CreateGreetingPipeline builds greet -> enhance -> END.
func CreateGreetingPipeline(opts ...Option) (*graph.StateRunnable[GreetingState], error) {
	o := buildOptions(opts)
	suffix := o.suffix
	if suffix == "" {
		suffix = DefaultGreetingSuffix
	}

	g := graph.NewStateGraph[GreetingState](graph.MustStructSchema(GreetingState{}))
	g.AddNode("greet", "creates a greeting from the name", func(_ context.Context, s GreetingState) (graph.Update, error) {
		return graph.Update{"greeting": fmt.Sprintf("Hello, %s!", s.Name)}, nil
	}, graph.WithWrites("greeting"))
	g.AddNode("enhance", "extends the greeting", func(_ context.Context, s GreetingState) (graph.Update, error) {
		return graph.Update{"greeting": s.Greeting + suffix}, nil
	}, graph.WithWrites("greeting"))

	g.SetEntryPoint("greet")
	g.AddEdge("greet", "enhance")
	g.AddEdge("enhance", graph.END)
	return compile(g, o)
}
