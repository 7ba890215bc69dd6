// Package graph implements a small state-graph workflow engine.
//
// A graph is a set of named nodes sharing one state value. Each node reads
// the state and returns an Update holding only the fields it changes; the
// executor merges the update into a new state and follows either a fixed
// edge or a conditional edge whose router returns a label. A run ends when
// it reaches END.
//
// # State
//
// The shape of the state is declared by a StateSchema. StructSchema uses a
// Go struct (fields named by json tags, defaults taken from a default
// value); MapSchema uses map[string]any with declared fields and defaults.
// Both reject update keys they do not declare unless created WithLenient,
// and both return a new state on merge without touching the old one. Invoke
// seeds omitted (zero-valued) fields with their defaults, and every node and
// router reads its own copy of the state.
//
//	type GreetingState struct {
//		Name     string `json:"name"`
//		Greeting string `json:"greeting"`
//	}
//
//	schema := graph.MustStructSchema(GreetingState{})
//	g := graph.NewStateGraph[GreetingState](schema)
//	g.AddNode("greet", "say hello", func(ctx context.Context, s GreetingState) (graph.Update, error) {
//		return graph.Update{"greeting": "Hello, " + s.Name + "!"}, nil
//	})
//	g.AddEdge("greet", graph.END)
//	g.SetEntryPoint("greet")
//
//	runnable, err := g.Compile()
//	final, err := runnable.Invoke(ctx, GreetingState{Name: "Alice"})
//
// # Routing
//
// AddConditionalEdges maps router labels to destinations. WithLabels
// declares every label a router may return so Compile can reject unmapped
// ones; a label that is still unmapped at run time fails the run with a
// RoutingError before any destination node executes.
//
// # Compile
//
// Compile reports every structural problem at once, wrapped in
// ErrInvalidGraph: missing or unknown entry point, edges to unknown nodes,
// nil routers, duplicate nodes, nodes without exactly one outgoing
// transition. The compiled StateRunnable is immutable and safe for
// concurrent Invoke calls.
//
// # Observability
//
// Listeners receive chain, node and routing events; CheckpointListener
// persists the state after each node to a store.CheckpointStore, and
// ResumeFrom continues a run from such a checkpoint. A Tracer records spans
// and Exporter renders the graph as Mermaid, DOT or ASCII.
package graph
