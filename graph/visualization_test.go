package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporterMermaid(t *testing.T) {
	g, _ := newRouterGraph(lengthRouter)
	runnable, err := g.Compile()
	require.NoError(t, err)

	mermaid := NewExporter(runnable).DrawMermaid()
	assert.True(t, strings.HasPrefix(mermaid, "flowchart TD\n"))
	assert.Contains(t, mermaid, "START --> classify")
	assert.Contains(t, mermaid, `classify[["classify"]]`)
	assert.Contains(t, mermaid, `quick["quick"]`)
	assert.Contains(t, mermaid, "classify -.->|detailed| detailed")
	assert.Contains(t, mermaid, "classify -.->|quick| quick")
	assert.Contains(t, mermaid, "quick --> END")
	assert.Contains(t, mermaid, "style END fill:#FFB6C1")

	lr := NewExporter(runnable).DrawMermaidWithOptions(MermaidOptions{Direction: "LR"})
	assert.True(t, strings.HasPrefix(lr, "flowchart LR\n"))
}

func TestExporterDOT(t *testing.T) {
	runnable, err := newGreetingGraph().Compile()
	require.NoError(t, err)

	dot := NewExporter(runnable).DrawDOT()
	assert.True(t, strings.HasPrefix(dot, "digraph G {"))
	assert.Contains(t, dot, "START -> greet;")
	assert.Contains(t, dot, "greet -> enhance;")
	assert.Contains(t, dot, "enhance -> END;")
	assert.True(t, strings.HasSuffix(dot, "}\n"))

	g, _ := newRouterGraph(lengthRouter)
	routed, err := g.Compile()
	require.NoError(t, err)
	assert.Contains(t, NewExporter(routed).DrawDOT(), `classify -> quick [style=dashed, label="quick"];`)
}

func TestExporterASCII(t *testing.T) {
	runnable, err := newGreetingGraph().Compile()
	require.NoError(t, err)

	want := "Graph Execution Flow:\n" +
		"├── START\n" +
		"│   └── greet\n" +
		"│       └── enhance\n" +
		"│           └── END\n"
	assert.Equal(t, want, NewExporter(runnable).DrawASCII())

	g, _ := newRouterGraph(lengthRouter)
	routed, err := g.Compile()
	require.NoError(t, err)
	ascii := NewExporter(routed).DrawASCII()
	assert.Contains(t, ascii, "[detailed] detailed")
	assert.Contains(t, ascii, "[quick] quick")
}
