package graph

import (
	"fmt"
	"strings"
)

// Exporter renders a compiled graph in different text formats.
type Exporter[S any] struct {
	r *StateRunnable[S]
}

// NewExporter creates a new graph exporter for the given runnable.
func NewExporter[S any](r *StateRunnable[S]) *Exporter[S] {
	return &Exporter[S]{r: r}
}

// MermaidOptions defines configuration for Mermaid diagram generation
type MermaidOptions struct {
	// Direction of the flowchart (e.g., "TD", "LR")
	Direction string
}

type exportEdge struct {
	from, to, label string
}

// edges lists transitions in node registration order; conditional routes
// are sorted by label.
func (ge *Exporter[S]) edges() []exportEdge {
	var out []exportEdge
	for _, name := range ge.r.nodeOrder {
		t := ge.r.transitions[name]
		if t.router == nil {
			out = append(out, exportEdge{from: name, to: t.to})
			continue
		}
		for _, l := range t.labels {
			out = append(out, exportEdge{from: name, to: t.routes[l], label: l})
		}
	}
	return out
}

func (ge *Exporter[S]) hasEnd() bool {
	for _, e := range ge.edges() {
		if e.to == END {
			return true
		}
	}
	return false
}

// DrawMermaid generates a Mermaid diagram representation of the graph
func (ge *Exporter[S]) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{Direction: "TD"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options
func (ge *Exporter[S]) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}
	fmt.Fprintf(&sb, "flowchart %s\n", direction)

	entry := ge.r.entryPoint
	sb.WriteString("    START([\"START\"])\n")
	fmt.Fprintf(&sb, "    START --> %s\n", entry)

	for _, name := range ge.r.nodeOrder {
		if name == entry {
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", name, name)
		} else {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", name, name)
		}
	}
	if ge.hasEnd() {
		sb.WriteString("    END([\"END\"])\n")
	}

	for _, e := range ge.edges() {
		if e.label == "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", e.from, e.to)
		} else {
			fmt.Fprintf(&sb, "    %s -.->|%s| %s\n", e.from, e.label, e.to)
		}
	}

	sb.WriteString("    style START fill:#90EE90\n")
	if ge.hasEnd() {
		sb.WriteString("    style END fill:#FFB6C1\n")
	}
	fmt.Fprintf(&sb, "    style %s fill:#87CEEB\n", entry)

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph
func (ge *Exporter[S]) DrawDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=TD;\n")
	sb.WriteString("    node [shape=box];\n")
	sb.WriteString("    START [label=\"START\", shape=ellipse, style=filled, fillcolor=lightgreen];\n")
	fmt.Fprintf(&sb, "    START -> %s;\n", ge.r.entryPoint)
	fmt.Fprintf(&sb, "    %s [style=filled, fillcolor=lightblue];\n", ge.r.entryPoint)

	if ge.hasEnd() {
		sb.WriteString("    END [label=\"END\", shape=ellipse, style=filled, fillcolor=lightpink];\n")
	}

	for _, e := range ge.edges() {
		if e.label == "" {
			fmt.Fprintf(&sb, "    %s -> %s;\n", e.from, e.to)
		} else {
			fmt.Fprintf(&sb, "    %s -> %s [style=dashed, label=\"%s\"];\n", e.from, e.to, e.label)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// DrawASCII generates an ASCII tree representation of the graph
func (ge *Exporter[S]) DrawASCII() string {
	var sb strings.Builder
	visited := make(map[string]bool)

	sb.WriteString("Graph Execution Flow:\n")
	sb.WriteString("├── START\n")
	ge.drawASCIINode(ge.r.entryPoint, "", "│   ", true, visited, &sb)

	return sb.String()
}

func (ge *Exporter[S]) drawASCIINode(nodeName, label, prefix string, isLast bool, visited map[string]bool, sb *strings.Builder) {
	connector := "├──"
	nextPrefix := prefix + "│   "
	if isLast {
		connector = "└──"
		nextPrefix = prefix + "    "
	}

	text := nodeName
	if label != "" {
		text = fmt.Sprintf("[%s] %s", label, nodeName)
	}

	if visited[nodeName] && nodeName != END {
		fmt.Fprintf(sb, "%s%s %s (cycle)\n", prefix, connector, text)
		return
	}
	fmt.Fprintf(sb, "%s%s %s\n", prefix, connector, text)
	if nodeName == END {
		return
	}
	visited[nodeName] = true

	var children []exportEdge
	for _, e := range ge.edges() {
		if e.from == nodeName {
			children = append(children, e)
		}
	}
	for i, child := range children {
		ge.drawASCIINode(child.to, child.label, nextPrefix, i == len(children)-1, visited, sb)
	}
}
