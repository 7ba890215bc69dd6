package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/smallnest/langgraphlab/log"
)

// DefaultRecursionLimit bounds the number of node executions in one run.
const DefaultRecursionLimit = 25

// StateGraph is the builder for a graph over state type S. Registration
// methods never fail; every problem is reported together by Compile.
type StateGraph[S any] struct {
	schema           StateSchema[S]
	nodes            map[string]*Node[S]
	nodeOrder        []string
	edges            []Edge
	conditionalEdges []ConditionalEdge[S]
	entryPoint       string
	problems         []error

	listeners      []NodeListener
	tracer         *Tracer
	logger         log.Logger
	recursionLimit int
}

// NewStateGraph creates a graph whose state is described by schema.
func NewStateGraph[S any](schema StateSchema[S]) *StateGraph[S] {
	return &StateGraph[S]{
		schema:         schema,
		nodes:          make(map[string]*Node[S]),
		recursionLimit: DefaultRecursionLimit,
	}
}

// AddNode registers a node. Names must be unique, non-empty and not END.
func (g *StateGraph[S]) AddNode(name string, description string, fn NodeFunc[S], opts ...NodeOption) {
	switch {
	case name == "" || name == END:
		g.problems = append(g.problems, fmt.Errorf("%w: %q", ErrInvalidNodeName, name))
		return
	case g.nodes[name] != nil:
		g.problems = append(g.problems, fmt.Errorf("%w: %s", ErrDuplicateNode, name))
		return
	case fn == nil:
		g.problems = append(g.problems, fmt.Errorf("%w: %s", ErrNilNode, name))
		return
	}

	var o nodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	g.nodes[name] = &Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
		Writes:      o.writes,
		retry:       o.retry,
		timeout:     o.timeout,
	}
	g.nodeOrder = append(g.nodeOrder, name)
}

// AddEdge adds a fixed transition from one node to another node or END.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{From: from, To: to})
}

type edgeOptions struct {
	labels []string
}

// ConditionalOption configures a conditional edge.
type ConditionalOption func(*edgeOptions)

// WithLabels declares every label the router can return. Compile fails if
// any of them has no destination.
func WithLabels(labels ...string) ConditionalOption {
	return func(o *edgeOptions) {
		o.labels = append(o.labels, labels...)
	}
}

// AddConditionalEdges routes from a node through router. routes maps each
// label to a destination node or END; a nil map routes every declared label
// to the node of the same name.
func (g *StateGraph[S]) AddConditionalEdges(from string, router Router[S], routes map[string]string, opts ...ConditionalOption) {
	var o edgeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var mapped map[string]string
	if routes == nil {
		mapped = make(map[string]string, len(o.labels))
		for _, l := range o.labels {
			mapped[l] = l
		}
	} else {
		mapped = maps.Clone(routes)
	}

	g.conditionalEdges = append(g.conditionalEdges, ConditionalEdge[S]{
		From:   from,
		Router: router,
		Routes: mapped,
		Labels: slices.Clone(o.labels),
	})
}

// SetEntryPoint sets the first node of every run.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// AddListener registers a listener notified by every run of the compiled graph.
func (g *StateGraph[S]) AddListener(l NodeListener) {
	g.listeners = append(g.listeners, l)
}

// SetTracer sets a tracer for observability
func (g *StateGraph[S]) SetTracer(tracer *Tracer) {
	g.tracer = tracer
}

// SetLogger sets the logger used by Compile and the compiled runnable.
func (g *StateGraph[S]) SetLogger(logger log.Logger) {
	g.logger = logger
}

// SetRecursionLimit sets the default maximum number of node executions per run.
func (g *StateGraph[S]) SetRecursionLimit(n int) {
	g.recursionLimit = n
}

// Compile validates the graph and snapshots it into a runnable. Later
// changes to the builder do not affect runnables already compiled.
func (g *StateGraph[S]) Compile() (*StateRunnable[S], error) {
	logger := g.logger
	if logger == nil {
		logger = log.GetDefaultLogger()
	}

	errs := slices.Clone(g.problems)
	if g.schema == nil {
		errs = append(errs, errors.New("state schema is nil"))
	}

	if g.entryPoint == "" {
		errs = append(errs, ErrEntryPointNotSet)
	} else if g.nodes[g.entryPoint] == nil {
		errs = append(errs, fmt.Errorf("entry point %s: %w", g.entryPoint, ErrNodeNotFound))
	}

	known := func(name string) bool {
		return name == END || g.nodes[name] != nil
	}

	transitions := make(map[string]transition[S])
	outgoing := make(map[string]int)

	for _, e := range g.edges {
		outgoing[e.From]++
		if e.From == END || g.nodes[e.From] == nil {
			errs = append(errs, fmt.Errorf("edge source %s: %w", e.From, ErrNodeNotFound))
			continue
		}
		if !known(e.To) {
			errs = append(errs, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, ErrNodeNotFound))
			continue
		}
		transitions[e.From] = transition[S]{to: e.To}
	}

	for _, ce := range g.conditionalEdges {
		outgoing[ce.From]++
		if ce.From == END || g.nodes[ce.From] == nil {
			errs = append(errs, fmt.Errorf("conditional edge source %s: %w", ce.From, ErrNodeNotFound))
			continue
		}
		if ce.Router == nil {
			errs = append(errs, fmt.Errorf("%w: from %s", ErrNilRouter, ce.From))
		}
		if len(ce.Routes) == 0 {
			errs = append(errs, fmt.Errorf("conditional edge from %s has no routes: %w", ce.From, ErrUnmappedLabel))
		}
		for _, label := range sortedKeys(ce.Routes) {
			if to := ce.Routes[label]; !known(to) {
				errs = append(errs, fmt.Errorf("route %s -[%s]-> %s: %w", ce.From, label, to, ErrNodeNotFound))
			}
		}
		for _, label := range ce.Labels {
			if _, ok := ce.Routes[label]; !ok {
				errs = append(errs, fmt.Errorf("%w: %q from %s", ErrUnmappedLabel, label, ce.From))
			}
		}
		transitions[ce.From] = transition[S]{
			router: ce.Router,
			routes: maps.Clone(ce.Routes),
			labels: sortedKeys(ce.Routes),
		}
	}

	nodes := make(map[string]compiledNode[S], len(g.nodes))
	for _, name := range g.nodeOrder {
		n := g.nodes[name]
		switch outgoing[name] {
		case 0:
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, name))
		case 1:
		default:
			errs = append(errs, fmt.Errorf("%w: %s", ErrAmbiguousEdge, name))
		}

		var writes map[string]bool
		if len(n.Writes) > 0 && g.schema != nil {
			fields := g.schema.Fields()
			writes = make(map[string]bool, len(n.Writes))
			for _, w := range n.Writes {
				if !slices.Contains(fields, w) {
					errs = append(errs, fmt.Errorf("node %s declares write to %w: %s", name, ErrUnknownField, w))
				}
				writes[w] = true
			}
		}

		nodes[name] = compiledNode[S]{
			name:        name,
			description: n.Description,
			fn:          n.wrapped(),
			writes:      writes,
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGraph, errors.Join(errs...))
	}

	r := &StateRunnable[S]{
		schema:         freezeSchema(g.schema),
		nodes:          nodes,
		nodeOrder:      slices.Clone(g.nodeOrder),
		transitions:    transitions,
		entryPoint:     g.entryPoint,
		listeners:      slices.Clone(g.listeners),
		tracer:         g.tracer,
		logger:         logger,
		recursionLimit: g.recursionLimit,
	}

	for _, name := range r.unreachable() {
		logger.Warn("node %s is not reachable from entry point %s", name, g.entryPoint)
	}

	return r, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// wrapped applies the timeout and retry options around the node function.
func (n *Node[S]) wrapped() NodeFunc[S] {
	fn := n.Function
	if n.timeout > 0 {
		fn = Timeout(n.Name, fn, n.timeout)
	}
	if n.retry != nil {
		fn = Retry(n.Name, fn, n.retry)
	}
	return fn
}

// schemaCloner is implemented by schemas that can change after
// construction.
type schemaCloner interface {
	cloneSchema() any
}

// freezeSchema copies a mutable schema so a compiled runnable keeps the
// schema it was compiled with.
func freezeSchema[S any](schema StateSchema[S]) StateSchema[S] {
	if c, ok := schema.(schemaCloner); ok {
		if frozen, ok := c.cloneSchema().(StateSchema[S]); ok {
			return frozen
		}
	}
	return schema
}
