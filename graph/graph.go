package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// END is a special constant used to represent the end node in the graph.
const END = "END"

var (
	// ErrInvalidGraph wraps every problem found by Compile.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrEntryPointNotSet is returned when the entry point of the graph is not set.
	ErrEntryPointNotSet = errors.New("entry point not set")

	// ErrNodeNotFound is returned when an edge or the entry point names an unknown node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when a node name is registered twice.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrInvalidNodeName is returned for an empty name or the reserved END name.
	ErrInvalidNodeName = errors.New("invalid node name")

	// ErrNilNode is returned when a node is registered without a function.
	ErrNilNode = errors.New("node function is nil")

	// ErrNilRouter is returned when a conditional edge has no router.
	ErrNilRouter = errors.New("conditional edge router is nil")

	// ErrNoOutgoingEdge is returned when a node has no outgoing transition.
	ErrNoOutgoingEdge = errors.New("no outgoing edge found for node")

	// ErrAmbiguousEdge is returned when a node has more than one outgoing transition.
	ErrAmbiguousEdge = errors.New("node has more than one outgoing transition")

	// ErrUnmappedLabel is returned when a router label has no destination.
	ErrUnmappedLabel = errors.New("router label is not mapped")

	// ErrUnknownField is returned when an update or declaration names a field
	// the state schema does not have.
	ErrUnknownField = errors.New("unknown state field")

	// ErrFieldType is returned when an update value does not fit the field type.
	ErrFieldType = errors.New("invalid value type for state field")

	// ErrUndeclaredWrite is returned when a node updates a field outside its write set.
	ErrUndeclaredWrite = errors.New("node wrote an undeclared field")

	// ErrRecursionLimit is returned when a run exceeds its step limit.
	ErrRecursionLimit = errors.New("recursion limit reached")
)

// Update is a partial state: field name to new value. Fields that are not
// present are left unchanged by a merge.
type Update map[string]any

// Keys returns the update's field names in sorted order.
func (u Update) Keys() []string {
	keys := make([]string, 0, len(u))
	for k := range u {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NodeFunc reads the current state and returns the fields it changes.
type NodeFunc[S any] func(ctx context.Context, state S) (Update, error)

// Router picks an edge label for a conditional edge.
type Router[S any] func(ctx context.Context, state S) string

// Node represents a node in the graph.
type Node[S any] struct {
	// Name is the unique identifier for the node.
	Name string

	// Description describes the functionality of the node.
	Description string

	// Function is the function associated with the node.
	Function NodeFunc[S]

	// Writes is the optional set of fields the node may update.
	Writes []string

	retry   *RetryConfig
	timeout time.Duration
}

// Edge represents an edge in the graph.
type Edge struct {
	// From is the name of the node from which the edge originates.
	From string

	// To is the name of the node to which the edge points.
	To string
}

// ConditionalEdge routes from a node through a router label to a destination.
type ConditionalEdge[S any] struct {
	From   string
	Router Router[S]
	// Routes maps router labels to destination nodes.
	Routes map[string]string
	// Labels is the declared set of labels the router can return.
	Labels []string
}

// NodeError reports a failure inside a node. The state of the run at the
// time of failure is not returned.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("error in node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// RoutingError reports a router label with no mapped destination. It is
// raised before any destination node runs.
type RoutingError struct {
	Node  string
	Label string
	Known []string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("router for node %s returned unmapped label %q (known: %s)",
		e.Node, e.Label, strings.Join(e.Known, ", "))
}

func (e *RoutingError) Unwrap() error {
	return ErrUnmappedLabel
}
