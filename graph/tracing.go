package graph

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TraceEvent represents different types of events in graph execution
type TraceEvent string

const (
	// TraceEventGraphStart indicates the start of graph execution
	TraceEventGraphStart TraceEvent = "graph_start"

	// TraceEventGraphEnd indicates the end of graph execution
	TraceEventGraphEnd TraceEvent = "graph_end"

	// TraceEventNodeStart indicates the start of node execution
	TraceEventNodeStart TraceEvent = "node_start"

	// TraceEventNodeEnd indicates the end of node execution
	TraceEventNodeEnd TraceEvent = "node_end"

	// TraceEventNodeError indicates an error occurred in node execution
	TraceEventNodeError TraceEvent = "node_error"

	// TraceEventEdgeTraversal indicates traversal from one node to another
	TraceEventEdgeTraversal TraceEvent = "edge_traversal"
)

// TraceSpan represents a span of execution with timing and metadata
type TraceSpan struct {
	ID       string
	ParentID string
	Event    TraceEvent

	// NodeName is the name of the node being executed (if applicable)
	NodeName string

	// FromNode and ToNode are set for edge traversals.
	FromNode string
	ToNode   string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// State is a snapshot of the state when the span ended.
	State any
	Error error

	Metadata map[string]any
}

// TraceHook defines the interface for trace event handlers
type TraceHook interface {
	// OnEvent is called when a trace event occurs
	OnEvent(ctx context.Context, span *TraceSpan)
}

// TraceHookFunc is a function adapter for TraceHook
type TraceHookFunc func(ctx context.Context, span *TraceSpan)

// OnEvent implements the TraceHook interface
func (f TraceHookFunc) OnEvent(ctx context.Context, span *TraceSpan) {
	f(ctx, span)
}

// Tracer manages trace collection and hooks. It is safe for use by
// concurrent runs.
type Tracer struct {
	mu    sync.RWMutex
	hooks []TraceHook
	spans map[string]*TraceSpan
}

// NewTracer creates a new tracer instance
func NewTracer() *Tracer {
	return &Tracer{
		spans: make(map[string]*TraceSpan),
	}
}

// AddHook registers a new trace hook
func (t *Tracer) AddHook(hook TraceHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, hook)
}

func (t *Tracer) notify(ctx context.Context, span *TraceSpan) {
	t.mu.RLock()
	hooks := t.hooks
	t.mu.RUnlock()
	for _, hook := range hooks {
		hook.OnEvent(ctx, span)
	}
}

func (t *Tracer) record(ctx context.Context, span *TraceSpan) {
	if parent := SpanFromContext(ctx); parent != nil {
		span.ParentID = parent.ID
	}
	t.mu.Lock()
	t.spans[span.ID] = span
	t.mu.Unlock()
	t.notify(ctx, span)
}

// StartSpan creates a new trace span
func (t *Tracer) StartSpan(ctx context.Context, event TraceEvent, nodeName string) *TraceSpan {
	span := &TraceSpan{
		ID:        uuid.NewString(),
		Event:     event,
		NodeName:  nodeName,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
	}
	t.record(ctx, span)
	return span
}

// EndSpan completes a trace span, turning start events into their end or
// error counterparts.
func (t *Tracer) EndSpan(ctx context.Context, span *TraceSpan, state any, err error) {
	t.mu.Lock()
	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	span.State = state
	span.Error = err

	switch {
	case span.Event == TraceEventNodeStart && err != nil:
		span.Event = TraceEventNodeError
	case span.Event == TraceEventNodeStart:
		span.Event = TraceEventNodeEnd
	case span.Event == TraceEventGraphStart:
		span.Event = TraceEventGraphEnd
	}
	t.mu.Unlock()

	t.notify(ctx, span)
}

// TraceEdgeTraversal records an edge traversal event. label is the router
// label for conditional edges and empty for fixed edges.
func (t *Tracer) TraceEdgeTraversal(ctx context.Context, fromNode, toNode, label string) {
	now := time.Now()
	span := &TraceSpan{
		ID:        uuid.NewString(),
		Event:     TraceEventEdgeTraversal,
		FromNode:  fromNode,
		ToNode:    toNode,
		StartTime: now,
		EndTime:   now,
		Metadata:  make(map[string]any),
	}
	if label != "" {
		span.Metadata["label"] = label
	}
	t.record(ctx, span)
}

// GetSpans returns all collected spans ordered by start time.
func (t *Tracer) GetSpans() []*TraceSpan {
	t.mu.RLock()
	defer t.mu.RUnlock()
	spans := make([]*TraceSpan, 0, len(t.spans))
	for _, s := range t.spans {
		spans = append(spans, s)
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].StartTime.Before(spans[j].StartTime)
	})
	return spans
}

// Clear removes all collected spans
func (t *Tracer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = make(map[string]*TraceSpan)
}

type spanContextKey struct{}

// ContextWithSpan returns a new context with the span stored
func ContextWithSpan(ctx context.Context, span *TraceSpan) context.Context {
	return context.WithValue(ctx, spanContextKey{}, span)
}

// SpanFromContext extracts a span from context
func SpanFromContext(ctx context.Context) *TraceSpan {
	if span, ok := ctx.Value(spanContextKey{}).(*TraceSpan); ok {
		return span
	}
	return nil
}
