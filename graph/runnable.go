package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/smallnest/langgraphlab/log"
	"github.com/smallnest/langgraphlab/store"
)

// Config carries per-run options for InvokeWithConfig.
type Config struct {
	// RunID identifies the run in checkpoints and traces. A random ID is
	// generated when empty.
	RunID string

	// ThreadID groups related runs, e.g. one conversation.
	ThreadID string

	// RecursionLimit overrides the graph's limit when positive.
	RecursionLimit int

	// Listeners are notified in addition to the graph's own listeners.
	Listeners []NodeListener
}

type compiledNode[S any] struct {
	name        string
	description string
	fn          NodeFunc[S]
	writes      map[string]bool
}

type transition[S any] struct {
	to     string
	router Router[S]
	routes map[string]string
	labels []string
}

// StateRunnable is a compiled, immutable graph. It is safe for concurrent
// use; each invocation owns its state.
type StateRunnable[S any] struct {
	schema         StateSchema[S]
	nodes          map[string]compiledNode[S]
	nodeOrder      []string
	transitions    map[string]transition[S]
	entryPoint     string
	listeners      []NodeListener
	tracer         *Tracer
	logger         log.Logger
	recursionLimit int
}

// Schema returns the state schema of the graph.
func (r *StateRunnable[S]) Schema() StateSchema[S] {
	return r.schema
}

// EntryPoint returns the first node of every run.
func (r *StateRunnable[S]) EntryPoint() string {
	return r.entryPoint
}

// Nodes returns node names in registration order.
func (r *StateRunnable[S]) Nodes() []string {
	return slices.Clone(r.nodeOrder)
}

// Invoke runs the graph from its entry point and returns the final state.
func (r *StateRunnable[S]) Invoke(ctx context.Context, initial S) (S, error) {
	return r.InvokeWithConfig(ctx, initial, nil)
}

// InvokeWithConfig runs the graph with per-run options.
func (r *StateRunnable[S]) InvokeWithConfig(ctx context.Context, initial S, config *Config) (S, error) {
	var zero S
	state, err := r.schema.Seed(initial)
	if err != nil {
		return zero, fmt.Errorf("invalid initial state: %w", err)
	}
	return r.newExecution(config).run(ctx, state, r.entryPoint, 0)
}

// ResumeFrom continues a run after the node recorded in cp, using the state
// saved with it. The run keeps the checkpoint's execution ID unless config
// sets one.
func (r *StateRunnable[S]) ResumeFrom(ctx context.Context, cp *store.Checkpoint, config *Config) (S, error) {
	var zero S
	if _, ok := r.nodes[cp.NodeName]; !ok {
		return zero, fmt.Errorf("checkpoint node %s: %w", cp.NodeName, ErrNodeNotFound)
	}
	state, err := DecodeState[S](cp)
	if err != nil {
		return zero, err
	}

	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	if cfg.RunID == "" {
		cfg.RunID, _ = cp.Metadata[store.MetaExecutionID].(string)
	}
	if cfg.ThreadID == "" {
		cfg.ThreadID, _ = cp.Metadata[store.MetaThreadID].(string)
	}

	exec := r.newExecution(&cfg)
	exec.info.ResumedVersion = cp.Version
	next, _, err := r.next(ctx, cp.NodeName, state)
	if err != nil {
		return zero, err
	}
	step := 0
	if s, ok := cp.Metadata["step"].(float64); ok {
		step = int(s) + 1
	} else if s, ok := cp.Metadata["step"].(int); ok {
		step = s + 1
	}
	return exec.run(ctx, state, next, step)
}

type execution[S any] struct {
	r         *StateRunnable[S]
	info      RunInfo
	limit     int
	listeners []NodeListener
}

func (r *StateRunnable[S]) newExecution(config *Config) *execution[S] {
	e := &execution[S]{
		r:         r,
		limit:     r.recursionLimit,
		listeners: r.listeners,
	}
	if config != nil {
		e.info.RunID = config.RunID
		e.info.ThreadID = config.ThreadID
		if config.RecursionLimit > 0 {
			e.limit = config.RecursionLimit
		}
		if len(config.Listeners) > 0 {
			e.listeners = append(slices.Clone(r.listeners), config.Listeners...)
		}
	}
	if e.info.RunID == "" {
		e.info.RunID = uuid.NewString()
	}
	if e.limit <= 0 {
		e.limit = DefaultRecursionLimit
	}
	return e
}

func (e *execution[S]) emit(ctx context.Context, event NodeEvent, node string, state any, err error) {
	for _, l := range e.listeners {
		l.OnNodeEvent(ctx, event, node, state, err)
	}
}

func (e *execution[S]) run(ctx context.Context, state S, current string, step int) (S, error) {
	var zero S
	r := e.r
	ctx = withRunInfo(ctx, e.info)

	var graphSpan *TraceSpan
	if r.tracer != nil {
		graphSpan = r.tracer.StartSpan(ctx, TraceEventGraphStart, "")
		graphSpan.Metadata["run_id"] = e.info.RunID
		ctx = ContextWithSpan(ctx, graphSpan)
	}

	fail := func(node string, err error) (S, error) {
		e.emit(ctx, NodeEventError, node, nil, err)
		if graphSpan != nil {
			r.tracer.EndSpan(ctx, graphSpan, nil, err)
		}
		r.logger.Error("run %s failed at node %s: %v", e.info.RunID, node, err)
		return zero, err
	}

	e.emit(ctx, EventChainStart, current, state, nil)
	r.logger.Debug("run %s: starting at %s", e.info.RunID, current)

	executed := 0
	for current != END {
		if executed >= e.limit {
			return fail(current, fmt.Errorf("%w: %d steps without reaching %s", ErrRecursionLimit, e.limit, END))
		}
		if err := ctx.Err(); err != nil {
			return fail(current, fmt.Errorf("execution cancelled before node %s: %w", current, err))
		}

		info := e.info
		info.Step = step
		stepCtx := withRunInfo(ctx, info)

		var span *TraceSpan
		if r.tracer != nil {
			span = r.tracer.StartSpan(stepCtx, TraceEventNodeStart, current)
			stepCtx = ContextWithSpan(stepCtx, span)
		}
		e.emit(stepCtx, NodeEventStart, current, state, nil)

		next, err := r.execute(stepCtx, current, state)
		if span != nil {
			r.tracer.EndSpan(stepCtx, span, next, err)
		}
		if err != nil {
			return fail(current, err)
		}
		state = next
		e.emit(stepCtx, NodeEventComplete, current, state, nil)

		to, label, err := r.next(stepCtx, current, state)
		if err != nil {
			return fail(current, err)
		}
		if r.tracer != nil {
			r.tracer.TraceEdgeTraversal(ctx, current, to, label)
		}
		e.emit(stepCtx, NodeEventRoute, current, to, nil)
		r.logger.Debug("run %s: %s -> %s", e.info.RunID, current, to)

		current = to
		step++
		executed++
	}

	e.emit(ctx, EventChainEnd, END, state, nil)
	if graphSpan != nil {
		r.tracer.EndSpan(ctx, graphSpan, state, nil)
	}
	return state, nil
}

// execute runs one node and merges its update.
func (r *StateRunnable[S]) execute(ctx context.Context, name string, state S) (S, error) {
	var zero S
	node := r.nodes[name]

	update, err := safeCall(ctx, name, node.fn, r.schema.Snapshot(state))
	if err != nil {
		return zero, &NodeError{Node: name, Err: err}
	}

	if node.writes != nil {
		for _, k := range update.Keys() {
			if !node.writes[k] {
				return zero, &NodeError{Node: name, Err: fmt.Errorf("%w: %s", ErrUndeclaredWrite, k)}
			}
		}
	}

	merged, err := r.schema.Apply(state, update)
	if err != nil {
		return zero, &NodeError{Node: name, Err: fmt.Errorf("failed to merge update: %w", err)}
	}
	return merged, nil
}

// next resolves the transition out of a node.
func (r *StateRunnable[S]) next(ctx context.Context, from string, state S) (to string, label string, err error) {
	t := r.transitions[from]
	if t.router == nil {
		return t.to, "", nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = &NodeError{Node: from, Err: fmt.Errorf("panic in router: %v", rec)}
		}
	}()

	label = t.router(ctx, r.schema.Snapshot(state))
	to, ok := t.routes[label]
	if !ok {
		return "", label, &RoutingError{Node: from, Label: label, Known: slices.Clone(t.labels)}
	}
	return to, label, nil
}

// unreachable returns registered nodes that no path from the entry point visits.
func (r *StateRunnable[S]) unreachable() []string {
	seen := map[string]bool{r.entryPoint: true}
	queue := []string{r.entryPoint}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		t := r.transitions[n]
		dests := []string{t.to}
		for _, l := range t.labels {
			dests = append(dests, t.routes[l])
		}
		for _, d := range dests {
			if d == "" || d == END || seen[d] {
				continue
			}
			seen[d] = true
			queue = append(queue, d)
		}
	}

	var out []string
	for _, n := range r.nodeOrder {
		if !seen[n] {
			out = append(out, n)
		}
	}
	return out
}
