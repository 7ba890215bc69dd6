package prebuilt

import (
	"github.com/smallnest/langgraphlab/graph"
	"github.com/smallnest/langgraphlab/log"
)

// Option customizes a prebuilt workflow before it is compiled.
type Option func(*options)

type options struct {
	listeners      []graph.NodeListener
	tracer         *graph.Tracer
	logger         log.Logger
	recursionLimit int
	suffix         string
	temperature    *float64
}

// WithListener adds a node listener to the workflow.
func WithListener(l graph.NodeListener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, l)
	}
}

// WithTracer records spans for every run.
func WithTracer(t *graph.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithLogger sets the workflow logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRecursionLimit bounds the number of steps per run.
func WithRecursionLimit(n int) Option {
	return func(o *options) {
		o.recursionLimit = n
	}
}

// WithSuffix sets the text the greeting pipeline's enhance step appends.
func WithSuffix(s string) Option {
	return func(o *options) {
		o.suffix = s
	}
}

// WithTemperature overrides the sampling temperature of model calls.
func WithTemperature(t float64) Option {
	return func(o *options) {
		o.temperature = &t
	}
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) temperatureOr(def float64) float64 {
	if o.temperature != nil {
		return *o.temperature
	}
	return def
}

// compile applies the observability options and compiles g.
func compile[S any](g *graph.StateGraph[S], o *options) (*graph.StateRunnable[S], error) {
	for _, l := range o.listeners {
		g.AddListener(l)
	}
	if o.tracer != nil {
		g.SetTracer(o.tracer)
	}
	if o.logger != nil {
		g.SetLogger(o.logger)
	}
	if o.recursionLimit > 0 {
		g.SetRecursionLimit(o.recursionLimit)
	}
	return g.Compile()
}
