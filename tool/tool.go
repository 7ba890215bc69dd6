package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/tmc/langchaingo/llms"
)

var (
	// ErrUnknownTool is returned when a call names a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when call arguments fail to decode or validate.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrDuplicateTool is returned when a name is registered twice.
	ErrDuplicateTool = errors.New("tool already registered")
)

// Tool is a capability a model may ask to run. Arguments arrive as a decoded
// JSON object that has already been validated against InputSchema.
type Tool interface {
	Name() string
	Description() string
	InputSchema() *jsonschema.Schema
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// funcTool is a Tool backed by a function.
type funcTool struct {
	name        string
	description string
	schema      *jsonschema.Schema
	fn          func(ctx context.Context, args map[string]any) (string, error)
}

// NewFunc creates a tool from a schema and a handler.
func NewFunc(name, description string, schema *jsonschema.Schema, fn func(ctx context.Context, args map[string]any) (string, error)) Tool {
	return &funcTool{name: name, description: description, schema: schema, fn: fn}
}

// NewTyped creates a tool whose schema is inferred from I. Arguments are
// decoded into I before fn runs.
func NewTyped[I any](name, description string, fn func(ctx context.Context, input I) (string, error)) (Tool, error) {
	schema, err := jsonschema.For[I](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to infer schema for %s: %w", name, err)
	}
	return NewFunc(name, description, schema, func(ctx context.Context, args map[string]any) (string, error) {
		var input I
		if err := remarshal(args, &input); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		return fn(ctx, input)
	}), nil
}

func (t *funcTool) Name() string                    { return t.name }
func (t *funcTool) Description() string             { return t.description }
func (t *funcTool) InputSchema() *jsonschema.Schema { return t.schema }

func (t *funcTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	return t.fn(ctx, args)
}

func remarshal(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

type registered struct {
	tool     Tool
	resolved *jsonschema.Resolved
}

// Registry holds the tools a model may call and validates every call.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registered
	order []string
}

// NewRegistry creates a registry holding tools.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]registered)}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Its schema is resolved once here.
func (r *Registry) Register(t Tool) error {
	schema := t.InputSchema()
	if schema == nil {
		schema = &jsonschema.Schema{Type: "object"}
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("invalid schema for tool %s: %w", t.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[t.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name())
	}
	r.tools[t.Name()] = registered{tool: t, resolved: resolved}
	r.order = append(r.order, t.Name())
	return nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.tools[name]
	return reg.tool, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Call runs the named tool with JSON-encoded arguments. Unknown tools and
// arguments that do not match the tool's schema are rejected without
// invoking anything.
func (r *Registry) Call(ctx context.Context, name string, arguments string) (string, error) {
	r.mu.RLock()
	reg, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	args := map[string]any{}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("%w for %s: %v", ErrInvalidArguments, name, err)
		}
	}
	if err := reg.resolved.Validate(args); err != nil {
		return "", fmt.Errorf("%w for %s: %v", ErrInvalidArguments, name, err)
	}
	return reg.tool.Invoke(ctx, args)
}

// CallTool runs a tool call returned by a model.
func (r *Registry) CallTool(ctx context.Context, call llms.ToolCall) (string, error) {
	if call.FunctionCall == nil {
		return "", fmt.Errorf("%w: tool call %s has no function", ErrInvalidArguments, call.ID)
	}
	return r.Call(ctx, call.FunctionCall.Name, call.FunctionCall.Arguments)
}

// LLMTools describes the registered tools for a model request.
func (r *Registry) LLMTools() []llms.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]llms.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name].tool
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.InputSchema(),
			},
		})
	}
	return out
}
