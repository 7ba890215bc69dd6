package prompt

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// Formatter renders a prompt from input values. langchaingo's PromptTemplate
// and FewShotPrompt both satisfy it.
type Formatter interface {
	Format(values map[string]any) (string, error)
}

// Chain formats a prompt, sends it to a model and parses the reply.
type Chain[T any] struct {
	prompt  Formatter
	model   llms.Model
	parser  Parser[T]
	options []llms.CallOption
}

// NewChain creates a chain. options are passed to every model call.
func NewChain[T any](prompt Formatter, model llms.Model, parser Parser[T], options ...llms.CallOption) *Chain[T] {
	return &Chain[T]{prompt: prompt, model: model, parser: parser, options: options}
}

// Run executes the chain once.
func (c *Chain[T]) Run(ctx context.Context, values map[string]any) (T, error) {
	var zero T
	text, err := c.prompt.Format(values)
	if err != nil {
		return zero, fmt.Errorf("failed to format prompt: %w", err)
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, text, c.options...)
	if err != nil {
		return zero, fmt.Errorf("model call failed: %w", err)
	}
	return c.parser.Parse(out)
}

// Ask sends a single prompt and returns the raw reply.
func Ask(ctx context.Context, model llms.Model, text string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, model, text, options...)
}
