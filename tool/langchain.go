package tool

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/tmc/langchaingo/tools"
)

// FromLangChain wraps a langchaingo tool. Its single string input is
// exposed as the "input" argument.
func FromLangChain(t tools.Tool) Tool {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"input": {Type: "string", Description: "Input passed to the tool"},
		},
		Required: []string{"input"},
	}
	return NewFunc(t.Name(), t.Description(), schema, func(ctx context.Context, args map[string]any) (string, error) {
		input, _ := args["input"].(string)
		return t.Call(ctx, input)
	})
}
