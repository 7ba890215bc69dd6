package tool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type echoInput struct {
	Text  string `json:"text" jsonschema:"text to echo"`
	Times int    `json:"times,omitempty" jsonschema:"repeat count"`
}

func newEchoTool(t *testing.T, calls *atomic.Int32) Tool {
	t.Helper()
	echo, err := NewTyped("echo", "Echoes text.", func(_ context.Context, in echoInput) (string, error) {
		calls.Add(1)
		out := in.Text
		for i := 1; i < in.Times; i++ {
			out += in.Text
		}
		return out, nil
	})
	require.NoError(t, err)
	return echo
}

func TestRegistryCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	reg, err := NewRegistry(newEchoTool(t, &calls))
	require.NoError(t, err)

	out, err := reg.Call(context.Background(), "echo", `{"text":"ab","times":2}`)
	require.NoError(t, err)
	assert.Equal(t, "abab", out)
	assert.EqualValues(t, 1, calls.Load())
}

func TestRegistryRejectsUntrustedCalls(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	reg, err := NewRegistry(newEchoTool(t, &calls))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = reg.Call(ctx, "rm_rf", `{}`)
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = reg.Call(ctx, "echo", `{"times": 2}`)
	assert.ErrorIs(t, err, ErrInvalidArguments, "missing required field")

	_, err = reg.Call(ctx, "echo", `{"text": 42}`)
	assert.ErrorIs(t, err, ErrInvalidArguments, "wrong type")

	_, err = reg.Call(ctx, "echo", `{"text": "a"`)
	assert.ErrorIs(t, err, ErrInvalidArguments, "malformed json")

	_, err = reg.CallTool(ctx, llms.ToolCall{ID: "call_1"})
	assert.ErrorIs(t, err, ErrInvalidArguments)

	assert.Zero(t, calls.Load(), "no rejected call may reach the tool")
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	reg, err := NewRegistry()
	require.NoError(t, err)
	require.NoError(t, reg.Register(newEchoTool(t, &calls)))

	err = reg.Register(newEchoTool(t, &calls))
	assert.ErrorIs(t, err, ErrDuplicateTool)

	noSchema := NewFunc("ping", "Replies pong.", nil, func(context.Context, map[string]any) (string, error) {
		return "pong", nil
	})
	require.NoError(t, reg.Register(noSchema))

	out, err := reg.Call(context.Background(), "ping", "")
	require.NoError(t, err)
	assert.Equal(t, "pong", out)

	assert.Equal(t, []string{"echo", "ping"}, reg.Names())
	_, ok := reg.Get("ping")
	assert.True(t, ok)
}

func TestRegistryLLMTools(t *testing.T) {
	t.Parallel()

	calc, err := NewCalculator()
	require.NoError(t, err)
	reg, err := NewRegistry(calc)
	require.NoError(t, err)

	defs := reg.LLMTools()
	require.Len(t, defs, 1)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, CalculatorName, defs[0].Function.Name)
	schema, ok := defs[0].Function.Parameters.(*jsonschema.Schema)
	require.True(t, ok)
	assert.Contains(t, schema.Properties, "expression")

	out, err := reg.CallTool(context.Background(), llms.ToolCall{
		ID:           "call_1",
		Type:         "function",
		FunctionCall: &llms.FunctionCall{Name: CalculatorName, Arguments: `{"expression":"25 + 17"}`},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", out)
}

type upperTool struct{}

func (upperTool) Name() string        { return "upper" }
func (upperTool) Description() string { return "Upper-cases input." }
func (upperTool) Call(_ context.Context, input string) (string, error) {
	if input == "" {
		return "", errors.New("empty input")
	}
	return "UP:" + input, nil
}

func TestFromLangChain(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(FromLangChain(upperTool{}))
	require.NoError(t, err)

	out, err := reg.Call(context.Background(), "upper", `{"input":"hi"}`)
	require.NoError(t, err)
	assert.Equal(t, "UP:hi", out)

	_, err = reg.Call(context.Background(), "upper", `{}`)
	assert.ErrorIs(t, err, ErrInvalidArguments)
}
