package prebuilt

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langgraphlab/graph"
	"github.com/smallnest/langgraphlab/tool"
)

// NotMathResponse is the reply to questions that are not calculations.
const NotMathResponse = "This is not a math question. Please ask a calculation!"

var mathKeywords = []string{"+", "-", "*", "/", "plus", "minus", "times", "divided", "calculate", "sum"}

// CalculatorState is the state of the calculator agent.
type CalculatorState struct {
	Query  string `json:"query"`
	IsMath bool   `json:"is_math"`
	Result string `json:"result"`
}

// IsMathQuery reports whether query contains any of keywords, ignoring case.
func IsMathQuery(query string, keywords []string) bool {
	lower := strings.ToLower(query)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CreateCalculatorAgent builds classify -> (calculator | general) -> END.
// The calculator step offers the calculator tool to model and runs the first
// tool call it returns through a validating registry. Without a tool call
// the model's text is used as the answer.
func CreateCalculatorAgent(model llms.Model, opts ...Option) (*graph.StateRunnable[CalculatorState], error) {
	o := buildOptions(opts)
	calc, err := tool.NewCalculator()
	if err != nil {
		return nil, err
	}
	registry, err := tool.NewRegistry(calc)
	if err != nil {
		return nil, err
	}
	temperature := o.temperatureOr(0)

	g := graph.NewStateGraph[CalculatorState](graph.MustStructSchema(CalculatorState{}))

	g.AddNode("classify", "checks for math keywords", func(_ context.Context, s CalculatorState) (graph.Update, error) {
		return graph.Update{"is_math": IsMathQuery(s.Query, mathKeywords)}, nil
	}, graph.WithWrites("is_math"))

	g.AddNode("calculator", "asks the model to use the calculator tool", func(ctx context.Context, s CalculatorState) (graph.Update, error) {
		prompt := "Calculate the following using the calculator tool: " + s.Query
		resp, err := model.GenerateContent(ctx,
			[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
			llms.WithTools(registry.LLMTools()),
			llms.WithTemperature(temperature),
		)
		if err != nil {
			return nil, fmt.Errorf("model call failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("model returned no choices")
		}

		choice := resp.Choices[0]
		answer := strings.TrimSpace(choice.Content)
		if len(choice.ToolCalls) > 0 {
			answer, err = registry.CallTool(ctx, choice.ToolCalls[0])
			if err != nil {
				return nil, err
			}
		}
		return graph.Update{"result": "Answer: " + answer}, nil
	}, graph.WithWrites("result"))

	g.AddNode("general", "declines non-math questions", func(context.Context, CalculatorState) (graph.Update, error) {
		return graph.Update{"result": NotMathResponse}, nil
	}, graph.WithWrites("result"))

	g.SetEntryPoint("classify")
	g.AddConditionalEdges("classify", func(_ context.Context, s CalculatorState) string {
		if s.IsMath {
			return "calculator"
		}
		return "general"
	}, map[string]string{"calculator": "calculator", "general": "general"}, graph.WithLabels("calculator", "general"))
	g.AddEdge("calculator", graph.END)
	g.AddEdge("general", graph.END)
	return compile(g, o)
}
