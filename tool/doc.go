// Package tool defines the capabilities a model may call and the registry
// that guards those calls.
//
// A model-chosen call is untrusted input. Registry.Call rejects unknown tool
// names and validates the JSON arguments against the tool's input schema
// before anything runs:
//
//	calc, _ := tool.NewCalculator()
//	reg, _ := tool.NewRegistry(calc)
//
//	resp, _ := model.GenerateContent(ctx, messages, llms.WithTools(reg.LLMTools()))
//	for _, call := range resp.Choices[0].ToolCalls {
//		out, err := reg.CallTool(ctx, call)
//		...
//	}
//
// Available tools:
//
//   - NewCalculator: arithmetic with + - * / // % **, parentheses and
//     abs, round, min, max, sum, len, int, float
//   - NewSearchTool: exposes any Searcher (DuckDuckGo, BraveSearch)
//   - FromLangChain: wraps a langchaingo tools.Tool
package tool
