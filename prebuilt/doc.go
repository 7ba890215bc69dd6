// Package prebuilt provides ready-to-run workflows built on the graph package.
//
// Every constructor compiles a strict struct-state graph and returns a
// *graph.StateRunnable that is safe for concurrent Invoke calls. Models and
// searchers are passed in; nothing reads a process-wide client.
//
// # Workflows
//
//   - CreateGreetingPipeline: greet -> enhance
//   - CreateContentPipeline: outline -> draft -> review
//   - CreateQueryRouter: analyze -> quick | detailed, by query length
//   - CreateCalculatorAgent: classify -> calculator | general, where the
//     calculator step lets the model call the calculator tool
//   - CreateResearchAgent: classify -> calculator_tool | search_tool
//
// Example:
//
//	router, err := prebuilt.CreateQueryRouter(prebuilt.WithListener(
//		graph.NewLoggingListener(log.GetDefaultLogger(), false)))
//	if err != nil {
//		return err
//	}
//	out, err := router.Invoke(ctx, prebuilt.QueryState{Query: "What is Python?"})
//	// out.Response == "Quick answer: What is Python?..."
//
// Options add listeners, a tracer, a logger or a recursion limit to any
// workflow before it is compiled.
package prebuilt
