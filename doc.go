// Package langgraphlab is a small toolkit for building LLM workflows as
// state graphs.
//
// The packages are layered:
//
//   - graph: typed state graphs, schemas and reducers, conditional routing,
//     listeners, tracing, checkpointing and diagram export.
//   - store: checkpoint stores backed by memory, files, SQLite, Redis and
//     PostgreSQL.
//   - prebuilt: ready-made workflows (greeting, content pipeline, query
//     router, calculator agent, research agent).
//   - tool: the calculator and web search tools the agents call.
//   - prompt: prompt templates, output parsers, chains and the zero-shot,
//     one-shot, few-shot and chain-of-thought comparisons.
//   - rag: document loading, splitting, embedding, retrieval, similarity
//     ranking and the retrieval question-answering pipeline.
//   - llms/provider and llms/gateway: model and embedder construction from
//     config.
//   - config, log and render: YAML configuration, leveled logging and
//     terminal or HTML output.
//
// The langgraphlab command in cmd/langgraphlab runs every workflow from the
// command line:
//
//	langgraphlab greet --name Alice
//	langgraphlab graph router --format mermaid
//	langgraphlab --checkpoint file:./checkpoints rag ask --docs ./data "How many vacation days do I get?"
//
// Runnable programs showing single features live under examples/.
package langgraphlab // import "github.com/smallnest/langgraphlab"
