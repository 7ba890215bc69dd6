// langgraphlab runs the lab workflows from the command line.
//
// Usage:
//
//	langgraphlab greet --name Alice
//	langgraphlab route "What is AI?"
//	langgraphlab calc "What is 15 * 23?"
//	langgraphlab research "What is LangGraph?"
//	langgraphlab graph router --format mermaid
//	langgraphlab prompt compare
//	langgraphlab rag ask "What is the vacation policy?" --docs ./docs
//	langgraphlab similarity "pets at work" "dogs allowed" "free parking"
//
// Model settings come from --config and the OPENAI_* environment variables.
// With --checkpoint every completed node is saved and can be listed with
// "langgraphlab history <run-id>".
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
