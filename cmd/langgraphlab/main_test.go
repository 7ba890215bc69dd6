package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langgraphlab/config"
	"github.com/smallnest/langgraphlab/llms/provider"
	"github.com/smallnest/langgraphlab/tool"
)

// fakeModel replies with canned responses in order, then repeats the last one.
type fakeModel struct {
	mu        sync.Mutex
	responses []llms.ContentResponse
	calls     int
}

func (m *fakeModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := min(m.calls, len(m.responses)-1)
	m.calls++
	resp := m.responses[i]
	return &resp, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *fakeModel) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, float32(i)}
	}
	return out, nil
}

func textReply(s string) llms.ContentResponse {
	return llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s}}}
}

func testApp(model *fakeModel) *app {
	a := newApp()
	a.newModel = func(*config.Config) (provider.Model, error) {
		return model, nil
	}
	return a
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newAppCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--log-level", "none"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeKnowledgeBase(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"policies/pets.md":        "Dogs are welcome in the office on Fridays.",
		"policies/remote_work.md": "Employees may work remotely up to 3 days per week.",
		"benefits/vacation.md":    "Full-time employees receive 15 days of paid vacation.",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestGreetCommand(t *testing.T) {
	out, err := run(t, newApp(), "greet", "--name", "Bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello, Bob! How are you?")

	out, err = run(t, newApp(), "greet", "--name", "Bob", "--suffix", " Welcome back!")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello, Bob! Welcome back!")
}

func TestContentCommand(t *testing.T) {
	out, err := run(t, newApp(), "content", "--topic", "Go generics")
	require.NoError(t, err)
	assert.Contains(t, out, "Outline for 'Go generics'")
	assert.Contains(t, out, "Ready to publish!")
}

func TestRouteCommand(t *testing.T) {
	out, err := run(t, newApp(), "route", "What is AI?", "Explain the history of machine learning in detail")
	require.NoError(t, err)
	assert.Contains(t, out, "Quick answer: What is AI?...")
	assert.Contains(t, out, "Detailed analysis: Let me thoroughly explain 'Explain the history of machine learning in detail'")
}

func TestHTMLOutput(t *testing.T) {
	out, err := run(t, newApp(), "--html", "greet", "--name", "<b>Eve</b>")
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Greeting</h2>")
	assert.Contains(t, out, "Hello, &lt;b&gt;Eve&lt;/b&gt;!")
}

func TestCalcCommand(t *testing.T) {
	model := &fakeModel{responses: []llms.ContentResponse{{Choices: []*llms.ContentChoice{{
		ToolCalls: []llms.ToolCall{{
			ID:           "call_1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: tool.CalculatorName, Arguments: `{"expression":"15 * 23"}`},
		}},
	}}}}}

	out, err := run(t, testApp(model), "calc", "What is 15 * 23?")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer: 345")

	out, err = run(t, testApp(model), "calc", "Tell me a joke")
	require.NoError(t, err)
	assert.Contains(t, out, "This is not a math question.")
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, newApp(), "graph", "router")
	require.NoError(t, err)
	assert.Contains(t, out, "flowchart TD")
	assert.Contains(t, out, "analyze -.->|quick| quick")
	assert.Contains(t, out, "analyze -.->|detailed| detailed")

	out, err = run(t, newApp(), "graph", "rag", "--format", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "retrieve -> generate;")
	assert.Contains(t, out, "cite -> END;")

	out, err = run(t, newApp(), "graph", "calculator", "-f", "ascii")
	require.NoError(t, err)
	assert.Contains(t, out, "[calculator] calculator")

	_, err = run(t, newApp(), "graph", "nope")
	assert.ErrorContains(t, err, "unknown graph")

	_, err = run(t, newApp(), "graph", "greeting", "--format", "svg")
	assert.ErrorContains(t, err, "unknown format")
}

func TestSimilarityCommand(t *testing.T) {
	out, err := run(t, newApp(), "--mock-embeddings", "similarity", "--sort",
		"dogs at the office", "dogs at the office", "quarterly revenue")
	require.NoError(t, err)
	assert.Contains(t, out, "1.000  dogs at the office")
	assert.Contains(t, out, "quarterly revenue")
	assert.Contains(t, out, "relevant above 0.3")
}

func TestRAGCommands(t *testing.T) {
	docs := writeKnowledgeBase(t)

	out, err := run(t, newApp(), "--mock-embeddings", "rag", "index", docs)
	require.NoError(t, err)
	assert.Contains(t, out, "Documents: 3")
	assert.Contains(t, out, "Chunks: 3")
	assert.Contains(t, out, "policies: 2 documents")

	out, err = run(t, newApp(), "--mock-embeddings", "rag", "search", "--docs", docs, "-k", "1",
		"Dogs are welcome in the office on Fridays.")
	require.NoError(t, err)
	assert.Contains(t, out, "policies_pets_chunk_0")
	assert.NotContains(t, out, "benefits_vacation_chunk_0")

	model := &fakeModel{responses: []llms.ContentResponse{textReply("Dogs are welcome on Fridays.")}}
	out, err = run(t, testApp(model), "--mock-embeddings", "rag", "ask", "--docs", docs, "Can I bring my dog?")
	require.NoError(t, err)
	assert.Contains(t, out, "Dogs are welcome on Fridays.")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "pets.md")
}

func TestRAGIndexMissingDirectory(t *testing.T) {
	_, err := run(t, newApp(), "--mock-embeddings", "rag", "index", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestPromptCommands(t *testing.T) {
	model := &fakeModel{responses: []llms.ContentResponse{
		textReply("I understand. I'll process this right away, within 24 hours."),
	}}
	out, err := run(t, testApp(model), "prompt", "few", "late delivery")
	require.NoError(t, err)
	assert.Contains(t, out, "Issue: late delivery")
	assert.Contains(t, out, "Score: 3/3")

	model = &fakeModel{responses: []llms.ContentResponse{
		textReply("short"),
		textReply("1. Eligibility: remote employees in good standing"),
	}}
	out, err = run(t, testApp(model), "prompt", "compare")
	require.NoError(t, err)
	assert.Contains(t, out, "most detailed: one_shot")
}

func TestHistoryCommand(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "checkpoints")

	out, err := run(t, newApp(), "--checkpoint", dsn, "--run-id", "run-1", "greet", "--name", "Ann")
	require.NoError(t, err)
	assert.Contains(t, out, "run run-1 checkpointed to "+dsn)

	out, err = run(t, newApp(), "--checkpoint", dsn, "history", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "v1 greet")
	assert.Contains(t, out, "v2 enhance")

	out, err = run(t, newApp(), "--checkpoint", dsn, "history", "--clear", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared 2 checkpoints")

	out, err = run(t, newApp(), "--checkpoint", dsn, "history", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "no checkpoints")

	_, err = run(t, newApp(), "history", "run-1")
	assert.ErrorContains(t, err, "no checkpoint store")
}

func TestInvalidFlags(t *testing.T) {
	_, err := run(t, newApp(), "--checkpoint", "mongo:localhost", "greet")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	var out bytes.Buffer
	cmd := newAppCmd(newApp())
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--log-level", "loud", "greet"})
	assert.ErrorIs(t, cmd.Execute(), config.ErrInvalidConfig)
}
