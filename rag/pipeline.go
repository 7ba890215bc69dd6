package rag

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"

	"github.com/smallnest/langgraphlab/graph"
)

// TechCorpSystemPrompt restricts answers to the retrieved context.
const TechCorpSystemPrompt = `You are TechCorp's helpful AI assistant.
Answer ONLY based on the provided context.
If the answer is not in the context, say: 'I don't have that information in the provided documents.'`

const questionTemplate = "{{.context}}\nQuestion: {{.question}}\n\nAnswer:"

// QAState flows through the question-answering graph.
type QAState struct {
	Question string   `json:"question"`
	Chunks   []string `json:"chunks"`
	Sources  []string `json:"sources"`
	Answer   string   `json:"answer"`
	Response string   `json:"response"`
}

// QAConfig configures retrieval and generation.
type QAConfig struct {
	TopK         int
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// DefaultQAConfig returns the TechCorp assistant settings.
func DefaultQAConfig() QAConfig {
	return QAConfig{
		TopK:         3,
		Temperature:  0.3,
		MaxTokens:    500,
		SystemPrompt: TechCorpSystemPrompt,
	}
}

// QAPipeline answers questions with the graph retrieve -> generate -> cite.
type QAPipeline struct {
	config    QAConfig
	retriever Retriever
	model     llms.Model
	prompt    prompts.ChatPromptTemplate
	runnable  *graph.StateRunnable[QAState]
}

// NewQAPipeline builds and compiles the question-answering graph. Zero
// fields of config take their DefaultQAConfig values.
func NewQAPipeline(retriever Retriever, model llms.Model, config QAConfig, opts ...PipelineOption) (*QAPipeline, error) {
	def := DefaultQAConfig()
	if config.TopK <= 0 {
		config.TopK = def.TopK
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = def.MaxTokens
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = def.SystemPrompt
	}

	p := &QAPipeline{
		config:    config,
		retriever: retriever,
		model:     model,
		prompt: prompts.NewChatPromptTemplate([]prompts.MessageFormatter{
			prompts.NewSystemMessagePromptTemplate(config.SystemPrompt, nil),
			prompts.NewHumanMessagePromptTemplate(questionTemplate, []string{"context", "question"}),
		}),
	}

	g := graph.NewStateGraph[QAState](graph.MustStructSchema(QAState{}))
	g.AddNode("retrieve", "find the most relevant chunks", p.retrieveNode, graph.WithWrites("chunks", "sources"))
	g.AddNode("generate", "answer from the retrieved context", p.generateNode, graph.WithWrites("answer"))
	g.AddNode("cite", "append the source list", p.citeNode, graph.WithWrites("response"))
	g.SetEntryPoint("retrieve")
	g.AddEdge("retrieve", "generate")
	g.AddEdge("generate", "cite")
	g.AddEdge("cite", graph.END)
	for _, opt := range opts {
		opt(g)
	}

	runnable, err := g.Compile()
	if err != nil {
		return nil, err
	}
	p.runnable = runnable
	return p, nil
}

// PipelineOption customizes the graph before it is compiled, e.g. to add
// listeners or a tracer.
type PipelineOption func(*graph.StateGraph[QAState])

// Runnable returns the compiled graph.
func (p *QAPipeline) Runnable() *graph.StateRunnable[QAState] {
	return p.runnable
}

// Ask runs the graph for one question.
func (p *QAPipeline) Ask(ctx context.Context, question string) (QAState, error) {
	return p.runnable.Invoke(ctx, QAState{Question: question})
}

func (p *QAPipeline) retrieveNode(ctx context.Context, state QAState) (graph.Update, error) {
	results, err := p.retriever.Retrieve(ctx, state.Question, p.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	chunks := make([]string, 0, len(results))
	sources := make([]string, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, r.Document.Content)
		sources = append(sources, r.Document.Source())
	}
	return graph.Update{"chunks": chunks, "sources": sources}, nil
}

// BuildContext formats retrieved chunks as numbered documents.
func BuildContext(chunks []string) string {
	var sb strings.Builder
	sb.WriteString("Context from TechCorp documents:\n\n")
	for i, c := range chunks {
		fmt.Fprintf(&sb, "[Document %d]\n%s\n\n", i+1, c)
	}
	return sb.String()
}

func (p *QAPipeline) generateNode(ctx context.Context, state QAState) (graph.Update, error) {
	msgs, err := p.prompt.FormatMessages(map[string]any{
		"context":  BuildContext(state.Chunks),
		"question": state.Question,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format prompt: %w", err)
	}

	content := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		content = append(content, llms.TextParts(m.GetType(), m.GetContent()))
	}

	resp, err := p.model.GenerateContent(ctx, content,
		llms.WithTemperature(p.config.Temperature),
		llms.WithMaxTokens(p.config.MaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generation failed: empty response")
	}
	return graph.Update{"answer": resp.Choices[0].Content}, nil
}

func (p *QAPipeline) citeNode(_ context.Context, state QAState) (graph.Update, error) {
	sources := UniqueSources(state.Sources)
	if len(sources) == 0 {
		return graph.Update{"response": state.Answer}, nil
	}
	return graph.Update{"response": fmt.Sprintf("%s\n\nSources: %s", state.Answer, strings.Join(sources, ", "))}, nil
}

// UniqueSources drops empty and repeated names, keeping first-seen order.
func UniqueSources(sources []string) []string {
	var out []string
	for _, s := range sources {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
