package rag_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langgraphlab/graph"
	"github.com/smallnest/langgraphlab/rag"
	"github.com/smallnest/langgraphlab/rag/loader"
	"github.com/smallnest/langgraphlab/rag/splitter"
	"github.com/smallnest/langgraphlab/rag/store"
)

func TestCosineSimilarity(t *testing.T) {
	s, err := rag.CosineSimilarity([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s, 1e-9)

	s, err = rag.CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, s, 1e-9)

	s, err = rag.CosineSimilarity([]float32{1, 1}, []float32{-1, -1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, s, 1e-9)

	s, err = rag.CosineSimilarity([]float32{0, 0}, []float32{1, 1})
	require.NoError(t, err)
	assert.Zero(t, s)

	_, err = rag.CosineSimilarity([]float32{1}, []float32{1, 2})
	assert.True(t, errors.Is(err, rag.ErrDimensionMismatch))
}

func TestRank(t *testing.T) {
	docs := []string{
		"Password recovery: Use the 'Reset Password' link on login page",
		"Vacation policy: Request time off 2 weeks in advance",
	}
	ranked, err := rag.Rank(context.Background(), store.NewMockEmbedder(256), "reset my password", docs)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, docs[0], ranked[0].Text)
	assert.True(t, ranked[0].Relevant)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.False(t, math.IsNaN(ranked[1].Score))
}

func TestSplitDocuments(t *testing.T) {
	docs := []rag.Document{{ID: "policies_pets", Content: "one\n\ntwo", Metadata: map[string]any{"source": "pets.md"}}}

	chunks, err := rag.SplitDocuments(splitter.NewParagraph(), docs)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "policies_pets_chunk_0", chunks[0].ID)
	assert.Equal(t, "policies_pets_chunk_1", chunks[1].ID)
	assert.Equal(t, "pets.md", chunks[1].Source())

	chunks[0].Metadata["source"] = "changed"
	assert.Equal(t, "pets.md", docs[0].Source())

	whole, err := rag.SplitDocuments(nil, docs)
	require.NoError(t, err)
	require.Len(t, whole, 1)
	assert.Equal(t, "one\n\ntwo", whole[0].Content)
}

var knowledgeBase = []rag.Document{
	{ID: "policies_pets", Content: "Dogs are allowed in the office on Fridays if they are friendly.", Metadata: map[string]any{"source": "pets.md", "section": "policies"}},
	{ID: "policies_remote", Content: "Remote work policy allows employees to work from home up to 3 days per week.", Metadata: map[string]any{"source": "remote_work.md", "section": "policies"}},
	{ID: "benefits_vacation", Content: "Vacation policy provides 15 days PTO in the first year.", Metadata: map[string]any{"source": "vacation.md", "section": "benefits"}},
	{ID: "benefits_vacation2", Content: "Vacation days increase to 20 days after 2 years.", Metadata: map[string]any{"source": "vacation.md", "section": "benefits"}},
}

func newIndexedRetriever(t *testing.T) (*rag.VectorRetriever, *store.InMemoryIndex) {
	t.Helper()
	embedder := store.NewMockEmbedder(256)
	index := store.NewInMemoryIndex()

	docs, err := loader.NewStaticDocumentLoader(knowledgeBase).Load(context.Background())
	require.NoError(t, err)

	n, err := rag.NewIndexer(nil, embedder, index).Index(context.Background(), docs)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	return rag.NewVectorRetriever(embedder, index), index
}

func TestIndexerAndRetriever(t *testing.T) {
	retriever, index := newIndexedRetriever(t)
	assert.Equal(t, 4, index.Count())

	results, err := retriever.Retrieve(context.Background(), "Can I bring my dog to the office?", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "policies_pets_chunk_0", results[0].Document.ID)
}

type recordingModel struct {
	mu       sync.Mutex
	answer   string
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (m *recordingModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = messages
	m.options = llms.CallOptions{}
	for _, o := range options {
		o(&m.options)
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func textOf(msg llms.MessageContent) string {
	var sb strings.Builder
	for _, p := range msg.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func TestQAPipeline(t *testing.T) {
	retriever, _ := newIndexedRetriever(t)
	model := &recordingModel{answer: "You get 15 days of PTO in your first year."}

	p, err := rag.NewQAPipeline(retriever, model, rag.DefaultQAConfig())
	require.NoError(t, err)

	out, err := p.Ask(context.Background(), "How many vacation days do I get?")
	require.NoError(t, err)

	assert.Len(t, out.Chunks, 3)
	assert.Len(t, out.Sources, 3)
	assert.Equal(t, "vacation.md", out.Sources[0])
	assert.Equal(t, "You get 15 days of PTO in your first year.", out.Answer)
	assert.True(t, strings.HasPrefix(out.Response, out.Answer+"\n\nSources: vacation.md, "))
	assert.Equal(t, 1, strings.Count(out.Response, "vacation.md"))

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, rag.TechCorpSystemPrompt, textOf(model.messages[0]))
	user := textOf(model.messages[1])
	assert.True(t, strings.HasPrefix(user, "Context from TechCorp documents:\n\n[Document 1]\n"))
	assert.Contains(t, user, "[Document 3]\n")
	assert.True(t, strings.HasSuffix(user, "\nQuestion: How many vacation days do I get?\n\nAnswer:"))
	assert.InDelta(t, 0.3, model.options.Temperature, 1e-9)
	assert.Equal(t, 500, model.options.MaxTokens)

	assert.Equal(t, []string{"retrieve", "generate", "cite"}, p.Runnable().Nodes())
}

func TestQAPipelineWithoutSources(t *testing.T) {
	p, err := rag.NewQAPipeline(rag.NewVectorRetriever(store.NewMockEmbedder(8), store.NewInMemoryIndex()),
		&recordingModel{answer: "I don't have that information in the provided documents."}, rag.QAConfig{})
	require.NoError(t, err)

	out, err := p.Ask(context.Background(), "What is the parking policy?")
	require.NoError(t, err)
	assert.Empty(t, out.Chunks)
	assert.Equal(t, out.Answer, out.Response)
}

func TestQAPipelineOptions(t *testing.T) {
	retriever, _ := newIndexedRetriever(t)
	var visited []string
	p, err := rag.NewQAPipeline(retriever, &recordingModel{answer: "ok"}, rag.DefaultQAConfig(),
		func(g *graph.StateGraph[rag.QAState]) {
			g.AddListener(graph.NodeListenerFunc(func(_ context.Context, e graph.NodeEvent, node string, _ any, _ error) {
				if e == graph.NodeEventComplete {
					visited = append(visited, node)
				}
			}))
		})
	require.NoError(t, err)

	_, err = p.Ask(context.Background(), "remote work?")
	require.NoError(t, err)
	assert.Equal(t, []string{"retrieve", "generate", "cite"}, visited)
}

func TestUniqueSources(t *testing.T) {
	assert.Equal(t, []string{"b.md", "a.md"}, rag.UniqueSources([]string{"b.md", "", "a.md", "b.md"}))
	assert.Nil(t, rag.UniqueSources(nil))
}
