// Package gateway implements the langchaingo llms.Model contract over any
// OpenAI-compatible chat completions endpoint, using sashabaranov/go-openai.
// It supports tool calling and embeddings, so a single base URL can serve
// every model node, the tool-using agents and the retrieval indexer.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
)

var (
	ErrNotSetAuth    = errors.New("API key not set")
	ErrEmptyResponse = errors.New("no response")
)

// LLM is a chat and embedding model reached through an OpenAI-compatible API.
type LLM struct {
	client           *openai.Client
	model            string
	embeddingModel   string
	CallbacksHandler callbacks.Handler
}

var _ llms.Model = (*LLM)(nil)

// New returns a gateway LLM.
//
//	llm, err := gateway.New(
//		gateway.WithAPIKey(key),
//		gateway.WithBaseURL("https://gateway.example/v1"),
//		gateway.WithModel("openai/gpt-4.1-mini"),
//	)
func New(opts ...Option) (*LLM, error) {
	o := &options{
		apiKey:         getEnvOrDefault("OPENAI_API_KEY", ""),
		baseURL:        getEnvOrDefault("OPENAI_API_BASE", ""),
		model:          DefaultModel,
		embeddingModel: DefaultEmbeddingModel,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.apiKey == "" {
		return nil, fmt.Errorf(`%w
You can pass auth info by using gateway.New(gateway.WithAPIKey("{API Key}"))
or
export OPENAI_API_KEY={API Key}`, ErrNotSetAuth)
	}

	cfg := openai.DefaultConfig(o.apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(o.baseURL, "/")
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &LLM{
		client:           openai.NewClientWithConfig(cfg),
		model:            o.model,
		embeddingModel:   o.embeddingModel,
		CallbacksHandler: o.callbacksHandler,
	}, nil
}

// Call generates a response from the LLM for the given prompt.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentStart(ctx, messages)
	}

	opts := &llms.CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	req := openai.ChatCompletionRequest{
		Model:       o.modelFor(*opts),
		Messages:    toChatMessages(messages),
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
		MaxTokens:   opts.MaxTokens,
		Stop:        opts.StopWords,
		Tools:       toTools(opts.Tools),
	}

	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if o.CallbacksHandler != nil {
			o.CallbacksHandler.HandleLLMError(ctx, err)
		}
		return nil, err
	}
	if len(result.Choices) == 0 {
		if o.CallbacksHandler != nil {
			o.CallbacksHandler.HandleLLMError(ctx, ErrEmptyResponse)
		}
		return nil, ErrEmptyResponse
	}

	resp := &llms.ContentResponse{Choices: make([]*llms.ContentChoice, 0, len(result.Choices))}
	for _, c := range result.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"prompt_tokens":     result.Usage.PromptTokens,
				"completion_tokens": result.Usage.CompletionTokens,
				"total_tokens":      result.Usage.TotalTokens,
			},
		}
		for _, tc := range c.Message.ToolCalls {
			choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
				ID:   tc.ID,
				Type: string(tc.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		if len(choice.ToolCalls) > 0 {
			choice.FuncCall = choice.ToolCalls[0].FunctionCall
		}
		resp.Choices = append(resp.Choices, choice)
	}

	if o.CallbacksHandler != nil {
		o.CallbacksHandler.HandleLLMGenerateContentEnd(ctx, resp)
	}
	return resp, nil
}

// CreateEmbedding implements embeddings.EmbedderClient. Vectors are
// returned in input order.
func (o *LLM) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(o.embeddingModel),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmptyResponse, len(resp.Data), len(texts))
	}

	emb := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(emb) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		emb[d.Index] = d.Embedding
	}
	return emb, nil
}

func (o *LLM) modelFor(opts llms.CallOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return o.model
}

func toChatMessages(messages []llms.MessageContent) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		m := openai.ChatCompletionMessage{Role: toRole(msg.Role)}

		var content strings.Builder
		for _, part := range msg.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				content.WriteString(p.Text)
			case llms.ToolCall:
				tc := openai.ToolCall{ID: p.ID, Type: openai.ToolTypeFunction}
				if p.FunctionCall != nil {
					tc.Function = openai.FunctionCall{Name: p.FunctionCall.Name, Arguments: p.FunctionCall.Arguments}
				}
				m.ToolCalls = append(m.ToolCalls, tc)
			case llms.ToolCallResponse:
				m.ToolCallID = p.ToolCallID
				m.Name = p.Name
				content.WriteString(p.Content)
			}
		}
		m.Content = content.String()
		out = append(out, m)
	}
	return out
}

func toRole(role llms.ChatMessageType) string {
	switch role {
	case llms.ChatMessageTypeSystem:
		return openai.ChatMessageRoleSystem
	case llms.ChatMessageTypeAI:
		return openai.ChatMessageRoleAssistant
	case llms.ChatMessageTypeTool:
		return openai.ChatMessageRoleTool
	default:
		return openai.ChatMessageRoleUser
	}
}

func toTools(tools []llms.Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		if t.Function == nil {
			continue
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return out
}
