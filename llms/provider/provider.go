// Package provider builds the chat model and embedder selected by the
// runtime configuration.
package provider

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/smallnest/langgraphlab/config"
	"github.com/smallnest/langgraphlab/llms/gateway"
	"github.com/smallnest/langgraphlab/rag"
	"github.com/smallnest/langgraphlab/rag/store"
)

// Model is a chat model that can also create embeddings.
type Model interface {
	llms.Model
	embeddings.EmbedderClient
}

// New returns the chat model for cfg.LLM.
func New(cfg config.LLMConfig, embedding config.EmbeddingConfig) (Model, error) {
	switch cfg.Backend {
	case "gateway":
		opts := []gateway.Option{
			gateway.WithModel(cfg.Model),
			gateway.WithEmbeddingModel(embedding.Model),
		}
		if cfg.APIKey != "" {
			opts = append(opts, gateway.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, gateway.WithBaseURL(cfg.BaseURL))
		}
		llm, err := gateway.New(opts...)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case "openai", "":
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithEmbeddingModel(embedding.Model),
		}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, err
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.Backend)
	}
}

// NewEmbedder returns the embedder for cfg. With Mock set no network access
// is needed; otherwise client creates the vectors.
func NewEmbedder(cfg config.EmbeddingConfig, client embeddings.EmbedderClient) (rag.Embedder, error) {
	if cfg.Mock {
		return store.NewMockEmbedder(cfg.Dimension), nil
	}
	if client == nil {
		return nil, fmt.Errorf("embedding model %s needs a client", cfg.Model)
	}
	e, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return store.NewLangChainEmbedder(e), nil
}
