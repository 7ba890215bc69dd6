package gateway

import (
	"net/http"
	"os"

	"github.com/tmc/langchaingo/callbacks"
)

const (
	// DefaultModel is the chat model requested when none is configured.
	DefaultModel = "openai/gpt-4.1-mini"

	// DefaultEmbeddingModel is the embedding model requested when none is configured.
	DefaultEmbeddingModel = "text-embedding-3-small"
)

type options struct {
	apiKey           string
	baseURL          string
	model            string
	embeddingModel   string
	httpClient       *http.Client
	callbacksHandler callbacks.Handler
}

// Option configures the gateway LLM.
type Option func(*options)

// WithAPIKey sets the API key. Defaults to OPENAI_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(opts *options) {
		opts.apiKey = apiKey
	}
}

// WithBaseURL sets the OpenAI-compatible endpoint, e.g. a routing gateway
// serving several vendors. Defaults to OPENAI_API_BASE.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithEmbeddingModel sets the model used by CreateEmbedding.
func WithEmbeddingModel(model string) Option {
	return func(opts *options) {
		opts.embeddingModel = model
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// WithCallbacksHandler sets the langchaingo callbacks handler.
func WithCallbacksHandler(handler callbacks.Handler) Option {
	return func(opts *options) {
		opts.callbacksHandler = handler
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
