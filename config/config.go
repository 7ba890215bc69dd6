// Package config holds the runtime configuration of the lab workflows: the
// model gateway, embeddings, retrieval parameters, web search, checkpoint
// storage and logging.
//
// Configuration is layered. Default values come first, an optional YAML file
// overrides them and environment variables override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smallnest/langgraphlab/log"
)

// Environment variables read by Load.
const (
	EnvAPIKey         = "OPENAI_API_KEY"
	EnvAPIBase        = "OPENAI_API_BASE"
	EnvModel          = "OPENAI_MODEL"
	EnvEmbeddingModel = "OPENAI_EMBEDDING_MODEL"
	EnvBraveAPIKey    = "BRAVE_API_KEY"
	EnvLogLevel       = "LANGGRAPHLAB_LOG_LEVEL"
	EnvCheckpointDSN  = "LANGGRAPHLAB_CHECKPOINT_DSN"
)

// ErrInvalidConfig wraps every problem reported by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// LLMConfig selects the chat model.
type LLMConfig struct {
	// Backend is "openai" (langchaingo) or "gateway" (go-openai).
	Backend     string  `yaml:"backend"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// EmbeddingConfig selects the embedding model. Mock uses the deterministic
// offline embedder.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	Mock      bool   `yaml:"mock"`
	Dimension int    `yaml:"dimension"`
}

type RAGConfig struct {
	ChunkSize    int     `yaml:"chunk_size"`
	ChunkOverlap int     `yaml:"chunk_overlap"`
	TopK         int     `yaml:"top_k"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	DocsDir      string  `yaml:"docs_dir"`
}

type SearchConfig struct {
	// Provider is "duckduckgo" or "brave".
	Provider    string `yaml:"provider"`
	BraveAPIKey string `yaml:"brave_api_key"`
	MaxResults  int    `yaml:"max_results"`
}

// CheckpointConfig selects where run checkpoints are written. DSN forms:
// memory, file:<dir>, sqlite:<path>, redis:<addr>, postgres:<conn string>.
// An empty DSN disables checkpointing.
type CheckpointConfig struct {
	DSN string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the complete runtime configuration.
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	RAG        RAGConfig        `yaml:"rag"`
	Search     SearchConfig     `yaml:"search"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Log        LogConfig        `yaml:"log"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Backend:     "openai",
			Model:       "openai/gpt-4.1-mini",
			Temperature: 0,
			MaxTokens:   1000,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			Dimension: 384,
		},
		RAG: RAGConfig{
			ChunkSize:    500,
			ChunkOverlap: 100,
			TopK:         3,
			Temperature:  0.3,
			MaxTokens:    500,
			DocsDir:      "docs",
		},
		Search: SearchConfig{
			Provider:   "duckduckgo",
			MaxResults: 2,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty) and the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvAPIKey, &c.LLM.APIKey)
	set(EnvAPIBase, &c.LLM.BaseURL)
	set(EnvModel, &c.LLM.Model)
	set(EnvEmbeddingModel, &c.Embedding.Model)
	set(EnvBraveAPIKey, &c.Search.BraveAPIKey)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvCheckpointDSN, &c.Checkpoint.DSN)
}

// Validate reports every out-of-range or unknown setting.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Backend {
	case "openai", "gateway":
	default:
		errs = append(errs, fmt.Errorf("llm.backend %q: want openai or gateway", c.LLM.Backend))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %v out of range [0, 2]", c.LLM.Temperature))
	}
	if c.RAG.Temperature < 0 || c.RAG.Temperature > 2 {
		errs = append(errs, fmt.Errorf("rag.temperature %v out of range [0, 2]", c.RAG.Temperature))
	}
	if c.RAG.TopK <= 0 {
		errs = append(errs, fmt.Errorf("rag.top_k must be positive, got %d", c.RAG.TopK))
	}
	if c.RAG.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("rag.chunk_size must be positive, got %d", c.RAG.ChunkSize))
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		errs = append(errs, fmt.Errorf("rag.chunk_overlap %d must be in [0, chunk_size)", c.RAG.ChunkOverlap))
	}
	if c.Embedding.Mock && c.Embedding.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimension must be positive, got %d", c.Embedding.Dimension))
	}
	switch c.Search.Provider {
	case "duckduckgo", "brave":
	default:
		errs = append(errs, fmt.Errorf("search.provider %q: want duckduckgo or brave", c.Search.Provider))
	}
	if c.Search.MaxResults <= 0 {
		errs = append(errs, fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if dsn := c.Checkpoint.DSN; dsn != "" && dsn != "memory" {
		kind, _, ok := strings.Cut(dsn, ":")
		if !ok || !validCheckpointKind(kind) {
			errs = append(errs, fmt.Errorf("checkpoint.dsn %q: want memory, file:, sqlite:, redis: or postgres:", dsn))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func validCheckpointKind(kind string) bool {
	switch kind {
	case "file", "sqlite", "redis", "postgres":
		return true
	}
	return false
}
