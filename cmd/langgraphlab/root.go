package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/langgraphlab/config"
	"github.com/smallnest/langgraphlab/graph"
	"github.com/smallnest/langgraphlab/llms/provider"
	"github.com/smallnest/langgraphlab/log"
	"github.com/smallnest/langgraphlab/prebuilt"
	"github.com/smallnest/langgraphlab/rag"
	"github.com/smallnest/langgraphlab/render"
	"github.com/smallnest/langgraphlab/store"
)

// app holds what the persistent flags and the config resolve to. Every
// subcommand reads it after the root's PersistentPreRunE has run.
type app struct {
	configPath     string
	logLevel       string
	checkpointDSN  string
	runID          string
	html           bool
	mockEmbeddings bool

	cfg         *config.Config
	logger      log.Logger
	checkpoints store.CheckpointStore
	closeStore  func() error

	// newModel is replaced in tests.
	newModel func(cfg *config.Config) (provider.Model, error)
}

func newApp() *app {
	return &app{
		newModel: func(cfg *config.Config) (provider.Model, error) {
			return provider.New(cfg.LLM, cfg.Embedding)
		},
	}
}

func newRootCmd() *cobra.Command {
	return newAppCmd(newApp())
}

func newAppCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "langgraphlab",
		Short: "Run state-graph workflows, prompt labs and retrieval QA",
		Long: "langgraphlab runs small state-graph workflows: greeting and content\n" +
			"pipelines, a query router, tool-using agents, prompt-engineering\n" +
			"comparisons and a retrieval question-answering pipeline.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML config file")
	f.StringVar(&a.logLevel, "log-level", "", "debug, info, warn, error or none")
	f.StringVar(&a.checkpointDSN, "checkpoint", "", "checkpoint store: memory, file:<dir>, sqlite:<path>, redis:<addr> or postgres:<dsn>")
	f.StringVar(&a.runID, "run-id", "", "run ID recorded in checkpoints (random when empty)")
	f.BoolVar(&a.html, "html", false, "write sanitized HTML instead of styled text")
	f.BoolVar(&a.mockEmbeddings, "mock-embeddings", false, "use the offline hash embedder")

	root.AddCommand(
		newGreetCmd(a),
		newContentCmd(a),
		newRouteCmd(a),
		newCalcCmd(a),
		newResearchCmd(a),
		newGraphCmd(a),
		newPromptCmd(a),
		newRAGCmd(a),
		newSimilarityCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.checkpointDSN != "" {
		cfg.Checkpoint.DSN = a.checkpointDSN
	}
	if a.mockEmbeddings {
		cfg.Embedding.Mock = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logger = log.NewConsoleLogger(cmd.ErrOrStderr(), level)
	log.SetDefaultLogger(a.logger)

	s, closeFn, err := openCheckpointStore(cmd.Context(), cfg.Checkpoint.DSN)
	if err != nil {
		return err
	}
	a.checkpoints, a.closeStore = s, closeFn

	if a.runID == "" {
		a.runID = uuid.NewString()
	}
	return nil
}

func (a *app) teardown() error {
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.closeStore = nil
	return err
}

func (a *app) printer(cmd *cobra.Command) *render.Printer {
	return render.NewPrinter(cmd.OutOrStdout(), a.html)
}

func (a *app) model() (llms.Model, error) {
	m, err := a.newModel(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	return m, nil
}

func (a *app) embedder() (rag.Embedder, error) {
	if a.cfg.Embedding.Mock {
		return provider.NewEmbedder(a.cfg.Embedding, nil)
	}
	m, err := a.newModel(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	return provider.NewEmbedder(a.cfg.Embedding, m)
}

// listeners returns the listeners every workflow run gets.
func (a *app) listeners() []graph.NodeListener {
	if a.checkpoints == nil {
		return nil
	}
	return []graph.NodeListener{graph.NewCheckpointListener(a.checkpoints, a.logger)}
}

func (a *app) workflowOptions(extra ...prebuilt.Option) []prebuilt.Option {
	opts := []prebuilt.Option{prebuilt.WithLogger(a.logger)}
	for _, l := range a.listeners() {
		opts = append(opts, prebuilt.WithListener(l))
	}
	return append(opts, extra...)
}

func (a *app) runConfig() *graph.Config {
	return &graph.Config{RunID: a.runID}
}

// noteRun tells the user where the run's checkpoints went.
func (a *app) noteRun(p *render.Printer) {
	if a.checkpoints != nil {
		p.Note(fmt.Sprintf("run %s checkpointed to %s", a.runID, a.cfg.Checkpoint.DSN))
	}
}
