// Command resolvd is the automated support-ticket resolution engine:
// classify, retrieve, draft, review, and resolve or escalate.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/resolvd/resolvd/internal/ai"
	"github.com/resolvd/resolvd/internal/config"
	"github.com/resolvd/resolvd/internal/retrieval"
	"github.com/resolvd/resolvd/internal/storage/sqlite"
	"github.com/resolvd/resolvd/internal/workflow"
)

var (
	cfgPath string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "resolvd",
	Short: "Automated support ticket resolution",
	Long: `resolvd processes support tickets through a classify-retrieve-draft-review
pipeline. Approved drafts become customer responses; drafts that fail
review are retried with refined knowledge-base context, and tickets that
exhaust their retries are escalated to a human with a full audit trail.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "resolvd.yaml", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newStorage opens the configured database.
func newStorage() (*sqlite.SQLiteStorage, error) {
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
	}
	return store, nil
}

// newEmbedder builds the configured embedder.
func newEmbedder() retrieval.Embedder {
	if cfg.Embeddings.Provider == "openai" {
		return retrieval.NewOpenAIEmbedder(cfg.Embeddings.APIKey, cfg.Embeddings.BaseURL, cfg.Embeddings.Model)
	}
	return retrieval.NewLocalEmbedder()
}

// newIndex builds the search index and loads persisted documents into it.
func newIndex(ctx context.Context, store *sqlite.SQLiteStorage) (*retrieval.Index, error) {
	index := retrieval.NewIndex(newEmbedder())
	if err := retrieval.LoadIndex(ctx, store, index); err != nil {
		return nil, fmt.Errorf("failed to load search index: %w", err)
	}
	return index, nil
}

// newEngine wires the full pipeline: model client, index, and storage.
func newEngine(ctx context.Context, store *sqlite.SQLiteStorage) (*workflow.Engine, *retrieval.Ingestor, error) {
	index, err := newIndex(ctx, store)
	if err != nil {
		return nil, nil, err
	}

	client, err := ai.NewClient(&ai.Config{
		APIKey:             cfg.Model.APIKey,
		Model:              cfg.Model.Name,
		MaxTokens:          cfg.Model.MaxTokens,
		MaxConcurrentCalls: cfg.Model.MaxConcurrentCalls,
		RequestsPerSecond:  cfg.Model.RequestsPerSecond,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create model client: %w", err)
	}

	engine := workflow.New(client, client, client, client, index, workflow.Config{
		MaxRetries:       cfg.MaxRetries,
		InitialK:         cfg.Retrieval.InitialK,
		RefineK:          cfg.Retrieval.RefineK,
		MergeLimit:       cfg.Retrieval.MergeLimit,
		ReviewFailClosed: cfg.Review.FailurePolicy == config.ReviewFailClosed,
	}).WithEscalationSink(store).WithRunRecorder(store)

	ingestor := retrieval.NewIngestor(store, index, cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	return engine, ingestor, nil
}
