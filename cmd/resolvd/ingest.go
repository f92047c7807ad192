package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/resolvd/resolvd/internal/retrieval"
	"github.com/resolvd/resolvd/internal/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <category> <file>...",
	Short: "Ingest knowledge-base documents",
	Long: `Chunk one or more text files and index them under a category. The
chunks are persisted, so the index survives restarts.

Categories: billing, technical, security, general.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, ok := types.ParseCategory(args[0])
		if !ok {
			return fmt.Errorf("unknown category %q (want billing, technical, security, or general)", args[0])
		}

		ctx := context.Background()
		store, err := newStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		index, err := newIndex(ctx, store)
		if err != nil {
			return err
		}
		ingestor := retrieval.NewIngestor(store, index, cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)

		green := color.New(color.FgGreen).SprintFunc()
		total := 0
		for _, path := range args[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			chunks, err := ingestor.Ingest(ctx, category, filepath.Base(path), string(data))
			if err != nil {
				return err
			}
			fmt.Printf("%s %s: %d chunks\n", green("✓"), path, chunks)
			total += chunks
		}

		fmt.Printf("\nIngested %d chunks into %q (%d indexed total)\n", total, category, index.Size(category))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
