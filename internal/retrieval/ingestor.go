package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resolvd/resolvd/internal/storage"
	"github.com/resolvd/resolvd/internal/types"
)

// DocumentStore is the slice of the storage layer the ingestor needs.
type DocumentStore interface {
	SaveDocuments(ctx context.Context, docs []storage.Document) ([]storage.Document, error)
	GetDocuments(ctx context.Context, category types.Category) ([]storage.Document, error)
	Categories(ctx context.Context) ([]types.Category, error)
}

// Ingestor chunks raw knowledge documents, persists the chunks, and adds
// them to the live index.
type Ingestor struct {
	store        DocumentStore
	index        *Index
	chunkSize    int
	chunkOverlap int
}

// NewIngestor creates an ingestor writing to the given store and index.
func NewIngestor(store DocumentStore, index *Index, chunkSize, chunkOverlap int) *Ingestor {
	return &Ingestor{
		store:        store,
		index:        index,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Ingest splits one document into chunks and makes them searchable.
// Returns the number of chunks created.
func (g *Ingestor) Ingest(ctx context.Context, category types.Category, source, text string) (int, error) {
	chunks := SplitText(text, g.chunkSize, g.chunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %q produced no chunks; is it empty?", source)
	}

	docs := make([]storage.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = storage.Document{
			Category:   category,
			Content:    chunk,
			Source:     source,
			ChunkIndex: i,
		}
	}

	saved, err := g.store.SaveDocuments(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to persist chunks for %q: %w", source, err)
	}

	indexDocs := make([]Document, len(saved))
	for i, d := range saved {
		indexDocs[i] = Document{ID: d.ID, Content: d.Content}
	}
	if err := g.index.AddDocuments(ctx, category, indexDocs); err != nil {
		return 0, fmt.Errorf("failed to index chunks for %q: %w", source, err)
	}

	slog.Info("document ingested", "category", category, "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// LoadIndex rebuilds the in-memory index from persisted chunks, one
// category at a time. Called at startup.
func LoadIndex(ctx context.Context, store DocumentStore, index *Index) error {
	categories, err := store.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	for _, category := range categories {
		docs, err := store.GetDocuments(ctx, category)
		if err != nil {
			return fmt.Errorf("failed to load documents for %q: %w", category, err)
		}
		indexDocs := make([]Document, len(docs))
		for i, d := range docs {
			indexDocs[i] = Document{ID: d.ID, Content: d.Content}
		}
		if err := index.AddDocuments(ctx, category, indexDocs); err != nil {
			return err
		}
	}

	slog.Info("index loaded", "categories", len(categories))
	return nil
}
