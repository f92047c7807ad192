package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/resolvd/resolvd/internal/types"
)

// Document is one indexed knowledge-base chunk.
type Document struct {
	ID      int64
	Content string
}

// indexedDoc carries the per-document statistics used at search time.
type indexedDoc struct {
	doc      Document
	termFreq map[string]int
	length   int
	vector   []float32
}

// categoryIndex holds the searchable state for one category.
type categoryIndex struct {
	docs      []indexedDoc
	docFreq   map[string]int // term -> number of docs containing it
	avgDocLen float64
}

// Index is the in-memory search index, one sub-index per category.
// Documents are persisted elsewhere; the index is rebuilt from them at
// startup and extended as new documents are ingested.
type Index struct {
	mu         sync.RWMutex
	embedder   Embedder
	categories map[types.Category]*categoryIndex
}

// NewIndex creates an empty index using the given embedder.
func NewIndex(embedder Embedder) *Index {
	return &Index{
		embedder:   embedder,
		categories: make(map[types.Category]*categoryIndex),
	}
}

// AddDocuments embeds and indexes chunks under a category, extending any
// existing sub-index for that category.
func (ix *Index) AddDocuments(ctx context.Context, category types.Category, docs []Document) error {
	if len(docs) == 0 {
		slog.Warn("no documents provided for indexing", "category", category)
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed %d documents for category %q: %w", len(docs), category, err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ci := ix.categories[category]
	if ci == nil {
		ci = &categoryIndex{docFreq: make(map[string]int)}
		ix.categories[category] = ci
	}

	for i, d := range docs {
		tf := make(map[string]int)
		tokens := Tokenize(d.Content)
		for _, tok := range tokens {
			tf[tok]++
		}
		for tok := range tf {
			ci.docFreq[tok]++
		}
		ci.docs = append(ci.docs, indexedDoc{
			doc:      d,
			termFreq: tf,
			length:   len(tokens),
			vector:   vectors[i],
		})
	}

	var totalLen int
	for _, d := range ci.docs {
		totalLen += d.length
	}
	ci.avgDocLen = float64(totalLen) / float64(len(ci.docs))

	slog.Info("documents indexed",
		"category", category,
		"added", len(docs),
		"total", len(ci.docs))
	return nil
}

// Has reports whether a category has an index.
func (ix *Index) Has(category types.Category) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.categories[category] != nil
}

// Size returns the number of indexed chunks for a category.
func (ix *Index) Size(category types.Category) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ci := ix.categories[category]; ci != nil {
		return len(ci.docs)
	}
	return 0
}

// BM25 parameters, standard values.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// bm25Scores scores every document in the sub-index against the query
// terms. Documents sharing no terms with the query score 0.
func (ci *categoryIndex) bm25Scores(queryTokens []string) []float64 {
	n := float64(len(ci.docs))
	scores := make([]float64, len(ci.docs))

	for _, term := range queryTokens {
		df := float64(ci.docFreq[term])
		if df == 0 {
			continue
		}
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))

		for i, d := range ci.docs {
			tf := float64(d.termFreq[term])
			if tf == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(d.length)/ci.avgDocLen
			scores[i] += idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*norm)
		}
	}
	return scores
}
