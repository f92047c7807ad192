package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/resolvd/resolvd/internal/types"
)

// dedupSignatureLen is the number of leading characters used as a
// document's deduplication signature.
const dedupSignatureLen = 100

// MultiSearch runs one search per refined query, concatenates the results
// in query order, deduplicates them, and caps the merged list at limit
// documents. Individual query failures are skipped; only the queries that
// returned nothing at all produce an empty result.
func (ix *Index) MultiSearch(ctx context.Context, queries []string, category types.Category, k, limit int) *types.RetrievalResult {
	if len(queries) == 0 {
		slog.Warn("no queries provided for refined search", "category", category)
		return &types.RetrievalResult{
			Documents: []string{},
			Metadata: types.RetrievalMetadata{
				Category:  category,
				QueryUsed: "no queries provided",
			},
		}
	}

	var allDocuments []string
	for i, query := range queries {
		result := ix.Search(ctx, query, category, k)
		if result.Metadata.Error != "" {
			slog.Warn("refined query failed, skipping",
				"category", category,
				"queryIndex", i,
				"query", query,
				"error", result.Metadata.Error)
			continue
		}
		if len(result.Documents) == 0 {
			slog.Debug("refined query returned no documents", "query", query)
			continue
		}
		allDocuments = append(allDocuments, result.Documents...)
	}

	if len(allDocuments) == 0 {
		slog.Warn("no documents found with any refined query", "category", category)
		return &types.RetrievalResult{
			Documents: []string{},
			Metadata: types.RetrievalMetadata{
				Category:    category,
				QueriesUsed: queries,
				QueryUsed:   fmt.Sprintf("multi-query search with %d queries (no results)", len(queries)),
			},
		}
	}

	unique := Deduplicate(allDocuments)
	if len(unique) > limit {
		unique = unique[:limit]
	}

	slog.Info("refined search completed",
		"category", category,
		"queries", len(queries),
		"totalResults", len(allDocuments),
		"uniqueReturned", len(unique))

	return &types.RetrievalResult{
		Documents: unique,
		Metadata: types.RetrievalMetadata{
			Category:    category,
			QueriesUsed: queries,
			QueryUsed:   fmt.Sprintf("multi-query search using %d queries", len(queries)),
			NumResults:  len(unique),
		},
	}
}

// Deduplicate removes near-duplicate documents, keeping the first
// occurrence. Two documents are considered duplicates when their
// signatures (the first dedupSignatureLen characters, lowercased and
// trimmed) match.
func Deduplicate(documents []string) []string {
	unique := make([]string, 0, len(documents))
	seen := make(map[string]bool, len(documents))

	for _, doc := range documents {
		sig := doc
		// Character count, not bytes: a multi-byte rune must not be split
		// at the signature boundary.
		if runes := []rune(sig); len(runes) > dedupSignatureLen {
			sig = string(runes[:dedupSignatureLen])
		}
		sig = strings.TrimSpace(strings.ToLower(sig))

		if !seen[sig] {
			seen[sig] = true
			unique = append(unique, doc)
		}
	}
	return unique
}
