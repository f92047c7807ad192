package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/resolvd/resolvd/internal/types"
)

// Hybrid fusion parameters: equal weight between keyword and vector
// ranking, with the standard reciprocal rank fusion constant.
const (
	keywordWeight = 0.5
	vectorWeight  = 0.5
	rrfConstant   = 60
)

// Search performs a hybrid keyword + vector search over one category and
// returns the top k chunks. Search never fails: an unindexed category or
// an internal error produces a result whose single document explains the
// problem, with the error recorded in the metadata.
func (ix *Index) Search(ctx context.Context, query string, category types.Category, k int) *types.RetrievalResult {
	ix.mu.RLock()
	ci := ix.categories[category]
	ix.mu.RUnlock()

	if ci == nil {
		slog.Warn("no index for category", "category", category, "query", query)
		return &types.RetrievalResult{
			Documents: []string{
				fmt.Sprintf("No knowledge base found for category '%s'. Please build the index first.", category),
			},
			Metadata: types.RetrievalMetadata{
				Error:      "index not found",
				Category:   category,
				QueryUsed:  query,
				NumResults: 0,
			},
		}
	}

	docs, err := ix.hybridSearch(ctx, ci, query, k)
	if err != nil {
		slog.Error("search failed", "category", category, "query", query, "error", err)
		return &types.RetrievalResult{
			Documents: []string{
				fmt.Sprintf("An error occurred during search for category '%s'.", category),
			},
			Metadata: types.RetrievalMetadata{
				Error:      err.Error(),
				Category:   category,
				QueryUsed:  query,
				NumResults: 0,
			},
		}
	}

	return &types.RetrievalResult{
		Documents: docs,
		Metadata: types.RetrievalMetadata{
			Category:   category,
			QueryUsed:  query,
			NumResults: len(docs),
		},
	}
}

// hybridSearch ranks documents by BM25 and by embedding similarity, then
// fuses the two rankings with weighted reciprocal rank fusion.
func (ix *Index) hybridSearch(ctx context.Context, ci *categoryIndex, query string, k int) ([]string, error) {
	queryTokens := Tokenize(query)

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec := vectors[0]

	keywordScores := ci.bm25Scores(queryTokens)

	vectorScores := make([]float64, len(ci.docs))
	for i, d := range ci.docs {
		vectorScores[i] = cosineSimilarity(queryVec, d.vector)
	}

	keywordRanking := topRanked(keywordScores, k, true)
	vectorRanking := topRanked(vectorScores, k, false)

	fused := make(map[int]float64)
	for rank, docIdx := range keywordRanking {
		fused[docIdx] += keywordWeight / float64(rank+1+rrfConstant)
	}
	for rank, docIdx := range vectorRanking {
		fused[docIdx] += vectorWeight / float64(rank+1+rrfConstant)
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(fused))
	for idx, score := range fused {
		ranked = append(ranked, scored{idx, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].idx < ranked[j].idx
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	docs := make([]string, len(ranked))
	for i, r := range ranked {
		docs[i] = ci.docs[r.idx].doc.Content
	}
	return docs, nil
}

// topRanked returns document indexes ordered by descending score, at most
// k of them. With requirePositive set, zero-score documents are excluded,
// which keeps keyword ranking from voting for documents sharing no terms
// with the query.
func topRanked(scores []float64, k int, requirePositive bool) []int {
	idxs := make([]int, 0, len(scores))
	for i, s := range scores {
		if requirePositive && s <= 0 {
			continue
		}
		idxs = append(idxs, i)
	}
	sort.Slice(idxs, func(a, b int) bool {
		if scores[idxs[a]] != scores[idxs[b]] {
			return scores[idxs[a]] > scores[idxs[b]]
		}
		return idxs[a] < idxs[b]
	})
	if len(idxs) > k {
		idxs = idxs[:k]
	}
	return idxs
}
