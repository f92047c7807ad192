package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resolvd/resolvd/internal/types"
)

func TestDeduplicateKeepsFirstOccurrence(t *testing.T) {
	docs := []string{"Doc A", "Doc B", "doc a", "Doc C", "Doc B"}
	unique := Deduplicate(docs)
	assert.Equal(t, []string{"Doc A", "Doc B", "Doc C"}, unique)
}

func TestDeduplicateSignatureIsPrefixOnly(t *testing.T) {
	// Same first 100 chars, different tails: still duplicates.
	prefix := strings.Repeat("billing faq monthly cycle ", 4) // >100 chars
	a := prefix + "tail one"
	b := prefix + "a completely different tail"

	unique := Deduplicate([]string{a, b})
	require.Len(t, unique, 1)
	assert.Equal(t, a, unique[0])
}

func TestDeduplicateSignatureCountsCharactersNotBytes(t *testing.T) {
	// 40 CJK characters are 120 bytes. A byte-based cut at 100 would land
	// mid-rune and blind the signature to the differing continuations.
	prefix := strings.Repeat("設", 40)
	a := prefix + " ネットワーク接続の手順"
	b := prefix + " パスワード再設定の手順"

	unique := Deduplicate([]string{a, b})
	assert.Equal(t, []string{a, b}, unique)
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	docs := []string{"one", "two", "one", "three", "TWO"}
	once := Deduplicate(docs)
	twice := Deduplicate(once)
	assert.Equal(t, once, twice)
}

func buildTestIndex(t *testing.T, category types.Category, contents []string) *Index {
	t.Helper()
	ix := NewIndex(NewLocalEmbedder())
	docs := make([]Document, len(contents))
	for i, c := range contents {
		docs[i] = Document{ID: int64(i + 1), Content: c}
	}
	require.NoError(t, ix.AddDocuments(context.Background(), category, docs))
	return ix
}

func TestMultiSearchMergesAndCaps(t *testing.T) {
	contents := make([]string, 30)
	for i := range contents {
		contents[i] = fmt.Sprintf("billing topic number %d covering invoices and payment schedules", i)
	}
	ix := buildTestIndex(t, types.CategoryBilling, contents)

	queries := []string{"invoices", "payment schedules", "billing topic"}
	result := ix.MultiSearch(context.Background(), queries, types.CategoryBilling, 5, 10)

	assert.Empty(t, result.Metadata.Error)
	assert.Equal(t, queries, result.Metadata.QueriesUsed)
	assert.LessOrEqual(t, len(result.Documents), 10)
	assert.Equal(t, len(result.Documents), result.Metadata.NumResults)
	// Merged results carry no duplicates.
	assert.Equal(t, Deduplicate(result.Documents), result.Documents)
}

func TestMultiSearchNoQueries(t *testing.T) {
	ix := buildTestIndex(t, types.CategoryBilling, []string{"refund policy details"})
	result := ix.MultiSearch(context.Background(), nil, types.CategoryBilling, 5, 10)

	assert.Empty(t, result.Documents)
	assert.Equal(t, "no queries provided", result.Metadata.QueryUsed)
}

func TestMultiSearchSkipsFailedQueries(t *testing.T) {
	// Unindexed category: every per-query search reports an error, so the
	// merge degrades to an empty result rather than failing.
	ix := NewIndex(NewLocalEmbedder())
	result := ix.MultiSearch(context.Background(), []string{"a query", "another"}, types.CategoryTechnical, 5, 10)

	assert.Empty(t, result.Documents)
	assert.Contains(t, result.Metadata.QueryUsed, "no results")
	assert.Equal(t, []string{"a query", "another"}, result.Metadata.QueriesUsed)
}
