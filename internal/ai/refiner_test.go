package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicQueriesWithFeedbackTerms(t *testing.T) {
	queries := HeuristicQueries("password reset not working", "The response misses the authentication timeout details")

	require.Len(t, queries, 4)
	assert.Equal(t, "how to password reset not working", queries[0])
	assert.Equal(t, "troubleshoot password reset not working", queries[1])
	assert.Equal(t, "fix password reset not working", queries[2])
	// The fourth query mixes in the first two meaningful feedback terms.
	assert.Equal(t, "password reset not working response misses", queries[3])
}

func TestHeuristicQueriesWithoutFeedbackTerms(t *testing.T) {
	// Short and stopword-only feedback contributes no terms, so the
	// step-by-step query makes the cut instead.
	queries := HeuristicQueries("billing error", "it should be better")

	require.Len(t, queries, 4)
	assert.Equal(t, "step by step billing error", queries[3])
	for _, q := range queries {
		assert.True(t, strings.Contains(q, "billing error"))
	}
}

func TestHeuristicQueriesCapsAtFour(t *testing.T) {
	queries := HeuristicQueries("sync failure", "database replication lagging significantly overnight")
	assert.LessOrEqual(t, len(queries), 4)
}
