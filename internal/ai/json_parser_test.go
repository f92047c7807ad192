package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseDirectJSON(t *testing.T) {
	result := Parse[testPayload](`{"name": "widget", "count": 3}`, "test")
	require.True(t, result.Success)
	assert.Equal(t, "widget", result.Data.Name)
	assert.Equal(t, 3, result.Data.Count)
}

func TestParseCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"json fence", "```json\n{\"name\": \"widget\", \"count\": 3}\n```"},
		{"bare fence", "```\n{\"name\": \"widget\", \"count\": 3}\n```"},
		{"fence without newlines", "```json{\"name\": \"widget\", \"count\": 3}```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse[testPayload](tt.input, "test")
			require.True(t, result.Success, result.Error)
			assert.Equal(t, "widget", result.Data.Name)
		})
	}
}

func TestParseCleanup(t *testing.T) {
	// Trailing comma and unquoted key.
	result := Parse[testPayload](`{name: "widget", "count": 3,}`, "test")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "widget", result.Data.Name)
	assert.Equal(t, 3, result.Data.Count)
}

func TestParseExtractsFromMixedContent(t *testing.T) {
	input := `Here is the classification you asked for:

{"name": "widget", "count": 3}

Let me know if you need anything else.`
	result := Parse[testPayload](input, "test")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "widget", result.Data.Name)
}

func TestParsePreservesApostrophes(t *testing.T) {
	result := Parse[testPayload](`{"name": "I'm a widget", "count": 1}`, "test")
	require.True(t, result.Success)
	assert.Equal(t, "I'm a widget", result.Data.Name)
}

func TestParseFailures(t *testing.T) {
	result := Parse[testPayload]("", "review")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "review:")

	result = Parse[testPayload]("not json at all", "review")
	assert.False(t, result.Success)
}

func TestParseDetectsMissingFields(t *testing.T) {
	// Pointer fields stay nil when the model omits a key.
	parsed := Parse[reviewResponse](`{"approved": true, "score": 0.8}`, "review")
	require.True(t, parsed.Success)
	assert.NotNil(t, parsed.Data.Approved)
	assert.NotNil(t, parsed.Data.Score)
	assert.Nil(t, parsed.Data.Feedback)
	assert.Nil(t, parsed.Data.Issues)
}

func TestParseArrayRoot(t *testing.T) {
	result := Parse[[]string](`["a", "b"]`, "test")
	require.True(t, result.Success)
	assert.Equal(t, []string{"a", "b"}, result.Data)
}
