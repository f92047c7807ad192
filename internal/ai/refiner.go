package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/resolvd/resolvd/internal/types"
)

// refinementResponse is the model's query-refinement payload.
type refinementResponse struct {
	RefinedQueries *[]string `json:"refined_queries"`
}

// RefineQueries turns reviewer feedback into 1-5 alternative search
// queries for the second retrieval pass. Queries of three characters or
// fewer are discarded; an empty result after filtering is an error.
func (c *Client) RefineQueries(ctx context.Context, query string, category types.Category, feedback string) ([]string, error) {
	prompt := buildQueryRefinementPrompt(query, category, feedback)

	responseText, err := c.callModel(ctx, "query_refinement", "", prompt)
	if err != nil {
		return nil, err
	}

	parsed := Parse[refinementResponse](responseText, "query_refinement")
	if !parsed.Success {
		return nil, fmt.Errorf("failed to parse query refinement response: %s", parsed.Error)
	}

	if parsed.Data.RefinedQueries == nil {
		return nil, fmt.Errorf("query refinement response missing refined_queries field")
	}

	var queries []string
	for _, q := range *parsed.Data.RefinedQueries {
		q = strings.TrimSpace(q)
		if len(q) > 3 {
			queries = append(queries, q)
		}
		if len(queries) == 5 {
			break
		}
	}

	if len(queries) == 0 {
		return nil, fmt.Errorf("query refinement produced no usable queries")
	}

	slog.Debug("queries refined", "count", len(queries))
	return queries, nil
}

// feedbackStopwords are filler words excluded when mining reviewer
// feedback for query terms.
var feedbackStopwords = map[string]bool{
	"should": true,
	"would":  true,
	"could":  true,
	"might":  true,
	"about":  true,
	"better": true,
}

// HeuristicQueries builds refinement queries without the model, as the
// fallback when query refinement fails. It wraps the original query in
// common search phrasings and, when the feedback contains meaningful
// terms, mixes up to two of them into an extra query. Returns at most
// four queries.
func HeuristicQueries(query, feedback string) []string {
	queries := []string{
		"how to " + query,
		"troubleshoot " + query,
		"fix " + query,
	}

	var terms []string
	for _, word := range strings.Fields(strings.ToLower(feedback)) {
		word = strings.Trim(word, ".,;:!?\"'()")
		if len(word) > 4 && !feedbackStopwords[word] {
			terms = append(terms, word)
		}
		if len(terms) == 2 {
			break
		}
	}
	if len(terms) > 0 {
		queries = append(queries, query+" "+strings.Join(terms, " "))
	}

	queries = append(queries, "step by step "+query)
	if len(queries) > 4 {
		queries = queries[:4]
	}
	return queries
}
