package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resolvd/resolvd/internal/types"
)

// reviewResponse is the model's review payload. Every field is required;
// pointer fields let us detect keys the model omitted.
type reviewResponse struct {
	Approved *bool     `json:"approved"`
	Score    *float64  `json:"score"`
	Feedback *string   `json:"feedback"`
	Issues   *[]string `json:"issues"`
}

// Review evaluates a draft response against the ticket and the context it
// was written from. A response missing any of the four required fields is
// rejected as malformed.
func (c *Client) Review(ctx context.Context, ticket types.Ticket, category types.Category, draft, contextText string) (*types.Review, error) {
	prompt := buildReviewPrompt(ticket, category, draft, contextText)

	responseText, err := c.callModel(ctx, "review", "", prompt)
	if err != nil {
		return nil, err
	}

	parsed := Parse[reviewResponse](responseText, "review")
	if !parsed.Success {
		return nil, fmt.Errorf("failed to parse review response: %s", parsed.Error)
	}

	resp := parsed.Data
	if resp.Approved == nil || resp.Score == nil || resp.Feedback == nil || resp.Issues == nil {
		return nil, fmt.Errorf("review response missing required fields (approved, score, feedback, issues)")
	}

	score := *resp.Score
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}

	review := &types.Review{
		Approved: *resp.Approved,
		Score:    score,
		Feedback: *resp.Feedback,
		Issues:   *resp.Issues,
	}

	slog.Debug("draft reviewed",
		"ticketID", ticket.TicketID,
		"approved", review.Approved,
		"score", review.Score,
		"issues", joinIssues(review.Issues))

	return review, nil
}
