package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/resolvd/resolvd/internal/types"
)

// DraftRequest carries everything the drafter needs for one response.
// PreviousDraft and Feedback are only set for redrafts.
type DraftRequest struct {
	Ticket        types.Ticket
	Category      types.Category
	Context       string
	PreviousDraft string
	Feedback      string
}

// Draft writes the initial customer-facing response from the retrieved
// context. The response is free text, not JSON.
func (c *Client) Draft(ctx context.Context, req DraftRequest) (string, error) {
	prompt := buildDraftPrompt(req.Ticket, req.Category, req.Context)

	responseText, err := c.callModel(ctx, "draft", "", prompt)
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(responseText)
	if content == "" {
		return "", fmt.Errorf("draft response was empty")
	}

	slog.Debug("draft generated", "ticketID", req.Ticket.TicketID, "length", len(content))
	return content, nil
}

// Redraft writes an improved response that addresses the reviewer's
// feedback, using the refined retrieval context.
func (c *Client) Redraft(ctx context.Context, req DraftRequest) (string, error) {
	prompt := buildRedraftPrompt(req.Ticket, req.Category, req.PreviousDraft, req.Feedback, req.Context)

	responseText, err := c.callModel(ctx, "redraft", "", prompt)
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(responseText)
	if content == "" {
		return "", fmt.Errorf("redraft response was empty")
	}

	slog.Debug("redraft generated", "ticketID", req.Ticket.TicketID, "length", len(content))
	return content, nil
}
