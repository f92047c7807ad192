package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resolvd/resolvd/internal/types"
)

// classificationResponse is the model's classification payload. Pointer
// fields distinguish missing keys from zero values.
type classificationResponse struct {
	Category   *string  `json:"category"`
	Confidence *float64 `json:"confidence"`
	Reasoning  *string  `json:"reasoning"`
}

// Classify assigns a ticket to one of the support categories. A malformed
// or unrecognized model response is an error; the caller decides the
// fallback category.
func (c *Client) Classify(ctx context.Context, ticket types.Ticket) (*types.Classification, error) {
	prompt := buildClassificationPrompt(ticket)

	responseText, err := c.callModel(ctx, "classification", "", prompt)
	if err != nil {
		return nil, err
	}

	parsed := Parse[classificationResponse](responseText, "classification")
	if !parsed.Success {
		return nil, fmt.Errorf("failed to parse classification response: %s", parsed.Error)
	}

	resp := parsed.Data
	if resp.Category == nil || resp.Confidence == nil {
		return nil, fmt.Errorf("classification response missing required fields (category, confidence)")
	}

	category, ok := types.ParseCategory(*resp.Category)
	if !ok {
		return nil, fmt.Errorf("classification returned unknown category %q", *resp.Category)
	}

	confidence := *resp.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	reasoning := ""
	if resp.Reasoning != nil {
		reasoning = *resp.Reasoning
	}

	slog.Debug("ticket classified",
		"ticketID", ticket.TicketID,
		"category", category,
		"confidence", confidence)

	return &types.Classification{
		Category:   category,
		Confidence: confidence,
		Reasoning:  reasoning,
	}, nil
}
