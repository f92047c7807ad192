// Package storage defines the persistence interface for the knowledge
// base, run history, and escalation log, plus the CSV export used for
// escalation handoffs.
package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/resolvd/resolvd/internal/types"
)

// Document is one persisted knowledge-base chunk.
type Document struct {
	ID         int64
	Category   types.Category
	Content    string
	Source     string // original file or upload name
	ChunkIndex int    // position within the source document
	CreatedAt  time.Time
}

// Storage is the persistence interface. Implementations must be safe for
// concurrent use.
type Storage interface {
	// SaveDocuments persists chunks under a category and returns them with
	// assigned IDs.
	SaveDocuments(ctx context.Context, docs []Document) ([]Document, error)
	// GetDocuments returns all chunks for a category in insertion order.
	GetDocuments(ctx context.Context, category types.Category) ([]Document, error)
	// Categories returns the categories that have at least one chunk.
	Categories(ctx context.Context) ([]types.Category, error)

	// SaveRun persists the result of one ticket run.
	SaveRun(ctx context.Context, result *types.Result) error
	// GetRun returns the most recent run for a ticket, or nil if none.
	GetRun(ctx context.Context, ticketID string) (*types.Result, error)
	// GetRecentRuns returns the latest runs, newest first.
	GetRecentRuns(ctx context.Context, limit int) ([]*types.Result, error)

	// RecordEscalation appends one escalation audit record.
	RecordEscalation(ctx context.Context, rec *types.EscalationRecord) error
	// GetEscalations returns the latest escalations, newest first.
	GetEscalations(ctx context.Context, limit int) ([]*types.EscalationRecord, error)

	Close() error
}

// escalationCSVHeader matches the column order of WriteEscalationsCSV.
var escalationCSVHeader = []string{
	"timestamp", "ticket_id", "subject", "description", "category",
	"classification_confidence", "num_drafts", "num_reviews",
	"final_review_score", "escalation_reason", "failed_drafts",
	"reviewer_feedback",
}

// WriteEscalationsCSV writes escalation records as CSV, header first.
func WriteEscalationsCSV(w io.Writer, records []*types.EscalationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(escalationCSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Timestamp.UTC().Format(time.RFC3339),
			rec.TicketID,
			rec.Subject,
			rec.Description,
			string(rec.Category),
			strconv.FormatFloat(rec.Confidence, 'f', -1, 64),
			strconv.Itoa(rec.NumDrafts),
			strconv.Itoa(rec.NumReviews),
			strconv.FormatFloat(rec.FinalReviewScore, 'f', -1, 64),
			rec.Reason,
			rec.FailedDrafts,
			rec.ReviewerFeedback,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for ticket %s: %w", rec.TicketID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
