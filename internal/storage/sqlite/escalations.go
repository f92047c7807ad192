package sqlite

import (
	"context"
	"fmt"

	"github.com/resolvd/resolvd/internal/types"
)

// RecordEscalation appends one escalation audit record.
func (s *SQLiteStorage) RecordEscalation(ctx context.Context, rec *types.EscalationRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO escalations (
			timestamp, ticket_id, subject, description, category,
			classification_confidence, num_drafts, num_reviews,
			final_review_score, escalation_reason, failed_drafts, reviewer_feedback)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.TicketID, rec.Subject, rec.Description, rec.Category,
		rec.Confidence, rec.NumDrafts, rec.NumReviews,
		rec.FinalReviewScore, rec.Reason, rec.FailedDrafts, rec.ReviewerFeedback)
	if err != nil {
		return fmt.Errorf("failed to record escalation for ticket %s: %w", rec.TicketID, err)
	}
	return nil
}

// GetEscalations returns the latest escalations, newest first.
func (s *SQLiteStorage) GetEscalations(ctx context.Context, limit int) ([]*types.EscalationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, ticket_id, subject, description, category,
		       classification_confidence, num_drafts, num_reviews,
		       final_review_score, escalation_reason, failed_drafts, reviewer_feedback
		FROM escalations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query escalations: %w", err)
	}
	defer rows.Close()

	var records []*types.EscalationRecord
	for rows.Next() {
		rec := &types.EscalationRecord{}
		if err := rows.Scan(
			&rec.Timestamp, &rec.TicketID, &rec.Subject, &rec.Description, &rec.Category,
			&rec.Confidence, &rec.NumDrafts, &rec.NumReviews,
			&rec.FinalReviewScore, &rec.Reason, &rec.FailedDrafts, &rec.ReviewerFeedback); err != nil {
			return nil, fmt.Errorf("failed to scan escalation: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
