package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/resolvd/resolvd/internal/types"
)

// SaveRun persists the result of one ticket run. The full result is kept
// as JSON; a few columns are broken out for querying.
func (s *SQLiteStorage) SaveRun(ctx context.Context, result *types.Result) error {
	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (ticket_id, subject, category, escalated, retry_count, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.TicketID, result.Subject, result.Category,
		boolToInt(result.Escalated), result.RetryCount, string(payload), createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert run for ticket %s: %w", result.TicketID, err)
	}
	return nil
}

// GetRun returns the most recent run for a ticket, or nil if none exists.
func (s *SQLiteStorage) GetRun(ctx context.Context, ticketID string) (*types.Result, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT result_json FROM runs WHERE ticket_id = ? ORDER BY id DESC LIMIT 1`,
		ticketID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run for ticket %s: %w", ticketID, err)
	}

	var result types.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run for ticket %s: %w", ticketID, err)
	}
	return &result, nil
}

// GetRecentRuns returns the latest runs, newest first.
func (s *SQLiteStorage) GetRecentRuns(ctx context.Context, limit int) ([]*types.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT result_json FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer rows.Close()

	var results []*types.Result
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		var result types.Result
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run: %w", err)
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
