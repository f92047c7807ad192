package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/resolvd/resolvd/internal/storage"
	"github.com/resolvd/resolvd/internal/types"
)

// SaveDocuments inserts chunks in one transaction and returns them with
// their assigned IDs.
func (s *SQLiteStorage) SaveDocuments(ctx context.Context, docs []storage.Document) ([]storage.Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (category, content, source, chunk_index, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	saved := make([]storage.Document, len(docs))
	for i, doc := range docs {
		createdAt := doc.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		res, err := stmt.ExecContext(ctx, doc.Category, doc.Content, doc.Source, doc.ChunkIndex, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert document chunk %d: %w", doc.ChunkIndex, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read inserted ID: %w", err)
		}
		saved[i] = doc
		saved[i].ID = id
		saved[i].CreatedAt = createdAt
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit documents: %w", err)
	}
	return saved, nil
}

// GetDocuments returns all chunks for a category in insertion order.
func (s *SQLiteStorage) GetDocuments(ctx context.Context, category types.Category) ([]storage.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, content, source, chunk_index, created_at
		FROM documents WHERE category = ? ORDER BY id`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents for %q: %w", category, err)
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		var doc storage.Document
		if err := rows.Scan(&doc.ID, &doc.Category, &doc.Content, &doc.Source, &doc.ChunkIndex, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Categories returns the categories that have at least one chunk.
func (s *SQLiteStorage) Categories(ctx context.Context) ([]types.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM documents ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []types.Category
	for rows.Next() {
		var c types.Category
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
