package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kyu1c/abstract-analysis-Public/internal/models"
)

// SpanRepository handles span database operations. Spans are soft-deleted:
// Delete sets the deleted_at tombstone and live queries filter on it.
type SpanRepository struct {
	db *DB
}

// NewSpanRepository creates a new span repository.
func NewSpanRepository(db *DB) *SpanRepository {
	return &SpanRepository{db: db}
}

// Create creates a new span.
func (r *SpanRepository) Create(ctx context.Context, span *models.Span) error {
	query := `
		INSERT INTO spans (id, document_id, tag_id, start_offset, end_offset, text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		span.ID,
		span.DocumentID,
		span.TagID,
		span.StartOffset,
		span.EndOffset,
		span.Text,
		now,
		now,
	).Scan(&span.CreatedAt, &span.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create span: %w", err)
	}

	return nil
}

// GetByID retrieves a span by ID, tombstoned or not.
func (r *SpanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Span, error) {
	span := &models.Span{}
	var deletedAt sql.NullTime

	query := `
		SELECT id, document_id, tag_id, start_offset, end_offset, text, created_at, updated_at, deleted_at
		FROM spans
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&span.ID,
		&span.DocumentID,
		&span.TagID,
		&span.StartOffset,
		&span.EndOffset,
		&span.Text,
		&span.CreatedAt,
		&span.UpdatedAt,
		&deletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("span not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get span: %w", err)
	}

	if deletedAt.Valid {
		span.DeletedAt = &deletedAt.Time
	}

	return span, nil
}

// GetLiveByDocumentID retrieves the non-deleted spans of a document ordered
// by start offset ascending, creation time breaking ties. This matches the
// ordering the segment builder expects.
func (r *SpanRepository) GetLiveByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*models.Span, error) {
	query := `
		SELECT id, document_id, tag_id, start_offset, end_offset, text, created_at, updated_at, deleted_at
		FROM spans
		WHERE document_id = $1 AND deleted_at IS NULL
		ORDER BY start_offset ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query spans: %w", err)
	}
	defer rows.Close()

	var spans []*models.Span
	for rows.Next() {
		span := &models.Span{}
		var deletedAt sql.NullTime

		err := rows.Scan(
			&span.ID,
			&span.DocumentID,
			&span.TagID,
			&span.StartOffset,
			&span.EndOffset,
			&span.Text,
			&span.CreatedAt,
			&span.UpdatedAt,
			&deletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan span: %w", err)
		}

		if deletedAt.Valid {
			span.DeletedAt = &deletedAt.Time
		}

		spans = append(spans, span)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spans: %w", err)
	}

	return spans, nil
}

// Retag updates a live span's tag and bumps updated_at. Offsets and cached
// text are never modified.
func (r *SpanRepository) Retag(ctx context.Context, id, newTagID uuid.UUID) (*models.Span, error) {
	query := `
		UPDATE spans
		SET tag_id = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, document_id, tag_id, start_offset, end_offset, text, created_at, updated_at
	`

	span := &models.Span{}
	err := r.db.QueryRowContext(ctx, query, id, newTagID, time.Now()).Scan(
		&span.ID,
		&span.DocumentID,
		&span.TagID,
		&span.StartOffset,
		&span.EndOffset,
		&span.Text,
		&span.CreatedAt,
		&span.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("span not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retag span: %w", err)
	}

	return span, nil
}

// SoftDelete tombstones a live span.
func (r *SpanRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE spans
		SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to soft delete span: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("span not found")
	}

	return nil
}
