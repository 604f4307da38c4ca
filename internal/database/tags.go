package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kyu1c/abstract-analysis-Public/internal/models"
)

// TagRepository handles tag database operations.
type TagRepository struct {
	db *DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create creates a new tag at the end of the owner's display order.
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	query := `
		INSERT INTO tags (id, owner_id, label, color, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4,
			COALESCE((SELECT MAX(display_order) + 1 FROM tags WHERE owner_id = $2), 0),
			$5, $5)
		RETURNING display_order, created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		tag.ID,
		tag.OwnerID,
		tag.Label,
		tag.Color,
		now,
	).Scan(&tag.DisplayOrder, &tag.CreatedAt, &tag.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

// GetByID retrieves a tag by ID.
func (r *TagRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	tag := &models.Tag{}
	query := `
		SELECT id, owner_id, label, color, display_order, created_at, updated_at
		FROM tags
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tag.ID,
		&tag.OwnerID,
		&tag.Label,
		&tag.Color,
		&tag.DisplayOrder,
		&tag.CreatedAt,
		&tag.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tag not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return tag, nil
}

// GetByOwnerID retrieves all tags for an owner in display order.
func (r *TagRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*models.Tag, error) {
	query := `
		SELECT id, owner_id, label, color, display_order, created_at, updated_at
		FROM tags
		WHERE owner_id = $1
		ORDER BY display_order ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag := &models.Tag{}
		err := rows.Scan(
			&tag.ID,
			&tag.OwnerID,
			&tag.Label,
			&tag.Color,
			&tag.DisplayOrder,
			&tag.CreatedAt,
			&tag.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// ListLabelsByOwnerID retrieves the distinct labels of an owner's tags.
// This is the clustering input.
func (r *TagRepository) ListLabelsByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT label
		FROM tags
		WHERE owner_id = $1
		ORDER BY label ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan tag label: %w", err)
		}
		labels = append(labels, label)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag labels: %w", err)
	}

	return labels, nil
}

// Update updates a tag's label and color.
func (r *TagRepository) Update(ctx context.Context, tag *models.Tag) error {
	query := `
		UPDATE tags
		SET label = $2, color = $3, updated_at = $4
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		tag.ID,
		tag.Label,
		tag.Color,
		time.Now(),
	).Scan(&tag.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("tag not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}

	return nil
}

// Reorder rewrites the display order of an owner's tags to match orderedIDs.
// IDs missing from the list keep their position relative to each other after
// the listed ones.
func (r *TagRepository) Reorder(ctx context.Context, ownerID uuid.UUID, orderedIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reorder transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE tags
		SET display_order = $3, updated_at = $4
		WHERE id = $1 AND owner_id = $2
	`

	now := time.Now()
	for i, id := range orderedIDs {
		if _, err := tx.ExecContext(ctx, query, id, ownerID, i, now); err != nil {
			return fmt.Errorf("failed to reorder tag %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}

	return nil
}

// Delete deletes a tag by ID. Spans referencing it are left in place; the
// reference is weak.
func (r *TagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tags WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("tag not found")
	}

	return nil
}
