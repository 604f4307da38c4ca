package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kyu1c/abstract-analysis-Public/internal/models"
)

// ClusterReportRepository handles cluster report database operations.
// Reports are append-only snapshots; callers read the latest per owner.
type ClusterReportRepository struct {
	db *DB
}

// NewClusterReportRepository creates a new cluster report repository.
func NewClusterReportRepository(db *DB) *ClusterReportRepository {
	return &ClusterReportRepository{db: db}
}

// Create stores a new cluster report.
func (r *ClusterReportRepository) Create(ctx context.Context, report *models.ClusterReport) error {
	groupsJSON, err := json.Marshal(report.Groups)
	if err != nil {
		return fmt.Errorf("failed to marshal cluster groups: %w", err)
	}

	query := `
		INSERT INTO cluster_reports (id, owner_id, groups, source, threshold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err = r.db.QueryRowContext(ctx, query,
		report.ID,
		report.OwnerID,
		groupsJSON,
		report.Source,
		report.Threshold,
		time.Now(),
	).Scan(&report.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create cluster report: %w", err)
	}

	return nil
}

// GetLatestByOwnerID retrieves the most recent report for an owner.
func (r *ClusterReportRepository) GetLatestByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.ClusterReport, error) {
	report := &models.ClusterReport{}
	var groupsJSON []byte

	query := `
		SELECT id, owner_id, groups, source, threshold, created_at
		FROM cluster_reports
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(
		&report.ID,
		&report.OwnerID,
		&groupsJSON,
		&report.Source,
		&report.Threshold,
		&report.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cluster report not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster report: %w", err)
	}

	if err := json.Unmarshal(groupsJSON, &report.Groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cluster groups: %w", err)
	}

	return report, nil
}
