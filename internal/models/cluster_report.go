package models

import (
	"time"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
	"github.com/google/uuid"
)

// ReportSource records which algorithm produced a cluster report.
type ReportSource string

const (
	// ReportSourceClassifier marks groups produced by the remote classifier.
	ReportSourceClassifier ReportSource = "classifier"
	// ReportSourceFallback marks groups produced by the local clustering
	// algorithm after the classifier failed or was absent.
	ReportSourceFallback ReportSource = "fallback"
)

// ClusterReport is a stored snapshot of one clustering run over a user's tag
// labels.
type ClusterReport struct {
	ID        uuid.UUID             `json:"id"`
	OwnerID   uuid.UUID             `json:"owner_id"`
	Groups    []annotation.TagGroup `json:"groups"`
	Source    ReportSource          `json:"source"`
	Threshold int                   `json:"threshold"`
	CreatedAt time.Time             `json:"created_at"`
}
