package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/kyu1c/abstract-analysis-Public/internal/models"
)

// DocumentRepositoryInterface defines the interface for document repository
// operations. Interfaces exist to allow mock implementations in tests.
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SpanRepositoryInterface defines the interface for span repository operations.
type SpanRepositoryInterface interface {
	Create(ctx context.Context, span *models.Span) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Span, error)
	GetLiveByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*models.Span, error)
	Retag(ctx context.Context, id, newTagID uuid.UUID) (*models.Span, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// TagRepositoryInterface defines the interface for tag repository operations.
type TagRepositoryInterface interface {
	Create(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*models.Tag, error)
	ListLabelsByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]string, error)
	Update(ctx context.Context, tag *models.Tag) error
	Reorder(ctx context.Context, ownerID uuid.UUID, orderedIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ClusterReportRepositoryInterface defines the interface for cluster report
// repository operations.
type ClusterReportRepositoryInterface interface {
	Create(ctx context.Context, report *models.ClusterReport) error
	GetLatestByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.ClusterReport, error)
}

// Ensure concrete types implement the interfaces.
var (
	_ DocumentRepositoryInterface      = (*DocumentRepository)(nil)
	_ SpanRepositoryInterface          = (*SpanRepository)(nil)
	_ TagRepositoryInterface           = (*TagRepository)(nil)
	_ ClusterReportRepositoryInterface = (*ClusterReportRepository)(nil)
)
