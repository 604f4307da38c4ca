package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
	"github.com/kyu1c/abstract-analysis-Public/internal/database"
	logpkg "github.com/kyu1c/abstract-analysis-Public/internal/logger"
	"github.com/kyu1c/abstract-analysis-Public/internal/models"
	"github.com/kyu1c/abstract-analysis-Public/internal/queue"
	"github.com/kyu1c/abstract-analysis-Public/internal/services/classifier"
)

// JobProcessor handles one job type.
type JobProcessor func(ctx context.Context, job *queue.Job) error

// Clusterer processes tag clustering jobs. It asks the classifier provider to
// group a user's tag labels and falls back to local edit-distance clustering
// when no provider is configured or the provider call fails.
type Clusterer struct {
	tagRepo    database.TagRepositoryInterface
	reportRepo database.ClusterReportRepositoryInterface
	provider   classifier.Provider
	threshold  int
	logger     *zap.Logger
	registry   map[queue.JobType]JobProcessor
}

// NewClusterer creates a new clusterer and registers the cluster_tags processor.
// provider may be nil, in which case every report comes from the local fallback.
func NewClusterer(
	tagRepo database.TagRepositoryInterface,
	reportRepo database.ClusterReportRepositoryInterface,
	provider classifier.Provider,
	threshold int,
	logger *zap.Logger,
) *Clusterer {
	if threshold <= 0 {
		threshold = annotation.DefaultClusterThreshold
	}
	c := &Clusterer{
		tagRepo:    tagRepo,
		reportRepo: reportRepo,
		provider:   provider,
		threshold:  threshold,
		logger:     logger,
		registry:   make(map[queue.JobType]JobProcessor),
	}
	c.RegisterProcessor(queue.JobTypeClusterTags, c.ProcessClusterTagsJob)
	return c
}

// RegisterProcessor registers a processor for a job type.
func (c *Clusterer) RegisterProcessor(typ queue.JobType, proc JobProcessor) {
	c.registry[typ] = proc
}

// ProcessClusterTagsJob clusters a user's tag labels and stores the report.
func (c *Clusterer) ProcessClusterTagsJob(ctx context.Context, job *queue.Job) error {
	if job.OwnerID == uuid.Nil {
		return fmt.Errorf("owner_id is required for cluster tags job")
	}

	threshold := job.Threshold
	if threshold <= 0 {
		threshold = c.threshold
	}

	c.logger.Info("processing_cluster_tags_job",
		zap.String("job_id", logpkg.SanitizeID(job.ID.String())),
		zap.String("owner_id", logpkg.SanitizeID(job.OwnerID.String())),
		zap.Int("threshold", threshold),
	)

	labels, err := c.tagRepo.ListLabelsByOwnerID(ctx, job.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to list tag labels: %w", err)
	}

	groups, source := c.clusterLabels(ctx, job.OwnerID, labels, threshold)

	report := &models.ClusterReport{
		ID:        uuid.New(),
		OwnerID:   job.OwnerID,
		Groups:    groups,
		Source:    source,
		Threshold: threshold,
		CreatedAt: time.Now(),
	}
	if err := c.reportRepo.Create(ctx, report); err != nil {
		return fmt.Errorf("failed to store cluster report: %w", err)
	}

	c.logger.Info("stored_cluster_report",
		zap.String("owner_id", logpkg.SanitizeID(job.OwnerID.String())),
		zap.String("report_id", logpkg.SanitizeID(report.ID.String())),
		zap.String("source", string(source)),
		zap.Int("labels", len(labels)),
		zap.Int("groups", len(groups)),
	)
	return nil
}

// clusterLabels tries the classifier first and falls back to local clustering.
func (c *Clusterer) clusterLabels(ctx context.Context, ownerID uuid.UUID, labels []string, threshold int) ([]annotation.TagGroup, models.ReportSource) {
	if c.provider != nil && len(labels) > 0 {
		groups, err := c.provider.GroupLabels(ctx, labels)
		if err == nil {
			return groups, models.ReportSourceClassifier
		}
		c.logger.Warn("classifier_failed_falling_back",
			zap.String("owner_id", logpkg.SanitizeID(ownerID.String())),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	}
	return annotation.ClusterLabels(labels, threshold), models.ReportSourceFallback
}

// ProcessJob processes a job based on its type using the processor registry.
func (c *Clusterer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if !job.ShouldProcess() {
		fields := []zap.Field{zap.String("job_id", logpkg.SanitizeID(job.ID.String()))}
		if job.NotBefore != nil {
			fields = append(fields, zap.Time("not_before", *job.NotBefore))
		}
		c.logger.Debug("cluster_job_not_ready", fields...)
		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.Warn("failed_to_ack_job_for_later_processing",
				zap.String("job_id", logpkg.SanitizeID(job.ID.String())),
				zap.String("error", logpkg.SanitizeError(ackErr)),
			)
		}
		return nil
	}

	proc, ok := c.registry[job.Type]
	if !ok {
		if nackErr := msg.Nack(false); nackErr != nil {
			c.logger.Error("failed_to_nack_unknown_job_type",
				zap.String("job_id", logpkg.SanitizeID(job.ID.String())),
				zap.String("job_type", string(job.Type)),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err := proc(ctx, job); err != nil {
		c.logger.Error("cluster_job_failed",
			zap.String("operation", "process_job"),
			zap.String("job_id", logpkg.SanitizeID(job.ID.String())),
			zap.String("owner_id", logpkg.SanitizeID(job.OwnerID.String())),
			zap.String("error", logpkg.SanitizeError(err)),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			c.logger.Warn("failed_to_nack_cluster_job",
				zap.String("job_id", logpkg.SanitizeID(job.ID.String())),
				zap.String("error", logpkg.SanitizeError(nackErr)),
			)
		}
		return fmt.Errorf("cluster tags failed: %w", err)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack cluster job: %w", ackErr)
	}
	return nil
}
