package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
	"github.com/kyu1c/abstract-analysis-Public/internal/models"
	"github.com/kyu1c/abstract-analysis-Public/internal/queue"
)

type mockTagRepo struct {
	labels    []string
	labelsErr error
}

func (m *mockTagRepo) Create(context.Context, *models.Tag) error { return nil }
func (m *mockTagRepo) GetByID(context.Context, uuid.UUID) (*models.Tag, error) {
	return nil, errors.New("not implemented")
}
func (m *mockTagRepo) GetByOwnerID(context.Context, uuid.UUID) ([]*models.Tag, error) {
	return nil, errors.New("not implemented")
}
func (m *mockTagRepo) ListLabelsByOwnerID(context.Context, uuid.UUID) ([]string, error) {
	return m.labels, m.labelsErr
}
func (m *mockTagRepo) Update(context.Context, *models.Tag) error { return nil }
func (m *mockTagRepo) Reorder(context.Context, uuid.UUID, []uuid.UUID) error {
	return nil
}
func (m *mockTagRepo) Delete(context.Context, uuid.UUID) error { return nil }

type mockReportRepo struct {
	created   []*models.ClusterReport
	createErr error
}

func (m *mockReportRepo) Create(_ context.Context, report *models.ClusterReport) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, report)
	return nil
}

func (m *mockReportRepo) GetLatestByOwnerID(context.Context, uuid.UUID) (*models.ClusterReport, error) {
	if len(m.created) == 0 {
		return nil, errors.New("no reports")
	}
	return m.created[len(m.created)-1], nil
}

type mockProvider struct {
	groups []annotation.TagGroup
	err    error
	calls  int
}

func (m *mockProvider) GroupLabels(context.Context, []string) ([]annotation.TagGroup, error) {
	m.calls++
	return m.groups, m.err
}

type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockMessage) Ack() error { m.acked = true; return nil }
func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}
func (m *mockMessage) GetJob() *queue.Job { return m.job }

func TestClusterer_ProcessClusterTagsJob_ClassifierSource(t *testing.T) {
	t.Parallel()

	tagRepo := &mockTagRepo{labels: []string{"Method", "Methods", "Result"}}
	reportRepo := &mockReportRepo{}
	provider := &mockProvider{groups: []annotation.TagGroup{
		{Name: "Method", Members: []string{"Method", "Methods"}},
		{Name: "Result", Members: []string{"Result"}},
	}}
	c := NewClusterer(tagRepo, reportRepo, provider, 3, zap.NewNop())

	job := queue.NewJob(queue.JobTypeClusterTags, uuid.New(), 0)
	if err := c.ProcessClusterTagsJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessClusterTagsJob: %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("Expected one provider call, got %d", provider.calls)
	}
	if len(reportRepo.created) != 1 {
		t.Fatalf("Expected one stored report, got %d", len(reportRepo.created))
	}
	report := reportRepo.created[0]
	if report.Source != models.ReportSourceClassifier {
		t.Errorf("Expected classifier source, got %s", report.Source)
	}
	if report.OwnerID != job.OwnerID {
		t.Errorf("Expected report owner %s, got %s", job.OwnerID, report.OwnerID)
	}
	if len(report.Groups) != 2 {
		t.Errorf("Expected 2 groups, got %d", len(report.Groups))
	}
	if report.Threshold != 3 {
		t.Errorf("Expected default threshold 3, got %d", report.Threshold)
	}
}

func TestClusterer_ProcessClusterTagsJob_FallbackOnProviderError(t *testing.T) {
	t.Parallel()

	tagRepo := &mockTagRepo{labels: []string{"intro", "introduction", "results"}}
	reportRepo := &mockReportRepo{}
	provider := &mockProvider{err: errors.New("api unavailable")}
	c := NewClusterer(tagRepo, reportRepo, provider, 3, zap.NewNop())

	job := queue.NewJob(queue.JobTypeClusterTags, uuid.New(), 0)
	if err := c.ProcessClusterTagsJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessClusterTagsJob: %v", err)
	}

	if len(reportRepo.created) != 1 {
		t.Fatalf("Expected one stored report, got %d", len(reportRepo.created))
	}
	report := reportRepo.created[0]
	if report.Source != models.ReportSourceFallback {
		t.Errorf("Expected fallback source, got %s", report.Source)
	}
	// intro/introduction should collapse, results stays alone
	if len(report.Groups) != 2 {
		t.Errorf("Expected 2 groups from local clustering, got %d: %+v", len(report.Groups), report.Groups)
	}
}

func TestClusterer_ProcessClusterTagsJob_NilProviderUsesFallback(t *testing.T) {
	t.Parallel()

	tagRepo := &mockTagRepo{labels: []string{"alpha", "beta"}}
	reportRepo := &mockReportRepo{}
	c := NewClusterer(tagRepo, reportRepo, nil, 3, zap.NewNop())

	job := queue.NewJob(queue.JobTypeClusterTags, uuid.New(), 0)
	if err := c.ProcessClusterTagsJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessClusterTagsJob: %v", err)
	}
	if reportRepo.created[0].Source != models.ReportSourceFallback {
		t.Errorf("Expected fallback source, got %s", reportRepo.created[0].Source)
	}
}

func TestClusterer_ProcessClusterTagsJob_ThresholdOverride(t *testing.T) {
	t.Parallel()

	tagRepo := &mockTagRepo{labels: []string{"one"}}
	reportRepo := &mockReportRepo{}
	c := NewClusterer(tagRepo, reportRepo, nil, 3, zap.NewNop())

	job := queue.NewJob(queue.JobTypeClusterTags, uuid.New(), 5)
	if err := c.ProcessClusterTagsJob(context.Background(), job); err != nil {
		t.Fatalf("ProcessClusterTagsJob: %v", err)
	}
	if reportRepo.created[0].Threshold != 5 {
		t.Errorf("Expected threshold 5 from job, got %d", reportRepo.created[0].Threshold)
	}
}

func TestClusterer_ProcessClusterTagsJob_MissingOwner(t *testing.T) {
	t.Parallel()

	c := NewClusterer(&mockTagRepo{}, &mockReportRepo{}, nil, 3, zap.NewNop())
	job := &queue.Job{ID: uuid.New(), Type: queue.JobTypeClusterTags}
	if err := c.ProcessClusterTagsJob(context.Background(), job); err == nil {
		t.Error("Expected error for missing owner_id")
	}
}

func TestClusterer_ProcessClusterTagsJob_LabelListError(t *testing.T) {
	t.Parallel()

	tagRepo := &mockTagRepo{labelsErr: errors.New("db down")}
	reportRepo := &mockReportRepo{}
	c := NewClusterer(tagRepo, reportRepo, nil, 3, zap.NewNop())

	job := queue.NewJob(queue.JobTypeClusterTags, uuid.New(), 0)
	if err := c.ProcessClusterTagsJob(context.Background(), job); err == nil {
		t.Error("Expected error when label listing fails")
	}
	if len(reportRepo.created) != 0 {
		t.Errorf("Expected no report stored on failure, got %d", len(reportRepo.created))
	}
}

func TestClusterer_ProcessJob_AcksOnSuccess(t *testing.T) {
	t.Parallel()

	tagRepo := &mockTagRepo{labels: []string{"a"}}
	c := NewClusterer(tagRepo, &mockReportRepo{}, nil, 3, zap.NewNop())

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeClusterTags, uuid.New(), 0)}
	if err := c.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if !msg.acked {
		t.Error("Expected message to be acked")
	}
	if msg.nacked {
		t.Error("Did not expect message to be nacked")
	}
}

func TestClusterer_ProcessJob_NacksOnFailure(t *testing.T) {
	t.Parallel()

	tagRepo := &mockTagRepo{labelsErr: errors.New("db down")}
	c := NewClusterer(tagRepo, &mockReportRepo{}, nil, 3, zap.NewNop())

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeClusterTags, uuid.New(), 0)}
	if err := c.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("Expected error from ProcessJob")
	}
	if !msg.nacked {
		t.Error("Expected message to be nacked")
	}
	if msg.requeue {
		t.Error("Expected nack without requeue so the job routes to the DLQ")
	}
}

func TestClusterer_ProcessJob_UnknownJobType(t *testing.T) {
	t.Parallel()

	c := NewClusterer(&mockTagRepo{}, &mockReportRepo{}, nil, 3, zap.NewNop())

	msg := &mockMessage{job: &queue.Job{
		ID:      uuid.New(),
		Type:    queue.JobType("mystery"),
		OwnerID: uuid.New(),
	}}
	if err := c.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("Expected error for unknown job type")
	}
	if !msg.nacked {
		t.Error("Expected message to be nacked")
	}
}

func TestClusterer_ProcessJob_NotReadyAcksWithoutProcessing(t *testing.T) {
	t.Parallel()

	reportRepo := &mockReportRepo{}
	c := NewClusterer(&mockTagRepo{labels: []string{"a"}}, reportRepo, nil, 3, zap.NewNop())

	notBefore := time.Now().Add(time.Hour)
	job := queue.NewJob(queue.JobTypeClusterTags, uuid.New(), 0)
	job.NotBefore = &notBefore

	msg := &mockMessage{job: job}
	if err := c.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if !msg.acked {
		t.Error("Expected early ack for a job that is not ready")
	}
	if len(reportRepo.created) != 0 {
		t.Errorf("Expected no report for a deferred job, got %d", len(reportRepo.created))
	}
}
