package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kyu1c/abstract-analysis-Public/internal/models"
	"github.com/kyu1c/abstract-analysis-Public/internal/queue"
	"github.com/kyu1c/abstract-analysis-Public/internal/request"
)

var errNotFound = errors.New("not found")

type mockDocRepo struct {
	docs map[uuid.UUID]*models.Document
}

func newMockDocRepo(docs ...*models.Document) *mockDocRepo {
	m := &mockDocRepo{docs: make(map[uuid.UUID]*models.Document)}
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return m
}

func (m *mockDocRepo) Create(_ context.Context, doc *models.Document) error {
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	return doc, nil
}

func (m *mockDocRepo) GetByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*models.Document, error) {
	var out []*models.Document
	for _, d := range m.docs {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDocRepo) Update(_ context.Context, doc *models.Document) error {
	if _, ok := m.docs[doc.ID]; !ok {
		return errNotFound
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.docs[id]; !ok {
		return errNotFound
	}
	delete(m.docs, id)
	return nil
}

type mockSpanRepo struct {
	spans map[uuid.UUID]*models.Span
	order []uuid.UUID
}

func newMockSpanRepo(spans ...*models.Span) *mockSpanRepo {
	m := &mockSpanRepo{spans: make(map[uuid.UUID]*models.Span)}
	for _, s := range spans {
		m.spans[s.ID] = s
		m.order = append(m.order, s.ID)
	}
	return m
}

func (m *mockSpanRepo) Create(_ context.Context, span *models.Span) error {
	span.CreatedAt = time.Now()
	span.UpdatedAt = span.CreatedAt
	m.spans[span.ID] = span
	m.order = append(m.order, span.ID)
	return nil
}

func (m *mockSpanRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Span, error) {
	s, ok := m.spans[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (m *mockSpanRepo) GetLiveByDocumentID(_ context.Context, documentID uuid.UUID) ([]*models.Span, error) {
	// start asc, creation order breaking ties, matching the SQL ordering
	var out []*models.Span
	for _, id := range m.order {
		s := m.spans[id]
		if s.DocumentID == documentID && s.Live() {
			out = append(out, s)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].StartOffset < out[j-1].StartOffset; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (m *mockSpanRepo) Retag(_ context.Context, id, newTagID uuid.UUID) (*models.Span, error) {
	s, ok := m.spans[id]
	if !ok || !s.Live() {
		return nil, errNotFound
	}
	s.TagID = newTagID
	s.UpdatedAt = time.Now()
	return s, nil
}

func (m *mockSpanRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	s, ok := m.spans[id]
	if !ok || !s.Live() {
		return errNotFound
	}
	now := time.Now()
	s.DeletedAt = &now
	return nil
}

type mockTagRepo struct {
	tags      map[uuid.UUID]*models.Tag
	labels    []string
	labelsErr error
}

func newMockTagRepo(tags ...*models.Tag) *mockTagRepo {
	m := &mockTagRepo{tags: make(map[uuid.UUID]*models.Tag)}
	for _, tag := range tags {
		m.tags[tag.ID] = tag
	}
	return m
}

func (m *mockTagRepo) Create(_ context.Context, tag *models.Tag) error {
	tag.CreatedAt = time.Now()
	tag.UpdatedAt = tag.CreatedAt
	tag.DisplayOrder = len(m.tags)
	m.tags[tag.ID] = tag
	return nil
}

func (m *mockTagRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tag, error) {
	tag, ok := m.tags[id]
	if !ok {
		return nil, errNotFound
	}
	return tag, nil
}

func (m *mockTagRepo) GetByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*models.Tag, error) {
	var out []*models.Tag
	for _, tag := range m.tags {
		if tag.OwnerID == ownerID {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (m *mockTagRepo) ListLabelsByOwnerID(context.Context, uuid.UUID) ([]string, error) {
	return m.labels, m.labelsErr
}

func (m *mockTagRepo) Update(_ context.Context, tag *models.Tag) error {
	if _, ok := m.tags[tag.ID]; !ok {
		return errNotFound
	}
	m.tags[tag.ID] = tag
	return nil
}

func (m *mockTagRepo) Reorder(_ context.Context, _ uuid.UUID, orderedIDs []uuid.UUID) error {
	for i, id := range orderedIDs {
		if tag, ok := m.tags[id]; ok {
			tag.DisplayOrder = i
		}
	}
	return nil
}

func (m *mockTagRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.tags[id]; !ok {
		return errNotFound
	}
	delete(m.tags, id)
	return nil
}

type mockReportRepo struct {
	reports []*models.ClusterReport
}

func (m *mockReportRepo) Create(_ context.Context, report *models.ClusterReport) error {
	m.reports = append(m.reports, report)
	return nil
}

func (m *mockReportRepo) GetLatestByOwnerID(_ context.Context, ownerID uuid.UUID) (*models.ClusterReport, error) {
	for i := len(m.reports) - 1; i >= 0; i-- {
		if m.reports[i].OwnerID == ownerID {
			return m.reports[i], nil
		}
	}
	return nil, errNotFound
}

type mockJobQueue struct {
	enqueued   []*queue.Job
	enqueueErr error
}

func (m *mockJobQueue) Enqueue(_ context.Context, job *queue.Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error                       { return nil }
func (m *mockJobQueue) HealthCheck(context.Context) error { return nil }

// newCallerRequest builds a request carrying callerID in its context, the way
// the caller middleware would have left it.
func newCallerRequest(method, path string, body string, callerID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	return req.WithContext(request.WithCaller(req.Context(), callerID))
}
