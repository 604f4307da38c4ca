package models

import (
	"time"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
	"github.com/google/uuid"
)

// Span is the persisted form of one highlight. StartOffset and EndOffset are
// byte offsets into the owning document's body and never change after
// creation. Text is the body slice cached at creation time; if the body is
// edited afterwards it can drift from the canonical text, which is accepted
// (the host decides whether to re-anchor). DeletedAt is a tombstone: a
// non-nil value removes the span from rendering without erasing it.
type Span struct {
	ID          uuid.UUID  `json:"id"`
	DocumentID  uuid.UUID  `json:"document_id"`
	TagID       uuid.UUID  `json:"tag_id"`
	StartOffset int        `json:"start_offset"`
	EndOffset   int        `json:"end_offset"`
	Text        string     `json:"text"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Live reports whether the span has not been soft-deleted.
func (s *Span) Live() bool {
	return s.DeletedAt == nil
}

// Annotation converts the record into the core span form used by the
// rendering algorithms.
func (s *Span) Annotation() *annotation.Span {
	return &annotation.Span{
		ID:        s.ID,
		Start:     s.StartOffset,
		End:       s.EndOffset,
		TagID:     s.TagID,
		Text:      s.Text,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		DeletedAt: s.DeletedAt,
	}
}

// AnnotationSpans converts a slice of records, preserving order.
func AnnotationSpans(spans []*Span) []*annotation.Span {
	out := make([]*annotation.Span, 0, len(spans))
	for _, s := range spans {
		out = append(out, s.Annotation())
	}
	return out
}
