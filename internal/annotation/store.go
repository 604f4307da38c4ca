package annotation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidRange is returned when a span's offsets are malformed:
	// start >= end, or either offset outside [0, len(text)].
	ErrInvalidRange = errors.New("invalid span range")
	// ErrSpanNotFound is returned when an operation references an id with no
	// live span behind it.
	ErrSpanNotFound = errors.New("span not found")
)

// Span is one annotation over the canonical text. Start and End never change
// after insertion; the only permitted mutations are re-tagging and soft
// deletion. Text is the cached slice of the canonical text at insertion time
// and may drift if the document body is edited afterwards.
type Span struct {
	ID        uuid.UUID
	Start     int
	End       int
	TagID     uuid.UUID
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Live reports whether the span has not been soft-deleted.
func (s *Span) Live() bool {
	return s.DeletedAt == nil
}

// SpanStore holds the spans of one document, in insertion order. It enforces
// range validity on insert and tombstones on delete but never merges or
// splits spans; overlap is a rendering-time concern handled by
// BuildSegments.
type SpanStore struct {
	textLen int
	spans   []*Span
}

// NewSpanStore creates a store for a document whose canonical text is
// textLen bytes long.
func NewSpanStore(textLen int) *SpanStore {
	return &SpanStore{textLen: textLen}
}

// Insert validates and adds a span. The store is untouched when the range is
// rejected.
func (st *SpanStore) Insert(span *Span) error {
	if span.Start < 0 || span.End > st.textLen || span.Start >= span.End {
		return fmt.Errorf("%w: [%d, %d) over text of %d bytes", ErrInvalidRange, span.Start, span.End, st.textLen)
	}
	st.spans = append(st.spans, span)
	return nil
}

// SoftDelete tombstones the live span with the given id.
func (st *SpanStore) SoftDelete(id uuid.UUID) error {
	span := st.findLive(id)
	if span == nil {
		return fmt.Errorf("%w: %s", ErrSpanNotFound, id)
	}
	now := time.Now()
	span.DeletedAt = &now
	return nil
}

// Retag changes the tag of the live span with the given id and bumps its
// UpdatedAt. Offsets and cached text are never touched.
func (st *SpanStore) Retag(id, newTagID uuid.UUID) error {
	span := st.findLive(id)
	if span == nil {
		return fmt.Errorf("%w: %s", ErrSpanNotFound, id)
	}
	span.TagID = newTagID
	span.UpdatedAt = time.Now()
	return nil
}

// LiveSpans returns the non-deleted spans sorted by Start ascending, ties
// broken by insertion order. This is the ordering BuildSegments depends on.
func (st *SpanStore) LiveSpans() []*Span {
	live := make([]*Span, 0, len(st.spans))
	for _, s := range st.spans {
		if s.Live() {
			live = append(live, s)
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].Start < live[j].Start
	})
	return live
}

// Len returns the number of spans in the store, tombstoned ones included.
func (st *SpanStore) Len() int {
	return len(st.spans)
}

func (st *SpanStore) findLive(id uuid.UUID) *Span {
	for _, s := range st.spans {
		if s.ID == id && s.Live() {
			return s
		}
	}
	return nil
}
