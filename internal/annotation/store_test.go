package annotation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSpan(start, end int, text string) *Span {
	now := time.Now()
	return &Span{
		ID:        uuid.New(),
		Start:     start,
		End:       end,
		TagID:     uuid.New(),
		Text:      text[start:end],
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSpanStore_InsertValidation(t *testing.T) {
	t.Parallel()

	const text = "0123456789"

	tests := []struct {
		name    string
		start   int
		end     int
		wantErr error
	}{
		{"valid span", 0, 5, nil},
		{"full cover", 0, 10, nil},
		{"start equals end", 3, 3, ErrInvalidRange},
		{"start after end", 5, 3, ErrInvalidRange},
		{"negative start", -1, 5, ErrInvalidRange},
		{"end past text", 0, 11, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st := NewSpanStore(len(text))
			span := &Span{ID: uuid.New(), Start: tt.start, End: tt.end, TagID: uuid.New()}

			err := st.Insert(span)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, st.Len(), "store must be unchanged after a rejected insert")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, st.Len())
		})
	}
}

func TestSpanStore_LiveSpansOrdering(t *testing.T) {
	t.Parallel()

	const text = "the quick brown fox jumps over the lazy dog"
	st := NewSpanStore(len(text))

	// Inserted out of start order, with two spans sharing a start.
	late := newTestSpan(20, 25, text)
	early := newTestSpan(0, 3, text)
	tiedFirst := newTestSpan(10, 15, text)
	tiedSecond := newTestSpan(10, 12, text)

	for _, s := range []*Span{late, tiedFirst, early, tiedSecond} {
		require.NoError(t, st.Insert(s))
	}

	live := st.LiveSpans()
	require.Len(t, live, 4)
	assert.Equal(t, early.ID, live[0].ID)
	assert.Equal(t, tiedFirst.ID, live[1].ID, "ties break by insertion order")
	assert.Equal(t, tiedSecond.ID, live[2].ID)
	assert.Equal(t, late.ID, live[3].ID)
}

func TestSpanStore_SoftDelete(t *testing.T) {
	t.Parallel()

	const text = "abcdefghij"
	st := NewSpanStore(len(text))
	span := newTestSpan(2, 6, text)
	require.NoError(t, st.Insert(span))

	require.NoError(t, st.SoftDelete(span.ID))
	assert.NotNil(t, span.DeletedAt)
	assert.Empty(t, st.LiveSpans())
	assert.Equal(t, 1, st.Len(), "soft delete keeps the record")

	// Deleting again reports not found: no live span has the id anymore.
	assert.ErrorIs(t, st.SoftDelete(span.ID), ErrSpanNotFound)
	assert.ErrorIs(t, st.SoftDelete(uuid.New()), ErrSpanNotFound)
}

func TestSpanStore_Retag(t *testing.T) {
	t.Parallel()

	const text = "abcdefghij"
	st := NewSpanStore(len(text))
	span := newTestSpan(2, 6, text)
	require.NoError(t, st.Insert(span))

	originalUpdatedAt := span.UpdatedAt
	originalText := span.Text
	newTag := uuid.New()

	require.NoError(t, st.Retag(span.ID, newTag))
	assert.Equal(t, newTag, span.TagID)
	assert.Equal(t, 2, span.Start)
	assert.Equal(t, 6, span.End)
	assert.Equal(t, originalText, span.Text)
	assert.False(t, span.UpdatedAt.Before(originalUpdatedAt))

	assert.ErrorIs(t, st.Retag(uuid.New(), newTag), ErrSpanNotFound)
}

func TestSpanStore_RetagAfterSoftDelete(t *testing.T) {
	t.Parallel()

	const text = "abcdefghij"
	st := NewSpanStore(len(text))
	span := newTestSpan(0, 4, text)
	require.NoError(t, st.Insert(span))
	require.NoError(t, st.SoftDelete(span.ID))

	assert.ErrorIs(t, st.Retag(span.ID, uuid.New()), ErrSpanNotFound)
}

func TestSpanStore_OverlapIsAccepted(t *testing.T) {
	t.Parallel()

	const text = "abcdefghij"
	st := NewSpanStore(len(text))

	require.NoError(t, st.Insert(newTestSpan(0, 10, text)))
	require.NoError(t, st.Insert(newTestSpan(5, 8, text)), "overlap is resolved at render time, not storage time")
	assert.Len(t, st.LiveSpans(), 2)
}
