package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renderedFixture builds the segment view of "abcdefghij" with one highlight
// over [3, 6): ["abc", "def", "ghij"].
func renderedFixture(t *testing.T) []Segment {
	t.Helper()
	const text = "abcdefghij"
	segments := BuildSegments(text, []*Span{spanAt(3, 6, text)})
	require.Len(t, segments, 3)
	return segments
}

func TestResolveOffset(t *testing.T) {
	t.Parallel()

	segments := renderedFixture(t)

	tests := []struct {
		name    string
		pos     RenderedPosition
		want    int
		wantErr error
	}{
		{"start of first segment", RenderedPosition{0, 0}, 0, nil},
		{"inside first segment", RenderedPosition{0, 2}, 2, nil},
		{"end boundary of first segment", RenderedPosition{0, 3}, 3, nil},
		{"start of highlighted segment", RenderedPosition{1, 0}, 3, nil},
		{"inside highlighted segment", RenderedPosition{1, 2}, 5, nil},
		{"inside last segment", RenderedPosition{2, 4}, 10, nil},
		{"offset past segment", RenderedPosition{1, 4}, 0, ErrOutOfBounds},
		{"negative offset", RenderedPosition{0, -1}, 0, ErrOutOfBounds},
		{"segment index too large", RenderedPosition{3, 0}, 0, ErrUnknownSegment},
		{"negative segment index", RenderedPosition{-1, 0}, 0, ErrUnknownSegment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveOffset(segments, tt.pos)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveOffset_EmptySequence(t *testing.T) {
	t.Parallel()

	_, err := ResolveOffset(nil, RenderedPosition{0, 0})
	assert.ErrorIs(t, err, ErrUnknownSegment)
}

func TestResolveSelection(t *testing.T) {
	t.Parallel()

	segments := renderedFixture(t)

	start, end, err := ResolveSelection(segments, RenderedPosition{0, 1}, RenderedPosition{2, 2})
	require.NoError(t, err)
	assert.Equal(t, 1, start)
	assert.Equal(t, 8, end)
}

func TestResolveSelection_CollapsedAndInverted(t *testing.T) {
	t.Parallel()

	segments := renderedFixture(t)

	tests := []struct {
		name  string
		start RenderedPosition
		end   RenderedPosition
	}{
		{"same position", RenderedPosition{1, 1}, RenderedPosition{1, 1}},
		{"same boundary across segments", RenderedPosition{0, 3}, RenderedPosition{1, 0}},
		{"inverted", RenderedPosition{2, 0}, RenderedPosition{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := ResolveSelection(segments, tt.start, tt.end)
			assert.ErrorIs(t, err, ErrCollapsedSelection)
		})
	}
}

func TestResolveSelection_PropagatesBoundaryErrors(t *testing.T) {
	t.Parallel()

	segments := renderedFixture(t)

	_, _, err := ResolveSelection(segments, RenderedPosition{9, 0}, RenderedPosition{0, 1})
	assert.ErrorIs(t, err, ErrUnknownSegment)

	_, _, err = ResolveSelection(segments, RenderedPosition{0, 0}, RenderedPosition{2, 99})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

// Round trip: a selection made against the rendered view lands on the same
// canonical slice the user saw.
func TestResolveSelection_RoundTrip(t *testing.T) {
	t.Parallel()

	const text = "the quick brown fox jumps over the lazy dog"
	st := NewSpanStore(len(text))
	require.NoError(t, st.Insert(spanAt(4, 9, text)))
	require.NoError(t, st.Insert(spanAt(16, 19, text)))

	segments := BuildSegments(text, st.LiveSpans())

	// Select "brown" in the rendered view: it lives in the plain segment
	// between the two highlights ("quick" is segment 1, " brown " is 2).
	start, end, err := ResolveSelection(segments, RenderedPosition{2, 1}, RenderedPosition{2, 6})
	require.NoError(t, err)
	assert.Equal(t, "brown", text[start:end])
}
