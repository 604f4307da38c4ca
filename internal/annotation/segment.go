package annotation

import "github.com/google/uuid"

// SegmentKind distinguishes plain text runs from highlighted ones.
type SegmentKind string

const (
	SegmentPlain       SegmentKind = "plain"
	SegmentHighlighted SegmentKind = "highlighted"
)

// Segment is one run of the rendered view of a document. Segments are
// derived, never persisted. Highlighted segments carry the tag and span that
// produced them; both ids are zero for plain segments.
type Segment struct {
	Text   string      `json:"text"`
	Kind   SegmentKind `json:"kind"`
	TagID  uuid.UUID   `json:"tag_id,omitempty"`
	SpanID uuid.UUID   `json:"span_id,omitempty"`
}

// BuildSegments renders text and its live spans into the ordered, gap-free
// display sequence. Spans must be sorted by Start ascending (the LiveSpans
// contract).
//
// Overlaps resolve by left-biased truncation in a single sweep: the
// first-starting span claims the contested region, a later span contributes
// only the part past the sweep cursor, and a span that ends inside territory
// an earlier span already claimed contributes nothing at all. The dropped
// span still exists in storage; only its rendering is absorbed.
//
// The output concatenates back to text exactly, plain runs are maximal, and
// each highlighted run corresponds to exactly one span. Spans reaching past
// the end of text are clamped to it; spans starting past the end are skipped.
func BuildSegments(text string, spans []*Span) []Segment {
	segments := make([]Segment, 0, 2*len(spans)+1)
	cursor := 0

	for _, span := range spans {
		// Spans can outlive an edit that shrank the text; clamp instead of
		// trusting stored offsets.
		if span.Start >= len(text) {
			continue
		}
		end := span.End
		if end > len(text) {
			end = len(text)
		}
		if span.Start > cursor {
			segments = append(segments, Segment{
				Text: text[cursor:span.Start],
				Kind: SegmentPlain,
			})
			cursor = span.Start
		}
		if end <= cursor {
			// Fully inside an earlier span's claim; invisible.
			continue
		}
		start := span.Start
		if cursor > start {
			start = cursor
		}
		segments = append(segments, Segment{
			Text:   text[start:end],
			Kind:   SegmentHighlighted,
			TagID:  span.TagID,
			SpanID: span.ID,
		})
		cursor = end
	}

	if cursor < len(text) {
		segments = append(segments, Segment{
			Text: text[cursor:],
			Kind: SegmentPlain,
		})
	}

	return segments
}
