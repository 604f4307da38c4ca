package annotation

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSegment is returned when a rendered position references a
	// segment index outside the provided sequence.
	ErrUnknownSegment = errors.New("unknown segment")
	// ErrOutOfBounds is returned when a rendered position's local offset
	// exceeds its segment's length.
	ErrOutOfBounds = errors.New("offset out of bounds")
	// ErrCollapsedSelection is returned when a selection's resolved start is
	// not strictly before its resolved end.
	ErrCollapsedSelection = errors.New("collapsed selection")
)

// RenderedPosition identifies one character boundary within the rendered
// segment sequence: byte Offset characters into segment SegmentIndex. An
// offset equal to the segment's length addresses the boundary at its end.
type RenderedPosition struct {
	SegmentIndex int `json:"segment_index" validate:"min=0"`
	Offset       int `json:"offset" validate:"min=0"`
}

// ResolveOffset maps a rendered position back to an absolute byte offset in
// the canonical text. Because BuildSegments output is gap-free and
// order-preserving, each segment's canonical start is the accumulated length
// of everything before it.
func ResolveOffset(segments []Segment, pos RenderedPosition) (int, error) {
	if pos.SegmentIndex < 0 || pos.SegmentIndex >= len(segments) {
		return 0, fmt.Errorf("%w: index %d of %d segments", ErrUnknownSegment, pos.SegmentIndex, len(segments))
	}

	absolute := 0
	for i := 0; i < pos.SegmentIndex; i++ {
		absolute += len(segments[i].Text)
	}

	seg := segments[pos.SegmentIndex]
	if pos.Offset < 0 || pos.Offset > len(seg.Text) {
		return 0, fmt.Errorf("%w: offset %d in segment of %d bytes", ErrOutOfBounds, pos.Offset, len(seg.Text))
	}

	return absolute + pos.Offset, nil
}

// ResolveSelection resolves a selection's start and end boundaries and
// enforces start < end. A collapsed or inverted selection is rejected so the
// caller never constructs a zero-width span from it.
func ResolveSelection(segments []Segment, start, end RenderedPosition) (int, int, error) {
	absStart, err := ResolveOffset(segments, start)
	if err != nil {
		return 0, 0, fmt.Errorf("selection start: %w", err)
	}
	absEnd, err := ResolveOffset(segments, end)
	if err != nil {
		return 0, 0, fmt.Errorf("selection end: %w", err)
	}
	if absStart >= absEnd {
		return 0, 0, fmt.Errorf("%w: [%d, %d)", ErrCollapsedSelection, absStart, absEnd)
	}
	return absStart, absEnd, nil
}
