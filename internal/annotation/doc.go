// Package annotation implements the document-highlight core: an in-memory
// span store, deterministic rendering of spans into non-overlapping display
// segments, mapping of rendered-view selections back to canonical offsets,
// and a local tag-label clustering algorithm used when no remote classifier
// is available.
//
// All offsets are byte offsets into the UTF-8 canonical text. Everything in
// this package is a synchronous, pure data transform; nothing here performs
// I/O. A SpanStore is not safe for concurrent mutation; callers that share
// one across goroutines must serialize access per document.
package annotation
