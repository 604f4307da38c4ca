package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
	"github.com/kyu1c/abstract-analysis-Public/internal/database"
	"github.com/kyu1c/abstract-analysis-Public/internal/models"
	"github.com/kyu1c/abstract-analysis-Public/internal/request"
	"github.com/kyu1c/abstract-analysis-Public/internal/validation"
)

// SpanHandler handles highlight span requests
type SpanHandler struct {
	docRepo  database.DocumentRepositoryInterface
	spanRepo database.SpanRepositoryInterface
	tagRepo  database.TagRepositoryInterface
}

// NewSpanHandler creates a new span handler
func NewSpanHandler(
	docRepo database.DocumentRepositoryInterface,
	spanRepo database.SpanRepositoryInterface,
	tagRepo database.TagRepositoryInterface,
) *SpanHandler {
	return &SpanHandler{docRepo: docRepo, spanRepo: spanRepo, tagRepo: tagRepo}
}

// RegisterDocumentRoutes registers span routes nested under /documents/{id}.
func (h *SpanHandler) RegisterDocumentRoutes(r *mux.Router) {
	r.HandleFunc("/{id}/spans", h.ListSpans).Methods("GET")
	r.HandleFunc("/{id}/spans", h.CreateSpan).Methods("POST")
}

// RegisterRoutes registers span routes on the given router.
// The router should already have the /spans prefix.
func (h *SpanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{id}", h.RetagSpan).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteSpan).Methods("DELETE")
}

// CreateSpanRequest represents a create span request. Exactly one addressing
// mode is used: a rendered selection (segment index plus local offset, as
// reported by a client that displays the segment sequence) or absolute byte
// offsets into the document body.
type CreateSpanRequest struct {
	TagID uuid.UUID `json:"tag_id" validate:"required"`

	Selection *SelectionRequest `json:"selection,omitempty"`

	StartOffset *int `json:"start_offset,omitempty"`
	EndOffset   *int `json:"end_offset,omitempty"`
}

// SelectionRequest is a selection expressed in rendered coordinates
type SelectionRequest struct {
	Start annotation.RenderedPosition `json:"start"`
	End   annotation.RenderedPosition `json:"end"`
}

// RetagSpanRequest represents a retag request
type RetagSpanRequest struct {
	TagID uuid.UUID `json:"tag_id" validate:"required"`
}

// SpanResponse couples the affected span with the document's fresh rendering
// so clients can redraw without a second round trip.
type SpanResponse struct {
	Span     *models.Span         `json:"span"`
	Segments []annotation.Segment `json:"segments"`
}

// ListSpans lists the live spans of a document in rendering order
func (h *SpanHandler) ListSpans(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadOwnedDocument(w, r)
	if !ok {
		return
	}

	spans, err := h.spanRepo.GetLiveByDocumentID(r.Context(), doc.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve spans")
		return
	}

	respondJSON(w, http.StatusOK, spans)
}

// CreateSpan creates a highlight over a document. Selections arrive in
// rendered coordinates and are resolved against the current segment sequence
// before validation, so the client never needs to know absolute offsets.
func (h *SpanHandler) CreateSpan(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadOwnedDocument(w, r)
	if !ok {
		return
	}

	var req CreateSpanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	if !h.tagBelongsToCaller(w, r, req.TagID, doc.OwnerID) {
		return
	}

	liveSpans, err := h.spanRepo.GetLiveByDocumentID(r.Context(), doc.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve spans")
		return
	}

	var start, end int
	switch {
	case req.Selection != nil:
		segments := annotation.BuildSegments(doc.Body, models.AnnotationSpans(liveSpans))
		start, end, err = annotation.ResolveSelection(segments, req.Selection.Start, req.Selection.End)
		if err != nil {
			respondJSONError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "Invalid selection: "+err.Error())
			return
		}
	case req.StartOffset != nil && req.EndOffset != nil:
		start, end = *req.StartOffset, *req.EndOffset
	default:
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Either selection or start_offset/end_offset is required")
		return
	}

	if start < 0 || end > len(doc.Body) || start >= end {
		respondJSONError(w, http.StatusUnprocessableEntity, "Unprocessable Entity",
			fmt.Sprintf("Invalid range [%d, %d) for document of %d bytes", start, end, len(doc.Body)))
		return
	}

	span := &models.Span{
		ID:          uuid.New(),
		DocumentID:  doc.ID,
		TagID:       req.TagID,
		StartOffset: start,
		EndOffset:   end,
		Text:        doc.Body[start:end],
	}

	if err := h.spanRepo.Create(r.Context(), span); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create span")
		return
	}

	// Re-establish rendering order; the new span rarely lands last
	refreshed := append(liveSpans, span)
	sort.SliceStable(refreshed, func(i, j int) bool {
		return refreshed[i].StartOffset < refreshed[j].StartOffset
	})
	segments := annotation.BuildSegments(doc.Body, models.AnnotationSpans(refreshed))
	respondJSON(w, http.StatusCreated, SpanResponse{Span: span, Segments: segments})
}

// RetagSpan changes which tag a span points at. Offsets and text are
// immutable; retagging is the only permitted mutation of a live span.
func (h *SpanHandler) RetagSpan(w http.ResponseWriter, r *http.Request) {
	span, doc, ok := h.loadOwnedSpan(w, r)
	if !ok {
		return
	}

	var req RetagSpanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if req.TagID == uuid.Nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "tag_id is required")
		return
	}

	if !h.tagBelongsToCaller(w, r, req.TagID, doc.OwnerID) {
		return
	}

	updated, err := h.spanRepo.Retag(r.Context(), span.ID, req.TagID)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Span not found")
		return
	}

	spans, err := h.spanRepo.GetLiveByDocumentID(r.Context(), doc.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve spans")
		return
	}

	segments := annotation.BuildSegments(doc.Body, models.AnnotationSpans(spans))
	respondJSON(w, http.StatusOK, SpanResponse{Span: updated, Segments: segments})
}

// DeleteSpan soft-deletes a span. The row is kept as a tombstone and only
// disappears from rendering.
func (h *SpanHandler) DeleteSpan(w http.ResponseWriter, r *http.Request) {
	span, doc, ok := h.loadOwnedSpan(w, r)
	if !ok {
		return
	}

	if err := h.spanRepo.SoftDelete(r.Context(), span.ID); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Span not found")
		return
	}

	spans, err := h.spanRepo.GetLiveByDocumentID(r.Context(), doc.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve spans")
		return
	}

	segments := annotation.BuildSegments(doc.Body, models.AnnotationSpans(spans))
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true, "segments": segments})
}

func (h *SpanHandler) loadOwnedDocument(w http.ResponseWriter, r *http.Request) (*models.Document, bool) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return nil, false
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid document ID")
		return nil, false
	}

	doc, err := h.docRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Document not found")
		return nil, false
	}
	if doc.OwnerID != callerID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Document does not belong to caller")
		return nil, false
	}

	return doc, true
}

// loadOwnedSpan loads a span by the id path variable along with its document
// and verifies ownership through the document.
func (h *SpanHandler) loadOwnedSpan(w http.ResponseWriter, r *http.Request) (*models.Span, *models.Document, bool) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return nil, nil, false
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid span ID")
		return nil, nil, false
	}

	span, err := h.spanRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Span not found")
		return nil, nil, false
	}
	if !span.Live() {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Span not found")
		return nil, nil, false
	}

	doc, err := h.docRepo.GetByID(r.Context(), span.DocumentID)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Document not found")
		return nil, nil, false
	}
	if doc.OwnerID != callerID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Span does not belong to caller")
		return nil, nil, false
	}

	return span, doc, true
}

// tagBelongsToCaller verifies the tag exists and is owned by ownerID. Writes
// the error response and returns false otherwise.
func (h *SpanHandler) tagBelongsToCaller(w http.ResponseWriter, r *http.Request, tagID, ownerID uuid.UUID) bool {
	tag, err := h.tagRepo.GetByID(r.Context(), tagID)
	if err != nil {
		respondJSONError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "Unknown tag")
		return false
	}
	if tag.OwnerID != ownerID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Tag does not belong to caller")
		return false
	}
	return true
}
