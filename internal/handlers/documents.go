package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
	"github.com/kyu1c/abstract-analysis-Public/internal/database"
	"github.com/kyu1c/abstract-analysis-Public/internal/models"
	"github.com/kyu1c/abstract-analysis-Public/internal/request"
	"github.com/kyu1c/abstract-analysis-Public/internal/validation"
)

const (
	// MaxDocumentBodyLength is the maximum length for a document body
	MaxDocumentBodyLength = 1 << 20
	// MaxDocumentTitleLength is the maximum length for a document title
	MaxDocumentTitleLength = 500
)

// DocumentHandler handles document-related requests
type DocumentHandler struct {
	docRepo  database.DocumentRepositoryInterface
	spanRepo database.SpanRepositoryInterface
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docRepo database.DocumentRepositoryInterface, spanRepo database.SpanRepositoryInterface) *DocumentHandler {
	return &DocumentHandler{docRepo: docRepo, spanRepo: spanRepo}
}

// RegisterRoutes registers document routes on the given router.
// The router should already have the /documents prefix.
func (h *DocumentHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListDocuments).Methods("GET")
	r.HandleFunc("", h.CreateDocument).Methods("POST")
	r.HandleFunc("/{id}", h.GetDocument).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateDocument).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteDocument).Methods("DELETE")
	r.HandleFunc("/{id}/segments", h.GetSegments).Methods("GET")
}

// CreateDocumentRequest represents a create document request
type CreateDocumentRequest struct {
	Title string `json:"title" validate:"required,min=1,max=500"`
	Body  string `json:"body" validate:"required,min=1"`
}

// UpdateDocumentRequest represents an update document request
type UpdateDocumentRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

// SegmentsResponse is the rendered form of a document
type SegmentsResponse struct {
	DocumentID uuid.UUID            `json:"document_id"`
	Segments   []annotation.Segment `json:"segments"`
}

// ListDocuments lists the caller's documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return
	}

	docs, err := h.docRepo.GetByOwnerID(r.Context(), callerID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// CreateDocument creates a new document
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return
	}

	var req CreateDocumentRequest
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

	req.Title = validation.SanitizeLabel(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}
	if len(req.Body) > MaxDocumentBodyLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Body exceeds maximum length of %d bytes", MaxDocumentBodyLength))
		return
	}

	doc := &models.Document{
		ID:      uuid.New(),
		OwnerID: callerID,
		Title:   req.Title,
		Body:    req.Body,
	}

	if err := h.docRepo.Create(r.Context(), doc); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create document")
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document by ID
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadOwnedDocument(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// UpdateDocument updates a document's title or body. Editing the body does
// not re-anchor existing spans; their cached text may drift from the new
// body and stale offsets are clamped at render time.
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadOwnedDocument(w, r)
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.Title != nil {
		title := validation.SanitizeLabel(*req.Title)
		if title == "" || len(title) > MaxDocumentTitleLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid title")
			return
		}
		doc.Title = title
	}
	if req.Body != nil {
		if *req.Body == "" || len(*req.Body) > MaxDocumentBodyLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid body")
			return
		}
		doc.Body = *req.Body
	}
	doc.UpdatedAt = time.Now()

	if err := h.docRepo.Update(r.Context(), doc); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update document")
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadOwnedDocument(w, r)
	if !ok {
		return
	}

	if err := h.docRepo.Delete(r.Context(), doc.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete document")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// GetSegments renders a document into its segment sequence
func (h *DocumentHandler) GetSegments(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadOwnedDocument(w, r)
	if !ok {
		return
	}

	spans, err := h.spanRepo.GetLiveByDocumentID(r.Context(), doc.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve spans")
		return
	}

	segments := annotation.BuildSegments(doc.Body, models.AnnotationSpans(spans))
	respondJSON(w, http.StatusOK, SegmentsResponse{DocumentID: doc.ID, Segments: segments})
}

// loadOwnedDocument parses the id path variable, loads the document, and
// verifies the caller owns it. On failure it writes the error response and
// returns ok=false.
func (h *DocumentHandler) loadOwnedDocument(w http.ResponseWriter, r *http.Request) (*models.Document, bool) {
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
