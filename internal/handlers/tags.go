package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kyu1c/abstract-analysis-Public/internal/database"
	"github.com/kyu1c/abstract-analysis-Public/internal/models"
	"github.com/kyu1c/abstract-analysis-Public/internal/request"
	"github.com/kyu1c/abstract-analysis-Public/internal/validation"
)

const (
	// MaxTagLabelLength is the maximum length for a tag label
	MaxTagLabelLength = 100
	// DefaultTagColor is assigned when a tag is created without a color
	DefaultTagColor = "#ffeb3b"
)

// TagHandler handles tag-related requests
type TagHandler struct {
	tagRepo database.TagRepositoryInterface
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagRepo database.TagRepositoryInterface) *TagHandler {
	return &TagHandler{tagRepo: tagRepo}
}

// RegisterRoutes registers tag routes on the given router.
// The router should already have the /tags prefix.
func (h *TagHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTags).Methods("GET")
	r.HandleFunc("", h.CreateTag).Methods("POST")
	r.HandleFunc("/reorder", h.ReorderTags).Methods("POST")
	r.HandleFunc("/{id}", h.GetTag).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTag).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTag).Methods("DELETE")
}

// CreateTagRequest represents a create tag request
type CreateTagRequest struct {
	Label string `json:"label" validate:"required,min=1,max=100"`
	Color string `json:"color" validate:"omitempty,tag_color"`
}

// UpdateTagRequest represents an update tag request
type UpdateTagRequest struct {
	Label *string `json:"label,omitempty"`
	Color *string `json:"color,omitempty" validate:"omitempty,tag_color"`
}

// ReorderTagsRequest carries the full desired display order
type ReorderTagsRequest struct {
	TagIDs []uuid.UUID `json:"tag_ids" validate:"required,min=1"`
}

// ListTags lists the caller's tags in display order
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return
	}

	tags, err := h.tagRepo.GetByOwnerID(r.Context(), callerID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tags")
		return
	}

	respondJSON(w, http.StatusOK, tags)
}

// CreateTag creates a new tag. Labels are free text; duplicates are allowed
// and reconciled later by clustering.
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return
	}

	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
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

	req.Label = validation.SanitizeLabel(req.Label)
	if req.Label == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Label is required and cannot be empty after sanitization")
		return
	}
	if req.Color == "" {
		req.Color = DefaultTagColor
	}

	tag := &models.Tag{
		ID:      uuid.New(),
		OwnerID: callerID,
		Label:   req.Label,
		Color:   req.Color,
	}

	if err := h.tagRepo.Create(r.Context(), tag); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create tag")
		return
	}

	respondJSON(w, http.StatusCreated, tag)
}

// GetTag retrieves a tag by ID
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, ok := h.loadOwnedTag(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, tag)
}

// UpdateTag updates a tag's label or color
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	tag, ok := h.loadOwnedTag(w, r)
	if !ok {
		return
	}

	var req UpdateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.Label != nil {
		label := validation.SanitizeLabel(*req.Label)
		if label == "" || len(label) > MaxTagLabelLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid label")
			return
		}
		tag.Label = label
	}
	if req.Color != nil {
		if err := validation.ValidateTagColor(*req.Color); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		tag.Color = *req.Color
	}
	tag.UpdatedAt = time.Now()

	if err := h.tagRepo.Update(r.Context(), tag); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update tag")
		return
	}

	respondJSON(w, http.StatusOK, tag)
}

// ReorderTags rewrites the display order of the caller's tags
func (h *TagHandler) ReorderTags(w http.ResponseWriter, r *http.Request) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return
	}

	var req ReorderTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if len(req.TagIDs) == 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "tag_ids is required")
		return
	}

	if err := h.tagRepo.Reorder(r.Context(), callerID, req.TagIDs); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to reorder tags")
		return
	}

	tags, err := h.tagRepo.GetByOwnerID(r.Context(), callerID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tags")
		return
	}

	respondJSON(w, http.StatusOK, tags)
}

// DeleteTag deletes a tag. Spans pointing at it keep their tag_id; the
// reference is weak.
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tag, ok := h.loadOwnedTag(w, r)
	if !ok {
		return
	}

	if err := h.tagRepo.Delete(r.Context(), tag.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete tag")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *TagHandler) loadOwnedTag(w http.ResponseWriter, r *http.Request) (*models.Tag, bool) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return nil, false
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid tag ID")
		return nil, false
	}

	tag, err := h.tagRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Tag not found")
		return nil, false
	}
	if tag.OwnerID != callerID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Tag does not belong to caller")
		return nil, false
	}

	return tag, true
}
