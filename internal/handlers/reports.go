package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kyu1c/abstract-analysis-Public/internal/annotation"
	"github.com/kyu1c/abstract-analysis-Public/internal/database"
	"github.com/kyu1c/abstract-analysis-Public/internal/queue"
	"github.com/kyu1c/abstract-analysis-Public/internal/request"
)

// MaxClusterThreshold bounds the client-supplied distance threshold
const MaxClusterThreshold = 10

// ReportHandler handles tag cluster report requests
type ReportHandler struct {
	tagRepo    database.TagRepositoryInterface
	reportRepo database.ClusterReportRepositoryInterface
	jobQueue   queue.JobQueue
	threshold  int
}

// NewReportHandler creates a new report handler. threshold is the server
// default distance threshold for the preview endpoint and enqueued jobs.
func NewReportHandler(
	tagRepo database.TagRepositoryInterface,
	reportRepo database.ClusterReportRepositoryInterface,
	jobQueue queue.JobQueue,
	threshold int,
) *ReportHandler {
	if threshold <= 0 {
		threshold = annotation.DefaultClusterThreshold
	}
	return &ReportHandler{
		tagRepo:    tagRepo,
		reportRepo: reportRepo,
		jobQueue:   jobQueue,
		threshold:  threshold,
	}
}

// RegisterRoutes registers report routes on the given router.
// The router should already have the /reports prefix.
func (h *ReportHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/cluster", h.RequestCluster).Methods("POST")
	r.HandleFunc("/cluster/latest", h.GetLatestReport).Methods("GET")
	r.HandleFunc("/cluster/preview", h.PreviewCluster).Methods("POST")
}

// ClusterRequest represents a clustering request
type ClusterRequest struct {
	Threshold int `json:"threshold,omitempty" validate:"omitempty,min=0,max=10"`
}

// ClusterAccepted is the response to an enqueued clustering request
type ClusterAccepted struct {
	JobID string `json:"job_id"`
}

// PreviewResponse is the synchronous local clustering result
type PreviewResponse struct {
	Groups    []annotation.TagGroup `json:"groups"`
	Threshold int                   `json:"threshold"`
}

// RequestCluster enqueues a clustering job for the caller's tag labels and
// returns 202. The report lands asynchronously and is fetched via latest.
func (h *ReportHandler) RequestCluster(w http.ResponseWriter, r *http.Request) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return
	}

	threshold, ok := h.parseThreshold(w, r)
	if !ok {
		return
	}

	job := queue.NewJob(queue.JobTypeClusterTags, callerID, threshold)
	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to enqueue clustering job")
		return
	}

	respondJSON(w, http.StatusAccepted, ClusterAccepted{JobID: job.ID.String()})
}

// GetLatestReport returns the caller's most recent cluster report
func (h *ReportHandler) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return
	}

	report, err := h.reportRepo.GetLatestByOwnerID(r.Context(), callerID)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No cluster report yet")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// PreviewCluster clusters the caller's tag labels synchronously with the
// local edit-distance algorithm. Nothing is stored; this exists so a client
// can show a grouping without waiting for the worker.
func (h *ReportHandler) PreviewCluster(w http.ResponseWriter, r *http.Request) {
	callerID, ok := request.CallerFromContext(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Caller not found in context")
		return
	}

	threshold, ok := h.parseThreshold(w, r)
	if !ok {
		return
	}
	if threshold <= 0 {
		threshold = h.threshold
	}

	labels, err := h.tagRepo.ListLabelsByOwnerID(r.Context(), callerID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list tag labels")
		return
	}

	groups := annotation.ClusterLabels(labels, threshold)
	respondJSON(w, http.StatusOK, PreviewResponse{Groups: groups, Threshold: threshold})
}

// parseThreshold decodes the optional request body and bounds the threshold.
// An empty body means the server default. Returns ok=false after writing an
// error response.
func (h *ReportHandler) parseThreshold(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req ClusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return 0, false
	}
	if req.Threshold < 0 || req.Threshold > MaxClusterThreshold {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "threshold out of range")
		return 0, false
	}
	return req.Threshold, true
}
