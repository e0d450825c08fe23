package httpx

import (
	"net/http"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/domain/model"
	"github.com/quickgig/quickgig-api/internal/service"
)

// CompletionHandlers provides HTTP handlers for the completion handshake.
type CompletionHandlers struct {
	Svc *service.CompletionService
}

type requestCompletionRequest struct {
	Notes string `json:"notes,omitempty"`
}

// RequestCompletion handles POST /api/jobs/{id}/completion/request.
func (h *CompletionHandlers) RequestCompletion(w http.ResponseWriter, r *http.Request) {
	var req requestCompletionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	record, err := h.Svc.Request(r.Context(), core.CompletionRequestParams{
		JobID:       r.PathValue("id"),
		RequestedBy: ActorID(r),
		Notes:       req.Notes,
	})
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, record)
}

type approveCompletionRequest struct {
	WorkerRating *int `json:"worker_rating,omitempty"`
	PosterRating *int `json:"poster_rating,omitempty"`
}

type completionResponse struct {
	Completion *model.CompletionRecord `json:"completion"`
	Job        *model.Job              `json:"job"`
}

// ApproveCompletion handles POST /api/jobs/{id}/completion/approve.
func (h *CompletionHandlers) ApproveCompletion(w http.ResponseWriter, r *http.Request) {
	var req approveCompletionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	record, job, err := h.Svc.Approve(r.Context(), core.CompletionApproveParams{
		JobID:        r.PathValue("id"),
		ApprovedBy:   ActorID(r),
		WorkerRating: req.WorkerRating,
		PosterRating: req.PosterRating,
	})
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, completionResponse{Completion: record, Job: job})
}

// CompleteDirectly handles POST /api/jobs/{id}/complete. Allowed only when
// the checklist is fully complete.
func (h *CompletionHandlers) CompleteDirectly(w http.ResponseWriter, r *http.Request) {
	var req approveCompletionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	record, job, err := h.Svc.CompleteDirectly(r.Context(), r.PathValue("id"), ActorID(r), req.WorkerRating, req.PosterRating)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, completionResponse{Completion: record, Job: job})
}

// GetCompletion handles GET /api/jobs/{id}/completion.
func (h *CompletionHandlers) GetCompletion(w http.ResponseWriter, r *http.Request) {
	record, err := h.Svc.GetForJob(r.Context(), r.PathValue("id"), ActorID(r))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, record)
}
