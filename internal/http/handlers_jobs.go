package httpx

import (
	"net/http"
	"strconv"

	"github.com/quickgig/quickgig-api/internal/domain/model"
	"github.com/quickgig/quickgig-api/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// JobHandlers provides HTTP handlers for job lifecycle operations.
type JobHandlers struct {
	Svc *service.JobService
}

// CreateJob handles POST /api/jobs.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.PosterID = ActorID(r)

	job, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, job)
}

// GetJob handles GET /api/jobs/{id}.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// ListOpenJobs handles GET /api/jobs.
func (h *JobHandlers) ListOpenJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Svc.ListOpen(r.Context(), listOptions(r))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, jobs)
}

// ListMyJobs handles GET /api/jobs/mine.
func (h *JobHandlers) ListMyJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Svc.ListByPoster(r.Context(), ActorID(r), listOptions(r))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, jobs)
}

type startJobRequest struct {
	Location *model.LocationSample `json:"location"`
}

type startJobResponse struct {
	Job          *model.Job `json:"job"`
	Verification any        `json:"verification"`
}

// StartJob handles POST /api/jobs/{id}/start. The body carries the worker's
// location sample for the geofence gate.
func (h *JobHandlers) StartJob(w http.ResponseWriter, r *http.Request) {
	var req startJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, result, err := h.Svc.Start(r.Context(), r.PathValue("id"), ActorID(r), req.Location)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, startJobResponse{Job: job, Verification: result})
}

type recordLocationResponse struct {
	Accepted bool `json:"accepted"`
}

// RecordLocation handles POST /api/jobs/{id}/location.
func (h *JobHandlers) RecordLocation(w http.ResponseWriter, r *http.Request) {
	var sample model.LocationSample
	if !DecodeJSON(w, r, &sample) {
		return
	}

	accepted, err := h.Svc.RecordWorkerLocation(r.Context(), r.PathValue("id"), ActorID(r), sample)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, recordLocationResponse{Accepted: accepted})
}

// LatestLocation handles GET /api/jobs/{id}/location.
func (h *JobHandlers) LatestLocation(w http.ResponseWriter, r *http.Request) {
	sample, err := h.Svc.LatestWorkerLocation(r.Context(), r.PathValue("id"), ActorID(r))
	if err != nil {
		RenderError(w, err)
		return
	}
	if sample == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	WriteJSON(w, http.StatusOK, sample)
}

// LocationAudit handles GET /api/jobs/{id}/location_audit.
func (h *JobHandlers) LocationAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Svc.LocationAudit(r.Context(), r.PathValue("id"), ActorID(r))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}

// CancelJob handles POST /api/jobs/{id}/cancel.
func (h *JobHandlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Svc.Cancel(r.Context(), r.PathValue("id"), ActorID(r))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

type paymentResultRequest struct {
	Succeeded bool `json:"succeeded"`
}

// PaymentResult handles POST /api/jobs/{id}/payment_result, the payment
// collaborator's callback.
func (h *JobHandlers) PaymentResult(w http.ResponseWriter, r *http.Request) {
	var req paymentResultRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.Svc.ReportPaymentResult(r.Context(), r.PathValue("id"), req.Succeeded)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

func listOptions(r *http.Request) model.JobListOptions {
	opts := model.JobListOptions{Limit: defaultListLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		opts.Limit = min(v, maxListLimit)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		opts.Offset = v
	}
	return opts
}
