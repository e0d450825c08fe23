package httpx

import (
	"net/http"

	"github.com/quickgig/quickgig-api/internal/domain/model"
	"github.com/quickgig/quickgig-api/internal/service"
)

// ApplicationHandlers provides HTTP handlers for the application ledger.
type ApplicationHandlers struct {
	Svc *service.ApplicationService
}

// Apply handles POST /api/jobs/{id}/applications.
func (h *ApplicationHandlers) Apply(w http.ResponseWriter, r *http.Request) {
	var req model.ApplyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.JobID = r.PathValue("id")
	req.WorkerID = ActorID(r)

	app, err := h.Svc.Apply(r.Context(), &req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, app)
}

type acceptResponse struct {
	Application *model.Application `json:"application"`
	Job         *model.Job         `json:"job"`
}

// Accept handles POST /api/applications/{id}/accept.
func (h *ApplicationHandlers) Accept(w http.ResponseWriter, r *http.Request) {
	app, job, err := h.Svc.Accept(r.Context(), r.PathValue("id"), ActorID(r))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, acceptResponse{Application: app, Job: job})
}

// Reject handles POST /api/applications/{id}/reject.
func (h *ApplicationHandlers) Reject(w http.ResponseWriter, r *http.Request) {
	app, err := h.Svc.Reject(r.Context(), r.PathValue("id"), ActorID(r))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// ListForJob handles GET /api/jobs/{id}/applications. The order query
// parameter selects newest, rate or rating.
func (h *ApplicationHandlers) ListForJob(w http.ResponseWriter, r *http.Request) {
	var order model.ApplicationOrder
	if err := order.UnmarshalText([]byte(r.URL.Query().Get("order"))); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_order", Err: err})
		return
	}

	apps, err := h.Svc.ListForJob(r.Context(), r.PathValue("id"), ActorID(r), order)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, apps)
}

// ListMine handles GET /api/applications/mine.
func (h *ApplicationHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Svc.ListForWorker(r.Context(), ActorID(r))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, apps)
}
