package httpx

import (
	"net/http"

	"github.com/quickgig/quickgig-api/internal/domain/model"
	"github.com/quickgig/quickgig-api/internal/service"
)

// TaskHandlers provides HTTP handlers for job checklists.
type TaskHandlers struct {
	Svc *service.ChecklistService
}

// AddTask handles POST /api/jobs/{id}/tasks.
func (h *TaskHandlers) AddTask(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.JobID = r.PathValue("id")
	req.ActorID = ActorID(r)

	task, err := h.Svc.AddTask(r.Context(), &req)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, task)
}

// ListTasks handles GET /api/jobs/{id}/tasks.
func (h *TaskHandlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Svc.List(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tasks)
}

// Progress handles GET /api/jobs/{id}/tasks/progress.
func (h *TaskHandlers) Progress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.Svc.Progress(r.Context(), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, progress)
}

type toggleTaskRequest struct {
	Completed bool `json:"completed"`
}

// ToggleTask handles POST /api/tasks/{id}/toggle.
func (h *TaskHandlers) ToggleTask(w http.ResponseWriter, r *http.Request) {
	var req toggleTaskRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	task, err := h.Svc.Toggle(r.Context(), r.PathValue("id"), ActorID(r), req.Completed)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}
