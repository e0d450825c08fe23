package httpx

import (
	"log/slog"
	"net/http"

	"github.com/quickgig/quickgig-api/internal/service"
)

// RouterServices holds the services the HTTP router exposes.
type RouterServices struct {
	Jobs         *service.JobService
	Applications *service.ApplicationService
	Checklist    *service.ChecklistService
	Completion   *service.CompletionService
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	jobHandlers := &JobHandlers{Svc: services.Jobs}
	appHandlers := &ApplicationHandlers{Svc: services.Applications}
	taskHandlers := &TaskHandlers{Svc: services.Checklist}
	completionHandlers := &CompletionHandlers{Svc: services.Completion}

	registerJobRoutes(mux, jobHandlers)
	registerApplicationRoutes(mux, appHandlers)
	registerTaskRoutes(mux, taskHandlers)
	registerCompletionRoutes(mux, completionHandlers)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers) {
	mux.Handle("POST /api/jobs", RequireActor(http.HandlerFunc(h.CreateJob)))
	mux.Handle("GET /api/jobs", http.HandlerFunc(h.ListOpenJobs))
	mux.Handle("GET /api/jobs/mine", RequireActor(http.HandlerFunc(h.ListMyJobs)))
	mux.Handle("GET /api/jobs/{id}", http.HandlerFunc(h.GetJob))
	mux.Handle("POST /api/jobs/{id}/start", RequireActor(http.HandlerFunc(h.StartJob)))
	mux.Handle("POST /api/jobs/{id}/cancel", RequireActor(http.HandlerFunc(h.CancelJob)))
	mux.Handle("POST /api/jobs/{id}/location", RequireActor(http.HandlerFunc(h.RecordLocation)))
	mux.Handle("GET /api/jobs/{id}/location", RequireActor(http.HandlerFunc(h.LatestLocation)))
	mux.Handle("GET /api/jobs/{id}/location_audit", RequireActor(http.HandlerFunc(h.LocationAudit)))
	// Payment callback; authenticated at the edge like every collaborator call.
	mux.Handle("POST /api/jobs/{id}/payment_result", http.HandlerFunc(h.PaymentResult))
}

func registerApplicationRoutes(mux *http.ServeMux, h *ApplicationHandlers) {
	mux.Handle("POST /api/jobs/{id}/applications", RequireActor(http.HandlerFunc(h.Apply)))
	mux.Handle("GET /api/jobs/{id}/applications", RequireActor(http.HandlerFunc(h.ListForJob)))
	mux.Handle("GET /api/applications/mine", RequireActor(http.HandlerFunc(h.ListMine)))
	mux.Handle("POST /api/applications/{id}/accept", RequireActor(http.HandlerFunc(h.Accept)))
	mux.Handle("POST /api/applications/{id}/reject", RequireActor(http.HandlerFunc(h.Reject)))
}

func registerTaskRoutes(mux *http.ServeMux, h *TaskHandlers) {
	mux.Handle("POST /api/jobs/{id}/tasks", RequireActor(http.HandlerFunc(h.AddTask)))
	mux.Handle("GET /api/jobs/{id}/tasks", http.HandlerFunc(h.ListTasks))
	mux.Handle("GET /api/jobs/{id}/tasks/progress", http.HandlerFunc(h.Progress))
	mux.Handle("POST /api/tasks/{id}/toggle", RequireActor(http.HandlerFunc(h.ToggleTask)))
}

func registerCompletionRoutes(mux *http.ServeMux, h *CompletionHandlers) {
	mux.Handle("POST /api/jobs/{id}/completion/request", RequireActor(http.HandlerFunc(h.RequestCompletion)))
	mux.Handle("POST /api/jobs/{id}/completion/approve", RequireActor(http.HandlerFunc(h.ApproveCompletion)))
	mux.Handle("POST /api/jobs/{id}/complete", RequireActor(http.HandlerFunc(h.CompleteDirectly)))
	mux.Handle("GET /api/jobs/{id}/completion", RequireActor(http.HandlerFunc(h.GetCompletion)))
}
