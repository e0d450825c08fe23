package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/quickgig/quickgig-api/config"
	"github.com/quickgig/quickgig-api/internal/data"
	"github.com/quickgig/quickgig-api/internal/domain/event"
	"github.com/quickgig/quickgig-api/internal/domain/geo"
	"github.com/quickgig/quickgig-api/internal/service"
)

// ServiceContainer holds all application services plus the event bus they
// publish to.
type ServiceContainer struct {
	Jobs         *service.JobService
	Applications *service.ApplicationService
	Checklist    *service.ChecklistService
	Completion   *service.CompletionService
	Bus          *event.Bus

	captureDone <-chan struct{}
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	JobRepo        *data.JobRepo
	AppRepo        *data.ApplicationRepo
	TaskRepo       *data.TaskRepo
	CompletionRepo *data.CompletionRepo
	Tracker        *data.RedisLocationTracker
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(deps *ServiceDeps) *serviceRepositories {
	repoCfg := data.RepoConfig{Logger: deps.Logger}
	return &serviceRepositories{
		JobRepo:        data.NewJobRepo(deps.DB, repoCfg),
		AppRepo:        data.NewApplicationRepo(deps.DB, repoCfg),
		TaskRepo:       data.NewTaskRepo(deps.DB, repoCfg),
		CompletionRepo: data.NewCompletionRepo(deps.DB, repoCfg),
		Tracker:        data.NewRedisLocationTracker(deps.RedisClient, deps.Config.Tracking.TTL),
	}
}

func buildVerifier(cfg config.GeofenceConfig) *geo.Verifier {
	return geo.MustNewVerifier(geo.VerifierOptions{
		HighRadiusMeters:   cfg.HighRadiusMeters,
		MediumRadiusMeters: cfg.MediumRadiusMeters,
		MaxRadiusMeters:    cfg.MaxRadiusMeters,
		AccuracyWarnMeters: cfg.AccuracyWarnMeters,
	})
}

// NewServices wires repositories, the verifier, the event bus and the
// collaborator adapters into the service layer.
func NewServices(deps *ServiceDeps) ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repos := buildRepositories(deps)
	bus := event.NewBus()
	notifier := NewLogNotifier(logger)
	payments := NewLogPaymentProvider(logger)

	jobs := service.MustNewJobService(service.JobServiceOptions{
		JobRepo:  repos.JobRepo,
		Verifier: buildVerifier(deps.Config.Geofence),
		Tracker:  repos.Tracker,
		Bus:      bus,
		Notifier: notifier,
		Payments: payments,
		Logger:   logger,
	})

	apps := service.MustNewApplicationService(service.ApplicationServiceOptions{
		AppRepo:  repos.AppRepo,
		JobRepo:  repos.JobRepo,
		Bus:      bus,
		Notifier: notifier,
		Logger:   logger,
	})

	checklist := service.MustNewChecklistService(service.ChecklistServiceOptions{
		TaskRepo: repos.TaskRepo,
		JobRepo:  repos.JobRepo,
		Logger:   logger,
	})

	completion := service.MustNewCompletionService(service.CompletionServiceOptions{
		CompletionRepo: repos.CompletionRepo,
		JobRepo:        repos.JobRepo,
		TaskRepo:       repos.TaskRepo,
		Bus:            bus,
		Notifier:       notifier,
		Logger:         logger,
	})

	container := ServiceContainer{
		Jobs:         jobs,
		Applications: apps,
		Checklist:    checklist,
		Completion:   completion,
		Bus:          bus,
	}

	if deps.Config.Payments.AutoCapture {
		container.captureDone = startPaymentCapture(bus, jobs, logger)
	} else {
		logger.Info("payment auto capture disabled; waiting on external capture")
	}

	return container
}

// startPaymentCapture subscribes to completed jobs and kicks each one into
// payment capture. The subscription ends when the bus stops; the returned
// channel closes once the loop drains.
func startPaymentCapture(bus *event.Bus, jobs *service.JobService, logger *slog.Logger) <-chan struct{} {
	_, events := bus.Subscribe(event.KindJobCompleted)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for e := range events {
			ctx := context.Background()
			if _, err := jobs.BeginPaymentCapture(ctx, e.JobID); err != nil {
				logger.ErrorContext(ctx, "payment capture failed",
					"job_id", e.JobID,
					"event_id", e.ID,
					"error", err,
				)
			}
		}
	}()

	return done
}
