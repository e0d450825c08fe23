// Package mocks provides mock implementations for testing the quickgig lifecycle engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository and collaborator interfaces. The generated files are checked
// in; regenerate after interface changes with:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/quickgig/quickgig-api/internal/core JobRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=application_repository_mock.go github.com/quickgig/quickgig-api/internal/core ApplicationRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=task_repository_mock.go github.com/quickgig/quickgig-api/internal/core TaskRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=completion_repository_mock.go github.com/quickgig/quickgig-api/internal/core CompletionRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=location_tracker_mock.go github.com/quickgig/quickgig-api/internal/core LocationTracker

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=collaborators_mock.go github.com/quickgig/quickgig-api/internal/ports Notifier,PaymentProvider
