// Package ports defines interfaces (hexagonal ports) for the external
// collaborators the lifecycle engine talks to but does not implement.
// Implementations live outside this repository; test doubles in internal/mocks.
package ports

import (
	"context"
)

// Notification is a best-effort message for a job participant.
type Notification struct {
	RecipientID string
	JobID       string
	Kind        string
	Message     string
}

// Notifier delivers notifications to users. Delivery is fire-and-forget:
// failures are logged by callers and never roll back a committed transition.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// CaptureRequest asks the payment collaborator to capture a job's payment.
type CaptureRequest struct {
	JobID    string
	PosterID string
	WorkerID string
	Amount   float64
}

// PaymentProvider initiates payment capture when a job enters
// pending_payment. The result comes back asynchronously through the engine's
// ReportPaymentResult callback; the engine never retries a charge itself.
type PaymentProvider interface {
	InitiateCapture(ctx context.Context, req CaptureRequest) error
}
