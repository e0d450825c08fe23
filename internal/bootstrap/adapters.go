package bootstrap

import (
	"context"
	"log/slog"

	"github.com/quickgig/quickgig-api/internal/ports"
)

// logNotifier writes notifications to the structured log. It stands in for a
// push/SMS collaborator, which lives outside this service and consumes the
// same Notification shape.
type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier builds a Notifier that records deliveries in the log.
//
//nolint:ireturn // callers only need the port.
func NewLogNotifier(logger *slog.Logger) ports.Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(ctx context.Context, note ports.Notification) error {
	n.logger.InfoContext(ctx, "notification",
		"recipient_id", note.RecipientID,
		"job_id", note.JobID,
		"kind", note.Kind,
		"message", note.Message,
	)
	return nil
}

// logPaymentProvider acknowledges capture requests without charging anyone.
// The real provider reports its outcome through the payment result webhook;
// this stand-in leaves jobs parked in pending_payment until that arrives.
type logPaymentProvider struct {
	logger *slog.Logger
}

// NewLogPaymentProvider builds a PaymentProvider that only logs capture
// requests.
//
//nolint:ireturn // callers only need the port.
func NewLogPaymentProvider(logger *slog.Logger) ports.PaymentProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &logPaymentProvider{logger: logger}
}

func (p *logPaymentProvider) InitiateCapture(ctx context.Context, req ports.CaptureRequest) error {
	p.logger.InfoContext(ctx, "payment capture requested",
		"job_id", req.JobID,
		"poster_id", req.PosterID,
		"worker_id", req.WorkerID,
		"amount", req.Amount,
	)
	return nil
}
