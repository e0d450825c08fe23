// Package event defines the typed domain events the lifecycle engine emits
// after committed transitions, and an in-process bus collaborators subscribe
// to. The source system cross-communicated through ad-hoc stringly global
// events; here every event is a typed value on an explicit topic.
package event

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a domain event topic.
type Kind string

const (
	// KindJobPosted fires when a poster creates a job.
	KindJobPosted Kind = "job_posted"
	// KindApplicationSubmitted fires when a worker applies.
	KindApplicationSubmitted Kind = "application_submitted"
	// KindApplicationRejected fires when the poster declines an application.
	KindApplicationRejected Kind = "application_rejected"
	// KindJobAssigned fires when an application is accepted and the job assigned.
	KindJobAssigned Kind = "job_assigned"
	// KindJobStarted fires when the worker passes the location gate.
	KindJobStarted Kind = "job_started"
	// KindWorkerLocationUpdated fires on accepted tracking snapshots.
	KindWorkerLocationUpdated Kind = "worker_location_updated"
	// KindCompletionRequested fires when one party asks to finish the job.
	KindCompletionRequested Kind = "completion_requested"
	// KindJobCompleted fires when a job reaches completed.
	KindJobCompleted Kind = "job_completed"
	// KindJobCanceled fires when a job is canceled.
	KindJobCanceled Kind = "job_canceled"
	// KindPaymentPending fires when payment capture is initiated.
	KindPaymentPending Kind = "payment_pending"
	// KindPaymentSettled fires when the payment collaborator reports success
	// and the job settles back to completed for good.
	KindPaymentSettled Kind = "payment_settled"
	// KindPaymentFailed fires when the payment collaborator reports failure.
	KindPaymentFailed Kind = "payment_failed"
)

// Event is a committed domain fact. Payload fields are identifiers only;
// subscribers re-read current state if they need more.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	JobID      string    `json:"job_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	SubjectID  string    `json:"subject_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// subscriberBuffer bounds each subscription channel. Publishing never blocks:
// a subscriber that falls this far behind starts dropping events.
const subscriberBuffer = 16

// Bus fans committed events out to subscribers. Publish is non-blocking and
// best-effort: a slow subscriber can never stall a job transition.
type Bus struct {
	mu     sync.Mutex
	subs   map[Kind]map[chan Event]struct{}
	closed bool
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Kind]map[chan Event]struct{})}
}

// Subscribe registers interest in a single event kind. It returns an
// unsubscribe function and the receive channel. The channel is closed on
// unsubscribe and on StopAll.
func (b *Bus) Subscribe(kind Kind) (func(), <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return func() {}, ch
	}

	if b.subs[kind] == nil {
		b.subs[kind] = make(map[chan Event]struct{})
	}
	b.subs[kind][ch] = struct{}{}

	unsub := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subscribers := b.subs[kind]
		if subscribers == nil {
			return
		}
		if _, ok := subscribers[ch]; !ok {
			return
		}
		delete(subscribers, ch)
		drainAndClose(ch)
		if len(subscribers) == 0 {
			delete(b.subs, kind)
		}
	}

	return unsub, ch
}

// Publish delivers the event to every current subscriber of its kind without
// blocking. Events published after StopAll are dropped.
func (b *Bus) Publish(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for ch := range b.subs[e.Kind] {
		select {
		case ch <- e:
		default:
		}
	}
}

// StopAll closes every subscription. Used during graceful shutdown.
func (b *Bus) StopAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for kind, subscribers := range b.subs {
		for ch := range subscribers {
			drainAndClose(ch)
		}
		delete(b.subs, kind)
	}
}

// drainAndClose removes any buffered events before closing the channel so
// receivers observe a closed channel immediately.
func drainAndClose(ch chan Event) {
	for {
		select {
		case <-ch:
		default:
			close(ch)
			return
		}
	}
}
