// Package job holds the pure lifecycle policy for jobs: who may move a job
// from one status to another. Guards that need data (geofencing, checklists,
// application state) live with the services; this package only answers the
// role/status question and never touches storage.
package job

import (
	"github.com/quickgig/quickgig-api/internal/domain/model"
)

// Actor is the kind of party attempting a transition.
type Actor string

const (
	// ActorPoster is the job owner.
	ActorPoster Actor = "poster"
	// ActorWorker is the assigned (or applying) worker.
	ActorWorker Actor = "worker"
	// ActorSystem is the engine itself (payment initiation).
	ActorSystem Actor = "system"
	// ActorPayment is the external payment collaborator reporting a result.
	ActorPayment Actor = "payment"
)

// Transition is a from/to status pair.
type Transition struct {
	From model.JobStatus
	To   model.JobStatus
}

// ActorsFor returns the actors permitted to perform the transition. A nil
// result means the transition does not exist for anyone: this is the
// canonical transition table.
func ActorsFor(t Transition) []Actor {
	switch t.From {
	case model.JobStatusOpen:
		switch t.To {
		case model.JobStatusAssigned:
			return []Actor{ActorPoster}
		case model.JobStatusCanceled:
			return []Actor{ActorPoster}
		}
	case model.JobStatusAssigned:
		switch t.To {
		case model.JobStatusInProgress:
			return []Actor{ActorWorker}
		case model.JobStatusCanceled:
			return []Actor{ActorPoster}
		}
	case model.JobStatusInProgress:
		switch t.To {
		case model.JobStatusCompleted:
			return []Actor{ActorWorker, ActorPoster}
		case model.JobStatusCanceled:
			// Mid-job cancellation is mutual-ish: either party can pull out.
			return []Actor{ActorPoster, ActorWorker}
		}
	case model.JobStatusCompleted:
		if t.To == model.JobStatusPendingPayment {
			return []Actor{ActorSystem}
		}
	case model.JobStatusPendingPayment:
		switch t.To {
		case model.JobStatusCompleted, model.JobStatusPaymentFailed:
			return []Actor{ActorPayment}
		}
	}
	return nil
}

// Allowed reports whether actor may move a job from one status to another.
func Allowed(t Transition, actor Actor) bool {
	for _, a := range ActorsFor(t) {
		if a == actor {
			return true
		}
	}
	return false
}

// Possible reports whether the transition exists for any actor.
func Possible(t Transition) bool {
	return ActorsFor(t) != nil
}

// Terminal reports whether a status has no outgoing transitions.
func Terminal(s model.JobStatus) bool {
	for _, to := range []model.JobStatus{
		model.JobStatusOpen, model.JobStatusAssigned, model.JobStatusInProgress,
		model.JobStatusCompleted, model.JobStatusCanceled,
		model.JobStatusPendingPayment, model.JobStatusPaymentFailed,
	} {
		if Possible(Transition{From: s, To: to}) {
			return false
		}
	}
	return true
}
