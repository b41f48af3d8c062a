package booking

import (
	"fmt"

	"github.com/clinlix/service-booking/pkg/domain"
)

// JobStatus is the fine-grained operational state of a booking's fulfillment.
// It is the authoritative status; the coarse Status is a pure projection of it.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusConfirmed JobStatus = "confirmed"
	JobStatusOnTheWay  JobStatus = "on_the_way"
	JobStatusArrived   JobStatus = "arrived"
	JobStatusStarted   JobStatus = "started"
	JobStatusCompleted JobStatus = "completed"
	JobStatusDeclined  JobStatus = "declined"
	JobStatusCancelled JobStatus = "cancelled"
)

// Status is the coarse booking status derived from JobStatus. It exists for
// query and API compatibility and is never written independently.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
)

// validTransitions defines the forward state machine for job status changes.
// Cancellation is not part of the forward graph; it is permitted from any
// non-terminal state through the cancellation path.
var validTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:   {JobStatusConfirmed, JobStatusDeclined},
	JobStatusConfirmed: {JobStatusOnTheWay},
	JobStatusOnTheWay:  {JobStatusArrived},
	JobStatusArrived:   {JobStatusStarted},
	JobStatusStarted:   {JobStatusCompleted},
	JobStatusCompleted: {},
	JobStatusDeclined:  {},
	JobStatusCancelled: {},
}

// IsValid returns true if the status is a recognized job status.
func (s JobStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if the forward graph allows moving from this
// status to the target.
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// NextStates returns the legal successors of this status in the forward graph.
func (s JobStatus) NextStates() []JobStatus {
	allowed := validTransitions[s]
	out := make([]JobStatus, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal returns true if no further transitions, including cancellation,
// are possible from this status.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusDeclined, JobStatusCancelled:
		return true
	}
	return false
}

// CanBeCancelled returns true if the cancellation path is open from this status.
func (s JobStatus) CanBeCancelled() bool {
	return s.IsValid() && !s.IsTerminal()
}

// Coarse projects the fine-grained job status onto the coarse status enum.
// A completed job stays coarse-confirmed: the coarse enum has no completed member.
func (s JobStatus) Coarse() Status {
	switch s {
	case JobStatusPending:
		return StatusPending
	case JobStatusDeclined:
		return StatusDeclined
	case JobStatusCancelled:
		return StatusCancelled
	default:
		return StatusConfirmed
	}
}

// String returns the string representation of the status.
func (s JobStatus) String() string {
	return string(s)
}

// ParseJobStatus converts a string to a JobStatus, returning an error if invalid.
func ParseJobStatus(s string) (JobStatus, error) {
	status := JobStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid job status: %s", s)
	}
	return status, nil
}

// ValidateTransition checks a requested forward transition against the graph,
// returning the coded error with the set of legal successors on failure.
func ValidateTransition(current, requested JobStatus) error {
	if current.CanTransitionTo(requested) {
		return nil
	}
	allowed := validTransitions[current]
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return domain.NewInvalidTransitionError(string(current), string(requested), names)
}
