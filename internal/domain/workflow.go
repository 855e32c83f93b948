// internal/domain/workflow.go
package domain

import "fmt"

// ApplicationStatus is a step in the hiring workflow.
type ApplicationStatus string

const (
	StatusSubmitted ApplicationStatus = "submitted"
	StatusReviewing ApplicationStatus = "reviewing"
	StatusInterview ApplicationStatus = "interview"
	StatusOffered   ApplicationStatus = "offered"
	StatusHired     ApplicationStatus = "hired"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted: {StatusReviewing, StatusRejected, StatusWithdrawn},
	StatusReviewing: {StatusInterview, StatusRejected, StatusWithdrawn},
	StatusInterview: {StatusOffered, StatusRejected},
	StatusOffered:   {StatusHired, StatusRejected},
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusReviewing, StatusInterview, StatusOffered,
		StatusHired, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s ApplicationStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransitionTo reports whether the workflow allows moving from s to next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition moves the application to next or returns an error wrapping
// ErrApplicationWorkflow.
func (a *Application) Transition(next ApplicationStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrApplicationWorkflow, next)
	}
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move from %q to %q", ErrApplicationWorkflow, a.Status, next)
	}
	a.Status = next
	return nil
}
