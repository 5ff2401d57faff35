package model

// Status is the lifecycle state of an access request. The transition table
// below is the single source of truth; services never compare raw strings.
type Status string

const (
	// StatusPending means the request awaits a team lead decision.
	StatusPending Status = "pending"
	// StatusApproved is the transient state held while an approved request
	// is being executed. It is never a resting state: execution commits
	// the row to executed or failed, or reverts it to pending when the
	// target was unreachable.
	StatusApproved Status = "approved"
	// StatusRejected is terminal; the team lead declined the request.
	StatusRejected Status = "rejected"
	// StatusExecuted is terminal; the query ran and a result was captured.
	StatusExecuted Status = "executed"
	// StatusFailed is terminal; the target store rejected the query.
	StatusFailed Status = "failed"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusExecuted, StatusFailed, StatusPending},
	StatusRejected: {},
	StatusExecuted: {},
	StatusFailed:   {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is permitted. A terminal
// request can only be resubmitted, which creates a new record.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the edge s -> target exists.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Resubmittable reports whether a request in this status may be used as the
// source of a resubmission: any terminal status except a successful
// execution.
func (s Status) Resubmittable() bool {
	return s.Terminal() && s != StatusExecuted
}
