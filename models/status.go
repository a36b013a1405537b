package models

// Report lifecycle states, in progression order.
const (
	StatusSubmitted  = "submitted"
	StatusVerified   = "verified"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// statusRank orders the lifecycle. Higher rank means further along.
var statusRank = map[string]int{
	StatusSubmitted:  0,
	StatusVerified:   1,
	StatusAssigned:   2,
	StatusInProgress: 3,
	StatusResolved:   4,
	StatusClosed:     5,
}

// IsValidStatus reports whether s is a known lifecycle state.
func IsValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether a report may move from one status to another.
// Forward moves may skip states so staff can fast-track a report. Backward
// moves are permitted as corrections, except out of closed, which is
// terminal. A transition to the current status is not a transition.
func CanTransition(from, to string) bool {
	if !IsValidStatus(from) || !IsValidStatus(to) {
		return false
	}
	if from == to {
		return false
	}
	if from == StatusClosed {
		return false
	}
	return true
}

// MaxPriority is the escalation ceiling for report priority.
const MaxPriority = 5

// upvoteEscalationStep is how many upvotes buy one priority bump.
const upvoteEscalationStep = 5

// nextPriority returns the priority a report holds after its upvote count
// has reached upvotes. Priority rises by exactly one each time the count
// reaches a multiple of five, and never exceeds MaxPriority. This mirrors
// the escalation applied atomically in SQL by the storage layer.
func nextPriority(upvotes, priority int) int {
	if upvotes > 0 && upvotes%upvoteEscalationStep == 0 && priority < MaxPriority {
		return priority + 1
	}
	return priority
}
