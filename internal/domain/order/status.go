package order

import "fmt"

// InvalidTransitionError indicates a requested status change is not allowed
// by the order lifecycle.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// next maps each status to the statuses reachable from it. Cancellation is
// reachable from every non-terminal status. A status can always transition
// to itself, which makes status updates idempotent.
var next = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s Status) bool {
	_, ok := next[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}
