package domain

import (
	"fmt"
	"slices"
)

// transitions maps a status to the statuses directly reachable from it.
// A status without outgoing edges is terminal.
type transitions[S ~string] map[S][]S

func (t transitions[S]) allows(from, to S) bool {
	return slices.Contains(t[from], to)
}

func (t transitions[S]) terminal(s S) bool {
	return len(t[s]) == 0
}

// TransitionError describes a rejected status change.
func TransitionError[S ~string](entity string, from, to S) error {
	return fmt.Errorf("%w: %s cannot move from %s to %s", ErrInvalidTransition, entity, from, to)
}
