package service

import (
	"fmt"

	"proptrust/internal/model"
)

// workflow.go — trust account state machine.
// OPEN → SETTLED → CLOSED, strictly forward. OPEN → SETTLED fires implicitly
// on the first settlement calculation; SETTLED → CLOSED only via an explicit
// close with a lock reason.

var workflowTransitions = map[string]string{
	model.StatusOpen:    model.StatusSettled,
	model.StatusSettled: model.StatusClosed,
}

// ValidateTransition returns ErrInvalidWorkflowTransition unless from → to is
// a legal forward move. Self-transitions are rejected too: closing an already
// CLOSED account is an error, never a silent no-op.
func ValidateTransition(from, to string) error {
	if next, ok := workflowTransitions[from]; ok && next == to {
		return nil
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidWorkflowTransition, from, to)
}
