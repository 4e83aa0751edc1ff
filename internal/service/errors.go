package service

import "errors"

// Domain error kinds. Handlers map these to structured API responses; none of
// them is ever swallowed inside the service layer.
var (
	// ErrAccountLocked: mutation attempted on a CLOSED, locked account.
	ErrAccountLocked = errors.New("trust account is closed and locked")
	// ErrInvalidEntry: malformed ledger entry (both or neither side set, or a
	// negative amount).
	ErrInvalidEntry = errors.New("ledger entry must set exactly one non-negative side")
	// ErrNoSettlement: tax application attempted before any settlement
	// calculation.
	ErrNoSettlement = errors.New("no settlement has been calculated for this trust account")
	// ErrInvalidWorkflowTransition: illegal state move (e.g. CLOSED → OPEN).
	ErrInvalidWorkflowTransition = errors.New("invalid workflow transition")
	// ErrNotFound: unknown trust account or property.
	ErrNotFound = errors.New("not found")
	// ErrConcurrencyConflict: lost the per-account append race. The service
	// retries a bounded number of times before surfacing this to the caller.
	ErrConcurrencyConflict = errors.New("concurrent update on trust account, retry")
)
