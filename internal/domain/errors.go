package domain

import "fmt"

// ValidationError reports an invalid field in an order submission. It is
// returned before any matcher state is touched — a submission that fails
// validation has no side effects.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InvariantViolation signals corrupted matcher state or a desynchronized
// caller: an aggregated level underflow, a private-book lookup miss, or a
// cross-side price comparison. These are fatal — the views no longer agree
// with the priority book and continuing risks further corruption — so they
// are raised via panic rather than returned.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
}
