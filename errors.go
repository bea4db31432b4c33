package img2pbn

import (
	"context"
	"fmt"
)

// ValidationError reports input that is rejected before any pipeline
// stage runs: an empty image, a non-positive cluster count, a malformed
// fixed palette. The pipeline never partially processes invalid input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

// validationErrorf builds a ValidationError from a format string.
func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConsistencyError reports a violated internal invariant: a border trace
// that fails to close, a grid cell referencing a dead facet, a shared
// segment with no reversed twin. These indicate a bug in adjacency
// bookkeeping and abort the whole pipeline run; downstream stages assume
// upstream invariants hold unconditionally.
type ConsistencyError struct {
	FacetID int
	X, Y    int
	Detail  string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency error: facet %d at (%d,%d): %s",
		e.FacetID, e.X, e.Y, e.Detail)
}

// consistencyErrorf builds a ConsistencyError with full context.
func consistencyErrorf(facetID, x, y int, format string, args ...interface{}) error {
	return &ConsistencyError{
		FacetID: facetID,
		X:       x,
		Y:       y,
		Detail:  fmt.Sprintf(format, args...),
	}
}

// checkCancel returns the context error if ctx has been cancelled.
// Stages call it between units of work so that cancellation never leaves
// a partially-mutated facet observable.
func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
