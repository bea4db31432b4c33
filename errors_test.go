package img2pbn

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := validationErrorf("cluster count must be positive, got %d", -3)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("%T does not unwrap to *ValidationError", err)
	}
	if !strings.Contains(err.Error(), "got -3") {
		t.Errorf("message %q lacks formatted detail", err.Error())
	}
}

func TestConsistencyError(t *testing.T) {
	err := consistencyErrorf(7, 3, 4, "border trace did not close after %d steps", 40)
	var ce *ConsistencyError
	if !errors.As(err, &ce) {
		t.Fatalf("%T does not unwrap to *ConsistencyError", err)
	}
	if ce.FacetID != 7 || ce.X != 3 || ce.Y != 4 {
		t.Errorf("context = facet %d at (%d,%d), want facet 7 at (3,4)", ce.FacetID, ce.X, ce.Y)
	}
	if !strings.Contains(err.Error(), "facet 7 at (3,4)") {
		t.Errorf("message %q lacks location context", err.Error())
	}
}

func TestCheckCancel(t *testing.T) {
	if err := checkCancel(context.Background()); err != nil {
		t.Errorf("live context reported %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := checkCancel(ctx); err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
