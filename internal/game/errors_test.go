package game

import (
	"errors"
	"fmt"
	"testing"
)

func TestReasonRoundTrip(t *testing.T) {
	for sentinel := range reasons {
		wrapped := fmt.Errorf("round 3: %w", sentinel)
		reason := Reason(wrapped)
		if got := FromReason(reason); !errors.Is(got, sentinel) {
			t.Errorf("%v: reason %q maps back to %v", sentinel, reason, got)
		}
	}
	if got := Reason(errors.New("boom")); got != "internal" {
		t.Errorf("expected internal, got %q", got)
	}
	if FromReason("internal") != nil {
		t.Error("expected nil for unknown reason")
	}
}
