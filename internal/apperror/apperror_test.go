package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsChains(t *testing.T) {
	base := Wrap(KindExecutionFailed, "query failed", errors.New("pq: boom"))
	wrapped := fmt.Errorf("stage failed: %w", base)

	if got := KindOf(wrapped); got != KindExecutionFailed {
		t.Errorf("KindOf = %v, want %v", got, KindExecutionFailed)
	}
	if got := MessageOf(wrapped); got != "query failed" {
		t.Errorf("MessageOf = %q", got)
	}
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	err := errors.New("plain")

	if got := KindOf(err); got != KindInternal {
		t.Errorf("KindOf = %v, want %v", got, KindInternal)
	}
	if got := MessageOf(err); got != "internal server error" {
		t.Errorf("MessageOf = %q", got)
	}
	if got := ReasonOf(err); got != ReasonNone {
		t.Errorf("ReasonOf = %v, want none", got)
	}
}

func TestWithReason(t *testing.T) {
	err := WithReason(KindExecutionFailed, ReasonTimeout, "query timed out", errors.New("deadline"))

	if got := ReasonOf(err); got != ReasonTimeout {
		t.Errorf("ReasonOf = %v, want %v", got, ReasonTimeout)
	}
	if !errors.Is(err, err.Err) {
		t.Error("wrapped error must stay reachable through the chain")
	}
}
