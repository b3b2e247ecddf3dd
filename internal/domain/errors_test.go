package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", &NotFoundError{Message: "agent not found"}, ErrNotFound},
		{"precondition", &PreconditionError{Message: "no current input"}, ErrPrecondition},
		{"conflict", &ConflictError{Message: "agent exists", ResourceType: "agent", ResourceID: "a1"}, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%T, sentinel) = false, want true", tt.err)
			}
			wrapped := fmt.Errorf("service layer: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(wrapped %T, sentinel) = false, want true", tt.err)
			}
		})
	}
}

func TestNotFoundErrorDoesNotMatchOtherSentinels(t *testing.T) {
	err := &NotFoundError{Message: "missing"}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrPrecondition) {
		t.Error("NotFoundError matched an unrelated sentinel")
	}
}
