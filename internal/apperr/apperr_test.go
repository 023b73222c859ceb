package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", Validation("quantity must be positive"), KindValidation},
		{"wrapped", fmt.Errorf("creating transfer: %w", NotFound("base %d not found", 4)), KindNotFound},
		{"untyped", errors.New("disk I/O error"), KindTransient},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("%s: KindOf() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestIsMatchesKindSentinel(t *testing.T) {
	err := fmt.Errorf("completing: %w", Insufficient("have %d, need %d", 2, 5))

	if !errors.Is(err, ErrInsufficientInventory) {
		t.Error("expected errors.Is to match insufficient inventory sentinel")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("did not expect validation sentinel to match")
	}
}

func TestWrap(t *testing.T) {
	if Wrap("x", nil) != nil {
		t.Error("expected nil for nil error")
	}

	typed := Unauthorized("viewer cannot create purchases")
	if got := Wrap("creating purchase", typed); got != typed {
		t.Errorf("expected typed error to pass through, got %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Wrap("loading movements", ctx.Err())
	if KindOf(err) != KindTransient {
		t.Errorf("expected transient for canceled context, got %q", KindOf(err))
	}
	var e *Error
	if !errors.As(err, &e) || !e.Retryable() {
		t.Error("expected retryable transient error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("expected wrapped error to keep context.Canceled")
	}
}
