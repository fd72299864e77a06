package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same sentinel",
			err:    ErrOrderNotFound,
			target: ErrOrderNotFound,
			want:   true,
		},
		{
			name:   "wrapped not found matches generic kind",
			err:    fmt.Errorf("load order: %w", ErrOrderNotFound),
			target: ErrNotFound,
			want:   true,
		},
		{
			name:   "different messages of the same kind",
			err:    ErrOrderNotFound,
			target: ErrProductNotFound,
			want:   false,
		},
		{
			name:   "invalid request with message",
			err:    Invalid("Name is required"),
			target: ErrInvalidRequest,
			want:   true,
		},
		{
			name:   "different kind",
			err:    ErrUnauthorized,
			target: ErrUnauthenticated,
			want:   false,
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			target: ErrInternal,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "invalid", err: Invalid("x"), want: KindInvalidRequest},
		{name: "wrapped unauthorized", err: fmt.Errorf("guard: %w", ErrUnauthorized), want: KindUnauthorized},
		{name: "signature", err: SignatureInvalid(errors.New("bad header")), want: KindSignatureInvalid},
		{name: "plain error", err: errors.New("db down"), want: KindInternal},
		{name: "internal wrapping not found", err: Internal(ErrOrderNotFound), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageOf_HidesInternalDetails(t *testing.T) {
	if got := MessageOf(errors.New("pq: connection refused")); got != "Internal error" {
		t.Fatalf("unexpected message for plain error: %q", got)
	}
	if got := MessageOf(Internal(errors.New("secret"))); got != "Internal error" {
		t.Fatalf("unexpected message for internal error: %q", got)
	}
	if got := MessageOf(SignatureInvalid(errors.New("no signatures found"))); got != "Webhook Error: no signatures found" {
		t.Fatalf("unexpected signature message: %q", got)
	}
	if got := MessageOf(ErrProductsUnavailable); got != "Some of the products are no longer available." {
		t.Fatalf("unexpected products message: %q", got)
	}
}

func TestIsIdempotencyConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "idempotency already exists", err: ErrIdempotencyKeyAlreadyExists, want: true},
		{name: "idempotency hash mismatch", err: ErrIdempotencyHashMismatch, want: true},
		{name: "wrapped idempotency conflict", err: errors.Join(ErrIdempotencyHashMismatch, errors.New("extra context")), want: true},
		{name: "non idempotency error", err: ErrOrderNotFound, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsIdempotencyConflict(tt.err); got != tt.want {
				t.Errorf("IsIdempotencyConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}
