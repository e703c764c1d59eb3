package safemath

import (
	"errors"
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	got, err := Add(40, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("sum mismatch: got %d", got)
	}

	if _, err := Add(math.MaxUint64, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := Add(math.MaxUint64, 0); err != nil {
		t.Fatalf("max+0 must not overflow: %v", err)
	}
}

func TestSub(t *testing.T) {
	got, err := Sub(42, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 40 {
		t.Fatalf("difference mismatch: got %d", got)
	}

	if _, err := Sub(1, 2); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
	if got, err := Sub(7, 7); err != nil || got != 0 {
		t.Fatalf("equal operands must yield zero: %d %v", got, err)
	}
}

func TestMul(t *testing.T) {
	got, err := Mul(6, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("product mismatch: got %d", got)
	}

	if _, err := Mul(math.MaxUint64, 2); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if got, err := Mul(math.MaxUint64, 0); err != nil || got != 0 {
		t.Fatalf("zero operand must short-circuit: %d %v", got, err)
	}
	if got, err := Mul(math.MaxUint64, 1); err != nil || got != math.MaxUint64 {
		t.Fatalf("identity multiply failed: %d %v", got, err)
	}
}

func TestDiv(t *testing.T) {
	got, err := Div(7, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3 {
		t.Fatalf("division must floor: got %d", got)
	}

	if _, err := Div(1, 0); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected divide-by-zero failure, got %v", err)
	}
}

func TestMulDiv(t *testing.T) {
	got, err := MulDiv(500, 1000, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 500 {
		t.Fatalf("muldiv mismatch: got %d", got)
	}

	got, err = MulDiv(10, 3, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4 {
		t.Fatalf("muldiv must floor 30/7: got %d", got)
	}

	if _, err := MulDiv(math.MaxUint64, 2, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected intermediate overflow, got %v", err)
	}
	if _, err := MulDiv(1, 1, 0); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected divide-by-zero failure, got %v", err)
	}
}
