package value

import "testing"

func TestQuantityRejectsNegative(t *testing.T) {
	if _, err := NewQuantityFromString("-1"); err != ErrNegativeQuantity {
		t.Fatalf("expected ErrNegativeQuantity, got %v", err)
	}
	if _, err := NewQuantityRaw(-1, 0); err != ErrNegativeQuantity {
		t.Fatalf("expected ErrNegativeQuantity, got %v", err)
	}
}

func TestQuantitySubRejectsNegativeResult(t *testing.T) {
	a, _ := NewQuantityFromString("5")
	b, _ := NewQuantityFromString("8")
	if _, err := a.Sub(b); err != ErrNegativeQuantity {
		t.Fatalf("expected ErrNegativeQuantity, got %v", err)
	}
}

func TestQuantityRoundTrip(t *testing.T) {
	q, err := NewQuantityFromString("10.500")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q2, err := NewQuantityFromString(q.String())
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if !q.Equal(q2) {
		t.Fatalf("round-trip mismatch: %s vs %s", q, q2)
	}
}

func TestQuantityAddSub(t *testing.T) {
	a, _ := NewQuantityFromString("4")
	b, _ := NewQuantityFromString("6")
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum.String() != "10" {
		t.Fatalf("expected 10, got %s", sum)
	}
	diff, err := sum.Sub(a)
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if !diff.Equal(b) {
		t.Fatalf("expected %s, got %s", b, diff)
	}
}
