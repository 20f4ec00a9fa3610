package photometer

import "testing"

func lowerAt(start, end, value float64, conf uint8) Sample {
	return Sample{Start: start, End: end, Direction: LowerBound, Value: value, Confidence: conf}
}

func upperAt(start, end, value float64, conf uint8) Sample {
	return Sample{Start: start, End: end, Direction: UpperBound, Value: value, Confidence: conf}
}

func TestSample_Conflicts(t *testing.T) {
	lower := lowerAt(1, 2, 40e3, 0)

	if !upperAt(1, 2, 20e3, 0).Conflicts(lower) {
		t.Fatalf("upper 20k should conflict with lower 40k")
	}
	if !lower.Conflicts(upperAt(1, 2, 20e3, 0)) {
		t.Fatalf("conflict should be symmetric")
	}
	if upperAt(1, 2, 60e3, 0).Conflicts(lower) {
		t.Fatalf("upper 60k does not contradict lower 40k")
	}
	if lowerAt(1, 2, 90e3, 0).Conflicts(lower) {
		t.Fatalf("same-direction samples never conflict")
	}
}

func TestSample_IsSupersetOf(t *testing.T) {
	held := upperAt(1.1, 1.5, 40e3, 0)

	if !held.IsSupersetOf(upperAt(1.2, 1.4, 45e3, 0)) {
		t.Fatalf("longer-lived, tighter upper bound should subsume")
	}
	if held.IsSupersetOf(upperAt(1.2, 1.6, 45e3, 0)) {
		t.Fatalf("shorter-lived sample cannot subsume a longer one")
	}
	if held.IsSupersetOf(upperAt(1.2, 1.4, 35e3, 0)) {
		t.Fatalf("looser upper bound cannot subsume a tighter one")
	}
	if held.IsSupersetOf(lowerAt(1.2, 1.4, 45e3, 0)) {
		t.Fatalf("superset never applies across directions")
	}

	heldLower := lowerAt(1.1, 1.5, 40e3, 0)
	if !heldLower.IsSupersetOf(lowerAt(1.2, 1.4, 35e3, 0)) {
		t.Fatalf("greater lower bound should subsume a lesser one")
	}
	if heldLower.IsSupersetOf(lowerAt(1.2, 1.4, 45e3, 0)) {
		t.Fatalf("lesser lower bound cannot subsume a greater one")
	}
}

func TestSample_Overrides(t *testing.T) {
	lower := lowerAt(1.0, 2.0, 40e3, 0)

	// Higher confidence wins a conflict.
	if !upperAt(1.0, 1.5, 20e3, 1).Overrides(lower) {
		t.Fatalf("higher-confidence conflicting sample should override")
	}
	if lower.Overrides(upperAt(1.0, 1.5, 20e3, 1)) {
		t.Fatalf("lower-confidence sample must not override")
	}

	// Equal confidence: earlier start wins, regardless of ingestion order.
	early := lowerAt(1.0, 2.0, 60e3, 2)
	late := upperAt(1.1, 2.0, 30e3, 2)
	if !early.Overrides(late) {
		t.Fatalf("earlier start should win the confidence tie")
	}
	if late.Overrides(early) {
		t.Fatalf("later start must not win the confidence tie")
	}

	// No conflict, no override.
	if upperAt(1.0, 1.5, 90e3, 3).Overrides(lower) {
		t.Fatalf("non-conflicting samples never override")
	}
}
