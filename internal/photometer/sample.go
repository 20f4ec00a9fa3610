package photometer

import "math"

// Direction tells which side of the true illuminance a sample bounds.
type Direction int

const (
	// LowerBound means the true illuminance is at or above the sample value.
	LowerBound Direction = iota
	// UpperBound means the true illuminance is at or below the sample value.
	UpperBound
)

func (d Direction) String() string {
	if d == UpperBound {
		return "upper"
	}
	return "lower"
}

// Sample is one bound observation: "the illuminance is above/below Value,
// valid from Start (inclusive) until End (exclusive), with Confidence".
// Samples are immutable values; the tracker owns them once consumed.
type Sample struct {
	Start      float64   // arrival time, monotonic seconds
	End        float64   // expiry time, exclusive
	Direction  Direction // which side of the true value this bounds
	Value      float64   // lux
	Clear      bool      // flush all prior samples on ingestion
	Confidence uint8     // 0-3
}

// The universal bounds stand in for "no information". They are ordinary
// samples with degenerate always-true validity so the estimate fold needs
// no special cases, and they make the idle estimate (0+100klx)/2 = 50 klx.
var (
	universalLower = Sample{
		Start:     -math.MaxFloat64,
		End:       math.MaxFloat64,
		Direction: LowerBound,
		Value:     0,
	}
	universalUpper = Sample{
		Start:     -math.MaxFloat64,
		End:       math.MaxFloat64,
		Direction: UpperBound,
		Value:     100e3,
	}
)

// Conflicts reports whether s and other make contradictory claims: an upper
// bound asserting the value is below something a lower bound asserts it is
// above. Same-direction samples never conflict.
func (s Sample) Conflicts(other Sample) bool {
	return (s.Direction == UpperBound && other.Direction == LowerBound && s.Value < other.Value) ||
		(s.Direction == LowerBound && other.Direction == UpperBound && s.Value > other.Value)
}

// IsSupersetOf reports whether s already guarantees everything other would,
// for at least as long: same direction, s outlives other, and s's bound is
// at least as tight. A sample subsumed this way is redundant.
func (s Sample) IsSupersetOf(other Sample) bool {
	if s.End < other.End {
		return false
	}
	return (s.Direction == UpperBound && other.Direction == UpperBound && s.Value <= other.Value) ||
		(s.Direction == LowerBound && other.Direction == LowerBound && s.Value >= other.Value)
}

// Overrides resolves a conflict between s and other: higher confidence wins,
// equal confidence goes to the earlier Start. First reported wins on a tie;
// that is the sensor's contract, intentionally not "newest wins".
// Non-conflicting samples coexist and never override each other.
func (s Sample) Overrides(other Sample) bool {
	if !s.Conflicts(other) {
		return false
	}
	return s.Confidence > other.Confidence ||
		(s.Confidence == other.Confidence && s.Start < other.Start)
}

// resolveLower narrows a running lower bound, keeping the greater value.
func resolveLower(a, b Sample) Sample {
	if a.Value > b.Value {
		return a
	}
	return b
}

// resolveUpper narrows a running upper bound, keeping the lesser value.
func resolveUpper(a, b Sample) Sample {
	if a.Value < b.Value {
		return a
	}
	return b
}
