// Package photometer tracks bound updates from a relative photometer and
// synthesizes a running illuminance estimate from them.
//
// The sensor never reports a direct measurement. It emits expiring, signed
// bound samples ("the value is above/below X for the next N seconds, with
// confidence C"), and the host folds every currently valid, non-overridden
// sample into the tightest [lower, upper] interval it can defend, reporting
// the midpoint. The package is self-contained and free of I/O; callers
// supply raw frames plus monotonic timestamps and must serialize access to
// a Tracker externally.
package photometer

import "sort"

// boundSet holds same-direction samples ordered by End ascending, so bulk
// eviction of everything expired at a given time is a prefix cut.
type boundSet struct {
	samples []Sample
}

// insert places s keeping End order. Relative order among equal End values
// does not matter.
func (b *boundSet) insert(s Sample) {
	i := sort.Search(len(b.samples), func(i int) bool { return b.samples[i].End > s.End })
	b.samples = append(b.samples, Sample{})
	copy(b.samples[i+1:], b.samples[i:])
	b.samples[i] = s
}

// evict drops every sample with End <= now. Validity is the half-open
// interval [Start, End), so a sample expiring exactly at now is gone.
func (b *boundSet) evict(now float64) {
	i := sort.Search(len(b.samples), func(i int) bool { return b.samples[i].End > now })
	if i > 0 {
		b.samples = append(b.samples[:0], b.samples[i:]...)
	}
}

// validAt returns the samples still live at now, without mutating the set.
func (b *boundSet) validAt(now float64) []Sample {
	i := sort.Search(len(b.samples), func(i int) bool { return b.samples[i].End > now })
	return b.samples[i:]
}

// hasSuperset reports whether an already held sample subsumes s.
func (b *boundSet) hasSuperset(s Sample) bool {
	for _, held := range b.samples {
		if held.IsSupersetOf(s) {
			return true
		}
	}
	return false
}

func (b *boundSet) clear() {
	b.samples = b.samples[:0]
}

// Tracker is the bound-tracking estimator. It keeps two independent
// collections of active samples, one per direction, and answers point-in-time
// estimate queries against them. The zero value is ready to use; NewTracker
// exists for symmetry with the rest of the codebase.
//
// Callers must present non-decreasing timestamps across Ingest calls on one
// Tracker. The tracker does not enforce this: out-of-order input is not an
// error, it just follows the literal eviction and override rules.
type Tracker struct {
	lower boundSet
	upper boundSet
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Ingest decodes a raw 2-byte frame received at monotonic time now and folds
// it into the tracker. This is the primary live ingestion entry point.
func (t *Tracker) Ingest(now float64, frame [FrameSize]byte) {
	t.Consume(Decode(now, frame))
}

// Consume folds an already decoded sample into the tracker.
//
// A clearing sample flushes both collections first but is itself still
// admitted. Otherwise ingestion evicts everything expired as of the sample's
// Start, then inserts into the collection for its direction unless a held
// sample already subsumes it. Cross-direction conflicts are left in place
// and resolved lazily at query time.
func (t *Tracker) Consume(s Sample) {
	if s.Clear {
		t.lower.clear()
		t.upper.clear()
	} else {
		t.lower.evict(s.Start)
		t.upper.evict(s.Start)
	}

	target := &t.lower
	if s.Direction == UpperBound {
		target = &t.upper
	}
	if !target.hasSuperset(s) {
		target.insert(s)
	}
}

// Lower returns the effective lower bound treating every held sample as
// valid, regardless of expiry.
func (t *Tracker) Lower() float64 {
	return effectiveLower(t.lower.samples, t.upper.samples)
}

// Upper returns the effective upper bound treating every held sample as
// valid, regardless of expiry.
func (t *Tracker) Upper() float64 {
	return effectiveUpper(t.lower.samples, t.upper.samples)
}

// BoundsAt returns the effective lower and upper bounds as of now,
// considering only samples with End > now.
func (t *Tracker) BoundsAt(now float64) (lower, upper float64) {
	lowerSet := t.lower.validAt(now)
	upperSet := t.upper.validAt(now)
	return effectiveLower(lowerSet, upperSet), effectiveUpper(lowerSet, upperSet)
}

// Estimate returns the midpoint of the effective bounds treating every held
// sample as valid, regardless of expiry. An empty tracker reports 50 klx.
func (t *Tracker) Estimate() float64 {
	return 0.5 * (t.Lower() + t.Upper())
}

// EstimateAt returns the midpoint of the effective bounds as of now. The
// walk filters on a snapshot; held samples are not mutated or evicted by a
// query.
func (t *Tracker) EstimateAt(now float64) float64 {
	lower, upper := t.BoundsAt(now)
	return 0.5 * (lower + upper)
}

// Size reports the number of samples currently held across both collections.
func (t *Tracker) Size() int {
	return len(t.lower.samples) + len(t.upper.samples)
}

// effectiveLower folds every lower-bound sample not overridden by a
// conflicting upper-bound sample into the tightest lower bound, starting
// from the universal lower sentinel.
//
// The nested scan is O(|lower|*|upper|). Active sample counts are bounded by
// arrival rate times the maximum horizon, so this stays small in practice; a
// frontier index would be faster but must preserve the exact override and
// tie-break semantics.
func effectiveLower(lowerSet, upperSet []Sample) float64 {
	effective := universalLower
	for _, l := range lowerSet {
		overridden := false
		for _, u := range upperSet {
			if u.Overrides(l) {
				overridden = true
				break
			}
		}
		if !overridden {
			effective = resolveLower(effective, l)
		}
	}
	return effective.Value
}

// effectiveUpper is the mirror image of effectiveLower.
func effectiveUpper(lowerSet, upperSet []Sample) float64 {
	effective := universalUpper
	for _, u := range upperSet {
		overridden := false
		for _, l := range lowerSet {
			if l.Overrides(u) {
				overridden = true
				break
			}
		}
		if !overridden {
			effective = resolveUpper(effective, u)
		}
	}
	return effective.Value
}
