package distance

import (
	"github.com/tseval/tseval/eval"
)

// pairKey identifies an ordered series pair by pointer identity. Value
// equality is deliberately not used: splits share series by pointer, so
// identity is stable for the lifetime of an evaluation.
type pairKey struct {
	a, b *eval.TimeSeries
}

// memoizer is the optional distance cache embedded by every kernel. It
// maintains the symmetric invariant memo(a,b) = memo(b,a) by storing both
// orientations of each pair.
//
// Not thread-safe: parallel paths give each worker its own kernel copy
// (with its own memoizer) instead of sharing one.
type memoizer struct {
	storing bool
	entries map[pairKey]float64
}

func newMemoizer(storing bool) memoizer {
	return memoizer{storing: storing}
}

// cached returns the stored distance for (a, b) in either orientation.
func (m *memoizer) cached(a, b *eval.TimeSeries) (float64, bool) {
	if !m.storing || m.entries == nil {
		return 0, false
	}
	v, ok := m.entries[pairKey{a, b}]
	return v, ok
}

// remember stores the distance under both (a, b) and (b, a).
func (m *memoizer) remember(a, b *eval.TimeSeries, v float64) {
	if !m.storing {
		return
	}
	if m.entries == nil {
		m.entries = make(map[pairKey]float64)
	}
	m.entries[pairKey{a, b}] = v
	m.entries[pairKey{b, a}] = v
}

// ClearMemo discards all cached distances.
func (m *memoizer) ClearMemo() {
	m.entries = nil
}

// SetMemoizing toggles the cache. Disabling drops the current entries.
func (m *memoizer) SetMemoizing(on bool) {
	m.storing = on
	if !on {
		m.entries = nil
	}
}

// Memoizing reports whether the cache is enabled.
func (m *memoizer) Memoizing() bool { return m.storing }

// fresh returns an empty memoizer with the same storing flag, for copies.
func (m *memoizer) fresh() memoizer {
	return memoizer{storing: m.storing}
}
