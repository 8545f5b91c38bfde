package distance

import (
	"sync"

	"github.com/tseval/tseval/eval"
)

// itakuraKey identifies one precomputed set of per-row column bounds.
type itakuraKey struct {
	n, m int
	r    float64
	w    int
}

// itakuraBounds holds the inclusive [lo, hi] column range per DP row.
type itakuraBounds struct {
	lo, hi []int
}

// boundsCache shares parallelogram precomputations across kernel copies.
// Repeated calls over the same dataset pay the row scan once per
// (n, m, r, w) combination.
var boundsCache sync.Map // itakuraKey -> *itakuraBounds

// ItakuraDTW is DTW constrained to an Itakura parallelogram: the region
// lies between lines of slope 2 and 1/2 through both grid corners, with
// |i-j| further capped at the Sakoe-Chiba width max(w, ceil(r*len)). The
// region is symmetric in the two series. Both series must have the same
// length.
type ItakuraDTW struct {
	memoizer
	win window
}

// NewItakuraDTW creates an Itakura-constrained DTW kernel with relative
// width r in [0,1] and absolute minimum width w >= 0.
func NewItakuraDTW(r float64, w int, storing bool) (*ItakuraDTW, error) {
	win, err := newWindow(r, w)
	if err != nil {
		return nil, err
	}
	return &ItakuraDTW{memoizer: newMemoizer(storing), win: win}, nil
}

// RelativeWidth returns r.
func (d *ItakuraDTW) RelativeWidth() float64 { return d.win.r }

// SetRelativeWidth changes r, invalidating the memo.
func (d *ItakuraDTW) SetRelativeWidth(r float64) error {
	win, err := newWindow(r, d.win.w)
	if err != nil {
		return err
	}
	d.ClearMemo()
	d.win = win
	return nil
}

// SetAbsoluteWidth changes w, invalidating the memo.
func (d *ItakuraDTW) SetAbsoluteWidth(w int) error {
	win, err := newWindow(d.win.r, w)
	if err != nil {
		return err
	}
	d.ClearMemo()
	d.win = win
	return nil
}

// Distance implements eval.DistanceKernel.
func (d *ItakuraDTW) Distance(a, b *eval.TimeSeries) (float64, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, err
	}
	if v, ok := d.cached(a, b); ok {
		return v, nil
	}
	bounds := d.bounds(a.Len(), b.Len())
	v := bandedDTW(a.YValues(), b.YValues(), func(i, n int) (int, int) {
		return bounds.lo[i], bounds.hi[i]
	})
	d.remember(a, b, v)
	return v, nil
}

// Copy implements eval.Copyable.
func (d *ItakuraDTW) Copy(deep bool) eval.Copyable {
	return &ItakuraDTW{memoizer: d.fresh(), win: d.win}
}

// bounds returns (precomputing and caching on first use) the per-row
// column ranges of the parallelogram for an n x m grid.
func (d *ItakuraDTW) bounds(n, m int) *itakuraBounds {
	key := itakuraKey{n: n, m: m, r: d.win.r, w: d.win.w}
	if cached, ok := boundsCache.Load(key); ok {
		return cached.(*itakuraBounds)
	}
	capWidth := d.win.width(n)
	b := &itakuraBounds{lo: make([]int, n+1), hi: make([]int, n+1)}
	for i := 1; i <= n; i++ {
		// Slopes 2 and 1/2 through the (1,1) corner (j-1 <= 2(i-1),
		// i-1 <= 2(j-1)) and through the (n,n) corner (n-j <= 2(n-i),
		// n-i <= 2(n-j)), with |i-j| capped at capWidth. Every limit is
		// symmetric in i and j, so the region is too.
		b.lo[i] = max(1, i-capWidth, i/2+1, 2*i-n)
		b.hi[i] = min(n, i+capWidth, 2*i-1, n-(n-i+1)/2)
	}
	actual, _ := boundsCache.LoadOrStore(key, b)
	return actual.(*itakuraBounds)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var (
	_ eval.DistanceKernel = (*ItakuraDTW)(nil)
	_ eval.Copyable       = (*ItakuraDTW)(nil)
)
