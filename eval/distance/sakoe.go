package distance

import (
	"math"

	"github.com/tseval/tseval/eval"
)

// SakoeChibaDTW is DTW constrained to the Sakoe-Chiba band |i-j| <= w.
// Both series must have the same length.
type SakoeChibaDTW struct {
	memoizer
	win window
}

// NewSakoeChibaDTW creates a band-constrained DTW kernel with relative
// width r in [0,1] and absolute minimum width w >= 0.
func NewSakoeChibaDTW(r float64, w int, storing bool) (*SakoeChibaDTW, error) {
	win, err := newWindow(r, w)
	if err != nil {
		return nil, err
	}
	return &SakoeChibaDTW{memoizer: newMemoizer(storing), win: win}, nil
}

// RelativeWidth returns r.
func (d *SakoeChibaDTW) RelativeWidth() float64 { return d.win.r }

// SetRelativeWidth changes r, invalidating the memo.
func (d *SakoeChibaDTW) SetRelativeWidth(r float64) error {
	win, err := newWindow(r, d.win.w)
	if err != nil {
		return err
	}
	d.ClearMemo()
	d.win = win
	return nil
}

// SetAbsoluteWidth changes w, invalidating the memo.
func (d *SakoeChibaDTW) SetAbsoluteWidth(w int) error {
	win, err := newWindow(d.win.r, w)
	if err != nil {
		return err
	}
	d.ClearMemo()
	d.win = win
	return nil
}

// Distance implements eval.DistanceKernel.
func (d *SakoeChibaDTW) Distance(a, b *eval.TimeSeries) (float64, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, err
	}
	if v, ok := d.cached(a, b); ok {
		return v, nil
	}
	v := bandedDTW(a.YValues(), b.YValues(), d.win.bounds)
	d.remember(a, b, v)
	return v, nil
}

// Copy implements eval.Copyable.
func (d *SakoeChibaDTW) Copy(deep bool) eval.Copyable {
	return &SakoeChibaDTW{memoizer: d.fresh(), win: d.win}
}

// bandedDTW runs the squared-delta DTW recurrence visiting only the
// columns boundsFn yields per row. Cells outside the band stay at +Inf so
// out-of-band paths can never be selected.
func bandedDTW(as, bs []float64, boundsFn func(i, n int) (int, int)) float64 {
	n := len(as)
	if n == 0 {
		return 0
	}
	inf := math.Inf(1)
	prev := make([]float64, n+1)
	cur := make([]float64, n+1)
	for j := 1; j <= n; j++ {
		prev[j] = inf
	}
	for i := 1; i <= n; i++ {
		for j := range cur {
			cur[j] = inf
		}
		lo, hi := boundsFn(i, n)
		for j := lo; j <= hi; j++ {
			delta := as[i-1] - bs[j-1]
			cur[j] = delta*delta + min3(prev[j], cur[j-1], prev[j-1])
		}
		prev, cur = cur, prev
	}
	return prev[n]
}

// SakoeChibaEDR is EDR constrained to the Sakoe-Chiba band. Cells outside
// the band carry the EDR saturation sentinel so no edit path crosses them.
type SakoeChibaEDR struct {
	memoizer
	win     window
	epsilon float64
}

// NewSakoeChibaEDR creates a band-constrained EDR kernel.
func NewSakoeChibaEDR(epsilon, r float64, w int, storing bool) (*SakoeChibaEDR, error) {
	if epsilon < 0 || math.IsNaN(epsilon) {
		return nil, invalidEpsilon(epsilon)
	}
	win, err := newWindow(r, w)
	if err != nil {
		return nil, err
	}
	return &SakoeChibaEDR{memoizer: newMemoizer(storing), win: win, epsilon: epsilon}, nil
}

// Epsilon returns the matching threshold.
func (d *SakoeChibaEDR) Epsilon() float64 { return d.epsilon }

// SetEpsilon changes the matching threshold, invalidating the memo.
func (d *SakoeChibaEDR) SetEpsilon(epsilon float64) error {
	if epsilon < 0 || math.IsNaN(epsilon) {
		return invalidEpsilon(epsilon)
	}
	d.ClearMemo()
	d.epsilon = epsilon
	return nil
}

// RelativeWidth returns r.
func (d *SakoeChibaEDR) RelativeWidth() float64 { return d.win.r }

// SetRelativeWidth changes r, invalidating the memo.
func (d *SakoeChibaEDR) SetRelativeWidth(r float64) error {
	win, err := newWindow(r, d.win.w)
	if err != nil {
		return err
	}
	d.ClearMemo()
	d.win = win
	return nil
}

// SetAbsoluteWidth changes w, invalidating the memo.
func (d *SakoeChibaEDR) SetAbsoluteWidth(w int) error {
	win, err := newWindow(d.win.r, w)
	if err != nil {
		return err
	}
	d.ClearMemo()
	d.win = win
	return nil
}

// Distance implements eval.DistanceKernel.
func (d *SakoeChibaEDR) Distance(a, b *eval.TimeSeries) (float64, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, err
	}
	if v, ok := d.cached(a, b); ok {
		return v, nil
	}
	v := float64(bandedEDR(a.YValues(), b.YValues(), d.epsilon, d.win))
	d.remember(a, b, v)
	return v, nil
}

// Copy implements eval.Copyable.
func (d *SakoeChibaEDR) Copy(deep bool) eval.Copyable {
	return &SakoeChibaEDR{memoizer: d.fresh(), win: d.win, epsilon: d.epsilon}
}

func bandedEDR(as, bs []float64, epsilon float64, win window) int64 {
	n := len(as)
	if n == 0 {
		return 0
	}
	w := win.width(n)
	prev := make([]int64, n+1)
	cur := make([]int64, n+1)
	for j := 0; j <= n; j++ {
		if j <= w {
			prev[j] = int64(j)
		} else {
			prev[j] = edrNoPath
		}
	}
	for i := 1; i <= n; i++ {
		for j := range cur {
			cur[j] = edrNoPath
		}
		if i <= w {
			cur[0] = int64(i)
		}
		lo, hi := win.bounds(i, n)
		for j := lo; j <= hi; j++ {
			var sub int64
			if !(math.Abs(as[i-1]-bs[j-1]) <= epsilon) {
				sub = 1
			}
			cur[j] = minInt3(satAdd(prev[j-1], sub), satAdd(prev[j], 1), satAdd(cur[j-1], 1))
		}
		prev, cur = cur, prev
	}
	return prev[n]
}

// SakoeChibaERP is ERP constrained to the Sakoe-Chiba band. The gap terms
// follow the ERP paper: every unmatched point is charged |value - g|.
type SakoeChibaERP struct {
	memoizer
	win window
	gap float64
}

// NewSakoeChibaERP creates a band-constrained ERP kernel.
func NewSakoeChibaERP(g, r float64, w int, storing bool) (*SakoeChibaERP, error) {
	win, err := newWindow(r, w)
	if err != nil {
		return nil, err
	}
	return &SakoeChibaERP{memoizer: newMemoizer(storing), win: win, gap: g}, nil
}

// Gap returns the gap value.
func (d *SakoeChibaERP) Gap() float64 { return d.gap }

// SetGap changes the gap value, invalidating the memo.
func (d *SakoeChibaERP) SetGap(g float64) error {
	d.ClearMemo()
	d.gap = g
	return nil
}

// RelativeWidth returns r.
func (d *SakoeChibaERP) RelativeWidth() float64 { return d.win.r }

// SetRelativeWidth changes r, invalidating the memo.
func (d *SakoeChibaERP) SetRelativeWidth(r float64) error {
	win, err := newWindow(r, d.win.w)
	if err != nil {
		return err
	}
	d.ClearMemo()
	d.win = win
	return nil
}

// SetAbsoluteWidth changes w, invalidating the memo.
func (d *SakoeChibaERP) SetAbsoluteWidth(w int) error {
	win, err := newWindow(d.win.r, w)
	if err != nil {
		return err
	}
	d.ClearMemo()
	d.win = win
	return nil
}

// Distance implements eval.DistanceKernel.
func (d *SakoeChibaERP) Distance(a, b *eval.TimeSeries) (float64, error) {
	if err := checkLengths(a, b); err != nil {
		return 0, err
	}
	if v, ok := d.cached(a, b); ok {
		return v, nil
	}
	v := bandedERP(a.YValues(), b.YValues(), d.gap, d.win)
	d.remember(a, b, v)
	return v, nil
}

// Copy implements eval.Copyable.
func (d *SakoeChibaERP) Copy(deep bool) eval.Copyable {
	return &SakoeChibaERP{memoizer: d.fresh(), win: d.win, gap: d.gap}
}

func bandedERP(as, bs []float64, g float64, win window) float64 {
	n := len(as)
	if n == 0 {
		return 0
	}
	w := win.width(n)
	inf := math.Inf(1)
	prev := make([]float64, n+1)
	cur := make([]float64, n+1)
	for j := 1; j <= n; j++ {
		if j <= w {
			prev[j] = prev[j-1] + math.Abs(bs[j-1]-g)
		} else {
			prev[j] = inf
		}
	}
	colBase := 0.0
	for i := 1; i <= n; i++ {
		for j := range cur {
			cur[j] = inf
		}
		colBase += math.Abs(as[i-1] - g)
		if i <= w {
			cur[0] = colBase
		}
		lo, hi := win.bounds(i, n)
		for j := lo; j <= hi; j++ {
			match := prev[j-1] + math.Abs(as[i-1]-bs[j-1])
			gapA := prev[j] + math.Abs(as[i-1]-g)
			gapB := cur[j-1] + math.Abs(bs[j-1]-g)
			cur[j] = min3(match, gapA, gapB)
		}
		prev, cur = cur, prev
	}
	return prev[n]
}

func invalidEpsilon(epsilon float64) error {
	return fmtInvalid("epsilon must be >= 0, got %g", epsilon)
}

var (
	_ eval.DistanceKernel = (*SakoeChibaDTW)(nil)
	_ eval.DistanceKernel = (*SakoeChibaEDR)(nil)
	_ eval.DistanceKernel = (*SakoeChibaERP)(nil)
	_ eval.Copyable       = (*SakoeChibaDTW)(nil)
	_ eval.Copyable       = (*SakoeChibaEDR)(nil)
	_ eval.Copyable       = (*SakoeChibaERP)(nil)
)
