package distance

import (
	"math"

	"github.com/tseval/tseval/eval"
)

// DTW is the unconstrained dynamic time warping kernel. Distances are
// sums of squared deltas along the optimal warping path; no final square
// root is taken, consumers compare on squared values.
type DTW struct {
	memoizer
}

// NewDTW creates a DTW kernel. storing enables distance memoization.
func NewDTW(storing bool) *DTW {
	return &DTW{memoizer: newMemoizer(storing)}
}

// Distance implements eval.DistanceKernel.
func (d *DTW) Distance(a, b *eval.TimeSeries) (float64, error) {
	if v, ok := d.cached(a, b); ok {
		return v, nil
	}
	v := dtwDistance(a.YValues(), b.YValues())
	d.remember(a, b, v)
	return v, nil
}

// Copy implements eval.Copyable. DTW carries no sub-components, so deep
// and shallow copies coincide apart from the always-fresh memo.
func (d *DTW) Copy(deep bool) eval.Copyable {
	return &DTW{memoizer: d.fresh()}
}

// dtwDistance fills the DP grid with two rolling rows of size
// min(n,m)+1. The recurrence is
//
//	D[i,j] = (a_i-b_j)^2 + min(D[i-1,j], D[i,j-1], D[i-1,j-1])
//
// with D[0,0]=0 and infinite borders. DTW on squared deltas is symmetric,
// so the shorter sequence can always run along the inner dimension.
func dtwDistance(as, bs []float64) float64 {
	if len(as) == 0 && len(bs) == 0 {
		return 0
	}
	if len(as) == 0 || len(bs) == 0 {
		return math.Inf(1)
	}
	if len(bs) > len(as) {
		as, bs = bs, as
	}
	n, m := len(as), len(bs)

	prev := make([]float64, m+1)
	cur := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = math.Inf(1)
	}
	for i := 1; i <= n; i++ {
		cur[0] = math.Inf(1)
		for j := 1; j <= m; j++ {
			delta := as[i-1] - bs[j-1]
			cur[j] = delta*delta + min3(prev[j], cur[j-1], prev[j-1])
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

var (
	_ eval.DistanceKernel = (*DTW)(nil)
	_ eval.Copyable       = (*DTW)(nil)
)
