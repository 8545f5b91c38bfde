package distance

import (
	"math"

	"github.com/tseval/tseval/eval"
)

// ERP is the Edit distance with Real Penalty kernel: unmatched points are
// charged their absolute difference from a fixed gap value g, which keeps
// ERP a metric.
type ERP struct {
	memoizer
	gap float64
}

// NewERP creates an ERP kernel with gap value g.
func NewERP(g float64, storing bool) *ERP {
	return &ERP{memoizer: newMemoizer(storing), gap: g}
}

// Gap returns the gap value.
func (d *ERP) Gap() float64 { return d.gap }

// SetGap changes the gap value, invalidating the memo.
func (d *ERP) SetGap(g float64) error {
	d.ClearMemo()
	d.gap = g
	return nil
}

// Distance implements eval.DistanceKernel.
func (d *ERP) Distance(a, b *eval.TimeSeries) (float64, error) {
	if v, ok := d.cached(a, b); ok {
		return v, nil
	}
	v := erpDistance(a.YValues(), b.YValues(), d.gap)
	d.remember(a, b, v)
	return v, nil
}

// Copy implements eval.Copyable.
func (d *ERP) Copy(deep bool) eval.Copyable {
	return &ERP{memoizer: d.fresh(), gap: d.gap}
}

// erpDistance runs the ERP recurrence with two rolling rows:
//
//	D[i,j] = min(D[i-1,j-1]+|a_i-b_j|, D[i-1,j]+|a_i-g|, D[i,j-1]+|b_j-g|)
//
// with the gap-cost bases D[i,0] = sum |a_k-g| and D[0,j] = sum |b_k-g|.
func erpDistance(as, bs []float64, g float64) float64 {
	n, m := len(as), len(bs)
	prev := make([]float64, m+1)
	cur := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = prev[j-1] + math.Abs(bs[j-1]-g)
	}
	for i := 1; i <= n; i++ {
		cur[0] = prev[0] + math.Abs(as[i-1]-g)
		for j := 1; j <= m; j++ {
			match := prev[j-1] + math.Abs(as[i-1]-bs[j-1])
			gapA := prev[j] + math.Abs(as[i-1]-g)
			gapB := cur[j-1] + math.Abs(bs[j-1]-g)
			cur[j] = min3(match, gapA, gapB)
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

var (
	_ eval.DistanceKernel = (*ERP)(nil)
	_ eval.Copyable       = (*ERP)(nil)
)
