package distance

import (
	"math"

	"github.com/tseval/tseval/eval"
)

// Manhattan is the point-wise rectilinear kernel: the sum of absolute
// value differences at each index. No warping; both series must have the
// same length.
type Manhattan struct {
	memoizer
}

// NewManhattan creates a Manhattan kernel.
func NewManhattan(storing bool) *Manhattan {
	return &Manhattan{memoizer: newMemoizer(storing)}
}

// Distance implements eval.DistanceKernel.
func (d *Manhattan) Distance(a, b *eval.TimeSeries) (float64, error) {
	if a.Len() != b.Len() {
		return 0, eval.ErrIncomparableSeries
	}
	if v, ok := d.cached(a, b); ok {
		return v, nil
	}
	var v float64
	for i := 0; i < a.Len(); i++ {
		v += math.Abs(a.Y(i) - b.Y(i))
	}
	d.remember(a, b, v)
	return v, nil
}

// Copy implements eval.Copyable.
func (d *Manhattan) Copy(deep bool) eval.Copyable {
	return &Manhattan{memoizer: d.fresh()}
}

var (
	_ eval.DistanceKernel = (*Manhattan)(nil)
	_ eval.Copyable       = (*Manhattan)(nil)
)
