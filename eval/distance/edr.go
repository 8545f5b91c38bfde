package distance

import (
	"fmt"
	"math"

	"github.com/tseval/tseval/eval"
)

// edrNoPath is the saturation sentinel for cells no edit path reaches.
// One below MaxInt64 so that a saturating +1 cannot wrap.
const edrNoPath = math.MaxInt64 - 1

// EDR is the Edit Distance on Real sequence kernel: two points match when
// their values differ by at most epsilon, every non-match costs one edit.
// Distances are integer-valued.
type EDR struct {
	memoizer
	epsilon float64
}

// NewEDR creates an EDR kernel with matching threshold epsilon >= 0.
func NewEDR(epsilon float64, storing bool) (*EDR, error) {
	if epsilon < 0 || math.IsNaN(epsilon) {
		return nil, fmt.Errorf("%w: epsilon must be >= 0, got %g", eval.ErrInvalidParameter, epsilon)
	}
	return &EDR{memoizer: newMemoizer(storing), epsilon: epsilon}, nil
}

// Epsilon returns the matching threshold.
func (d *EDR) Epsilon() float64 { return d.epsilon }

// SetEpsilon changes the matching threshold. The memo is invalidated
// before the setter returns; a cached distance never outlives the
// epsilon it was computed under.
func (d *EDR) SetEpsilon(epsilon float64) error {
	if epsilon < 0 || math.IsNaN(epsilon) {
		return fmt.Errorf("%w: epsilon must be >= 0, got %g", eval.ErrInvalidParameter, epsilon)
	}
	d.ClearMemo()
	d.epsilon = epsilon
	return nil
}

// Distance implements eval.DistanceKernel.
func (d *EDR) Distance(a, b *eval.TimeSeries) (float64, error) {
	if v, ok := d.cached(a, b); ok {
		return v, nil
	}
	v := float64(edrDistance(a.YValues(), b.YValues(), d.epsilon))
	d.remember(a, b, v)
	return v, nil
}

// Copy implements eval.Copyable.
func (d *EDR) Copy(deep bool) eval.Copyable {
	return &EDR{memoizer: d.fresh(), epsilon: d.epsilon}
}

// edrDistance runs the edit recurrence with two rolling int64 rows:
//
//	D[i,j] = min(D[i-1,j-1]+sub, 1+D[i-1,j], 1+D[i,j-1])
//
// with sub = 0 when |a_i-b_j| <= epsilon and 1 otherwise, and the edit
// bases D[i,0]=i, D[0,j]=j. Additions saturate at edrNoPath.
func edrDistance(as, bs []float64, epsilon float64) int64 {
	n, m := len(as), len(bs)
	prev := make([]int64, m+1)
	cur := make([]int64, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = int64(j)
	}
	for i := 1; i <= n; i++ {
		cur[0] = int64(i)
		for j := 1; j <= m; j++ {
			var sub int64
			if !(math.Abs(as[i-1]-bs[j-1]) <= epsilon) {
				sub = 1
			}
			cur[j] = minInt3(satAdd(prev[j-1], sub), satAdd(prev[j], 1), satAdd(cur[j-1], 1))
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

// satAdd adds two non-negative edit counts, saturating at edrNoPath.
func satAdd(a, b int64) int64 {
	if a >= edrNoPath-b {
		return edrNoPath
	}
	return a + b
}

func minInt3(a, b, c int64) int64 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

var (
	_ eval.DistanceKernel = (*EDR)(nil)
	_ eval.Copyable       = (*EDR)(nil)
)
