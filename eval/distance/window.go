package distance

import (
	"fmt"
	"math"

	"github.com/tseval/tseval/eval"
)

// window holds the Sakoe-Chiba band parameters shared by all constrained
// kernels: a relative width r in [0,1] and an absolute minimum width
// w >= 0. The effective band half-width for series of length len is
// max(w, ceil(r*len)).
type window struct {
	r float64
	w int
}

func newWindow(r float64, w int) (window, error) {
	if r < 0 || r > 1 || math.IsNaN(r) {
		return window{}, fmt.Errorf("%w: relative window width must be in [0,1], got %g", eval.ErrInvalidParameter, r)
	}
	if w < 0 {
		return window{}, fmt.Errorf("%w: absolute window width must be >= 0, got %d", eval.ErrInvalidParameter, w)
	}
	return window{r: r, w: w}, nil
}

// width returns the effective band half-width for series of length n.
func (b window) width(n int) int {
	rel := int(math.Ceil(b.r * float64(n)))
	if b.w > rel {
		return b.w
	}
	return rel
}

// bounds returns the inclusive DP column range [lo, hi] visited in row i
// for series of length n: max(1, i-w) .. min(n, i+w).
func (b window) bounds(i, n int) (int, int) {
	w := b.width(n)
	lo := i - w
	if lo < 1 {
		lo = 1
	}
	hi := i + w
	if hi > n {
		hi = n
	}
	return lo, hi
}

// fmtInvalid wraps eval.ErrInvalidParameter with a description of the
// offending option.
func fmtInvalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", eval.ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// checkLengths enforces the equal-length requirement of every windowed
// kernel.
func checkLengths(a, b *eval.TimeSeries) error {
	if a.Len() != b.Len() {
		return eval.ErrIncomparableSeries
	}
	return nil
}
