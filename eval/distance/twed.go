package distance

import (
	"fmt"
	"math"

	"github.com/tseval/tseval/eval"
)

// TWED is the Time Warp Edit Distance kernel. nu is the stiffness charged
// per unit of time-axis drift, lambda the constant penalty per deletion.
// Timestamps are taken from the points' x coordinates, with a virtual
// (0, 0) point in front of both series.
type TWED struct {
	memoizer
	nu     float64
	lambda float64
}

// NewTWED creates a TWED kernel with stiffness nu >= 0 and deletion
// penalty lambda >= 0.
func NewTWED(nu, lambda float64, storing bool) (*TWED, error) {
	if nu < 0 || math.IsNaN(nu) {
		return nil, fmt.Errorf("%w: nu must be >= 0, got %g", eval.ErrInvalidParameter, nu)
	}
	if lambda < 0 || math.IsNaN(lambda) {
		return nil, fmt.Errorf("%w: lambda must be >= 0, got %g", eval.ErrInvalidParameter, lambda)
	}
	return &TWED{memoizer: newMemoizer(storing), nu: nu, lambda: lambda}, nil
}

// Stiffness returns nu.
func (d *TWED) Stiffness() float64 { return d.nu }

// Penalty returns lambda.
func (d *TWED) Penalty() float64 { return d.lambda }

// SetStiffness changes nu, invalidating the memo.
func (d *TWED) SetStiffness(nu float64) error {
	if nu < 0 || math.IsNaN(nu) {
		return fmt.Errorf("%w: nu must be >= 0, got %g", eval.ErrInvalidParameter, nu)
	}
	d.ClearMemo()
	d.nu = nu
	return nil
}

// SetPenalty changes lambda, invalidating the memo.
func (d *TWED) SetPenalty(lambda float64) error {
	if lambda < 0 || math.IsNaN(lambda) {
		return fmt.Errorf("%w: lambda must be >= 0, got %g", eval.ErrInvalidParameter, lambda)
	}
	d.ClearMemo()
	d.lambda = lambda
	return nil
}

// Distance implements eval.DistanceKernel.
func (d *TWED) Distance(a, b *eval.TimeSeries) (float64, error) {
	if v, ok := d.cached(a, b); ok {
		return v, nil
	}
	v := twedDistance(a, b, d.nu, d.lambda)
	d.remember(a, b, v)
	return v, nil
}

// Copy implements eval.Copyable.
func (d *TWED) Copy(deep bool) eval.Copyable {
	return &TWED{memoizer: d.fresh(), nu: d.nu, lambda: d.lambda}
}

// twedDistance runs Marteau's TWED recurrence with two rolling rows.
// y(s, 0) and x(s, 0) denote the virtual front point.
func twedDistance(a, b *eval.TimeSeries, nu, lambda float64) float64 {
	n, m := a.Len(), b.Len()

	ay := func(i int) float64 {
		if i == 0 {
			return 0
		}
		return a.Y(i - 1)
	}
	ax := func(i int) float64 {
		if i == 0 {
			return 0
		}
		return a.X(i - 1)
	}
	by := func(j int) float64 {
		if j == 0 {
			return 0
		}
		return b.Y(j - 1)
	}
	bx := func(j int) float64 {
		if j == 0 {
			return 0
		}
		return b.X(j - 1)
	}

	// Border cells are reached by deleting the whole prefix of one series.
	delA := func(i int) float64 {
		return math.Abs(ay(i)-ay(i-1)) + nu*(ax(i)-ax(i-1)) + lambda
	}
	delB := func(j int) float64 {
		return math.Abs(by(j)-by(j-1)) + nu*(bx(j)-bx(j-1)) + lambda
	}

	prev := make([]float64, m+1)
	cur := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = prev[j-1] + delB(j)
	}
	for i := 1; i <= n; i++ {
		cur[0] = prev[0] + delA(i)
		for j := 1; j <= m; j++ {
			match := prev[j-1] +
				math.Abs(ay(i)-by(j)) +
				math.Abs(ay(i-1)-by(j-1)) +
				nu*(math.Abs(ax(i)-bx(j))+math.Abs(ax(i-1)-bx(j-1)))
			cur[j] = min3(match, prev[j]+delA(i), cur[j-1]+delB(j))
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

var (
	_ eval.DistanceKernel = (*TWED)(nil)
	_ eval.Copyable       = (*TWED)(nil)
)
