package eval

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// UnassignedIndex is the Index value of a series that has not been given
// an application id yet.
const UnassignedIndex = -1

// Representation is an opaque alternative view of a series (PAA, DFT, SAX
// and friends). The engine only stores and forwards representations; their
// algorithms live with the producer.
type Representation interface {
	// Value returns the representation's value at x, or NaN when x lies
	// outside the original domain.
	Value(x float64) float64

	// Representation returns the producer-defined payload.
	Representation() any
}

// TimeSeries is an ordered sequence of DataPoints with a class label and
// an application-assigned index. Splits share series by pointer, so the
// pointer identity of a TimeSeries doubles as its identity for distance
// memoization.
type TimeSeries struct {
	points []DataPoint

	// Label is the class tag. Default 0.
	Label float64

	// Index is the application-assigned id. Default UnassignedIndex.
	Index int

	reprs map[string]Representation
}

// NewTimeSeries creates an empty series with default label 0 and an
// unassigned index.
func NewTimeSeries() *TimeSeries {
	return &TimeSeries{Index: UnassignedIndex}
}

// NewTimeSeriesOf creates a labelled series from y values at implicit
// x = 0, 1, 2, ...
func NewTimeSeriesOf(label float64, ys ...float64) *TimeSeries {
	s := &TimeSeries{
		points: make([]DataPoint, len(ys)),
		Label:  label,
		Index:  UnassignedIndex,
	}
	for i, y := range ys {
		s.points[i] = DataPoint{x: float64(i), y: y}
	}
	return s
}

// Len returns the number of points.
func (s *TimeSeries) Len() int { return len(s.points) }

// Append adds points at the end of the series.
func (s *TimeSeries) Append(pts ...DataPoint) {
	s.points = append(s.points, pts...)
}

// Point returns the i-th point.
func (s *TimeSeries) Point(i int) DataPoint { return s.points[i] }

// SetPoint overwrites the i-th point.
func (s *TimeSeries) SetPoint(i int, p DataPoint) { s.points[i] = p }

// X returns the time coordinate of the i-th point.
func (s *TimeSeries) X(i int) float64 { return s.points[i].x }

// Y returns the value coordinate of the i-th point.
func (s *TimeSeries) Y(i int) float64 { return s.points[i].y }

// YValues returns a copy of all value coordinates in order.
func (s *TimeSeries) YValues() []float64 {
	ys := make([]float64, len(s.points))
	for i, p := range s.points {
		ys[i] = p.y
	}
	return ys
}

// XValues returns a copy of all time coordinates in order.
func (s *TimeSeries) XValues() []float64 {
	xs := make([]float64, len(s.points))
	for i, p := range s.points {
		xs[i] = p.x
	}
	return xs
}

// Sort stably reorders the points by x. Ties keep their relative order.
func (s *TimeSeries) Sort() {
	sort.SliceStable(s.points, func(i, j int) bool {
		return s.points[i].Less(s.points[j])
	})
}

// SetRepresentation attaches an opaque representation under kind.
func (s *TimeSeries) SetRepresentation(kind string, r Representation) {
	if s.reprs == nil {
		s.reprs = make(map[string]Representation)
	}
	s.reprs[kind] = r
}

// Representation returns the representation stored under kind, or nil.
func (s *TimeSeries) Representation(kind string) Representation {
	return s.reprs[kind]
}

// Copy returns a new series with its own point storage. The representation
// map is shared shallowly; representations are immutable value objects.
func (s *TimeSeries) Copy() *TimeSeries {
	cp := &TimeSeries{
		points: make([]DataPoint, len(s.points)),
		Label:  s.Label,
		Index:  s.Index,
		reprs:  s.reprs,
	}
	copy(cp.points, s.points)
	return cp
}

// Statistical queries. All are read-only and return NaN on an empty
// series (gonum's convention). The medians sort a copy, O(n log n); the
// rest are O(n).

// MeanY returns the mean of the value coordinates.
func (s *TimeSeries) MeanY() float64 { return stat.Mean(s.YValues(), nil) }

// MeanX returns the mean of the time coordinates.
func (s *TimeSeries) MeanX() float64 { return stat.Mean(s.XValues(), nil) }

// VarianceY returns the unbiased sample variance of the value coordinates.
func (s *TimeSeries) VarianceY() float64 { return stat.Variance(s.YValues(), nil) }

// VarianceX returns the unbiased sample variance of the time coordinates.
func (s *TimeSeries) VarianceX() float64 { return stat.Variance(s.XValues(), nil) }

// MedianY returns the median of the value coordinates.
func (s *TimeSeries) MedianY() float64 { return median(s.YValues()) }

// MedianX returns the median of the time coordinates.
func (s *TimeSeries) MedianX() float64 { return median(s.XValues()) }

// MinY returns the smallest value coordinate.
func (s *TimeSeries) MinY() float64 { return minOrNaN(s.YValues()) }

// MaxY returns the largest value coordinate.
func (s *TimeSeries) MaxY() float64 { return maxOrNaN(s.YValues()) }

// MinX returns the smallest time coordinate.
func (s *TimeSeries) MinX() float64 { return minOrNaN(s.XValues()) }

// MaxX returns the largest time coordinate.
func (s *TimeSeries) MaxX() float64 { return maxOrNaN(s.XValues()) }

func minOrNaN(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	return floats.Min(vs)
}

func maxOrNaN(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	return floats.Max(vs)
}

// median computes the interpolated median of vs. vs is consumed as scratch.
func median(vs []float64) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	sort.Float64s(vs)
	mid := len(vs) / 2
	if len(vs)%2 == 1 {
		return vs[mid]
	}
	return (vs[mid-1] + vs[mid]) / 2
}
