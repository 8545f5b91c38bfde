package eval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSeries_Sort_StableByX(t *testing.T) {
	// GIVEN a series with shuffled x values and two points tied at x=1
	s := NewTimeSeries()
	s.Append(
		NewDataPoint(2, 20),
		NewDataPoint(1, 10),
		NewDataPoint(1, 11),
		NewDataPoint(0, 0),
	)

	// WHEN Sort() is called
	s.Sort()

	// THEN points are ordered by x and the tie keeps insertion order
	xs := s.XValues()
	assert.Equal(t, []float64{0, 1, 1, 2}, xs)
	assert.Equal(t, 10.0, s.Y(1))
	assert.Equal(t, 11.0, s.Y(2))
}

func TestTimeSeries_Sort_NaNAtEnd(t *testing.T) {
	s := NewTimeSeries()
	s.Append(
		NewDataPoint(math.NaN(), 1),
		NewDataPoint(3, 2),
		NewDataPoint(1, 3),
	)

	s.Sort()

	assert.Equal(t, 1.0, s.X(0))
	assert.Equal(t, 3.0, s.X(1))
	assert.True(t, math.IsNaN(s.X(2)))
}

func TestTimeSeries_Statistics(t *testing.T) {
	s := NewTimeSeriesOf(0, 1, 2, 3, 4)

	assert.InDelta(t, 2.5, s.MeanY(), 1e-12)
	assert.InDelta(t, 2.5, s.MedianY(), 1e-12)
	assert.InDelta(t, 5.0/3.0, s.VarianceY(), 1e-12)
	assert.Equal(t, 1.0, s.MinY())
	assert.Equal(t, 4.0, s.MaxY())
	assert.Equal(t, 0.0, s.MinX())
	assert.Equal(t, 3.0, s.MaxX())
}

func TestTimeSeries_Statistics_Empty(t *testing.T) {
	s := NewTimeSeries()

	assert.True(t, math.IsNaN(s.MeanY()))
	assert.True(t, math.IsNaN(s.MedianY()))
	assert.True(t, math.IsNaN(s.MinY()))
	assert.True(t, math.IsNaN(s.MaxX()))
}

func TestTimeSeries_Copy_IndependentPoints(t *testing.T) {
	s := NewTimeSeriesOf(7, 1, 2, 3)
	s.Index = 4

	cp := s.Copy()
	cp.SetPoint(0, NewDataPoint(0, 99))

	require.Equal(t, 7.0, cp.Label)
	require.Equal(t, 4, cp.Index)
	assert.Equal(t, 1.0, s.Y(0), "copy mutation must not reach the original")
	assert.Equal(t, 99.0, cp.Y(0))
}

func TestDataPoint_Arithmetic(t *testing.T) {
	p := NewDataPoint(2, 3)
	p.ShiftX(1)
	p.ScaleY(2)

	assert.Equal(t, 3.0, p.X())
	assert.Equal(t, 6.0, p.Y())
}

func TestTimeSeries_Representations_Forwarded(t *testing.T) {
	s := NewTimeSeriesOf(0, 1, 2)
	r := constantRepresentation(42)

	s.SetRepresentation("paa", r)

	assert.Equal(t, r, s.Representation("paa"))
	assert.Nil(t, s.Representation("dft"))
}

// constantRepresentation is a stand-in Representation for tests.
type constantRepresentation float64

func (c constantRepresentation) Value(x float64) float64 {
	if x < 0 {
		return math.NaN()
	}
	return float64(c)
}

func (c constantRepresentation) Representation() any { return float64(c) }
