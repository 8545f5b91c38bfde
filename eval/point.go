package eval

import "math"

// DataPoint is an ordered (x, y) pair of 64-bit floats. The x coordinate
// conventionally denotes time. Points compare by x only; NaN sorts after
// every finite value so that series with missing timestamps still order
// deterministically.
type DataPoint struct {
	x, y float64
}

// NewDataPoint creates a DataPoint at (x, y).
func NewDataPoint(x, y float64) DataPoint {
	return DataPoint{x: x, y: y}
}

// X returns the time coordinate.
func (p DataPoint) X() float64 { return p.x }

// Y returns the value coordinate.
func (p DataPoint) Y() float64 { return p.y }

// SetX overwrites the time coordinate.
func (p *DataPoint) SetX(x float64) { p.x = x }

// SetY overwrites the value coordinate.
func (p *DataPoint) SetY(y float64) { p.y = y }

// ShiftX adds d to the time coordinate.
func (p *DataPoint) ShiftX(d float64) { p.x += d }

// ShiftY adds d to the value coordinate.
func (p *DataPoint) ShiftY(d float64) { p.y += d }

// ScaleX multiplies the time coordinate by f.
func (p *DataPoint) ScaleX(f float64) { p.x *= f }

// ScaleY multiplies the value coordinate by f.
func (p *DataPoint) ScaleY(f float64) { p.y *= f }

// Less reports whether p orders before q. Comparison is by x only; NaN
// orders after every non-NaN x.
func (p DataPoint) Less(q DataPoint) bool {
	if math.IsNaN(p.x) {
		return false
	}
	if math.IsNaN(q.x) {
		return true
	}
	return p.x < q.x
}
