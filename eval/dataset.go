package eval

import (
	"math/rand"
)

// Dataset is an ordered sequence of TimeSeries. Insertion order is
// preserved and indexing is O(1). Splits produced by a Dataset are new
// container objects over the same series pointers; nothing is deep-copied
// unless the caller asks for it.
type Dataset struct {
	series []*TimeSeries
}

// NewDataset creates a dataset over the given series.
func NewDataset(series ...*TimeSeries) *Dataset {
	return &Dataset{series: series}
}

// newDatasetWithCapacity creates an empty dataset pre-sized for n series.
func newDatasetWithCapacity(n int) *Dataset {
	return &Dataset{series: make([]*TimeSeries, 0, n)}
}

// Len returns the number of series.
func (d *Dataset) Len() int { return len(d.series) }

// At returns the i-th series.
func (d *Dataset) At(i int) *TimeSeries { return d.series[i] }

// Append adds series at the end of the dataset.
func (d *Dataset) Append(series ...*TimeSeries) {
	d.series = append(d.series, series...)
}

// Insert places s at position i, shifting later series right.
func (d *Dataset) Insert(i int, s *TimeSeries) {
	d.series = append(d.series, nil)
	copy(d.series[i+1:], d.series[i:])
	d.series[i] = s
}

// Remove deletes and returns the series at position i.
func (d *Dataset) Remove(i int) *TimeSeries {
	s := d.series[i]
	d.series = append(d.series[:i], d.series[i+1:]...)
	return s
}

// Clone returns a new container over the same series pointers.
func (d *Dataset) Clone() *Dataset {
	cp := make([]*TimeSeries, len(d.series))
	copy(cp, d.series)
	return &Dataset{series: cp}
}

// Without returns a new container holding every series except the one at
// position i. The shared dataset is not mutated; parallel leave-one-out
// trainsets are built this way.
func (d *Dataset) Without(i int) *Dataset {
	cp := make([]*TimeSeries, 0, len(d.series)-1)
	cp = append(cp, d.series[:i]...)
	cp = append(cp, d.series[i+1:]...)
	return &Dataset{series: cp}
}

// Shuffle permutes the series in place using rng.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.series), func(i, j int) {
		d.series[i], d.series[j] = d.series[j], d.series[i]
	})
}

// DistinctLabels returns the distinct labels in order of first appearance.
func (d *Dataset) DistinctLabels() []float64 {
	seen := make(map[float64]bool, 8)
	var labels []float64
	for _, s := range d.series {
		if !seen[s.Label] {
			seen[s.Label] = true
			labels = append(labels, s.Label)
		}
	}
	return labels
}

// LabelDistribution returns the number of series carrying each label.
func (d *Dataset) LabelDistribution() map[float64]int {
	dist := make(map[float64]int, 8)
	for _, s := range d.series {
		dist[s.Label]++
	}
	return dist
}

// SubsetsByLabel partitions the dataset into one subset per distinct
// label, in order of first label appearance. Each subset preserves the
// dataset's insertion order; when rng is non-nil every subset is shuffled
// with it afterwards.
func (d *Dataset) SubsetsByLabel(rng *rand.Rand) []*Dataset {
	labels := d.DistinctLabels()
	pos := make(map[float64]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}
	subsets := make([]*Dataset, len(labels))
	for i := range subsets {
		subsets[i] = &Dataset{}
	}
	for _, s := range d.series {
		sub := subsets[pos[s.Label]]
		sub.series = append(sub.series, s)
	}
	if rng != nil {
		for _, sub := range subsets {
			sub.Shuffle(rng)
		}
	}
	return subsets
}
