package eval

import (
	"math"
	"math/rand"
)

// seedStreams returns the two generators one seeded run draws from: one
// for the pre-split permutation of the dataset, one for the per-label
// group shuffles inside stratified splits. The shuffle stream uses the
// seed directly; the stratify stream runs the seed through a splitmix64
// finisher first, so toggling stratification never perturbs the base
// permutation and neighbouring seeds do not share low-bit structure.
func seedStreams(seed int64) (shuffle, stratify *rand.Rand) {
	return rand.New(rand.NewSource(seed)), rand.New(rand.NewSource(mix64(seed)))
}

// mix64 is the splitmix64 finisher.
func mix64(seed int64) int64 {
	z := uint64(seed) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// Split partitions the dataset into k folds.
//
// Stratified mode groups the series by label, shuffles each group when rng
// is non-nil, then deals the concatenated groups round-robin into the k
// folds with a single running counter. The counter carries across group
// boundaries, so both fold sizes and per-label counts per fold stay within
// one of each other.
//
// Unstratified mode deals the series (shuffled when rng is non-nil)
// round-robin directly.
func (d *Dataset) Split(k int, stratified bool, rng *rand.Rand) ([]*Dataset, error) {
	if k < 2 {
		return nil, invalidParamf("folds must be >= 2, got %d", k)
	}
	if d.Len() == 0 {
		return nil, ErrEmptyDataset
	}

	folds := make([]*Dataset, k)
	for i := range folds {
		folds[i] = &Dataset{}
	}

	deal := func(series []*TimeSeries, t int) int {
		for _, s := range series {
			folds[t%k].series = append(folds[t%k].series, s)
			t++
		}
		return t
	}

	if stratified {
		t := 0
		for _, group := range d.SubsetsByLabel(rng) {
			t = deal(group.series, t)
		}
		return folds, nil
	}

	pool := d.Clone()
	if rng != nil {
		pool.Shuffle(rng)
	}
	deal(pool.series, 0)
	return folds, nil
}

// Divide splits the dataset into a (first, second) pair where the first
// part holds percentage percent of the series.
//
// Stratified mode shuffles each label group when rng is non-nil and takes
// a round(|group|*percentage/100) prefix from every group, bounded by the
// global quota floor(n*percentage/100); the remainder goes to the second
// part. Unstratified mode takes round(n*percentage/100) series drawn
// randomly with rng, or from the head when rng is nil.
func (d *Dataset) Divide(percentage float64, stratified bool, rng *rand.Rand) (*Dataset, *Dataset, error) {
	if percentage < 0 || percentage > 100 {
		return nil, nil, invalidParamf("percentage must be in [0,100], got %g", percentage)
	}
	if d.Len() == 0 {
		return nil, nil, ErrEmptyDataset
	}

	n := d.Len()
	first := &Dataset{}
	second := &Dataset{}

	if stratified {
		quota := int(math.Floor(float64(n) * percentage / 100))
		for _, group := range d.SubsetsByLabel(rng) {
			take := int(math.Round(float64(group.Len()) * percentage / 100))
			if remaining := quota - first.Len(); take > remaining {
				take = remaining
			}
			first.series = append(first.series, group.series[:take]...)
			second.series = append(second.series, group.series[take:]...)
		}
		return first, second, nil
	}

	take := int(math.Round(float64(n) * percentage / 100))
	pool := d.Clone()
	if rng != nil {
		pool.Shuffle(rng)
	}
	first.series = append(first.series, pool.series[:take]...)
	second.series = append(second.series, pool.series[take:]...)
	return first, second, nil
}
