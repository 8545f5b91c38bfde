package eval

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evenDataset builds n series spread evenly across the given labels.
func evenDataset(n int, labels ...float64) *Dataset {
	d := NewDataset()
	for i := 0; i < n; i++ {
		s := NewTimeSeriesOf(labels[i%len(labels)], float64(i))
		s.Index = i
		d.Append(s)
	}
	return d
}

func TestSplit_RejectsBadFoldCount(t *testing.T) {
	d := evenDataset(4, 0, 1)

	_, err := d.Split(1, false, nil)

	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSplit_EmptyDataset(t *testing.T) {
	_, err := NewDataset().Split(2, false, nil)

	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestSplit_Stratified_FoldAndLabelBalance(t *testing.T) {
	// GIVEN 30 series spread evenly across 3 labels and a seeded RNG
	d := evenDataset(30, 0, 1, 2)
	rng := rand.New(rand.NewSource(42))

	// WHEN split into 3 stratified folds
	folds, err := d.Split(3, true, rng)
	require.NoError(t, err)

	// THEN every fold holds exactly 10 series
	require.Len(t, folds, 3)
	total := 0
	for _, fold := range folds {
		assert.Equal(t, 10, fold.Len())
		total += fold.Len()
	}
	assert.Equal(t, 30, total)

	// AND per-label counts across folds differ by at most 1
	for _, label := range d.DistinctLabels() {
		counts := make([]int, 0, 3)
		for _, fold := range folds {
			counts = append(counts, fold.LabelDistribution()[label])
		}
		lo, hi := counts[0], counts[0]
		for _, c := range counts[1:] {
			if c < lo {
				lo = c
			}
			if c > hi {
				hi = c
			}
		}
		assert.LessOrEqual(t, hi-lo, 1, "label %g spread %v", label, counts)
	}
}

func TestSplit_Stratified_UnevenFoldSizesWithinOne(t *testing.T) {
	d := evenDataset(11, 0, 1)

	folds, err := d.Split(3, true, nil)
	require.NoError(t, err)

	sizes := []int{folds[0].Len(), folds[1].Len(), folds[2].Len()}
	lo, hi := sizes[0], sizes[0]
	for _, s := range sizes[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	assert.LessOrEqual(t, hi-lo, 1, "fold sizes %v", sizes)
}

func TestSplit_SameSeedSamePartition(t *testing.T) {
	d := evenDataset(12, 0, 1, 2)

	first, err := d.Split(4, true, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	second, err := d.Split(4, true, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	for f := range first {
		require.Equal(t, first[f].Len(), second[f].Len())
		for i := 0; i < first[f].Len(); i++ {
			assert.Same(t, first[f].At(i), second[f].At(i))
		}
	}
}

func TestDivide_Boundaries(t *testing.T) {
	d := evenDataset(10, 0, 1)

	empty, full, err := d.Divide(0, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 10, full.Len())

	full2, empty2, err := d.Divide(100, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, full2.Len())
	assert.Equal(t, 0, empty2.Len())
}

func TestDivide_RejectsBadPercentage(t *testing.T) {
	d := evenDataset(4, 0)

	_, _, err := d.Divide(101, false, nil)

	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestDivide_Unstratified_HeadWhenNoRNG(t *testing.T) {
	d := evenDataset(10, 0, 1)

	first, second, err := d.Divide(30, false, nil)
	require.NoError(t, err)

	require.Equal(t, 3, first.Len())
	require.Equal(t, 7, second.Len())
	for i := 0; i < 3; i++ {
		assert.Same(t, d.At(i), first.At(i))
	}
}

func TestDivide_Stratified_PerGroupRoundingUnderGlobalQuota(t *testing.T) {
	// GIVEN 9 series with labels 6/3 and a 50 percent division
	d := evenDataset(9, 0, 0, 1)

	first, second, err := d.Divide(50, true, nil)
	require.NoError(t, err)

	// THEN the first part holds floor(9*0.5)=4 series at most, rounded
	// per group: round(6*0.5)=3 of label 0, then quota leaves 1 of label 1
	assert.Equal(t, 4, first.Len())
	assert.Equal(t, 5, second.Len())
	dist := first.LabelDistribution()
	assert.Equal(t, 3, dist[0])
	assert.Equal(t, 1, dist[1])
}

func TestSeedStreams_DeterministicAndDecorrelated(t *testing.T) {
	// Same seed, same streams.
	shuffle1, stratify1 := seedStreams(42)
	shuffle2, stratify2 := seedStreams(42)
	assert.Equal(t, shuffle1.Int63(), shuffle2.Int63())
	assert.Equal(t, stratify1.Int63(), stratify2.Int63())

	// The two streams of one run must not mirror each other: a stratified
	// split may draw from both without correlating them.
	shuffle3, stratify3 := seedStreams(42)
	assert.NotEqual(t, shuffle3.Int63(), stratify3.Int63())
}

func TestDivide_Stratified_SameSeedSameDivision(t *testing.T) {
	d := evenDataset(12, 0, 1)

	a1, _, err := d.Divide(50, true, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	a2, _, err := d.Divide(50, true, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	require.Equal(t, a1.Len(), a2.Len())
	for i := 0; i < a1.Len(); i++ {
		assert.Same(t, a1.At(i), a2.At(i))
	}
}
