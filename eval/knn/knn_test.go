package knn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tseval/tseval/eval"
	"github.com/tseval/tseval/eval/distance"
	"github.com/tseval/tseval/eval/internal/testutil"
)

func trainingSet() *eval.Dataset {
	return testutil.Dataset(
		testutil.Series(0, 1.0, 1.0),
		testutil.Series(0, 1.2, 0.9),
		testutil.Series(0, 0.8, 1.1),
		testutil.Series(1, 9.0, 9.0),
		testutil.Series(1, 9.2, 8.9),
		testutil.Series(1, 8.8, 9.1),
	)
}

func TestNewClassifier_Validation(t *testing.T) {
	_, err := NewClassifier(0, distance.NewManhattan(false))
	assert.ErrorIs(t, err, eval.ErrInvalidParameter)

	_, err = NewClassifier(1, nil)
	assert.ErrorIs(t, err, eval.ErrInvalidParameter)
}

func TestClassifier_NearestNeighbour(t *testing.T) {
	c, err := NewClassifier(1, distance.NewManhattan(false))
	require.NoError(t, err)
	require.NoError(t, c.Fit(trainingSet()))

	low, err := c.Classify(testutil.Series(0, 1.1, 1.0))
	require.NoError(t, err)
	assert.Equal(t, 0.0, low)

	high, err := c.Classify(testutil.Series(0, 8.9, 9.2))
	require.NoError(t, err)
	assert.Equal(t, 1.0, high)
}

func TestClassifier_MajorityVote(t *testing.T) {
	// GIVEN k=3 and a query near two label-0 series but nearest to a
	// single label-1 outlier
	train := testutil.Dataset(
		testutil.Series(1, 5.0),
		testutil.Series(0, 5.4),
		testutil.Series(0, 5.5),
		testutil.Series(1, 9.0),
	)
	c, err := NewClassifier(3, distance.NewManhattan(false))
	require.NoError(t, err)
	require.NoError(t, c.Fit(train))

	// WHEN classifying at 5.1
	got, err := c.Classify(testutil.Series(0, 5.1))

	// THEN the two label-0 votes outweigh the single nearest label-1
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestClassifier_VoteTieGoesToBestRankedLabel(t *testing.T) {
	train := testutil.Dataset(
		testutil.Series(1, 5.0),
		testutil.Series(0, 5.3),
		testutil.Series(1, 9.0),
		testutil.Series(0, 9.5),
	)
	c, err := NewClassifier(4, distance.NewManhattan(false))
	require.NoError(t, err)
	require.NoError(t, c.Fit(train))

	got, err := c.Classify(testutil.Series(0, 5.1))

	// 2-2 tie; label 1 owns the single nearest neighbour
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestClassifier_ClassifyBeforeFit(t *testing.T) {
	c, err := NewClassifier(1, distance.NewManhattan(false))
	require.NoError(t, err)

	_, err = c.Classify(testutil.Series(0, 1))

	assert.ErrorIs(t, err, eval.ErrEmptyDataset)
}

func TestClassifier_KLargerThanTrainset(t *testing.T) {
	train := testutil.Dataset(
		testutil.Series(0, 1.0),
		testutil.Series(0, 1.2),
		testutil.Series(1, 9.0),
	)
	c, err := NewClassifier(10, distance.NewManhattan(false))
	require.NoError(t, err)
	require.NoError(t, c.Fit(train))

	got, err := c.Classify(testutil.Series(0, 1.1))

	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestClassifier_MultithreadedMatchesSequential(t *testing.T) {
	train := trainingSet()
	query := testutil.Series(0, 1.05, 1.0)

	seq, err := NewClassifier(3, distance.NewDTW(false))
	require.NoError(t, err)
	require.NoError(t, seq.Fit(train))
	want, err := seq.Classify(query)
	require.NoError(t, err)

	par, err := NewClassifier(3, distance.NewDTW(false))
	require.NoError(t, err)
	par.SetThreads(4)
	require.NoError(t, par.Fit(train))
	got, err := par.Classify(query)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, 4, par.Threads())
}

func TestClassifier_CopyIsIndependent(t *testing.T) {
	kernel, err := distance.NewEDR(0.5, true)
	require.NoError(t, err)
	c, err := NewClassifier(1, kernel)
	require.NoError(t, err)
	require.NoError(t, c.Fit(trainingSet()))

	cp := c.Copy(true).(*Classifier)

	// Copies share the read-only trainset but not the kernel: changing
	// the copy's epsilon must not leak into the original.
	require.NoError(t, cp.Distance().(*distance.EDR).SetEpsilon(5))
	assert.Equal(t, 0.5, kernel.Epsilon())
	assert.Equal(t, c.K(), cp.K())
}

func TestClassifier_ResetClearsFit(t *testing.T) {
	c, err := NewClassifier(1, distance.NewManhattan(true))
	require.NoError(t, err)
	require.NoError(t, c.Fit(trainingSet()))

	c.Reset()

	_, err = c.Classify(testutil.Series(0, 1))
	assert.ErrorIs(t, err, eval.ErrEmptyDataset)
}

func TestNeighbourCountModifier(t *testing.T) {
	c, err := NewClassifier(1, distance.NewManhattan(false))
	require.NoError(t, err)

	require.NoError(t, NeighbourCountModifier{}.Set(c, eval.IntValue(5)))

	assert.Equal(t, 5, c.K())
	assert.False(t, NeighbourCountModifier{}.AffectsDistance())

	err = NeighbourCountModifier{}.Set(c, eval.IntValue(0))
	assert.ErrorIs(t, err, eval.ErrInvalidParameter)
}
