package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tseval/tseval/eval"
	"github.com/tseval/tseval/eval/internal/testutil"
)

func TestEDR_RejectsNegativeEpsilon(t *testing.T) {
	_, err := NewEDR(-0.1, false)

	assert.ErrorIs(t, err, eval.ErrInvalidParameter)
}

func TestEDR_SingleEdit(t *testing.T) {
	// GIVEN epsilon 0.5; only the middle points differ by more than it
	a := testutil.Series(0, 1.0, 2.0, 3.0)
	b := testutil.Series(0, 1.4, 2.6, 3.0)
	k, err := NewEDR(0.5, false)
	require.NoError(t, err)

	got, err := k.Distance(a, b)

	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestEDR_SelfDistanceIsZero(t *testing.T) {
	a := testutil.Series(0, 5, -1, 2)
	k, err := NewEDR(0, false)
	require.NoError(t, err)

	got, err := k.Distance(a, a)

	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestEDR_Symmetry(t *testing.T) {
	a := testutil.Series(0, 1, 2, 3, 4)
	b := testutil.Series(0, 2, 2, 5)
	k, err := NewEDR(0.25, false)
	require.NoError(t, err)

	ab, err := k.Distance(a, b)
	require.NoError(t, err)
	ba, err := k.Distance(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
}

func TestEDR_ZeroEpsilonIsEditDistance(t *testing.T) {
	// With epsilon 0, only exact matches are free: classic edit distance
	// on quantized equality.
	a := testutil.Series(0, 1, 2, 3)
	b := testutil.Series(0, 1, 9, 3)
	k, err := NewEDR(0, false)
	require.NoError(t, err)

	got, err := k.Distance(a, b)

	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestEDR_InfiniteEpsilonMatchesEverything(t *testing.T) {
	a := testutil.Series(0, 1, 200, 3)
	b := testutil.Series(0, -50, 2, 999)
	k, err := NewEDR(math.Inf(1), false)
	require.NoError(t, err)

	got, err := k.Distance(a, b)

	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestEDR_LengthDifferenceCostsInsertions(t *testing.T) {
	a := testutil.Series(0, 1, 2)
	b := testutil.Series(0, 1, 2, 7, 8)
	k, err := NewEDR(0, false)
	require.NoError(t, err)

	got, err := k.Distance(a, b)

	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestEDR_SetEpsilonInvalidatesMemo(t *testing.T) {
	a := testutil.Series(0, 1.0, 2.0)
	b := testutil.Series(0, 1.4, 2.6)
	k, err := NewEDR(1.0, true)
	require.NoError(t, err)

	loose, err := k.Distance(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, loose)

	// The setter must clear the memo atomically: the next lookup sees
	// the new epsilon, not the cached distance.
	require.NoError(t, k.SetEpsilon(0.1))
	strict, err := k.Distance(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2.0, strict)
}

func TestSatAdd_Saturates(t *testing.T) {
	assert.Equal(t, int64(edrNoPath), satAdd(edrNoPath, 1))
	assert.Equal(t, int64(edrNoPath), satAdd(edrNoPath-1, 1))
	assert.Equal(t, int64(5), satAdd(2, 3))
}
