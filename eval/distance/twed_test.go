package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tseval/tseval/eval"
	"github.com/tseval/tseval/eval/internal/testutil"
)

func TestTWED_RejectsNegativeParameters(t *testing.T) {
	_, err := NewTWED(-1, 0, false)
	assert.ErrorIs(t, err, eval.ErrInvalidParameter)

	_, err = NewTWED(0, -1, false)
	assert.ErrorIs(t, err, eval.ErrInvalidParameter)
}

func TestTWED_SelfDistanceIsZero(t *testing.T) {
	a := testutil.Series(0, 1, 4, 2, 8)
	k, err := NewTWED(0.5, 1, false)
	require.NoError(t, err)

	got, err := k.Distance(a, a)

	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestTWED_Symmetry(t *testing.T) {
	a := testutil.Series(0, 1, 2, 3)
	b := testutil.Series(0, 2, 4)
	k, err := NewTWED(0.25, 0.5, false)
	require.NoError(t, err)

	ab, err := k.Distance(a, b)
	require.NoError(t, err)
	ba, err := k.Distance(b, a)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-12)
}

func TestTWED_LambdaChargesDeletions(t *testing.T) {
	// GIVEN identical prefixes with one extra point in b
	a := testutil.Series(0, 1, 2)
	b := testutil.Series(0, 1, 2, 2)
	cheap, err := NewTWED(0, 0.1, false)
	require.NoError(t, err)
	costly, err := NewTWED(0, 10, false)
	require.NoError(t, err)

	lo, err := cheap.Distance(a, b)
	require.NoError(t, err)
	hi, err := costly.Distance(a, b)
	require.NoError(t, err)

	// THEN a larger deletion penalty can only increase the distance
	assert.Less(t, lo, hi)
}

func TestTWED_StiffnessChargesTimeDrift(t *testing.T) {
	a := testutil.Series(0, 0, 1)
	b := testutil.Series(0, 0, 0, 1)
	loose, err := NewTWED(0, 0, false)
	require.NoError(t, err)
	stiff, err := NewTWED(5, 0, false)
	require.NoError(t, err)

	lo, err := loose.Distance(a, b)
	require.NoError(t, err)
	hi, err := stiff.Distance(a, b)
	require.NoError(t, err)

	assert.LessOrEqual(t, lo, hi)
}

func TestTWED_SettersInvalidateMemo(t *testing.T) {
	a := testutil.Series(0, 1, 2)
	b := testutil.Series(0, 1, 2, 9)
	k, err := NewTWED(0, 0, true)
	require.NoError(t, err)

	first, err := k.Distance(a, b)
	require.NoError(t, err)

	require.NoError(t, k.SetPenalty(100))
	second, err := k.Distance(a, b)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
