package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tseval/tseval/eval/internal/testutil"
)

func TestERP_GapZero(t *testing.T) {
	// GIVEN g=0 and one unmatched trailing point
	a := testutil.Series(0, 1, 2)
	b := testutil.Series(0, 1, 2, 3)
	k := NewERP(0, false)

	got, err := k.Distance(a, b)

	// THEN the distance is |1-1| + |2-2| + |3-0| = 3
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
}

func TestERP_SelfDistanceIsZero(t *testing.T) {
	a := testutil.Series(0, 4, -3, 2.5)
	k := NewERP(1.5, false)

	got, err := k.Distance(a, a)

	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestERP_Symmetry(t *testing.T) {
	a := testutil.Series(0, 1, 5, 2)
	b := testutil.Series(0, 2, 2, 6, 1)
	k := NewERP(0.5, false)

	ab, err := k.Distance(a, b)
	require.NoError(t, err)
	ba, err := k.Distance(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
}

func TestERP_EmptyAgainstNonEmptyIsGapSum(t *testing.T) {
	a := testutil.Series(0)
	b := testutil.Series(0, 3, -1)
	k := NewERP(1, false)

	got, err := k.Distance(a, b)

	// |3-1| + |-1-1| = 4
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
}

func TestERP_SetGapInvalidatesMemo(t *testing.T) {
	a := testutil.Series(0, 1, 2)
	b := testutil.Series(0, 1, 2, 3)
	k := NewERP(0, true)

	first, err := k.Distance(a, b)
	require.NoError(t, err)
	assert.Equal(t, 3.0, first)

	require.NoError(t, k.SetGap(3))
	second, err := k.Distance(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, second, "with g=3 the trailing 3 is a free gap")
}
