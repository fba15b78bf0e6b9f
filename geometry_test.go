package hdrhistogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeometry(t *testing.T) geometry {
	t.Helper()
	return newGeometry(1, 3_600_000_000, 3)
}

func TestGeometryDerivedFields(t *testing.T) {
	g := testGeometry(t)

	assert.EqualValues(t, 0, g.unitMagnitude)
	assert.EqualValues(t, 2048, g.subBucketCount)
	assert.EqualValues(t, 1024, g.subBucketHalfCount)
	assert.EqualValues(t, 2047, g.subBucketMask)
	assert.EqualValues(t, 22, g.bucketCount)
	assert.EqualValues(t, 23552, g.countsLen)
}

func TestEquivalenceRoundTrip(t *testing.T) {
	g := testGeometry(t)

	samples := []int64{0, 1, 2, 1000, 2047, 2048, 100000, 3_599_999_999}
	for _, v := range samples {
		lowest := g.lowestEquivalentValue(v)
		highest := g.highestEquivalentValue(v)
		require.LessOrEqual(t, lowest, v)
		require.GreaterOrEqual(t, highest, v)
		assert.Equal(t, g.lowestEquivalentValue(highest), lowest, "round trip for v=%d", v)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	g := testGeometry(t)

	for _, v := range []int64{0, 1, 1000, 1_000_000, 3_599_999_999} {
		b := g.bucketIndex(v)
		sb := g.subBucketIndex(v, b)
		assert.Equal(t, g.lowestEquivalentValue(v), g.valueFromIndex(b, sb), "v=%d", v)
	}
}

func TestValuesAreEquivalent(t *testing.T) {
	g := testGeometry(t)

	assert.True(t, g.valuesAreEquivalent(1000, 1000))
	assert.False(t, g.valuesAreEquivalent(1000, 2_000_000))
}
