package hdrhistogram

import "math/bits"

// geometry is the immutable bucket/sub-bucket layout derived once at
// construction time from (lowestDiscernibleValue, highestTrackableValue,
// significantFigures). It owns all index arithmetic; the counts array
// itself lives on Histogram.
type geometry struct {
	unitMagnitude               int32
	subBucketHalfCountMagnitude int32
	subBucketCount              int32
	subBucketHalfCount          int32
	subBucketMask               int64
	bucketCount                 int32
	countsLen                   int32

	lowestDiscernibleValue int64
	highestTrackableValue  int64
	significantFigures     int32
}

func newGeometry(lowestDiscernibleValue, highestTrackableValue int64, significantFigures int32) geometry {
	unitMagnitude := int32(bits.Len64(uint64(lowestDiscernibleValue))) - 1

	largestValueWithSingleUnitResolution := 2 * pow10(int64(significantFigures))
	subBucketCountMagnitude := ceilLog2(largestValueWithSingleUnitResolution)

	subBucketHalfCountMagnitude := subBucketCountMagnitude
	if subBucketHalfCountMagnitude < 1 {
		subBucketHalfCountMagnitude = 1
	}
	subBucketHalfCountMagnitude--

	subBucketCount := int32(1) << uint(subBucketHalfCountMagnitude+1)
	subBucketHalfCount := subBucketCount / 2
	subBucketMask := int64(subBucketCount-1) << uint(unitMagnitude)

	// Smallest bucketCount such that (subBucketCount-1) << (bucketCount-1+unitMagnitude) >= highestTrackableValue.
	bucketCount := int32(1)
	for int64(subBucketCount-1)<<uint(int64(bucketCount-1)+int64(unitMagnitude)) < highestTrackableValue {
		bucketCount++
	}

	countsLen := (bucketCount + 1) * subBucketHalfCount

	return geometry{
		unitMagnitude:               unitMagnitude,
		subBucketHalfCountMagnitude: subBucketHalfCountMagnitude,
		subBucketCount:              subBucketCount,
		subBucketHalfCount:          subBucketHalfCount,
		subBucketMask:               subBucketMask,
		bucketCount:                 bucketCount,
		countsLen:                   countsLen,
		lowestDiscernibleValue:      lowestDiscernibleValue,
		highestTrackableValue:       highestTrackableValue,
		significantFigures:          significantFigures,
	}
}

// ceilLog2 returns ceil(log2(v)) for v >= 1, computed purely with integer
// bit operations (the source took the float32 log(v)/log(2) route, which is
// not portable across platforms for the boundary values this function is
// fed; bits.Len64 is exact).
func ceilLog2(v int64) int32 {
	if v <= 1 {
		return 0
	}
	n := int32(bits.Len64(uint64(v - 1)))
	return n
}

func pow10(exp int64) int64 {
	n := int64(1)
	for ; exp > 0; exp-- {
		n *= 10
	}
	return n
}

// bucketIndex returns the outer exponential-tier index for v.
func (g geometry) bucketIndex(v int64) int32 {
	pow2Ceiling := int64(64 - bits.LeadingZeros64(uint64(v)|uint64(g.subBucketMask)))
	return int32(pow2Ceiling - int64(g.unitMagnitude) - int64(g.subBucketHalfCountMagnitude+1))
}

// subBucketIndex returns the inner linear-tier index of v within bucket b.
func (g geometry) subBucketIndex(v int64, b int32) int32 {
	return int32(v >> uint(int64(b)+int64(g.unitMagnitude)))
}

// countsIndex flattens (bucket, subBucket) into the counts array offset.
func (g geometry) countsIndex(b, sb int32) int32 {
	bucketBaseIndex := (b + 1) << uint(g.subBucketHalfCountMagnitude)
	offsetInBucket := sb - g.subBucketHalfCount
	return bucketBaseIndex + offsetInBucket
}

// countsIndexFor is the composition bucketIndex -> subBucketIndex -> countsIndex
// used by record and lookup. Values above the top bucket give an index >=
// countsLen; values between highestTrackableValue and the top bucket's upper
// end still map to an index inside the counts array.
func (g geometry) countsIndexFor(v int64) int32 {
	b := g.bucketIndex(v)
	sb := g.subBucketIndex(v, b)
	return g.countsIndex(b, sb)
}

func (g geometry) valueFromIndex(b, sb int32) int64 {
	return int64(sb) << uint(int64(b)+int64(g.unitMagnitude))
}

func (g geometry) sizeOfEquivalentRange(v int64) int64 {
	b := g.bucketIndex(v)
	sb := g.subBucketIndex(v, b)
	adjustedBucket := b
	if sb >= g.subBucketCount {
		adjustedBucket++
	}
	return int64(1) << uint(int64(g.unitMagnitude)+int64(adjustedBucket))
}

func (g geometry) lowestEquivalentValue(v int64) int64 {
	b := g.bucketIndex(v)
	sb := g.subBucketIndex(v, b)
	return g.valueFromIndex(b, sb)
}

func (g geometry) nextNonEquivalentValue(v int64) int64 {
	return g.lowestEquivalentValue(v) + g.sizeOfEquivalentRange(v)
}

func (g geometry) highestEquivalentValue(v int64) int64 {
	return g.nextNonEquivalentValue(v) - 1
}

func (g geometry) medianEquivalentValue(v int64) int64 {
	return g.lowestEquivalentValue(v) + (g.sizeOfEquivalentRange(v) >> 1)
}

// valuesAreEquivalent reports whether a and b map to the same counts index.
func (g geometry) valuesAreEquivalent(a, b int64) bool {
	return g.lowestEquivalentValue(a) == g.lowestEquivalentValue(b)
}
