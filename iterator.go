package hdrhistogram

import "math"

// cursor is the shared iteration state every iterator in this file wraps: it
// walks flat counts-array indices in (bucket, sub-bucket) order, tracking
// the running cumulative count and the value each index represents.
// Iterators are single-pass and safe to advance past their logical end —
// next() keeps returning false rather than panicking.
type cursor struct {
	h *Histogram

	bucketIndex    int32
	subBucketIndex int32

	countAtIndex           int64
	countToIndex           int64
	valueFromIndex         int64
	highestEquivalentValue int64
}

func newCursor(h *Histogram) cursor {
	return cursor{h: h, subBucketIndex: -1}
}

func (c *cursor) next() bool {
	if c.countToIndex >= c.h.TotalCount() {
		return false
	}

	c.subBucketIndex++
	if c.subBucketIndex >= c.h.subBucketCount {
		c.subBucketIndex = c.h.subBucketHalfCount
		c.bucketIndex++
	}
	if c.bucketIndex >= c.h.bucketCount {
		return false
	}

	idx := c.h.countsIndex(c.bucketIndex, c.subBucketIndex)
	c.countAtIndex = c.h.CountAtIndex(idx)
	c.countToIndex += c.countAtIndex
	c.valueFromIndex = c.h.valueFromIndex(c.bucketIndex, c.subBucketIndex)
	c.highestEquivalentValue = c.h.highestEquivalentValue(c.valueFromIndex)

	return true
}

// AllValuesIterator walks every counts index in order, including zero-count
// ones, until the cumulative count reaches the total.
type AllValuesIterator struct {
	cursor
}

func (h *Histogram) allValuesIterator() *AllValuesIterator {
	return &AllValuesIterator{cursor: newCursor(h)}
}

// Next advances to the next index; returns false once exhausted.
func (it *AllValuesIterator) Next() bool { return it.cursor.next() }

// CountAtIndex is the raw counter at the current index.
func (it *AllValuesIterator) CountAtIndex() int64 { return it.countAtIndex }

// Value is the lowest value mapping to the current index.
func (it *AllValuesIterator) Value() int64 { return it.valueFromIndex }

// HighestEquivalentValue is the upper bound of the current index's
// equivalence range.
func (it *AllValuesIterator) HighestEquivalentValue() int64 { return it.highestEquivalentValue }

// RecordedValuesIterator skips zero-count indices.
type RecordedValuesIterator struct {
	cursor
	// CountAddedInThisStep is the count contributed by the current index —
	// identical to CountAtIndex for this iterator, exposed under the name
	// the spec uses for step-based iterators.
	CountAddedInThisStep int64
}

func (h *Histogram) recordedValuesIterator() *RecordedValuesIterator {
	return &RecordedValuesIterator{cursor: newCursor(h)}
}

func (it *RecordedValuesIterator) Next() bool {
	for it.cursor.next() {
		if it.countAtIndex != 0 {
			it.CountAddedInThisStep = it.countAtIndex
			return true
		}
	}
	return false
}

func (it *RecordedValuesIterator) CountAtIndex() int64 { return it.countAtIndex }
func (it *RecordedValuesIterator) Value() int64        { return it.valueFromIndex }

// steppedIterator backs both the linear and logarithmic iterators: both
// report one value per "tick" of a reporting level that climbs over the
// value range, accumulating every underlying index whose highest-equivalent
// value falls at or below the highest equivalent of the current level (so the
// index containing the level is part of its step) — emitting a step even
// when its count is zero, up to and including the step whose level is
// equivalent to or above the highest recorded value.
type steppedIterator struct {
	cursor

	nextReportingLevel int64
	maxValueToIterate  int64

	pendingValid   bool
	pendingCount   int64
	pendingHighest int64

	countAddedInThisStep int64
	valueAtStep          int64
	done                 bool

	advance func(level int64) int64
}

func newSteppedIterator(h *Histogram, firstLevel int64, advance func(int64) int64) *steppedIterator {
	return &steppedIterator{
		cursor:             newCursor(h),
		nextReportingLevel: firstLevel,
		maxValueToIterate:  h.highestEquivalentValue(h.Max()),
		advance:            advance,
	}
}

func (it *steppedIterator) next() bool {
	if it.done {
		return false
	}
	if it.h.TotalCount() == 0 {
		it.done = true
		return false
	}

	it.countAddedInThisStep = 0
	for {
		if !it.pendingValid {
			if !it.cursor.next() {
				break
			}
			it.pendingCount = it.countAtIndex
			it.pendingHighest = it.highestEquivalentValue
			it.pendingValid = true
		}
		if it.pendingHighest <= it.h.highestEquivalentValue(it.nextReportingLevel) {
			it.countAddedInThisStep += it.pendingCount
			it.pendingValid = false
			continue
		}
		break
	}

	it.valueAtStep = it.nextReportingLevel
	current := it.nextReportingLevel
	it.nextReportingLevel = it.advance(it.nextReportingLevel)

	if it.h.highestEquivalentValue(current) >= it.maxValueToIterate {
		it.done = true
	}
	return true
}

// LinearIterator reports one step per valueUnitsPerBucket value-units (spec
// §4.D).
type LinearIterator struct {
	*steppedIterator
}

func (h *Histogram) linearIterator(valueUnitsPerBucket int64) *LinearIterator {
	return &LinearIterator{steppedIterator: newSteppedIterator(h, valueUnitsPerBucket, func(level int64) int64 {
		return level + valueUnitsPerBucket
	})}
}

func (it *LinearIterator) Next() bool                 { return it.steppedIterator.next() }
func (it *LinearIterator) CountAddedInThisStep() int64 { return it.countAddedInThisStep }
func (it *LinearIterator) Value() int64                { return it.valueAtStep }

// LogIterator reports one step per multiplicative tick of logBase, starting
// at firstBucketValue.
type LogIterator struct {
	*steppedIterator
}

func (h *Histogram) logIterator(firstBucketValue int64, logBase float64) *LogIterator {
	return &LogIterator{steppedIterator: newSteppedIterator(h, firstBucketValue, func(level int64) int64 {
		next := float64(level) * logBase
		if next < float64(level)+1 {
			next = float64(level) + 1
		}
		return int64(next)
	})}
}

func (it *LogIterator) Next() bool                 { return it.steppedIterator.next() }
func (it *LogIterator) CountAddedInThisStep() int64 { return it.countAddedInThisStep }
func (it *LogIterator) Value() int64                { return it.valueAtStep }

// PercentileIterator advances more frequently as the percentile approaches
// 100: percentileToIterateTo grows by
// 100 / (ticksPerHalfDistance * 2^(log2(100/(100-p)) + 1)) each step. After
// the underlying cumulative count reaches the total, it yields one final
// step at percentile 100 and then terminates.
type PercentileIterator struct {
	cursor

	ticksPerHalfDistance  int32
	percentileToIterateTo float64
	percentile            float64
	seenLastValue         bool
}

func (h *Histogram) percentileIterator(ticksPerHalfDistance int32) *PercentileIterator {
	return &PercentileIterator{
		cursor:               newCursor(h),
		ticksPerHalfDistance: ticksPerHalfDistance,
	}
}

func (it *PercentileIterator) Next() bool {
	if it.countToIndex >= it.h.TotalCount() {
		if it.seenLastValue {
			return false
		}
		it.seenLastValue = true
		it.percentile = 100
		return true
	}

	if it.subBucketIndex == -1 && !it.cursor.next() {
		return false
	}

	done := false
	for !done {
		currentPercentile := (100.0 * float64(it.countToIndex)) / float64(it.h.TotalCount())
		if it.countAtIndex != 0 && it.percentileToIterateTo <= currentPercentile {
			it.percentile = it.percentileToIterateTo
			halfDistance := math.Pow(2, (math.Log(100.0/(100.0-it.percentileToIterateTo))/math.Log(2))+1)
			reportingTicks := float64(it.ticksPerHalfDistance) * halfDistance
			it.percentileToIterateTo += 100.0 / reportingTicks
			return true
		}
		done = !it.cursor.next()
	}
	return true
}

func (it *PercentileIterator) Value() int64           { return it.h.highestEquivalentValue(it.valueFromIndex) }
func (it *PercentileIterator) Percentile() float64     { return it.percentile }
func (it *PercentileIterator) CountAtIndex() int64     { return it.countAtIndex }
func (it *PercentileIterator) CountToIndex() int64     { return it.countToIndex }
func (it *PercentileIterator) InversePercentile() float64 {
	if it.percentile >= 100 {
		return math.Inf(1)
	}
	return 1.0 / (1.0 - (it.percentile / 100.0))
}
