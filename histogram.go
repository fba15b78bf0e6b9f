package hdrhistogram

import (
	"math"
	"unsafe"
)

// Config captures the three knobs that determine a histogram's geometry.
// Config is immutable once passed to New: every derived field is computed
// once and never revisited.
type Config struct {
	// LowestDiscernibleValue is the smallest magnitude tracked with full
	// precision. Must be >= 1.
	LowestDiscernibleValue int64
	// HighestTrackableValue is the configured upper bound. Must be at least
	// twice LowestDiscernibleValue.
	HighestTrackableValue int64
	// SignificantFigures is the number of decimal digits of relative
	// precision preserved for every recorded value, in [1, 5].
	SignificantFigures int32
}

func (c Config) validate() error {
	if c.LowestDiscernibleValue < 1 {
		return wrap(ErrInvalidArgument, "lowest discernible value must be >= 1")
	}
	if c.HighestTrackableValue < 2*c.LowestDiscernibleValue {
		return wrap(ErrInvalidArgument, "highest trackable value must be >= 2x lowest discernible value")
	}
	if c.SignificantFigures < 1 || c.SignificantFigures > 5 {
		return wrap(ErrInvalidArgument, "significant figures must be in [1, 5]")
	}
	return nil
}

// Histogram records non-negative integer magnitudes with bounded relative
// error across a wide dynamic range. It is a single contiguous allocation
// conceptually (header + counts); in Go that is a struct whose counts slice
// is allocated once at New and never grown.
type Histogram struct {
	geometry
	backend countsBackend

	counts     []int64
	totalCount int64
	minValue   int64
	maxValue   int64
}

// New builds a Histogram with single-threaded (non-atomic) counters. Callers
// responsible for external synchronization if shared across goroutines
// should reach for NewAtomic instead.
func New(cfg Config) (*Histogram, error) {
	return newHistogram(cfg, plainBackend{})
}

// NewAtomic builds a Histogram whose counts, total, and extrema are all
// updated through sequentially-consistent atomics, safe for concurrent
// Record calls from many goroutines with at most one concurrent reader
// walking an iterator.
func NewAtomic(cfg Config) (*Histogram, error) {
	return newHistogram(cfg, atomicBackend{})
}

func newHistogram(cfg Config, backend countsBackend) (*Histogram, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	g := newGeometry(cfg.LowestDiscernibleValue, cfg.HighestTrackableValue, cfg.SignificantFigures)
	h := &Histogram{
		geometry: g,
		backend:  backend,
		counts:   make([]int64, g.countsLen),
		maxValue: 0,
		minValue: math.MaxInt64,
	}
	return h, nil
}

// Reset zeroes all counts, the running total, and the extrema, preserving
// geometry.
func (h *Histogram) Reset() {
	for i := range h.counts {
		h.counts[i] = 0
	}
	h.totalCount = 0
	h.backend.storeMin(&h.minValue, math.MaxInt64)
	h.backend.storeMax(&h.maxValue, 0)
}

// Record stores one occurrence of v, returning false (and recording nothing)
// if v is negative or above the trackable range.
func (h *Histogram) Record(v int64) bool {
	return h.RecordN(v, 1)
}

// RecordN stores n occurrences of v.
func (h *Histogram) RecordN(v, n int64) bool {
	if v < 0 || v > h.highestTrackableValue {
		return false
	}
	idx := h.countsIndexFor(v)
	if idx < 0 || idx >= h.countsLen {
		return false
	}
	h.backend.increment(h.counts, idx, n)
	h.backend.addTotal(&h.totalCount, n)
	h.backend.updateMinMax(&h.minValue, &h.maxValue, v)
	return true
}

// RecordCorrectedValue records v, then backfills the coordinated-omission
// gap: for m = v - expectedInterval stepping down by expectedInterval while
// m >= expectedInterval, additionally records m. This compensates for a
// measurement loop that was itself blocked by the system under test and so
// failed to sample during a stall; it must only be called from the same
// logical producer whose measurement defined expectedInterval — it is a
// statistical correction, not a concurrency primitive.
func (h *Histogram) RecordCorrectedValue(v, expectedInterval int64) bool {
	if !h.Record(v) {
		return false
	}
	if expectedInterval <= 0 || v <= expectedInterval {
		return true
	}
	for missing := v - expectedInterval; missing >= expectedInterval; missing -= expectedInterval {
		if !h.Record(missing) {
			return false
		}
	}
	return true
}

// CountAtIndex returns the raw counter stored at flat index i.
func (h *Histogram) CountAtIndex(i int32) int64 {
	return h.backend.get(h.counts, i)
}

// CountAtValue returns the counter for whichever index v maps to.
func (h *Histogram) CountAtValue(v int64) int64 {
	idx := h.countsIndexFor(v)
	if idx < 0 || idx >= h.countsLen {
		return 0
	}
	return h.CountAtIndex(idx)
}

// TotalCount returns the number of values recorded so far.
func (h *Histogram) TotalCount() int64 {
	return h.backend.loadTotal(&h.totalCount)
}

// ValuesAreEquivalent reports whether a and b fall in the same counts index.
func (h *Histogram) ValuesAreEquivalent(a, b int64) bool {
	return h.geometry.valuesAreEquivalent(a, b)
}

// ValueAtPercentile returns the highest-equivalent value of the index whose
// cumulative count first reaches round(p/100 * totalCount).
func (h *Histogram) ValueAtPercentile(p float64) int64 {
	if p > 100 {
		p = 100
	}
	total := h.TotalCount()
	if total == 0 {
		return 0
	}
	countAtPercentile := int64((p/100)*float64(total) + 0.5)

	it := h.allValuesIterator()
	var running int64
	for it.next() {
		running += it.countAtIndex
		if running >= countAtPercentile {
			return h.highestEquivalentValue(it.valueFromIndex)
		}
	}
	return 0
}

// Mean returns the approximate arithmetic mean of recorded values, 0 if
// empty.
func (h *Histogram) Mean() float64 {
	total := h.TotalCount()
	if total == 0 {
		return 0
	}
	var sum int64
	it := h.allValuesIterator()
	for it.next() {
		if it.countAtIndex != 0 {
			sum += it.countAtIndex * h.medianEquivalentValue(it.valueFromIndex)
		}
	}
	return float64(sum) / float64(total)
}

// StdDev returns the population standard deviation of recorded values.
func (h *Histogram) StdDev() float64 {
	total := h.TotalCount()
	if total == 0 {
		return 0
	}
	mean := h.Mean()
	var sumSquares float64
	it := h.allValuesIterator()
	for it.next() {
		if it.countAtIndex != 0 {
			dev := float64(h.medianEquivalentValue(it.valueFromIndex)) - mean
			sumSquares += dev * dev * float64(it.countAtIndex)
		}
	}
	return math.Sqrt(sumSquares / float64(total))
}

// Min returns the lowest recorded value's lowest-equivalent value, or
// math.MaxInt64 if nothing has been recorded.
func (h *Histogram) Min() int64 {
	min := h.backend.loadMin(&h.minValue)
	if min == math.MaxInt64 {
		return min
	}
	return h.lowestEquivalentValue(min)
}

// Max returns the highest recorded value's highest-equivalent value, or 0 if
// nothing has been recorded.
func (h *Histogram) Max() int64 {
	max := h.backend.loadMax(&h.maxValue)
	if max == 0 {
		return 0
	}
	return h.highestEquivalentValue(max)
}

// GetMemoryFootprint returns the approximate number of bytes owned by h,
// including the counts array.
func (h *Histogram) GetMemoryFootprint() int {
	return int(unsafe.Sizeof(*h)) + len(h.counts)*8
}

// Bracket is one step of a CumulativeDistribution: the percentile reached by
// that step and the cumulative count at it.
type Bracket struct {
	Quantile float64
	Count    int64
}

// CumulativeDistribution walks a percentile iterator at ticksPerHalfDistance
// resolution and returns the ordered list of (quantile, cumulative count)
// brackets it visits — the same walk the percentile printer makes for its
// rows, collected into a slice.
func (h *Histogram) CumulativeDistribution(ticksPerHalfDistance int32) []Bracket {
	var result []Bracket
	it := h.percentileIterator(ticksPerHalfDistance)
	for it.Next() {
		result = append(result, Bracket{
			Quantile: it.Percentile(),
			Count:    it.CountToIndex(),
		})
	}
	return result
}

// Merge adds every recorded value of src into h, returning the number of
// values dropped because src's geometry is incompatible with h's. Unlike a
// per-value partial merge, a geometry mismatch fails the whole call fast:
// src's values are never selectively merged in that case.
func (h *Histogram) Merge(src *Histogram) (dropped int64, err error) {
	if !h.sameGeometry(src) {
		return src.TotalCount(), wrap(ErrIncompatibleGeometry, "Merge")
	}
	it := src.recordedValuesIterator()
	for it.Next() {
		if it.countAtIndex == 0 {
			continue
		}
		if !h.RecordN(it.valueFromIndex, it.countAtIndex) {
			dropped += it.countAtIndex
		}
	}
	return dropped, nil
}

// SubtractFrom subtracts every recorded value of src from h. Like Merge,
// src must share h's geometry exactly.
func (h *Histogram) SubtractFrom(src *Histogram) (dropped int64, err error) {
	if !h.sameGeometry(src) {
		return src.TotalCount(), wrap(ErrIncompatibleGeometry, "SubtractFrom")
	}
	it := src.recordedValuesIterator()
	for it.Next() {
		if it.countAtIndex == 0 {
			continue
		}
		if !h.RecordN(it.valueFromIndex, -it.countAtIndex) {
			dropped += it.countAtIndex
		}
	}
	return dropped, nil
}

func (h *Histogram) sameGeometry(o *Histogram) bool {
	return h.lowestDiscernibleValue == o.lowestDiscernibleValue &&
		h.highestTrackableValue == o.highestTrackableValue &&
		h.significantFigures == o.significantFigures
}
