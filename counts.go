package hdrhistogram

import "sync/atomic"

// countsBackend is the counter-array access policy. Exactly one backend is
// chosen at construction time and never changes for the life of a
// histogram, so the interface call on the hot path resolves to a single,
// predictable implementation rather than genuine runtime polymorphism — a
// tagged variant fixed at construction, not virtual dispatch per call site.
type countsBackend interface {
	get(counts []int64, idx int32) int64
	increment(counts []int64, idx int32, n int64)
	addTotal(total *int64, n int64)
	loadTotal(total *int64) int64
	updateMinMax(min, max *int64, v int64)
	loadMin(min *int64) int64
	loadMax(max *int64) int64
	storeMin(min *int64, v int64)
	storeMax(max *int64, v int64)
}

// plainBackend is the single-threaded, non-synchronized policy. Used when a
// Histogram is only ever touched by one goroutine (or externally ordered).
type plainBackend struct{}

func (plainBackend) get(counts []int64, idx int32) int64 { return counts[idx] }

func (plainBackend) increment(counts []int64, idx int32, n int64) { counts[idx] += n }

func (plainBackend) addTotal(total *int64, n int64) { *total += n }

func (plainBackend) loadTotal(total *int64) int64 { return *total }

func (plainBackend) updateMinMax(min, max *int64, v int64) {
	if v != 0 && v < *min {
		*min = v
	}
	if v > *max {
		*max = v
	}
}

func (plainBackend) loadMin(min *int64) int64     { return *min }
func (plainBackend) loadMax(max *int64) int64     { return *max }
func (plainBackend) storeMin(min *int64, v int64) { *min = v }
func (plainBackend) storeMax(max *int64, v int64) { *max = v }

// atomicBackend is the lock-free, concurrent-safe policy: every counter, the
// running total, and the extrema are touched through sequentially-consistent
// atomics so many writer goroutines can call Histogram.Record concurrently
// while a single reader observes a consistent (if momentarily lagging)
// total.
type atomicBackend struct{}

func (atomicBackend) get(counts []int64, idx int32) int64 {
	return atomic.LoadInt64(&counts[idx])
}

func (atomicBackend) increment(counts []int64, idx int32, n int64) {
	atomic.AddInt64(&counts[idx], n)
}

func (atomicBackend) addTotal(total *int64, n int64) {
	atomic.AddInt64(total, n)
}

func (atomicBackend) loadTotal(total *int64) int64 {
	return atomic.LoadInt64(total)
}

// updateMinMax retries a CAS loop until the observed candidate is no longer
// improved — mirrors hdr_atomic_histogram.c's _atomic_update_min_max.
func (atomicBackend) updateMinMax(min, max *int64, v int64) {
	if v != 0 {
		for {
			cur := atomic.LoadInt64(min)
			if cur <= v {
				break
			}
			if atomic.CompareAndSwapInt64(min, cur, v) {
				break
			}
		}
	}
	for {
		cur := atomic.LoadInt64(max)
		if cur >= v {
			break
		}
		if atomic.CompareAndSwapInt64(max, cur, v) {
			break
		}
	}
}

func (atomicBackend) loadMin(min *int64) int64 { return atomic.LoadInt64(min) }
func (atomicBackend) loadMax(max *int64) int64 { return atomic.LoadInt64(max) }
func (atomicBackend) storeMin(min *int64, v int64) { atomic.StoreInt64(min, v) }
func (atomicBackend) storeMax(max *int64, v int64) { atomic.StoreInt64(max, v) }
