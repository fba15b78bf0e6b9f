package hdrhistogram

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// WriterReaderPhaser lets many writer goroutines record into a histogram
// wait-free while a single flipping goroutine drains them without blocking
// new arrivals: startEpoch's sign distinguishes the "even" and "odd"
// phases, and WriterExit always lands in whichever end-epoch counter
// matches the phase its token was issued under.
type WriterReaderPhaser struct {
	startEpoch   int64
	evenEndEpoch int64
	oddEndEpoch  int64
	readerMu     sync.Mutex
}

// NewWriterReaderPhaser returns a phaser in its initial even phase.
func NewWriterReaderPhaser() *WriterReaderPhaser {
	return &WriterReaderPhaser{
		startEpoch:   0,
		evenEndEpoch: 0,
		oddEndEpoch:  int64(minInt64),
	}
}

const minInt64 = -1 << 63

// WriterEnter must be called before touching writer-owned state; it returns
// a token that must later be passed to WriterExit. Lock-free, O(1), never
// blocks.
func (p *WriterReaderPhaser) WriterEnter() int64 {
	return atomic.AddInt64(&p.startEpoch, 1) - 1
}

// WriterExit completes the critical section started by the WriterEnter call
// that produced token.
func (p *WriterReaderPhaser) WriterExit(token int64) {
	if token < 0 {
		atomic.AddInt64(&p.oddEndEpoch, 1)
	} else {
		atomic.AddInt64(&p.evenEndEpoch, 1)
	}
}

// ReaderLock acquires the exclusive lock flip-phase operations require.
func (p *WriterReaderPhaser) ReaderLock() { p.readerMu.Lock() }

// ReaderUnlock releases the lock acquired by ReaderLock.
func (p *WriterReaderPhaser) ReaderUnlock() { p.readerMu.Unlock() }

// FlipPhase must be called with the reader lock held. It swaps the active
// phase and blocks until every writer that entered under the outgoing phase
// has called WriterExit — i.e. until the outgoing phase's in-flight writers
// have drained. yieldSleep, if non-zero, is slept between polls instead of
// yielding the OS thread; pass 0 to spin-yield.
func (p *WriterReaderPhaser) FlipPhase(yieldSleep time.Duration) {
	startEpoch := atomic.LoadInt64(&p.startEpoch)
	nextPhaseIsEven := startEpoch < 0

	var initialStartValue int64
	if nextPhaseIsEven {
		initialStartValue = 0
		atomic.StoreInt64(&p.evenEndEpoch, initialStartValue)
	} else {
		initialStartValue = minInt64
		atomic.StoreInt64(&p.oddEndEpoch, initialStartValue)
	}

	startValueAtFlip := atomic.SwapInt64(&p.startEpoch, initialStartValue)

	for {
		var caughtUp bool
		if nextPhaseIsEven {
			caughtUp = atomic.LoadInt64(&p.oddEndEpoch) == startValueAtFlip
		} else {
			caughtUp = atomic.LoadInt64(&p.evenEndEpoch) == startValueAtFlip
		}
		if caughtUp {
			return
		}
		if yieldSleep == 0 {
			runtime.Gosched()
		} else {
			time.Sleep(yieldSleep)
		}
	}
}
