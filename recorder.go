package hdrhistogram

import "sync/atomic"

// IntervalRecorder holds a double-buffered pair of histograms and a phaser
// so a sampler can swap in a fresh histogram without ever stalling a
// recorder.
type IntervalRecorder struct {
	active   atomic.Pointer[Histogram]
	inactive *Histogram
	phaser   *WriterReaderPhaser
}

// NewIntervalRecorder wraps two histograms of identical geometry — the
// first is active immediately and is what the first Sample call returns; the
// second becomes active at that first swap.
func NewIntervalRecorder(active, inactive *Histogram) *IntervalRecorder {
	r := &IntervalRecorder{
		inactive: inactive,
		phaser:   NewWriterReaderPhaser(),
	}
	r.active.Store(active)
	return r
}

// Update invokes fn against the currently active histogram, guarded by a
// writer-enter/exit pair so a concurrent Sample call can detect the
// critical section has closed. fn is typically a Record/RecordN call.
func (r *IntervalRecorder) Update(fn func(*Histogram)) {
	token := r.phaser.WriterEnter()
	defer r.phaser.WriterExit(token)
	fn(r.active.Load())
}

// Sample swaps the active and inactive histograms and returns the
// now-quiesced former-active histogram. The caller owns resetting the
// returned histogram (or a fresh replacement) before it can be handed back
// in as the next inactive buffer — snapshot cadence is deliberately left to
// the caller rather than fixed by the recorder.
func (r *IntervalRecorder) Sample() *Histogram {
	r.phaser.ReaderLock()
	defer r.phaser.ReaderUnlock()

	temp := r.inactive
	r.inactive = r.active.Load()
	r.active.Store(temp)

	r.phaser.FlipPhase(0)

	return r.inactive
}
