package hdrhistogram

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaserFlipDrainsInFlightWriters(t *testing.T) {
	p := NewWriterReaderPhaser()

	const writers = 64
	var wg sync.WaitGroup
	wg.Add(writers)

	release := make(chan struct{})
	entered := make(chan struct{}, writers)

	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			token := p.WriterEnter()
			entered <- struct{}{}
			<-release
			p.WriterExit(token)
		}()
	}

	for i := 0; i < writers; i++ {
		<-entered
	}

	flipped := make(chan struct{})
	go func() {
		p.ReaderLock()
		defer p.ReaderUnlock()
		p.FlipPhase(0)
		close(flipped)
	}()

	select {
	case <-flipped:
		t.Fatal("FlipPhase returned before in-flight writers exited")
	default:
	}

	close(release)
	wg.Wait()
	<-flipped
}

func TestPhaserConcurrentWritersNeverPanic(t *testing.T) {
	p := NewWriterReaderPhaser()
	var counter int64
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				token := p.WriterEnter()
				mu.Lock()
				counter++
				mu.Unlock()
				p.WriterExit(token)
			}
		}()
	}

	for i := 0; i < 10; i++ {
		p.ReaderLock()
		p.FlipPhase(0)
		p.ReaderUnlock()
	}

	wg.Wait()
	assert.EqualValues(t, 32*1000, counter)
}
