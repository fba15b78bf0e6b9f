package hdrhistogram

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainBackendBasic(t *testing.T) {
	var b plainBackend
	counts := make([]int64, 4)
	b.increment(counts, 1, 5)
	assert.EqualValues(t, 5, b.get(counts, 1))

	var total int64
	b.addTotal(&total, 3)
	assert.EqualValues(t, 3, b.loadTotal(&total))

	min, max := int64(100), int64(0)
	b.updateMinMax(&min, &max, 50)
	assert.EqualValues(t, 50, min)
	assert.EqualValues(t, 50, max)
}

func TestAtomicBackendConcurrentIncrement(t *testing.T) {
	var b atomicBackend
	counts := make([]int64, 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				b.increment(counts, 0, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 50_000, b.get(counts, 0))
}

func TestAtomicBackendUpdateMinMaxConcurrent(t *testing.T) {
	var b atomicBackend
	min, max := int64(1<<62), int64(0)

	var wg sync.WaitGroup
	for i := int64(1); i <= 100; i++ {
		wg.Add(1)
		go func(v int64) {
			defer wg.Done()
			b.updateMinMax(&min, &max, v)
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, b.loadMin(&min))
	assert.EqualValues(t, 100, b.loadMax(&max))
}

func TestWrapError(t *testing.T) {
	err := wrap(ErrInvalidArgument, "context")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "context")

	bare := wrap(ErrInvalidArgument, "")
	assert.Equal(t, ErrInvalidArgument, bare)
}
