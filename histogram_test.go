package hdrhistogram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScenarioConfig() Config {
	return Config{
		LowestDiscernibleValue: 1,
		HighestTrackableValue:  3_600_000_000,
		SignificantFigures:     3,
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", newScenarioConfig(), true},
		{"zero lowest", Config{0, 100, 3}, false},
		{"highest too small", Config{10, 15, 3}, false},
		{"sigfigs too low", Config{1, 100, 0}, false},
		{"sigfigs too high", Config{1, 100, 6}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidArgument)
			}
		})
	}
}

func TestRecordRejectsOutOfRange(t *testing.T) {
	h, err := New(newScenarioConfig())
	require.NoError(t, err)

	assert.False(t, h.Record(-1))
	assert.False(t, h.Record(3_600_000_001))
	assert.True(t, h.Record(0))
	assert.EqualValues(t, 1, h.TotalCount())
}

func TestResetClearsState(t *testing.T) {
	h, err := New(newScenarioConfig())
	require.NoError(t, err)

	h.Record(1000)
	h.Record(5000)
	require.EqualValues(t, 2, h.TotalCount())

	h.Reset()
	assert.EqualValues(t, 0, h.TotalCount())
	assert.Equal(t, int64(math.MaxInt64), h.Min())
	assert.EqualValues(t, 0, h.Max())
}

// TestCoordinatedOmissionBackfillsMissedSamples records a long stall with
// RecordCorrectedValue and checks that the backfilled samples pull the
// upper percentiles toward the stall length without disturbing the bulk of
// the distribution below it.
func TestCoordinatedOmissionBackfillsMissedSamples(t *testing.T) {
	h, err := New(newScenarioConfig())
	require.NoError(t, err)

	for i := 0; i < 10_000; i++ {
		require.True(t, h.Record(1000))
	}
	require.True(t, h.RecordCorrectedValue(100_000_000, 10_000))

	assert.EqualValues(t, 20_000, h.TotalCount())
	assert.EqualValues(t, 1000, h.ValueAtPercentile(30))

	p99 := h.ValueAtPercentile(99)
	delta := float64(p99-98_000_000) / 98_000_000
	assert.InDelta(t, 0, delta, 0.001, "p99=%d", p99)
}

// TestRawRecordingWithoutCorrection records the same stall with a plain
// Record call and checks that, absent backfill, the stall shows up only as
// a single outlier at the very top of the distribution.
func TestRawRecordingWithoutCorrection(t *testing.T) {
	h, err := New(newScenarioConfig())
	require.NoError(t, err)

	for i := 0; i < 10_000; i++ {
		require.True(t, h.Record(1000))
	}
	require.True(t, h.Record(100_000_000))

	assert.EqualValues(t, 10_001, h.TotalCount())
	assert.EqualValues(t, 100_000_000, h.ValueAtPercentile(99.999))
}

func TestMeanAndStdDevEmpty(t *testing.T) {
	h, err := New(newScenarioConfig())
	require.NoError(t, err)

	assert.Zero(t, h.Mean())
	assert.Zero(t, h.StdDev())
}

func TestMeanApproximatesRecordedValue(t *testing.T) {
	h, err := New(newScenarioConfig())
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		h.Record(5000)
	}
	assert.InDelta(t, 5000, h.Mean(), 10)
	assert.InDelta(t, 0, h.StdDev(), 10)
}

func TestMinMax(t *testing.T) {
	h, err := New(newScenarioConfig())
	require.NoError(t, err)

	h.Record(500)
	h.Record(10_000)
	h.Record(250)

	assert.Equal(t, h.lowestEquivalentValue(250), h.Min())
	assert.Equal(t, h.highestEquivalentValue(10_000), h.Max())
}

func TestMergeRejectsIncompatibleGeometry(t *testing.T) {
	a, err := New(newScenarioConfig())
	require.NoError(t, err)
	b, err := New(Config{LowestDiscernibleValue: 1, HighestTrackableValue: 100_000, SignificantFigures: 2})
	require.NoError(t, err)

	b.Record(10)
	dropped, err := a.Merge(b)
	assert.ErrorIs(t, err, ErrIncompatibleGeometry)
	assert.EqualValues(t, 1, dropped)
}

func TestMergeAddsCounts(t *testing.T) {
	a, err := New(newScenarioConfig())
	require.NoError(t, err)
	b, err := New(newScenarioConfig())
	require.NoError(t, err)

	a.Record(1000)
	b.Record(1000)
	b.Record(2000)

	dropped, err := a.Merge(b)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.EqualValues(t, 3, a.TotalCount())
	assert.EqualValues(t, 2, a.CountAtValue(1000))
}

func TestSubtractFromRemovesCounts(t *testing.T) {
	a, err := New(newScenarioConfig())
	require.NoError(t, err)
	b, err := New(newScenarioConfig())
	require.NoError(t, err)

	a.Record(1000)
	a.Record(1000)
	b.Record(1000)

	dropped, err := a.SubtractFrom(b)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.EqualValues(t, 1, a.TotalCount())
}

func TestGetMemoryFootprintGrowsWithCounts(t *testing.T) {
	small, err := New(Config{LowestDiscernibleValue: 1, HighestTrackableValue: 1000, SignificantFigures: 1})
	require.NoError(t, err)
	big, err := New(newScenarioConfig())
	require.NoError(t, err)

	assert.Less(t, small.GetMemoryFootprint(), big.GetMemoryFootprint())
}

func TestHistogramValuesAreEquivalent(t *testing.T) {
	h, err := New(newScenarioConfig())
	require.NoError(t, err)
	assert.True(t, h.ValuesAreEquivalent(1000, 1000))
}

func TestCumulativeDistributionReachesTotal(t *testing.T) {
	h, err := New(newScenarioConfig())
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		h.Record(int64(1000 + i))
	}

	brackets := h.CumulativeDistribution(5)
	require.NotEmpty(t, brackets)

	last := brackets[len(brackets)-1]
	assert.EqualValues(t, 100, last.Quantile)
	assert.EqualValues(t, h.TotalCount(), last.Count)

	for i := 1; i < len(brackets); i++ {
		assert.GreaterOrEqual(t, brackets[i].Quantile, brackets[i-1].Quantile)
	}
}
