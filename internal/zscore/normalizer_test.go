package zscore

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statarb-go/internal/errs"
)

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 10 + math.Sin(float64(i)/3) + 0.01*float64(i%7)
	}
	return out
}

func TestNormalizeLeadingUndefined(t *testing.T) {
	spread := wave(50)
	for _, w := range []int{2, 5, 20} {
		norm, err := NewNormalizer(w, true, [2]float64{0.05, 0.05})
		require.NoError(t, err)
		res, err := norm.Normalize(spread)
		require.NoError(t, err)
		for i := 0; i < w-1; i++ {
			assert.True(t, math.IsNaN(res.Z[i]), "w=%d z[%d]", w, i)
		}
		for i := w - 1; i < len(spread); i++ {
			assert.False(t, math.IsNaN(res.Z[i]), "w=%d z[%d]", w, i)
		}
	}
}

func TestNormalizeUndefinedSpreadDelaysZ(t *testing.T) {
	spread := wave(20)
	for i := 0; i < 4; i++ {
		spread[i] = math.NaN()
	}
	norm, err := NewNormalizer(5, false, [2]float64{})
	require.NoError(t, err)
	res, err := norm.Normalize(spread)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		assert.True(t, math.IsNaN(res.Z[i]), "z[%d]", i)
	}
	assert.False(t, math.IsNaN(res.Z[8]))
}

func TestNormalizeRawValue(t *testing.T) {
	norm, err := NewNormalizer(3, false, [2]float64{})
	require.NoError(t, err)
	res, err := norm.Normalize([]float64{1, 2, 3, 10})
	require.NoError(t, err)
	// window {1,2,3}: mean 2, sample sd 1
	assert.InDelta(t, 1.0, res.Z[2], 1e-12)
	// window {2,3,10}: mean 5, sample sd sqrt(19)
	assert.InDelta(t, 5/math.Sqrt(19), res.Z[3], 1e-12)
}

func TestNormalizeZeroStdIsZero(t *testing.T) {
	norm, err := NewNormalizer(4, true, [2]float64{0.05, 0.05})
	require.NoError(t, err)
	spread := []float64{7, 7, 7, 7, 7, 7}
	res, err := norm.Normalize(spread)
	require.NoError(t, err)
	for i := 3; i < len(spread); i++ {
		assert.Equal(t, 0.0, res.Z[i])
	}
}

func TestWinsorizeWithinRawQuantiles(t *testing.T) {
	raw := make([]float64, 0, 102)
	raw = append(raw, math.NaN(), math.NaN())
	for i := 0; i < 100; i++ {
		raw = append(raw, float64(i)-50)
	}
	raw[50] = 1000
	raw[60] = -1000

	lower, upper, ok := Bounds(raw, 0.05, 0.1)
	require.True(t, ok)
	clipped := Winsorize(raw, 0.05, 0.1)
	require.Len(t, clipped, len(raw))
	assert.True(t, math.IsNaN(clipped[0]))
	assert.True(t, math.IsNaN(clipped[1]))
	for i := 2; i < len(clipped); i++ {
		assert.GreaterOrEqual(t, clipped[i], lower)
		assert.LessOrEqual(t, clipped[i], upper)
	}
	assert.Equal(t, upper, clipped[50])
	assert.Equal(t, lower, clipped[60])
	// values inside the bounds are untouched
	assert.Equal(t, raw[40], clipped[40])
}

func TestBoundsOrderStatistics(t *testing.T) {
	xs := []float64{5, 1, 4, 2, 3, 6, 8, 7, 10, 9}
	lower, upper, ok := Bounds(xs, 0.1, 0.2)
	require.True(t, ok)
	assert.Equal(t, 2.0, lower)
	assert.Equal(t, 8.0, upper)

	_, _, ok = Bounds([]float64{math.NaN()}, 0.1, 0.1)
	assert.False(t, ok)
}

func TestNormalizerValidation(t *testing.T) {
	var invalid *errs.InvalidConfigError
	_, err := NewNormalizer(1, false, [2]float64{})
	assert.True(t, errors.As(err, &invalid))
	_, err = NewNormalizer(5, true, [2]float64{0.5, 0})
	assert.True(t, errors.As(err, &invalid))

	norm, err := NewNormalizer(5, false, [2]float64{})
	require.NoError(t, err)
	_, err = norm.Normalize([]float64{1, 2})
	var insufficient *errs.InsufficientDataError
	assert.True(t, errors.As(err, &insufficient))
}
