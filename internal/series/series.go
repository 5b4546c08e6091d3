// Package series holds NaN-aware helpers over ordered float64 series.
//
// An undefined observation (not enough history yet) is represented by NaN and
// propagates through every rolling helper: a window containing NaN yields NaN.
package series

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"statarb-go/internal/errs"
)

// Epsilon is the relative tolerance under which a dispersion counts as zero.
const Epsilon = 1e-12

// Undefined returns the marker for a missing observation.
func Undefined() float64 { return math.NaN() }

// IsDefined reports whether x carries a value.
func IsDefined(x float64) bool { return !math.IsNaN(x) }

// NearZero reports whether v is zero relative to the magnitude scale.
func NearZero(v, scale float64) bool {
	return math.Abs(v) <= Epsilon*math.Max(1, math.Abs(scale))
}

// Undefineds returns n undefined observations.
func Undefineds(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Defined returns the defined values of xs in order.
func Defined(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if IsDefined(x) {
			out = append(out, x)
		}
	}
	return out
}

// Rolling evaluates fn over each trailing window of w points.
func Rolling(xs []float64, w int, fn func(window []float64) float64) []float64 {
	out := Undefineds(len(xs))
	if w < 1 {
		return out
	}
	for t := w - 1; t < len(xs); t++ {
		window := xs[t-w+1 : t+1]
		if hasUndefined(window) {
			continue
		}
		out[t] = fn(window)
	}
	return out
}

// RollingPair evaluates fn over aligned trailing windows of a and b.
func RollingPair(a, b []float64, w int, fn func(wa, wb []float64) float64) []float64 {
	n := min(len(a), len(b))
	out := Undefineds(n)
	if w < 1 {
		return out
	}
	for t := w - 1; t < n; t++ {
		wa, wb := a[t-w+1:t+1], b[t-w+1:t+1]
		if hasUndefined(wa) || hasUndefined(wb) {
			continue
		}
		out[t] = fn(wa, wb)
	}
	return out
}

// RollingMean is the trailing arithmetic mean.
func RollingMean(xs []float64, w int) []float64 {
	return Rolling(xs, w, func(win []float64) float64 {
		m, _ := stats.Mean(win)
		return m
	})
}

// RollingStd is the trailing sample (n-1) standard deviation.
func RollingStd(xs []float64, w int) []float64 {
	return Rolling(xs, w, func(win []float64) float64 {
		sd, err := stats.StandardDeviationSample(win)
		if err != nil {
			return math.NaN()
		}
		return sd
	})
}

// RollingVar is the trailing sample variance.
func RollingVar(xs []float64, w int) []float64 {
	return Rolling(xs, w, func(win []float64) float64 {
		v, err := stats.SampleVariance(win)
		if err != nil {
			return math.NaN()
		}
		return v
	})
}

// RollingCov is the trailing sample covariance of a and b.
func RollingCov(a, b []float64, w int) []float64 {
	return RollingPair(a, b, w, func(wa, wb []float64) float64 {
		c, err := stats.Covariance(wa, wb)
		if err != nil {
			return math.NaN()
		}
		return c
	})
}

// PctChange returns simple returns; the first bar has no prior and is 0.
func PctChange(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i := 1; i < len(xs); i++ {
		if xs[i-1] == 0 || !IsDefined(xs[i]) || !IsDefined(xs[i-1]) {
			continue
		}
		out[i] = xs[i]/xs[i-1] - 1
	}
	return out
}

// Diff returns first differences with 0 at the first bar.
func Diff(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i := 1; i < len(xs); i++ {
		out[i] = xs[i] - xs[i-1]
	}
	return out
}

// RunningMax is the expanding maximum of xs.
func RunningMax(xs []float64) []float64 {
	out := make([]float64, len(xs))
	peak := math.Inf(-1)
	for i, x := range xs {
		if x > peak {
			peak = x
		}
		out[i] = peak
	}
	return out
}

// Drawdown returns value/running_max - 1 at each bar, 0 where the peak is not positive.
func Drawdown(values []float64) []float64 {
	peaks := RunningMax(values)
	out := make([]float64, len(values))
	for i, v := range values {
		if peaks[i] <= 0 {
			continue
		}
		out[i] = v/peaks[i] - 1
	}
	return out
}

// CumulativeValue compounds returns onto initial capital.
func CumulativeValue(returns []float64, initial float64) []float64 {
	out := make([]float64, len(returns))
	value := initial
	for i, r := range returns {
		value *= 1 + r
		out[i] = value
	}
	return out
}

// Correlation is the Pearson correlation of two equal-length series.
func Correlation(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return math.NaN(), fmt.Errorf("correlation: length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) < 2 {
		return math.NaN(), errs.NewInsufficientData("correlation", len(a), 2)
	}
	for _, xs := range [][]float64{a, b} {
		v, err := stats.SampleVariance(xs)
		if err != nil {
			return math.NaN(), err
		}
		m, _ := stats.Mean(xs)
		if NearZero(v, m*m) {
			return math.NaN(), errs.NewDegenerateVariance("correlation", -1)
		}
	}
	return stats.Correlation(a, b)
}

func hasUndefined(xs []float64) bool {
	for _, x := range xs {
		if !IsDefined(x) {
			return true
		}
	}
	return false
}
