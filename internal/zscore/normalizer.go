// Package zscore standardizes a spread into a rolling, outlier-clipped z-score.
package zscore

import (
	"math"
	"sort"

	"statarb-go/internal/errs"
	"statarb-go/internal/series"
)

// Normalizer converts a spread into z-scores over a trailing window.
type Normalizer struct {
	window    int
	winsorize bool
	limits    [2]float64
}

// Result holds the rolling moments, the raw z-score, and the (optionally winsorized) z-score.
type Result struct {
	Mean []float64
	Std  []float64
	Raw  []float64
	Z    []float64
}

// NewNormalizer builds a Normalizer. limits are the lower and upper tail fractions, each in [0, 0.5).
func NewNormalizer(window int, winsorize bool, limits [2]float64) (*Normalizer, error) {
	if window < 2 {
		return nil, errs.NewInvalidConfig("window", "must be >= 2")
	}
	for _, l := range limits {
		if l < 0 || l >= 0.5 {
			return nil, errs.NewInvalidConfig("winsorize_limits", "each limit must be in [0, 0.5)")
		}
	}
	return &Normalizer{window: window, winsorize: winsorize, limits: limits}, nil
}

// Normalize computes (spread - mean) / std over the trailing window.
//
// A window with zero standard deviation yields a z-score of 0. Winsorization
// quantiles are taken over the entire realized raw series, not per window.
func (n *Normalizer) Normalize(spread []float64) (Result, error) {
	if len(spread) < n.window {
		return Result{}, errs.NewInsufficientData("zscore", len(spread), n.window)
	}

	res := Result{
		Mean: series.RollingMean(spread, n.window),
		Std:  series.RollingStd(spread, n.window),
		Raw:  series.Undefineds(len(spread)),
	}
	for t := range spread {
		mean, sd := res.Mean[t], res.Std[t]
		if !series.IsDefined(mean) || !series.IsDefined(sd) {
			continue
		}
		if series.NearZero(sd, mean) {
			res.Raw[t] = 0
			continue
		}
		res.Raw[t] = (spread[t] - mean) / sd
	}

	if n.winsorize {
		res.Z = Winsorize(res.Raw, n.limits[0], n.limits[1])
	} else {
		res.Z = append([]float64(nil), res.Raw...)
	}
	return res, nil
}

// Bounds returns the clamp values for the given tail fractions over the defined values of xs.
//
// With k defined values sorted ascending, the lower bound is the value at rank
// floor(lo*k) and the upper bound the value at rank k-1-floor(hi*k).
func Bounds(xs []float64, lo, hi float64) (float64, float64, bool) {
	sorted := series.Defined(xs)
	if len(sorted) == 0 {
		return math.NaN(), math.NaN(), false
	}
	sort.Float64s(sorted)
	k := len(sorted)
	loIdx := int(lo * float64(k))
	hiIdx := k - 1 - int(hi*float64(k))
	if loIdx > k-1 {
		loIdx = k - 1
	}
	if hiIdx < loIdx {
		hiIdx = loIdx
	}
	return sorted[loIdx], sorted[hiIdx], true
}

// Winsorize clamps the defined values of xs to the lo and 1-hi order-statistic bounds.
// Undefined entries stay undefined.
func Winsorize(xs []float64, lo, hi float64) []float64 {
	out := append([]float64(nil), xs...)
	lower, upper, ok := Bounds(xs, lo, hi)
	if !ok {
		return out
	}
	for i, x := range out {
		if !series.IsDefined(x) {
			continue
		}
		out[i] = math.Min(math.Max(x, lower), upper)
	}
	return out
}
