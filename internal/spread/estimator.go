// Package spread estimates a rolling hedge ratio between two instruments and the spread it implies.
package spread

import (
	"errors"
	"fmt"
	"math"

	"statarb-go/internal/errs"
	"statarb-go/internal/series"
	"statarb-go/internal/signal"
)

// Estimator computes HedgeRatio and Spread series over a trailing window.
type Estimator struct {
	window int
}

// Result carries the per-timestamp hedge ratio and spread.
//
// Both are undefined (NaN) for the first window-1 timestamps. DegenerateWindows
// lists the timestamps where B had zero variance and the hedge ratio fell back to 0.
type Result struct {
	HedgeRatio        []float64
	Spread            []float64
	DegenerateWindows []int
}

// NewEstimator builds an Estimator; window must be at least 2.
func NewEstimator(window int) (*Estimator, error) {
	if window < 2 {
		return nil, errs.NewInvalidConfig("window", "must be >= 2")
	}
	return &Estimator{window: window}, nil
}

// Window returns the configured look-back.
func (e *Estimator) Window() int { return e.window }

// Estimate derives the hedge ratio cov(A,B)/var(B) and spread A - h*B for every timestamp.
func (e *Estimator) Estimate(pair signal.PricePair) (Result, error) {
	n := pair.Len()
	if len(pair.B) != n {
		return Result{}, fmt.Errorf("spread estimate: length mismatch: %d vs %d", n, len(pair.B))
	}
	if n < e.window {
		return Result{}, errs.NewInsufficientData("spread estimate", n, e.window)
	}

	cov := series.RollingCov(pair.A, pair.B, e.window)
	variance := series.RollingVar(pair.B, e.window)
	mean := series.RollingMean(pair.B, e.window)

	res := Result{
		HedgeRatio: series.Undefineds(n),
		Spread:     series.Undefineds(n),
	}
	for t := e.window - 1; t < n; t++ {
		h, err := hedgeAt(cov[t], variance[t], mean[t], t)
		var degenerate *errs.DegenerateVarianceError
		switch {
		case errors.As(err, &degenerate):
			// B carries no information in this window; leave A unhedged.
			res.DegenerateWindows = append(res.DegenerateWindows, t)
			h = 0
		case err != nil:
			return Result{}, err
		}
		res.HedgeRatio[t] = h
		res.Spread[t] = pair.A[t] - h*pair.B[t]
	}
	return res, nil
}

// hedgeAt divides the window covariance by the window variance of B.
// Undefined inputs give an undefined ratio.
func hedgeAt(cov, variance, mean float64, t int) (float64, error) {
	if !series.IsDefined(cov) || !series.IsDefined(variance) {
		return math.NaN(), nil
	}
	if series.NearZero(variance, mean*mean) {
		return math.NaN(), errs.NewDegenerateVariance("hedge ratio", t)
	}
	return cov / variance, nil
}
