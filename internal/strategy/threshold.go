// Package strategy maps standardized spread deviations into spread positions.
package strategy

import (
	"math"

	"statarb-go/internal/errs"
	"statarb-go/internal/series"
	"statarb-go/internal/signal"
)

// Threshold is a mean-reversion rule: short the spread above +threshold, long it below -threshold.
type Threshold struct {
	threshold float64
}

// NewThreshold builds a Threshold generator; threshold must be positive.
func NewThreshold(threshold float64) (*Threshold, error) {
	if !(threshold > 0) {
		return nil, errs.NewInvalidConfig("z_threshold", "must be > 0")
	}
	return &Threshold{threshold: threshold}, nil
}

// Name returns the identifier for logging.
func (s *Threshold) Name() string { return "ZScoreThreshold" }

// At maps a single z-score to a position. Undefined z-scores are flat.
// Size is min(|z|/threshold, 1) with the direction's sign; a nonzero direction
// already implies |z| > threshold, so every open position is full size.
func (s *Threshold) At(z float64) signal.Position {
	if !series.IsDefined(z) {
		return signal.Position{}
	}
	dir := signal.Flat
	switch {
	case z > s.threshold:
		dir = signal.Short
	case z < -s.threshold:
		dir = signal.Long
	}
	size := math.Min(math.Abs(z)/s.threshold, 1) * dir.Sign()
	return signal.Position{Direction: dir, Size: size}
}

// Generate maps every z-score independently; there is no path dependency at this stage.
func (s *Threshold) Generate(z []float64) []signal.Position {
	out := make([]signal.Position, len(z))
	for i, v := range z {
		out[i] = s.At(v)
	}
	return out
}

// Sizes extracts the size column of positions.
func Sizes(positions []signal.Position) []float64 {
	out := make([]float64, len(positions))
	for i, p := range positions {
		out[i] = p.Size
	}
	return out
}
