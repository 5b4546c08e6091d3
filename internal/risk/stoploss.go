package risk

import (
	"fmt"

	"statarb-go/internal/errs"
)

// StopLoss forces positions flat wherever the strategy drawdown breaches -threshold.
type StopLoss struct {
	threshold float64
}

// NewStopLoss builds a StopLoss; pct must be in (0, 1).
func NewStopLoss(pct float64) (*StopLoss, error) {
	if !(pct > 0) || pct >= 1 {
		return nil, errs.NewInvalidConfig("stop_loss", "must be in (0, 1)")
	}
	return &StopLoss{threshold: pct}, nil
}

// Threshold returns the configured drawdown fraction.
func (s *StopLoss) Threshold() float64 { return s.threshold }

// Breached reports whether a drawdown is past the stop.
func (s *StopLoss) Breached(drawdown float64) bool { return drawdown < -s.threshold }

// Apply zeroes positions at every timestamp whose portfolio drawdown breaches the stop.
// drawdowns[t] is value/peak - 1 of the capital path, as paper.Result.Drawdowns reports it.
//
// The mask is per timestamp: a later bar back inside the limit keeps its raw position,
// so the strategy re-enters as soon as the signal stage does.
func (s *StopLoss) Apply(positions, drawdowns []float64) ([]float64, []bool, error) {
	if len(positions) != len(drawdowns) {
		return nil, nil, fmt.Errorf("stop loss: %d positions for %d drawdowns", len(positions), len(drawdowns))
	}
	out := make([]float64, len(positions))
	breached := make([]bool, len(positions))
	for t, p := range positions {
		if s.Breached(drawdowns[t]) {
			breached[t] = true
			continue
		}
		out[t] = p
	}
	return out, breached, nil
}
