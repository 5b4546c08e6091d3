// Package risk rescales raw spread positions under correlation and exposure limits
// and forces them flat on drawdown breaches.
package risk

import (
	"math"

	"statarb-go/internal/errs"
)

// Limits caps dollar exposure to a fraction of current portfolio value.
type Limits struct {
	PositionLimitPct float64
}

// Allow reports whether exposure fits under the limit for the given portfolio value.
func (l Limits) Allow(exposure, portfolioValue float64) bool {
	return math.Abs(exposure) <= l.PositionLimitPct*portfolioValue
}

// Cap clips the absolute exposure to the limit, keeping its sign.
func (l Limits) Cap(exposure, portfolioValue float64) float64 {
	if l.Allow(exposure, portfolioValue) {
		return exposure
	}
	return math.Copysign(math.Max(0, l.PositionLimitPct*portfolioValue), exposure)
}

// Sizer turns a raw signal size into a risk-adjusted size. It is stateless per call.
type Sizer struct {
	maxCorrelation float64
	limits         Limits
	unitNotional   float64
}

// NewSizer builds a Sizer.
//
// unitNotional is the dollar exposure of a size of 1.0; 0 means the current portfolio value.
func NewSizer(maxCorrelation, positionLimitPct, unitNotional float64) (*Sizer, error) {
	if !(maxCorrelation > 0) || maxCorrelation > 1 {
		return nil, errs.NewInvalidConfig("max_correlation", "must be in (0, 1]")
	}
	if !(positionLimitPct > 0) || positionLimitPct > 1 {
		return nil, errs.NewInvalidConfig("position_limit_pct", "must be in (0, 1]")
	}
	if unitNotional < 0 {
		return nil, errs.NewInvalidConfig("unit_notional", "must be >= 0")
	}
	return &Sizer{
		maxCorrelation: maxCorrelation,
		limits:         Limits{PositionLimitPct: positionLimitPct},
		unitNotional:   unitNotional,
	}, nil
}

// CorrelationFactor is 1 - corr/max_correlation clamped to [0, 1]. An undefined correlation scales nothing.
func (s *Sizer) CorrelationFactor(corr float64) float64 {
	if math.IsNaN(corr) {
		return 1
	}
	return clamp(1-corr/s.maxCorrelation, 0, 1)
}

// Size scales raw by the correlation factor, then caps the implied dollar exposure.
func (s *Sizer) Size(raw, portfolioValue, corr float64) float64 {
	if raw == 0 || !(portfolioValue > 0) {
		return 0
	}
	adjusted := raw * s.CorrelationFactor(corr)
	unit := s.unitNotional
	if unit == 0 {
		unit = portfolioValue
	}
	capped := s.limits.Cap(adjusted*unit, portfolioValue) / unit
	return clamp(capped, -1, 1)
}

// SizeSeries applies Size at every timestamp against a fixed portfolio value and correlation.
func (s *Sizer) SizeSeries(raw []float64, portfolioValue, corr float64) []float64 {
	out := make([]float64, len(raw))
	for i, r := range raw {
		out[i] = s.Size(r, portfolioValue, corr)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
