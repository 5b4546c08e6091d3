// Package performance derives summary risk and return metrics from a simulated run.
package performance

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"statarb-go/internal/errs"
	"statarb-go/internal/series"
)

// Metrics summarizes one completed run. It is never mutated after Analyze returns it.
type Metrics struct {
	TotalReturn          float64 `json:"total_return"`
	AnnualizedReturn     float64 `json:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	Sharpe               float64 `json:"sharpe_ratio"`
	Sortino              float64 `json:"sortino_ratio"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	WinRate              float64 `json:"win_rate"`
	TradeCount           float64 `json:"trade_count"`
	Bars                 int     `json:"bars"`
}

// Analyzer annualizes with a fixed number of trading days per year.
type Analyzer struct {
	tradingDays int
}

// NewAnalyzer builds an Analyzer.
func NewAnalyzer(tradingDaysPerYear int) (*Analyzer, error) {
	if tradingDaysPerYear <= 0 {
		return nil, errs.NewInvalidConfig("trading_days_per_year", "must be > 0")
	}
	return &Analyzer{tradingDays: tradingDaysPerYear}, nil
}

// Analyze computes Metrics from per-bar returns and portfolio values.
// positions is optional and only feeds TradeCount (Σ|Δsize| / 2).
func (a *Analyzer) Analyze(returns, values, positions []float64) (Metrics, error) {
	if len(returns) != len(values) {
		return Metrics{}, fmt.Errorf("analyze: %d returns for %d values", len(returns), len(values))
	}
	if len(returns) == 0 {
		return Metrics{}, errs.NewInsufficientData("analyze", 0, 1)
	}

	m := Metrics{Bars: len(returns)}
	if values[0] != 0 {
		m.TotalReturn = values[len(values)-1]/values[0] - 1
	}

	annualizer := math.Sqrt(float64(a.tradingDays))
	mean, _ := stats.Mean(returns)
	// rounding noise on a constant series is not dispersion
	sd := sampleStd(returns)
	if series.NearZero(sd, mean) {
		sd = 0
	} else {
		m.Sharpe = annualizer * mean / sd
	}
	m.AnnualizedVolatility = annualizer * sd

	var negatives []float64
	var wins, active int
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
		if r != 0 {
			active++
			if r > 0 {
				wins++
			}
		}
	}
	if downside := sampleStd(negatives); !series.NearZero(downside, mean) {
		m.Sortino = annualizer * mean / downside
	}
	if active > 0 {
		m.WinRate = float64(wins) / float64(active)
	}

	growth := 1 + m.TotalReturn
	if growth > 0 {
		m.AnnualizedReturn = math.Pow(growth, float64(a.tradingDays)/float64(len(returns))) - 1
	} else {
		m.AnnualizedReturn = -1
	}

	m.MaxDrawdown, _ = stats.Min(series.Drawdown(values))

	var turnover float64
	for _, d := range series.Diff(positions) {
		turnover += math.Abs(d)
	}
	m.TradeCount = turnover / 2
	return m, nil
}

// sampleStd is the n-1 standard deviation, 0 when fewer than two points exist.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(xs)
	if err != nil || math.IsNaN(sd) {
		return 0
	}
	return sd
}
