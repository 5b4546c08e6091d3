// Package signal standardizes payloads shared between price inputs and the engine stages.
package signal

import (
	"fmt"
	"time"

	"statarb-go/internal/errs"
)

// PricePair holds two date-aligned price histories for instruments A and B.
type PricePair struct {
	SymbolA string
	SymbolB string
	Dates   []time.Time
	A       []float64
	B       []float64
	VolumeA []float64 // optional
	VolumeB []float64 // optional
}

// Len returns the number of aligned observations.
func (p PricePair) Len() int { return len(p.A) }

// Name renders the pair as "A-B".
func (p PricePair) Name() string { return p.SymbolA + "-" + p.SymbolB }

// Validate checks alignment, ordering, positivity, and that at least minPoints bars exist.
func (p PricePair) Validate(minPoints int) error {
	if len(p.A) != len(p.B) {
		return fmt.Errorf("pair %s: length mismatch: %d vs %d", p.Name(), len(p.A), len(p.B))
	}
	if len(p.Dates) != 0 && len(p.Dates) != len(p.A) {
		return fmt.Errorf("pair %s: %d dates for %d prices", p.Name(), len(p.Dates), len(p.A))
	}
	if minPoints < 2 {
		minPoints = 2
	}
	if len(p.A) < minPoints {
		return errs.NewInsufficientData("validate "+p.Name(), len(p.A), minPoints)
	}
	for i := range p.A {
		if !(p.A[i] > 0) || !(p.B[i] > 0) {
			return fmt.Errorf("pair %s: non-positive price at index %d", p.Name(), i)
		}
		if i > 0 && len(p.Dates) != 0 && !p.Dates[i].After(p.Dates[i-1]) {
			return fmt.Errorf("pair %s: dates not strictly increasing at index %d", p.Name(), i)
		}
	}
	return nil
}

// Direction is the side taken on the spread.
type Direction int

const (
	// Short sells A and buys B (spread rich).
	Short Direction = -1
	// Flat holds nothing.
	Flat Direction = 0
	// Long buys A and sells B (spread cheap).
	Long Direction = 1
)

// Sign returns the direction as a float multiplier.
func (d Direction) Sign() float64 { return float64(d) }

func (d Direction) String() string {
	switch d {
	case Short:
		return "short"
	case Long:
		return "long"
	default:
		return "flat"
	}
}

// Position pairs a directional signal with its continuous size in [-1, 1].
type Position struct {
	Direction Direction
	Size      float64
}

// SignalRow is one line of the signals table.
type SignalRow struct {
	Date       string  `csv:"date" json:"date"`
	Spread     float64 `csv:"spread" json:"spread"`
	HedgeRatio float64 `csv:"hedge_ratio" json:"hedge_ratio"`
	ZScore     float64 `csv:"zscore" json:"zscore"`
	Direction  int     `csv:"signal" json:"signal"`
	Size       float64 `csv:"position_size" json:"position_size"`
	StoppedOut bool    `csv:"stopped_out" json:"stopped_out"`
}

// ReturnRow is one line of the returns table.
type ReturnRow struct {
	Date           string  `csv:"date" json:"date"`
	StrategyReturn float64 `csv:"strategy_return" json:"strategy_return"`
	Cost           float64 `csv:"cost" json:"cost"`
	PortfolioValue float64 `csv:"portfolio_value" json:"portfolio_value"`
	Drawdown       float64 `csv:"drawdown" json:"drawdown"`
}
