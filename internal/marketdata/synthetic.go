package marketdata

import (
	"math"
	"math/rand"
	"time"

	"statarb-go/internal/signal"
)

// Synthetic parameters: B follows a geometric random walk, A tracks
// hedge*B plus a mean-reverting (AR(1)) spread.
const (
	synthHedge     = 1.2
	synthDrift     = 0.0002
	synthVol       = 0.01
	synthReversion = 0.9
	synthSpreadVol = 0.5
	synthStartB    = 50.0
)

// Synthetic builds a deterministic cointegrated pair of business-day bars.
func Synthetic(symbolA, symbolB string, bars int, seed int64, start time.Time) signal.PricePair {
	if bars < 0 {
		bars = 0
	}
	rng := rand.New(rand.NewSource(seed))
	pair := signal.PricePair{
		SymbolA: symbolA,
		SymbolB: symbolB,
		Dates:   make([]time.Time, bars),
		A:       make([]float64, bars),
		B:       make([]float64, bars),
	}
	day := start
	b := synthStartB
	var e float64
	for i := 0; i < bars; i++ {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
		if i > 0 {
			b *= math.Exp(synthDrift + synthVol*rng.NormFloat64())
			e = synthReversion*e + synthSpreadVol*rng.NormFloat64()
		}
		pair.Dates[i] = day
		pair.B[i] = b
		pair.A[i] = synthHedge*b + 10 + e
		day = day.AddDate(0, 0, 1)
	}
	return pair
}
