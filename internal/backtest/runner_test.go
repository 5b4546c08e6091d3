package backtest

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statarb-go/internal/config"
	"statarb-go/internal/errs"
	"statarb-go/internal/marketdata"
	"statarb-go/internal/performance"
	"statarb-go/internal/signal"
)

type mapLoader map[string]signal.PricePair

func (m mapLoader) Load(_ context.Context, p config.Pair) (signal.PricePair, error) {
	pair, ok := m[p.Label()]
	if !ok {
		return signal.PricePair{}, fmt.Errorf("no prices for %s", p.Label())
	}
	return pair, nil
}

func TestRunnerIsolatesFailures(t *testing.T) {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	loader := mapLoader{
		"one":   marketdata.Synthetic("A1", "B1", 200, 1, start),
		"two":   marketdata.Synthetic("A2", "B2", 150, 2, start),
		"short": marketdata.Synthetic("A3", "B3", 5, 3, start),
	}
	pairs := []config.Pair{
		{Name: "one", SymbolA: "A1", SymbolB: "B1"},
		{Name: "short", SymbolA: "A3", SymbolB: "B3"},
		{Name: "missing", SymbolA: "A4", SymbolB: "B4"},
		{Name: "two", SymbolA: "A2", SymbolB: "B2"},
	}

	runner := NewRunner(newPipeline(t, testEngine()), loader, 2, zerolog.Nop())
	rep, err := runner.Run(context.Background(), pairs)
	require.NoError(t, err)

	require.Len(t, rep.Results, 2)
	assert.Equal(t, "one", rep.Results[0].Name)
	assert.Equal(t, "two", rep.Results[1].Name)

	require.Len(t, rep.Failures, 2)
	assert.Equal(t, "short", rep.Failures[0].Name)
	var insufficient *errs.InsufficientDataError
	assert.ErrorAs(t, rep.Failures[0].Err, &insufficient)
	assert.Equal(t, "missing", rep.Failures[1].Name)
	assert.NotEmpty(t, rep.Failures[1].Summary().Error)

	require.NotNil(t, rep.Portfolio)
	assert.Len(t, rep.Portfolio.Dates, 200)
	assert.Equal(t, []string{"one", "two"}, rep.Portfolio.Names)
	assert.Equal(t, 1.0, rep.Portfolio.Correlation[0][0])
	assert.Equal(t, rep.Portfolio.Correlation[0][1], rep.Portfolio.Correlation[1][0])
}

func TestRunnerAllFailedHasNoPortfolio(t *testing.T) {
	runner := NewRunner(newPipeline(t, testEngine()), mapLoader{}, 0, zerolog.Nop())
	rep, err := runner.Run(context.Background(), []config.Pair{{SymbolA: "X", SymbolB: "Y"}})
	require.NoError(t, err)
	assert.Empty(t, rep.Results)
	assert.Len(t, rep.Failures, 1)
	assert.Nil(t, rep.Portfolio)
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(newPipeline(t, testEngine()), mapLoader{}, 1, zerolog.Nop())
	_, err := runner.Run(ctx, []config.Pair{{SymbolA: "X", SymbolB: "Y"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAggregateAlignsOnDateUnion(t *testing.T) {
	d := func(i int) time.Time { return time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC) }
	analyzer, err := performance.NewAnalyzer(252)
	require.NoError(t, err)

	pairs := []PairReturns{
		{Name: "p1", Dates: []time.Time{d(0), d(1), d(2), d(3)}, Returns: []float64{0, 0.01, 0.02, -0.01}},
		{Name: "p2", Dates: []time.Time{d(2), d(3), d(4), d(5)}, Returns: []float64{0, 0.03, -0.02, 0.01}},
		{Name: "flat", Dates: []time.Time{d(0), d(1), d(2), d(3)}, Returns: []float64{0, 0, 0, 0}},
	}
	port, err := Aggregate(pairs, 1000, analyzer)
	require.NoError(t, err)

	require.Len(t, port.Dates, 6)
	want := []float64{0, 0.01 / 2, (0.02 + 0 + 0) / 3, (-0.01 + 0.03 + 0) / 3, -0.02, 0.01}
	for i := range want {
		assert.InDelta(t, want[i], port.Returns[i], 1e-12, "bar %d", i)
	}
	assert.InDelta(t, 1000*(1+want[1]), port.Values[1], 1e-9)
	assert.Equal(t, 6, port.Metrics.Bars)

	assert.InDelta(t, -1, port.Correlation[0][1], 1e-12)
	assert.True(t, math.IsNaN(port.Correlation[0][2]))
	assert.True(t, math.IsNaN(port.Correlation[2][1]))
	for i := 0; i < 3; i++ {
		assert.Equal(t, 1.0, port.Correlation[i][i])
	}
}

func TestAggregateMatchesInstantsAcrossLocations(t *testing.T) {
	analyzer, err := performance.NewAnalyzer(252)
	require.NoError(t, err)
	est := time.FixedZone("EST", -5*60*60)
	utc := func(i int) time.Time { return time.Date(2024, 1, 1+i, 14, 30, 0, 0, time.UTC) }
	local := func(i int) time.Time { return utc(i).In(est) }

	pairs := []PairReturns{
		{Name: "utc", Dates: []time.Time{utc(0), utc(1), utc(2)}, Returns: []float64{0, 0.01, -0.02}},
		{Name: "est", Dates: []time.Time{local(0), local(1), local(2)}, Returns: []float64{0, 0.02, -0.04}},
	}
	port, err := Aggregate(pairs, 1000, analyzer)
	require.NoError(t, err)

	require.Len(t, port.Dates, 3)
	assert.InDelta(t, 0.015, port.Returns[1], 1e-12)
	assert.InDelta(t, -0.03, port.Returns[2], 1e-12)
	assert.False(t, math.IsNaN(port.Correlation[0][1]))
	assert.InDelta(t, 1, port.Correlation[0][1], 1e-12)
}

func TestAggregateRequiresInput(t *testing.T) {
	analyzer, err := performance.NewAnalyzer(252)
	require.NoError(t, err)
	_, err = Aggregate(nil, 1000, analyzer)
	var insufficient *errs.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}
