// Package backtest composes the spread, signal, risk and simulation stages into a
// per-pair pipeline and fans independent pairs out across workers.
package backtest

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"statarb-go/internal/config"
	"statarb-go/internal/metrics"
	"statarb-go/internal/paper"
	"statarb-go/internal/performance"
	"statarb-go/internal/report"
	"statarb-go/internal/risk"
	"statarb-go/internal/series"
	"statarb-go/internal/signal"
	"statarb-go/internal/spread"
	"statarb-go/internal/strategy"
	"statarb-go/internal/zscore"
)

// Pipeline runs one pair end to end. It holds no per-run state and is safe to share across goroutines.
type Pipeline struct {
	cfg        config.Engine
	log        zerolog.Logger
	estimator  *spread.Estimator
	normalizer *zscore.Normalizer
	strategy   strategy.Strategy
	sizer      *risk.Sizer
	stop       *risk.StopLoss
	sim        *paper.Simulator
	analyzer   *performance.Analyzer
}

// PairResult is everything one pipeline run produced.
type PairResult struct {
	Name        string
	Dates       []time.Time
	Spread      spread.Result
	ZScore      zscore.Result
	Coint       *spread.CointResult
	Correlation float64
	Positions   []signal.Position
	StoppedOut  []bool
	Provisional paper.Result
	Sim         paper.Result
	Metrics     performance.Metrics
	Signals     []signal.SignalRow
	Returns     []signal.ReturnRow
	Elapsed     time.Duration
}

// NewPipeline validates cfg and builds every stage from it.
func NewPipeline(cfg config.Engine, log zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := cfg.Trading
	estimator, err := spread.NewEstimator(t.Window)
	if err != nil {
		return nil, err
	}
	normalizer, err := zscore.NewNormalizer(t.Window, t.Winsorize, t.WinsorizeLimits)
	if err != nil {
		return nil, err
	}
	strat, err := strategy.Build(t.Strategy, strategy.Params{ZThreshold: t.ZThreshold})
	if err != nil {
		return nil, err
	}
	sizer, err := risk.NewSizer(cfg.Risk.MaxCorrelation, cfg.Risk.PositionLimitPct, cfg.Risk.UnitNotional)
	if err != nil {
		return nil, err
	}
	stop, err := risk.NewStopLoss(t.StopLoss)
	if err != nil {
		return nil, err
	}
	sim, err := paper.NewSimulator(t.InitialCapital, t.TransactionCost, t.EnableTransactionCosts, paper.CostBasis(t.CostBasis))
	if err != nil {
		return nil, err
	}
	analyzer, err := performance.NewAnalyzer(t.TradingDaysPerYear)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:        cfg,
		log:        log,
		estimator:  estimator,
		normalizer: normalizer,
		strategy:   strat,
		sizer:      sizer,
		stop:       stop,
		sim:        sim,
		analyzer:   analyzer,
	}, nil
}

// Analyzer exposes the metrics stage so aggregation annualizes the same way.
func (p *Pipeline) Analyzer() *performance.Analyzer { return p.analyzer }

// InitialCapital is the starting value of every pair's path.
func (p *Pipeline) InitialCapital() float64 { return p.cfg.Trading.InitialCapital }

// Run processes a validated price pair from the first bar to the last.
func (p *Pipeline) Run(name string, pair signal.PricePair) (*PairResult, error) {
	start := time.Now()
	if name == "" {
		name = pair.Name()
	}
	log := p.log.With().Str("pair", name).Logger()

	if err := pair.Validate(max(p.cfg.Data.MinDataPoints, p.cfg.Trading.Window)); err != nil {
		return nil, fmt.Errorf("pair %s: %w", name, err)
	}
	n := pair.Len()
	log.Debug().Int("bars", n).Int("window", p.estimator.Window()).Msg("pair run started")

	res := &PairResult{Name: name, Dates: pair.Dates}
	if len(res.Dates) == 0 {
		res.Dates = indexDates(n)
	}

	sp, err := p.estimator.Estimate(pair)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", name, err)
	}
	res.Spread = sp
	if k := len(sp.DegenerateWindows); k > 0 {
		metrics.DegenerateWindowsTotal.WithLabelValues(name).Add(float64(k))
		log.Warn().Int("windows", k).Int("first", sp.DegenerateWindows[0]).Msg("zero variance in leg B, hedge ratio set to 0")
	}

	res.Coint = p.cointegrate(log, pair)

	z, err := p.normalizer.Normalize(sp.Spread)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", name, err)
	}
	res.ZScore = z

	raw := p.strategy.Generate(z.Z)

	retA, retB := series.PctChange(pair.A), series.PctChange(pair.B)
	res.Correlation = returnCorrelation(log, retA, retB)

	sizes := p.sizer.SizeSeries(strategy.Sizes(raw), p.cfg.Trading.InitialCapital, res.Correlation)
	directions := make([]signal.Direction, n)
	for i, pos := range raw {
		if sizes[i] != 0 {
			directions[i] = pos.Direction
		}
	}

	res.Provisional, err = p.sim.Simulate(sizes, directions, retA, retB)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", name, err)
	}
	final, breached, err := p.stop.Apply(sizes, res.Provisional.Drawdowns)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", name, err)
	}
	var stops int
	for i, hit := range breached {
		if hit {
			directions[i] = signal.Flat
			stops++
		}
	}
	if stops > 0 {
		metrics.StopLossBarsTotal.WithLabelValues(name).Add(float64(stops))
		log.Info().Int("bars", stops).Float64("threshold", p.stop.Threshold()).Msg("stop loss flattened positions")
	}
	res.StoppedOut = breached

	res.Sim, err = p.sim.Simulate(final, directions, retA, retB)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", name, err)
	}
	res.Metrics, err = p.analyzer.Analyze(res.Sim.Returns, res.Sim.Values, final)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", name, err)
	}

	res.Positions = make([]signal.Position, n)
	for i := range final {
		res.Positions[i] = signal.Position{Direction: directions[i], Size: final[i]}
	}
	res.Signals, res.Returns = p.rows(res)
	res.Elapsed = time.Since(start)

	log.Info().
		Int("bars", n).
		Float64("total_return", res.Metrics.TotalReturn).
		Float64("sharpe", res.Metrics.Sharpe).
		Float64("max_drawdown", res.Metrics.MaxDrawdown).
		Stringer("last_direction", directions[n-1]).
		Dur("elapsed", res.Elapsed).
		Msg("pair run finished")
	return res, nil
}

func (p *Pipeline) cointegrate(log zerolog.Logger, pair signal.PricePair) *spread.CointResult {
	significance := p.cfg.Data.CointSignificance
	if significance == 0 {
		significance = spread.DefaultSignificance
	}
	coint, err := spread.Cointegrate(pair.A, pair.B, significance)
	if err != nil {
		log.Debug().Err(err).Msg("cointegration test unavailable")
		return nil
	}
	event := log.Info()
	if !coint.Cointegrated {
		event = log.Warn()
	}
	event.Float64("statistic", coint.Statistic).
		Float64("pvalue", coint.PValue).
		Bool("cointegrated", coint.Cointegrated).
		Msg("engle-granger cointegration")
	return &coint
}

// returnCorrelation skips the first bar, whose returns are 0 by construction.
// A degenerate leg leaves sizing unscaled.
func returnCorrelation(log zerolog.Logger, retA, retB []float64) float64 {
	corr, err := series.Correlation(retA[1:], retB[1:])
	if err != nil {
		log.Debug().Err(err).Msg("return correlation undefined, using 0")
		return 0
	}
	return corr
}

func (p *Pipeline) rows(res *PairResult) ([]signal.SignalRow, []signal.ReturnRow) {
	layout := p.cfg.Data.DateLayout
	if layout == "" {
		layout = time.DateOnly
	}
	n := len(res.Positions)
	signals := make([]signal.SignalRow, n)
	for i := 0; i < n; i++ {
		signals[i] = signal.SignalRow{
			Date:       res.Dates[i].Format(layout),
			Spread:     res.Spread.Spread[i],
			HedgeRatio: res.Spread.HedgeRatio[i],
			ZScore:     res.ZScore.Z[i],
			Direction:  int(res.Positions[i].Direction),
			Size:       res.Positions[i].Size,
			StoppedOut: res.StoppedOut[i],
		}
	}
	entries := res.Sim.Ledger.Snapshot()
	returns := make([]signal.ReturnRow, len(entries))
	for i, e := range entries {
		returns[i] = signal.ReturnRow{
			Date:           res.Dates[e.Index].Format(layout),
			StrategyReturn: e.Return,
			Cost:           e.Cost,
			PortfolioValue: e.Value,
			Drawdown:       e.Drawdown,
		}
	}
	return signals, returns
}

// Summary condenses the run for JSONL output and the terminal table.
func (r *PairResult) Summary() report.Summary {
	s := report.Summary{
		Pair:              r.Name,
		Bars:              len(r.Positions),
		Correlation:       r.Correlation,
		DegenerateWindows: len(r.Spread.DegenerateWindows),
		Metrics:           r.Metrics,
		CointPValue:       1,
	}
	if n := len(r.Spread.HedgeRatio); n > 0 {
		s.HedgeRatio = r.Spread.HedgeRatio[n-1]
	}
	if r.Coint != nil {
		s.CointStatistic, s.CointPValue = r.Coint.Statistic, r.Coint.PValue
	}
	for _, hit := range r.StoppedOut {
		if hit {
			s.StopLossBars++
		}
	}
	return s
}

// PairReturns is the strategy return series of one pair keyed by date.
type PairReturns struct {
	Name    string
	Dates   []time.Time
	Returns []float64
}

// ReturnSeries extracts the aggregation input.
func (r *PairResult) ReturnSeries() PairReturns {
	return PairReturns{Name: r.Name, Dates: r.Dates, Returns: r.Sim.Returns}
}

// indexDates stands in for missing dates with consecutive days from the Unix epoch.
func indexDates(n int) []time.Time {
	base := time.Unix(0, 0).UTC()
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.AddDate(0, 0, i)
	}
	return out
}

// Failure records a pair that did not complete.
type Failure struct {
	Name string
	Err  error
}

// Summary renders the failure as a table/JSONL line.
func (f Failure) Summary() report.Summary {
	return report.Summary{Pair: f.Name, Error: f.Err.Error()}
}
