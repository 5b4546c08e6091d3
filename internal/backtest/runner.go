package backtest

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"statarb-go/internal/config"
	"statarb-go/internal/metrics"
	"statarb-go/internal/signal"
)

// Loader resolves a configured pair into prices.
type Loader interface {
	Load(ctx context.Context, p config.Pair) (signal.PricePair, error)
}

// Runner fans pairs out to a bounded set of workers sharing one Pipeline.
type Runner struct {
	pipeline *Pipeline
	loader   Loader
	workers  int
	log      zerolog.Logger
}

// Report holds the completed runs in input order, the failures, and the
// aggregate portfolio (nil when no pair completed).
type Report struct {
	Results   []*PairResult
	Failures  []Failure
	Portfolio *Portfolio
}

// NewRunner builds a Runner. workers <= 0 runs every pair at once.
func NewRunner(pipeline *Pipeline, loader Loader, workers int, log zerolog.Logger) *Runner {
	return &Runner{pipeline: pipeline, loader: loader, workers: workers, log: log}
}

// Run processes every pair. A failing pair is recorded and never stops the
// others; only cancellation of ctx aborts the run.
func (r *Runner) Run(ctx context.Context, pairs []config.Pair) (*Report, error) {
	results := make([]*PairResult, len(pairs))
	failures := make([]error, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	if r.workers > 0 {
		g.SetLimit(r.workers)
	}
	for i, p := range pairs {
		g.Go(func() error {
			start := time.Now()
			res, err := r.runOne(gctx, p)
			outcome := metrics.OutcomeOK
			if err != nil {
				outcome = metrics.OutcomeFailed
				failures[i] = err
				r.log.Error().Err(err).Str("pair", p.Label()).Msg("pair run failed")
			}
			results[i] = res
			metrics.PairsTotal.WithLabelValues(outcome).Inc()
			metrics.PairRunSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report{}
	var returns []PairReturns
	for i, res := range results {
		if failures[i] != nil {
			rep.Failures = append(rep.Failures, Failure{Name: pairs[i].Label(), Err: failures[i]})
			continue
		}
		rep.Results = append(rep.Results, res)
		returns = append(returns, res.ReturnSeries())
	}
	if len(returns) == 0 {
		r.log.Warn().Int("failed", len(rep.Failures)).Msg("no pair completed, skipping aggregation")
		return rep, nil
	}

	portfolio, err := Aggregate(returns, r.pipeline.InitialCapital(), r.pipeline.Analyzer())
	if err != nil {
		return nil, err
	}
	rep.Portfolio = portfolio
	r.log.Info().
		Int("pairs", len(rep.Results)).
		Int("failed", len(rep.Failures)).
		Float64("total_return", portfolio.Metrics.TotalReturn).
		Float64("sharpe", portfolio.Metrics.Sharpe).
		Msg("portfolio aggregated")
	return rep, nil
}

func (r *Runner) runOne(ctx context.Context, p config.Pair) (*PairResult, error) {
	pair, err := r.loader.Load(ctx, p)
	if err != nil {
		return nil, err
	}
	return r.pipeline.Run(p.Label(), pair)
}
