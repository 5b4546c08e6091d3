package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "statarb_pairs_total", Help: "Pairs processed by outcome"},
		[]string{"outcome"},
	)
	StopLossBarsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "statarb_stop_loss_bars_total", Help: "Bars flattened by the drawdown stop"},
		[]string{"pair"},
	)
	DegenerateWindowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "statarb_degenerate_hedge_windows_total", Help: "Hedge windows with zero variance in leg B"},
		[]string{"pair"},
	)
	PairRunSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statarb_pair_run_seconds",
			Help:    "Wall time of one pair pipeline run",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"outcome"},
	)
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

func init() {
	prometheus.MustRegister(PairsTotal, StopLossBarsTotal, DegenerateWindowsTotal, PairRunSeconds)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
