package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"statarb-go/internal/backtest"
	"statarb-go/internal/config"
	"statarb-go/internal/marketdata"
	"statarb-go/internal/metrics"
	"statarb-go/internal/report"
	"statarb-go/internal/spread"
	"statarb-go/internal/util"
)

const defaultConfigPath = "internal/config/config.yaml"

type options struct {
	configPath string
	logLevel   string
	pretty     bool
}

func main() {
	_ = godotenv.Load() // best-effort
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "backtest",
		Short:         "Pairs trading signal and risk engine",
		Long:          `Runs the spread, z-score, sizing, stop-loss and return simulation over configured price pairs.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", envOr("STATARB_CONFIG", defaultConfigPath), "Path to the YAML configuration file.")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", os.Getenv("STATARB_LOG_LEVEL"), "Log level override (debug, info, warn, error).")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Human readable console logs instead of JSON.")

	root.AddCommand(newRunCmd(opts), newCointCmd(opts), newInitCmd(opts))
	return root
}

func newRunCmd(opts *options) *cobra.Command {
	var outDir string
	var workers int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Backtest every configured pair and aggregate an equal-weight portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.App.Workers = workers
			}
			if outDir == "" {
				outDir = cfg.App.OutputDir
			}

			if cfg.App.MetricsAddr != "" {
				srv := metrics.Serve(cfg.App.MetricsAddr)
				defer srv.Close()
				log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
			}

			ctx, cancel := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			pipeline, err := backtest.NewPipeline(cfg.Engine, log)
			if err != nil {
				return err
			}
			source := marketdata.NewSource(marketdata.ProviderStub, log, marketdata.WithDateLayout(cfg.Data.DateLayout))
			runner := backtest.NewRunner(pipeline, source, cfg.App.Workers, log)

			rep, err := runner.Run(ctx, cfg.Pairs)
			if err != nil {
				return err
			}
			if err := writeOutputs(outDir, rep); err != nil {
				return err
			}
			render(cmd.OutOrStdout(), rep)
			if len(rep.Results) == 0 && len(rep.Failures) > 0 {
				return errors.New("every pair failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory for signals/returns CSV and summaries.jsonl (default app.output_dir; empty skips files).")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent pair workers (0 = one per pair).")
	return cmd
}

func newCointCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "coint",
		Short: "Print Engle-Granger cointegration diagnostics for configured pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(opts)
			if err != nil {
				return err
			}
			source := marketdata.NewSource(marketdata.ProviderStub, log, marketdata.WithDateLayout(cfg.Data.DateLayout))
			significance := cfg.Data.CointSignificance
			if significance == 0 {
				significance = spread.DefaultSignificance
			}
			rows := make([]report.CointRow, 0, len(cfg.Pairs))
			for _, p := range cfg.Pairs {
				row := report.CointRow{Pair: p.Label()}
				pair, err := source.Load(cmd.Context(), p)
				if err == nil {
					var res spread.CointResult
					res, err = spread.Cointegrate(pair.A, pair.B, significance)
					row.Statistic, row.PValue, row.Critical = res.Statistic, res.PValue, res.Critical
					row.HedgeRatio, row.Cointegrated = res.HedgeRatio, res.Cointegrated
				}
				if err != nil {
					row.Error = err.Error()
					log.Warn().Err(err).Str("pair", p.Label()).Msg("cointegration failed")
				}
				rows = append(rows, row)
			}
			report.RenderCointegration(cmd.OutOrStdout(), rows)
			return nil
		},
	}
}

func newInitCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration with one synthetic pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.configPath); err == nil && !force {
				return fmt.Errorf("%s exists, pass --force to overwrite", opts.configPath)
			}
			if err := os.MkdirAll(filepath.Dir(opts.configPath), 0o755); err != nil {
				return err
			}
			cfg := config.Default()
			cfg.Pairs = []config.Pair{{Name: "synthetic", SymbolA: "AAA", SymbolB: "BBB", Provider: marketdata.ProviderStub, Bars: 500, Seed: 1}}
			if err := config.Save(opts.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file.")
	return cmd
}

func setup(opts *options) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	level := opts.logLevel
	if level == "" {
		level = cfg.App.LogLevel
	}
	log := util.NewLogger(level)
	if opts.pretty {
		log = util.NewConsoleLogger(level)
	}
	log = log.With().Str("app", cfg.App.Name).Logger()
	return cfg, log, nil
}

func writeOutputs(dir string, rep *backtest.Report) error {
	if dir == "" {
		return nil
	}
	recorder, err := report.NewJSONLRecorder(filepath.Join(dir, "summaries.jsonl"))
	if err != nil {
		return err
	}
	defer recorder.Close()

	for _, res := range rep.Results {
		base := filepath.Join(dir, fileSafe(res.Name))
		if err := report.WriteSignals(base+"_signals.csv", res.Signals); err != nil {
			return err
		}
		if err := report.WriteReturns(base+"_returns.csv", res.Returns); err != nil {
			return err
		}
		if err := recorder.Record(res.Summary()); err != nil {
			return err
		}
	}
	for _, f := range rep.Failures {
		if err := recorder.Record(f.Summary()); err != nil {
			return err
		}
	}
	return recorder.Close()
}

func render(w io.Writer, rep *backtest.Report) {
	summaries := make([]report.Summary, 0, len(rep.Results)+len(rep.Failures))
	for _, res := range rep.Results {
		summaries = append(summaries, res.Summary())
	}
	for _, f := range rep.Failures {
		summaries = append(summaries, f.Summary())
	}
	if rep.Portfolio == nil {
		report.RenderSummary(w, summaries, nil)
		return
	}
	report.RenderSummary(w, summaries, &rep.Portfolio.Metrics)
	if len(rep.Portfolio.Names) > 1 {
		fmt.Fprintln(w, "\nReturn correlation:")
		report.RenderCorrelation(w, rep.Portfolio.Names, rep.Portfolio.Correlation)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' || r == ':' {
			return '_'
		}
		return r
	}, name)
}
