package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"statarb-go/internal/errs"
)

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "statarb-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.Workers != 2 {
		t.Fatalf("unexpected workers: %d", cfg.App.Workers)
	}
	if cfg.Trading.Window != 20 {
		t.Fatalf("unexpected window: %d", cfg.Trading.Window)
	}
	if cfg.Trading.ZThreshold != 2.0 {
		t.Fatalf("unexpected z threshold: %.2f", cfg.Trading.ZThreshold)
	}
	if cfg.Trading.WinsorizeLimits != [2]float64{0.01, 0.02} {
		t.Fatalf("unexpected winsorize limits: %v", cfg.Trading.WinsorizeLimits)
	}
	if cfg.Risk.PositionLimitPct != 0.25 {
		t.Fatalf("unexpected position limit: %.2f", cfg.Risk.PositionLimitPct)
	}
	if cfg.Data.MinDataPoints != 60 {
		t.Fatalf("unexpected min data points: %d", cfg.Data.MinDataPoints)
	}
	// omitted keys keep their defaults
	if cfg.Trading.InitialCapital != 100_000 {
		t.Fatalf("expected default initial capital, got %.2f", cfg.Trading.InitialCapital)
	}
	if !cfg.Trading.EnableTransactionCosts || !cfg.Trading.Winsorize {
		t.Fatalf("expected default flags to stay enabled")
	}
	if cfg.Trading.TradingDaysPerYear != 252 {
		t.Fatalf("expected default trading days, got %d", cfg.Trading.TradingDaysPerYear)
	}
	if len(cfg.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(cfg.Pairs))
	}
	if cfg.Pairs[0].Label() != "KO-PEP" || cfg.Pairs[1].Label() != "synthetic" {
		t.Fatalf("unexpected pair labels: %s, %s", cfg.Pairs[0].Label(), cfg.Pairs[1].Label())
	}
	if cfg.Pairs[1].Bars != 500 || cfg.Pairs[1].Seed != 11 {
		t.Fatalf("unexpected stub pair: %+v", cfg.Pairs[1])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Trading.Window != 30 || cfg.Risk.MaxCorrelation != 0.95 {
		t.Fatalf("expected defaults, got %+v", cfg.Engine)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Trading.Window = 45
	cfg.Pairs = []Pair{{SymbolA: "GDX", SymbolB: "GLD", Provider: "stub", Bars: 300}}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Trading.Window != 45 || len(loaded.Pairs) != 1 || loaded.Pairs[0].SymbolA != "GDX" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if err := Save(path, nil); err == nil {
		t.Fatalf("expected error saving nil config")
	}
}

func TestValidateRejectsBadEngine(t *testing.T) {
	cases := map[string]func(*Engine){
		"trading.window":              func(e *Engine) { e.Trading.Window = 1 },
		"trading.z_threshold":         func(e *Engine) { e.Trading.ZThreshold = 0 },
		"trading.stop_loss":           func(e *Engine) { e.Trading.StopLoss = 1 },
		"trading.transaction_cost":    func(e *Engine) { e.Trading.TransactionCost = -0.001 },
		"trading.initial_capital":     func(e *Engine) { e.Trading.InitialCapital = 0 },
		"trading.winsorize_limits[1]": func(e *Engine) { e.Trading.WinsorizeLimits[1] = 0.5 },
		"risk.max_correlation":        func(e *Engine) { e.Risk.MaxCorrelation = 0 },
		"risk.position_limit_pct":     func(e *Engine) { e.Risk.PositionLimitPct = 1.5 },
		"trading.cost_basis":          func(e *Engine) { e.Trading.CostBasis = "notional" },
		"trading.strategy":            func(e *Engine) { e.Trading.Strategy = "binary" },
	}
	for field, mutate := range cases {
		engine := Default().Engine
		mutate(&engine)
		err := engine.Validate()
		var invalid *errs.InvalidConfigError
		if !errors.As(err, &invalid) {
			t.Fatalf("%s: expected InvalidConfigError, got %v", field, err)
		}
		if invalid.Field != field {
			t.Fatalf("expected field %s, got %s", field, invalid.Field)
		}
	}

	if err := Default().Engine.Validate(); err != nil {
		t.Fatalf("default engine should validate: %v", err)
	}
}

func TestValidateRejectsBadPair(t *testing.T) {
	cfg := Default()
	cfg.Pairs = []Pair{{SymbolA: "KO", Provider: "csv"}}
	var invalid *errs.InvalidConfigError
	if err := cfg.Validate(); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidConfigError for missing symbol_b, got %v", err)
	}
}
