// Package config exposes strongly typed engine configuration loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, metrics, logging, and fan-out.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	Workers     int    `yaml:"workers" validate:"gte=0"`
	OutputDir   string `yaml:"output_dir"`
}

// Trading groups the signal and simulation knobs.
type Trading struct {
	Strategy               string     `yaml:"strategy" validate:"omitempty,oneof=threshold"`
	Window                 int        `yaml:"window" validate:"gte=2"`
	ZThreshold             float64    `yaml:"z_threshold" validate:"gt=0"`
	StopLoss               float64    `yaml:"stop_loss" validate:"gt=0,lt=1"`
	TransactionCost        float64    `yaml:"transaction_cost" validate:"gte=0"`
	EnableTransactionCosts bool       `yaml:"enable_transaction_costs"`
	CostBasis              string     `yaml:"cost_basis" validate:"omitempty,oneof=size direction"`
	InitialCapital         float64    `yaml:"initial_capital" validate:"gt=0"`
	TradingDaysPerYear     int        `yaml:"trading_days_per_year" validate:"gt=0"`
	Winsorize              bool       `yaml:"winsorize"`
	WinsorizeLimits        [2]float64 `yaml:"winsorize_limits" validate:"dive,gte=0,lt=0.5"`
}

// Risk encodes the correlation ceiling and exposure cap applied to raw sizes.
type Risk struct {
	MaxCorrelation   float64 `yaml:"max_correlation" validate:"gt=0,lte=1"`
	PositionLimitPct float64 `yaml:"position_limit_pct" validate:"gt=0,lte=1"`
	UnitNotional     float64 `yaml:"unit_notional" validate:"gte=0"`
}

// Data describes input sufficiency and diagnostics thresholds.
type Data struct {
	MinDataPoints     int     `yaml:"min_data_points" validate:"gte=0"`
	DateLayout        string  `yaml:"date_layout"`
	CointSignificance float64 `yaml:"coint_significance" validate:"gte=0,lt=1"`
}

// Engine is the immutable value every pipeline stage is built from.
type Engine struct {
	Trading Trading `yaml:"trading"`
	Risk    Risk    `yaml:"risk"`
	Data    Data    `yaml:"data"`
}

// Pair names one instrument pair and where its prices come from.
type Pair struct {
	Name     string `yaml:"name"`
	SymbolA  string `yaml:"symbol_a" validate:"required"`
	SymbolB  string `yaml:"symbol_b" validate:"required"`
	Provider string `yaml:"provider" validate:"omitempty,oneof=csv stub"`
	Path     string `yaml:"path"`
	Bars     int    `yaml:"bars" validate:"gte=0"`
	Seed     int64  `yaml:"seed"`
}

// Label returns Name or "A-B" when unnamed.
func (p Pair) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.SymbolA + "-" + p.SymbolB
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	Engine `yaml:",inline"`

	App   App    `yaml:"app"`
	Pairs []Pair `yaml:"pairs" validate:"dive"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		App: App{Name: "statarb", Env: "dev", LogLevel: "info"},
		Engine: Engine{
			Trading: Trading{
				Strategy:               "threshold",
				Window:                 30,
				ZThreshold:             1.5,
				StopLoss:               0.05,
				TransactionCost:        0.001,
				EnableTransactionCosts: true,
				CostBasis:              "size",
				InitialCapital:         100_000,
				TradingDaysPerYear:     252,
				Winsorize:              true,
				WinsorizeLimits:        [2]float64{0.05, 0.05},
			},
			Risk: Risk{
				MaxCorrelation:   0.95,
				PositionLimitPct: 0.1,
			},
			Data: Data{
				MinDataPoints:     100,
				DateLayout:        "2006-01-02",
				CointSignificance: 0.05,
			},
		},
	}
}

// Load reads a YAML file from disk on top of Default and validates the result.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
