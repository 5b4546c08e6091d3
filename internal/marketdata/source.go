// Package marketdata loads aligned daily price pairs from files or a seeded generator.
package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"statarb-go/internal/config"
	"statarb-go/internal/signal"
)

const (
	// ProviderCSV reads a date,price_a,price_b table from disk.
	ProviderCSV = "csv"
	// ProviderStub emits a deterministic synthetic pair (useful for tests/offline work).
	ProviderStub = "stub"
)

const (
	defaultDateLayout = "2006-01-02"
	defaultStubBars   = 500
)

// stubStart is the first date of every synthetic series.
var stubStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Source resolves configured pairs into price series.
type Source struct {
	provider string
	layout   string
	log      zerolog.Logger
}

// Option configures Source construction parameters.
type Option func(*Source)

// WithDateLayout overrides the time layout used to parse the CSV date column.
func WithDateLayout(layout string) Option {
	return func(s *Source) {
		if layout != "" {
			s.layout = layout
		}
	}
}

// NewSource constructs a source whose provider applies to pairs that do not name one.
func NewSource(provider string, log zerolog.Logger, opts ...Option) *Source {
	if provider == "" {
		provider = ProviderStub
	}
	s := &Source{
		provider: strings.ToLower(provider),
		layout:   defaultDateLayout,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the price history for one configured pair.
func (s *Source) Load(ctx context.Context, p config.Pair) (signal.PricePair, error) {
	if err := ctx.Err(); err != nil {
		return signal.PricePair{}, err
	}
	provider := strings.ToLower(p.Provider)
	if provider == "" {
		provider = s.provider
	}
	switch provider {
	case ProviderCSV:
		if p.Path == "" {
			return signal.PricePair{}, fmt.Errorf("pair %s: csv provider needs a path", p.Label())
		}
		pair, err := LoadCSVFile(p.Path, p.SymbolA, p.SymbolB, s.layout)
		if err != nil {
			return signal.PricePair{}, fmt.Errorf("pair %s: %w", p.Label(), err)
		}
		s.log.Debug().Str("pair", p.Label()).Str("path", p.Path).Int("bars", pair.Len()).Msg("loaded csv prices")
		return pair, nil
	case ProviderStub:
		bars := p.Bars
		if bars <= 0 {
			bars = defaultStubBars
		}
		pair := Synthetic(p.SymbolA, p.SymbolB, bars, p.Seed, stubStart)
		s.log.Debug().Str("pair", p.Label()).Int("bars", bars).Int64("seed", p.Seed).Msg("generated synthetic prices")
		return pair, nil
	default:
		return signal.PricePair{}, fmt.Errorf("pair %s: unknown provider %q", p.Label(), provider)
	}
}
