package marketdata

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"statarb-go/internal/signal"
)

type priceRow struct {
	Date    string  `csv:"date"`
	PriceA  float64 `csv:"price_a"`
	PriceB  float64 `csv:"price_b"`
	VolumeA float64 `csv:"volume_a"`
	VolumeB float64 `csv:"volume_b"`
}

// LoadCSVFile opens path and delegates to LoadCSV.
func LoadCSVFile(path, symbolA, symbolB, layout string) (signal.PricePair, error) {
	f, err := os.Open(path)
	if err != nil {
		return signal.PricePair{}, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()
	return LoadCSV(f, symbolA, symbolB, layout)
}

// LoadCSV parses a header-led table with date, price_a, price_b and optional
// volume_a, volume_b columns. Rows are kept in file order; ordering and
// positivity are checked later by PricePair.Validate.
func LoadCSV(r io.Reader, symbolA, symbolB, layout string) (signal.PricePair, error) {
	if layout == "" {
		layout = defaultDateLayout
	}
	var rows []*priceRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return signal.PricePair{}, fmt.Errorf("decode prices: %w", err)
	}

	pair := signal.PricePair{
		SymbolA: symbolA,
		SymbolB: symbolB,
		Dates:   make([]time.Time, 0, len(rows)),
		A:       make([]float64, 0, len(rows)),
		B:       make([]float64, 0, len(rows)),
	}
	var hasVolume bool
	for i, row := range rows {
		ts, err := parseDate(row.Date, layout)
		if err != nil {
			return signal.PricePair{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		pair.Dates = append(pair.Dates, ts)
		pair.A = append(pair.A, row.PriceA)
		pair.B = append(pair.B, row.PriceB)
		if row.VolumeA != 0 || row.VolumeB != 0 {
			hasVolume = true
		}
	}
	if hasVolume {
		pair.VolumeA = make([]float64, len(rows))
		pair.VolumeB = make([]float64, len(rows))
		for i, row := range rows {
			pair.VolumeA[i] = row.VolumeA
			pair.VolumeB[i] = row.VolumeB
		}
	}
	return pair, nil
}

func parseDate(raw, layout string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(layout, raw); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("parse date %q with layout %s", raw, layout)
}
