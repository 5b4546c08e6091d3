// Package report renders run output as CSV tables, JSON lines and terminal tables.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"

	"statarb-go/internal/performance"
	"statarb-go/internal/signal"
)

// Summary is the per-pair line written to JSONL and the summary table.
type Summary struct {
	Pair              string              `json:"pair"`
	Bars              int                 `json:"bars"`
	HedgeRatio        float64             `json:"hedge_ratio"`
	CointStatistic    float64             `json:"coint_statistic"`
	CointPValue       float64             `json:"coint_pvalue"`
	Correlation       float64             `json:"correlation"`
	StopLossBars      int                 `json:"stop_loss_bars"`
	DegenerateWindows int                 `json:"degenerate_windows"`
	Metrics           performance.Metrics `json:"metrics"`
	Error             string              `json:"error,omitempty"`
}

// WriteSignals writes the per-bar signal table to path, creating parent directories.
func WriteSignals(path string, rows []signal.SignalRow) error {
	return writeCSV(path, &rows)
}

// WriteReturns writes the per-bar return table to path.
func WriteReturns(path string, rows []signal.ReturnRow) error {
	return writeCSV(path, &rows)
}

func writeCSV(path string, rows interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints one row per pair plus an optional portfolio row.
func RenderSummary(w io.Writer, pairs []Summary, portfolio *performance.Metrics) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pair", "Bars", "Total", "Ann.Ret", "Sharpe", "Sortino", "MaxDD", "Win", "Trades", "Stops", "Coint p"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, s := range pairs {
		if s.Error != "" {
			table.Append([]string{s.Pair, "-", "error: " + s.Error, "", "", "", "", "", "", "", ""})
			continue
		}
		table.Append(append([]string{s.Pair}, metricCells(s.Metrics, s.StopLossBars, s.CointPValue)...))
	}
	if portfolio != nil {
		table.SetFooter(append([]string{"Portfolio"}, metricCells(*portfolio, 0, math.NaN())...))
	}
	table.Render()
}

func metricCells(m performance.Metrics, stops int, pvalue float64) []string {
	return []string{
		fmt.Sprintf("%d", m.Bars),
		pct(m.TotalReturn),
		pct(m.AnnualizedReturn),
		fmt.Sprintf("%.2f", m.Sharpe),
		fmt.Sprintf("%.2f", m.Sortino),
		pct(m.MaxDrawdown),
		pct(m.WinRate),
		fmt.Sprintf("%.1f", m.TradeCount),
		fmt.Sprintf("%d", stops),
		num(pvalue),
	}
}

// RenderCorrelation prints the pairwise return correlation matrix.
func RenderCorrelation(w io.Writer, names []string, matrix [][]float64) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{""}, names...))
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, row := range matrix {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, names[i])
		for _, v := range row {
			cells = append(cells, num(v))
		}
		table.Append(cells)
	}
	table.Render()
}

func pct(v float64) string { return fmt.Sprintf("%.2f%%", v*100) }

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

// CointRow is one line of the cointegration table.
type CointRow struct {
	Pair         string
	Statistic    float64
	PValue       float64
	Critical     [3]float64
	HedgeRatio   float64
	Cointegrated bool
	Error        string
}

// RenderCointegration prints Engle-Granger diagnostics per pair.
func RenderCointegration(w io.Writer, rows []CointRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pair", "Stat", "p-value", "1%", "5%", "10%", "Hedge", "Cointegrated"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, r := range rows {
		if r.Error != "" {
			table.Append([]string{r.Pair, "-", "error: " + r.Error, "", "", "", "", ""})
			continue
		}
		table.Append([]string{
			r.Pair,
			num(r.Statistic),
			num(r.PValue),
			num(r.Critical[0]),
			num(r.Critical[1]),
			num(r.Critical[2]),
			num(r.HedgeRatio),
			fmt.Sprintf("%t", r.Cointegrated),
		})
	}
	table.Render()
}
