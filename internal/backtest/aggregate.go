package backtest

import (
	"math"
	"sort"
	"time"

	"statarb-go/internal/errs"
	"statarb-go/internal/performance"
	"statarb-go/internal/series"
)

// Portfolio is the equal-weight combination of independent pair runs.
type Portfolio struct {
	Dates       []time.Time
	Returns     []float64
	Values      []float64
	Metrics     performance.Metrics
	Names       []string
	Correlation [][]float64
}

// Aggregate aligns pair returns on the union of their dates, compared as UTC
// instants, and averages the
// pairs present at each date with equal weight. The correlation matrix uses
// the dates two pairs share; undefined entries are NaN and the diagonal is 1.
func Aggregate(pairs []PairReturns, capital float64, analyzer *performance.Analyzer) (*Portfolio, error) {
	if len(pairs) == 0 {
		return nil, errs.NewInsufficientData("aggregate", 0, 1)
	}

	lookup := make([]map[time.Time]float64, len(pairs))
	union := make(map[time.Time]struct{})
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.Name
		lookup[i] = make(map[time.Time]float64, len(p.Dates))
		for j, d := range p.Dates {
			// one instant is one bar whatever its location
			d = d.UTC()
			lookup[i][d] = p.Returns[j]
			union[d] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(union))
	for d := range union {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	returns := make([]float64, len(dates))
	for t, d := range dates {
		var sum float64
		var count int
		for i := range pairs {
			if r, ok := lookup[i][d]; ok {
				sum += r
				count++
			}
		}
		if count > 0 {
			returns[t] = sum / float64(count)
		}
	}
	if len(returns) > 0 {
		// no position is held before the first bar
		returns[0] = 0
	}
	values := series.CumulativeValue(returns, capital)

	m, err := analyzer.Analyze(returns, values, nil)
	if err != nil {
		return nil, err
	}
	return &Portfolio{
		Dates:       dates,
		Returns:     returns,
		Values:      values,
		Metrics:     m,
		Names:       names,
		Correlation: correlationMatrix(dates, lookup),
	}, nil
}

func correlationMatrix(dates []time.Time, lookup []map[time.Time]float64) [][]float64 {
	k := len(lookup)
	matrix := make([][]float64, k)
	for i := range matrix {
		matrix[i] = make([]float64, k)
		matrix[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			var a, b []float64
			for _, d := range dates {
				ri, okI := lookup[i][d]
				rj, okJ := lookup[j][d]
				if okI && okJ {
					a = append(a, ri)
					b = append(b, rj)
				}
			}
			corr, err := series.Correlation(a, b)
			if err != nil {
				corr = math.NaN()
			}
			matrix[i][j], matrix[j][i] = corr, corr
		}
	}
	return matrix
}
