package spread

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"statarb-go/internal/errs"
	"statarb-go/internal/series"
)

// DefaultSignificance is the p-value under which a pair is reported as cointegrated.
const DefaultSignificance = 0.05

// CointResult is the Engle-Granger diagnostic for a price pair.
//
// PValue is approximate. It follows MacKinnon's small-p surface up to tau* and
// then a straight line to 1 at tau_max instead of the large-p surface, and the
// statistic comes from a zero-lag Dickey-Fuller regression with no AIC lag
// selection. Treat values near the significance level as indicative only.
type CointResult struct {
	Statistic    float64
	PValue       float64
	Critical     [3]float64 // 1%, 5%, 10%
	HedgeRatio   float64
	Cointegrated bool
}

// MacKinnon (2010) response surface, two variables with constant: b0 + b1/T + b2/T^2.
var criticalSurface = [3][3]float64{
	{-3.89644, -10.9519, -22.527},
	{-3.33613, -6.1101, -6.823},
	{-3.04445, -4.2412, -2.720},
}

// MacKinnon (1994) p-value surface, two variables with constant.
const (
	tauMax  = 0.92
	tauMin  = -18.86
	tauStar = -2.62
)

var smallP = [3]float64{2.92, 1.5012, 0.039796}

// Cointegrate runs the Engle-Granger two-step test of a on b.
//
// Step one regresses a on b with intercept; step two runs a zero-lag Dickey-Fuller
// regression without constant on the residuals. The result is advisory only.
func Cointegrate(a, b []float64, significance float64) (CointResult, error) {
	if len(a) != len(b) {
		return CointResult{}, fmt.Errorf("cointegration: length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) < 4 {
		return CointResult{}, errs.NewInsufficientData("cointegration", len(a), 4)
	}
	if significance <= 0 {
		significance = DefaultSignificance
	}

	variance, err := stats.SampleVariance(b)
	if err != nil {
		return CointResult{}, err
	}
	meanB, _ := stats.Mean(b)
	if series.NearZero(variance, meanB*meanB) {
		return CointResult{}, errs.NewDegenerateVariance("cointegration", -1)
	}
	cov, err := stats.Covariance(a, b)
	if err != nil {
		return CointResult{}, err
	}
	beta := cov / variance
	meanA, _ := stats.Mean(a)
	alpha := meanA - beta*meanB

	resid := make([]float64, len(a))
	for i := range a {
		resid[i] = a[i] - alpha - beta*b[i]
	}

	stat, err := dickeyFuller(resid)
	if err != nil {
		return CointResult{}, err
	}

	res := CointResult{Statistic: stat, HedgeRatio: beta, PValue: pValue(stat)}
	nobs := float64(len(resid) - 1)
	for i, c := range criticalSurface {
		res.Critical[i] = c[0] + c[1]/nobs + c[2]/(nobs*nobs)
	}
	res.Cointegrated = res.PValue <= significance
	return res, nil
}

// dickeyFuller returns the t-statistic of gamma in d(e_t) = gamma*e_{t-1} + u_t.
func dickeyFuller(e []float64) (float64, error) {
	var sxx, sxy float64
	for t := 1; t < len(e); t++ {
		sxx += e[t-1] * e[t-1]
		sxy += e[t-1] * (e[t] - e[t-1])
	}
	if series.NearZero(sxx, 1) {
		return math.NaN(), errs.NewDegenerateVariance("dickey-fuller", -1)
	}
	gamma := sxy / sxx

	var ssr float64
	for t := 1; t < len(e); t++ {
		u := (e[t] - e[t-1]) - gamma*e[t-1]
		ssr += u * u
	}
	dof := float64(len(e) - 2)
	se := math.Sqrt(ssr / dof / sxx)
	if se == 0 {
		return math.Inf(-1), nil
	}
	return gamma / se, nil
}

func pValue(stat float64) float64 {
	switch {
	case math.IsInf(stat, -1), stat <= tauMin:
		return 0
	case stat >= tauMax:
		return 1
	case stat <= tauStar:
		return normCDF(smallP[0] + smallP[1]*stat + smallP[2]*stat*stat)
	}
	// linear bridge from the small-p surface at tau* up to 1 at tau_max
	atStar := normCDF(smallP[0] + smallP[1]*tauStar + smallP[2]*tauStar*tauStar)
	frac := (stat - tauStar) / (tauMax - tauStar)
	return atStar + frac*(1-atStar)
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
