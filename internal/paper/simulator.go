package paper

import (
	"fmt"
	"math"

	"statarb-go/internal/errs"
	"statarb-go/internal/signal"
)

// CostBasis selects which position change is charged transaction costs.
type CostBasis string

const (
	// CostOnSize charges |Δ position size| * rate.
	CostOnSize CostBasis = "size"
	// CostOnDirection charges |Δ directional signal| * rate.
	CostOnDirection CostBasis = "direction"
)

// Simulator compounds lagged positions, leg returns, and rebalancing costs into a value path.
type Simulator struct {
	initial  float64
	costRate float64
	basis    CostBasis
}

// Result is the simulated return path. Returns[0] is always 0.
// Drawdowns[t] is the portfolio value at t relative to its running peak, minus 1.
type Result struct {
	Returns   []float64
	Costs     []float64
	Values    []float64
	Drawdowns []float64
	Ledger    *Ledger
}

// NewSimulator builds a Simulator. With costs disabled the rate is ignored.
func NewSimulator(initialCapital, costRate float64, enableCosts bool, basis CostBasis) (*Simulator, error) {
	if !(initialCapital > 0) {
		return nil, errs.NewInvalidConfig("initial_capital", "must be > 0")
	}
	if costRate < 0 || math.IsNaN(costRate) {
		return nil, errs.NewInvalidConfig("transaction_cost", "must be >= 0")
	}
	switch basis {
	case "":
		basis = CostOnSize
	case CostOnSize, CostOnDirection:
	default:
		return nil, errs.NewInvalidConfig("cost_basis", fmt.Sprintf("unknown basis %q", basis))
	}
	if !enableCosts {
		costRate = 0
	}
	return &Simulator{initial: initialCapital, costRate: costRate, basis: basis}, nil
}

// Cost is the charge for moving from prev to cur.
func (s *Simulator) Cost(prev, cur float64) float64 {
	return math.Abs(cur-prev) * s.costRate
}

// Simulate runs the bar loop. The return at t uses the position held from t-1,
// so a new position only earns from the following bar.
// directions may be nil unless the cost basis is CostOnDirection.
func (s *Simulator) Simulate(sizes []float64, directions []signal.Direction, retA, retB []float64) (Result, error) {
	n := len(sizes)
	if len(retA) != n || len(retB) != n {
		return Result{}, fmt.Errorf("simulate: %d positions for %d/%d returns", n, len(retA), len(retB))
	}
	if s.basis == CostOnDirection && len(directions) != n {
		return Result{}, fmt.Errorf("simulate: %d directions for %d positions", len(directions), n)
	}

	res := Result{
		Returns:   make([]float64, n),
		Costs:     make([]float64, n),
		Values:    make([]float64, n),
		Drawdowns: make([]float64, n),
		Ledger:    NewLedger(n),
	}
	portfolio := NewPortfolio(s.initial)
	for t := 0; t < n; t++ {
		var ret, cost float64
		if t > 0 {
			cost = s.barCost(sizes, directions, t)
			ret = sizes[t-1]*(retA[t]-retB[t]) - cost
		}
		portfolio.Apply(ret)
		value, drawdown := portfolio.Value(), portfolio.Drawdown()
		res.Returns[t], res.Costs[t], res.Values[t], res.Drawdowns[t] = ret, cost, value, drawdown
		res.Ledger.Record(Entry{Index: t, Position: sizes[t], Return: ret, Cost: cost, Value: value, Drawdown: drawdown})
	}
	return res, nil
}

func (s *Simulator) barCost(sizes []float64, directions []signal.Direction, t int) float64 {
	if s.basis == CostOnDirection {
		return s.Cost(directions[t-1].Sign(), directions[t].Sign())
	}
	return s.Cost(sizes[t-1], sizes[t])
}
