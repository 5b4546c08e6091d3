// Package paper simulates a pair strategy's capital path bar by bar.
package paper

// Portfolio tracks the capital value of one strategy run, marked once per bar.
type Portfolio struct {
	value float64
	peak  float64
}

// NewPortfolio starts a portfolio at initial capital.
func NewPortfolio(initial float64) *Portfolio {
	return &Portfolio{value: initial, peak: initial}
}

// Apply compounds one bar's strategy return.
func (p *Portfolio) Apply(ret float64) {
	p.value *= 1 + ret
	if p.value > p.peak {
		p.peak = p.value
	}
}

// Value returns the current capital.
func (p *Portfolio) Value() float64 { return p.value }

// Drawdown returns value/peak - 1, or 0 when the peak is not positive.
func (p *Portfolio) Drawdown() float64 {
	if p.peak <= 0 {
		return 0
	}
	return p.value/p.peak - 1
}
