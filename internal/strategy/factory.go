package strategy

import (
	"fmt"
	"strings"

	"statarb-go/internal/signal"
)

// Strategy turns a z-score series into one position per bar.
type Strategy interface {
	Generate(z []float64) []signal.Position
	Name() string
}

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	ZThreshold float64
}

// Build returns a strategy implementation matching the configured mode.
func Build(mode string, params Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "threshold":
		return NewThreshold(params.ZThreshold)
	default:
		return nil, fmt.Errorf("unknown strategy mode %q", mode)
	}
}
