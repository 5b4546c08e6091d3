package strategy

import "testing"

func TestBuildSelectsStrategy(t *testing.T) {
	for _, mode := range []string{"", "threshold", " Threshold "} {
		strat, err := Build(mode, Params{ZThreshold: 1.5})
		if err != nil {
			t.Fatalf("Build(%q) error: %v", mode, err)
		}
		if strat.Name() != "ZScoreThreshold" {
			t.Fatalf("Build(%q) = %s, want ZScoreThreshold", mode, strat.Name())
		}
	}
}

func TestBuildRejectsUnknownModeAndBadThreshold(t *testing.T) {
	for _, mode := range []string{"momentum", "binary", "unit", "scaled"} {
		if _, err := Build(mode, Params{ZThreshold: 1.5}); err == nil {
			t.Fatalf("expected error for unknown mode %q", mode)
		}
	}
	if _, err := Build("threshold", Params{ZThreshold: 0}); err == nil {
		t.Fatalf("expected error for zero threshold")
	}
}
