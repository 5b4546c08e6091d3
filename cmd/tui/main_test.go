package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"statarb-go/internal/config"
)

func TestPromptHelpersKeepCurrentOnBlankOrInvalid(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("\nabc\n2.5\n\nmaybe\nfalse\n"))
	if got := promptFloat(reader, "x", 1.5); got != 1.5 {
		t.Fatalf("blank input should keep current, got %v", got)
	}
	if got := promptFloat(reader, "x", 1.5); got != 1.5 {
		t.Fatalf("invalid input should keep current, got %v", got)
	}
	if got := promptPercent(reader, "x", 0.01); got != 0.025 {
		t.Fatalf("expected 2.5%% as 0.025, got %v", got)
	}
	if got := promptBool(reader, "x", true); !got {
		t.Fatalf("blank bool should keep current")
	}
	if got := promptBool(reader, "x", true); !got {
		t.Fatalf("invalid bool should keep current")
	}
	if got := promptBool(reader, "x", true); got {
		t.Fatalf("expected false")
	}
}

func TestAddPairSynthetic(t *testing.T) {
	cfg := config.Default()
	reader := bufio.NewReader(strings.NewReader("gdx\ngld\n\n300\n9\n"))
	addPair(reader, cfg)
	if len(cfg.Pairs) != 1 {
		t.Fatalf("expected pair to be added")
	}
	p := cfg.Pairs[0]
	if p.Label() != "GDX-GLD" || p.Provider != "stub" || p.Bars != 300 || p.Seed != 9 {
		t.Fatalf("unexpected pair %+v", p)
	}

	var buf bytes.Buffer
	printSummary(&buf, cfg)
	if !strings.Contains(buf.String(), "GDX-GLD") {
		t.Fatalf("summary should list the pair: %s", buf.String())
	}
}

func TestAddPairRequiresSymbols(t *testing.T) {
	cfg := config.Default()
	addPair(bufio.NewReader(strings.NewReader("KO\n\n")), cfg)
	if len(cfg.Pairs) != 0 {
		t.Fatalf("pair without symbol B should be rejected")
	}
}
