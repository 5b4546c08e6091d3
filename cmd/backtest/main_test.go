package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitRunAndCoint(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "statarb.yaml")
	outDir := filepath.Join(dir, "out")

	if _, err := execute(t, "init", "--config", cfgPath); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := execute(t, "init", "--config", cfgPath); err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}

	out, err := execute(t, "run", "--config", cfgPath, "--out", outDir, "--log-level", "error", "--workers", "1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "synthetic") {
		t.Fatalf("expected summary table to name the pair, got %s", out)
	}
	for _, name := range []string{"synthetic_signals.csv", "synthetic_returns.csv", "summaries.jsonl"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	out, err = execute(t, "coint", "--config", cfgPath, "--log-level", "error")
	if err != nil {
		t.Fatalf("coint: %v", err)
	}
	if !strings.Contains(out, "synthetic") {
		t.Fatalf("expected coint table to name the pair, got %s", out)
	}
}

func TestRunMissingConfig(t *testing.T) {
	if _, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config")
	}
}

func TestFileSafe(t *testing.T) {
	if got := fileSafe("KO/PEP daily:1"); got != "KO_PEP_daily_1" {
		t.Fatalf("unexpected file name %s", got)
	}
}
