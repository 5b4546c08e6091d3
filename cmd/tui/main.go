package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"statarb-go/internal/config"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	reader := bufio.NewReader(os.Stdin)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	for {
		fmt.Println("\n=== StatArb Control ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit signal and simulation knobs")
		fmt.Println("3) Edit risk knobs")
		fmt.Println("4) Add a pair")
		fmt.Println("5) Save config")
		fmt.Println("6) Launch backtest")
		fmt.Println("7) Reload config from disk")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		input, _ := reader.ReadString('\n')
		choice := strings.TrimSpace(input)

		switch choice {
		case "1":
			printSummary(os.Stdout, cfg)
		case "2":
			editTrading(reader, cfg)
		case "3":
			editRisk(reader, cfg)
		case "4":
			addPair(reader, cfg)
		case "5":
			if err := saveConfig(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "6":
			launchBacktest(reader)
		case "7":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				cfg = reloaded
				fmt.Println("config reloaded")
			}
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(w io.Writer, cfg *config.Config) {
	t, r := cfg.Trading, cfg.Risk
	fmt.Fprintln(w, "\n--- Configuration Summary ---")
	fmt.Fprintf(w, "Strategy: %s | window %d | z threshold %.2f\n", t.Strategy, t.Window, t.ZThreshold)
	fmt.Fprintf(w, "Winsorize: %t (%.1f%% / %.1f%%)\n", t.Winsorize, t.WinsorizeLimits[0]*100, t.WinsorizeLimits[1]*100)
	fmt.Fprintf(w, "Initial capital: $%.2f | trading days %d\n", t.InitialCapital, t.TradingDaysPerYear)
	fmt.Fprintf(w, "Transaction cost: %.3f%% on %s (enabled: %t)\n", t.TransactionCost*100, t.CostBasis, t.EnableTransactionCosts)
	fmt.Fprintf(w, "Stop loss drawdown: %.2f%%\n", t.StopLoss*100)
	fmt.Fprintf(w, "Max correlation: %.2f | position limit %.2f%% | unit notional $%.2f\n", r.MaxCorrelation, r.PositionLimitPct*100, r.UnitNotional)
	fmt.Fprintf(w, "Pairs (%d):\n", len(cfg.Pairs))
	for _, p := range cfg.Pairs {
		source := p.Path
		if source == "" {
			source = fmt.Sprintf("%d bars, seed %d", p.Bars, p.Seed)
		}
		fmt.Fprintf(w, "  %s: %s/%s via %s (%s)\n", p.Label(), p.SymbolA, p.SymbolB, p.Provider, source)
	}
}

func editTrading(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Signal / Simulation ---")
	t := &cfg.Trading
	t.Window = int(promptFloat(reader, "Rolling window (bars)", float64(t.Window)))
	t.ZThreshold = promptFloat(reader, "Z-score threshold", t.ZThreshold)
	t.InitialCapital = promptFloat(reader, "Initial capital", t.InitialCapital)
	t.TransactionCost = promptPercent(reader, "Transaction cost (%)", t.TransactionCost)
	t.EnableTransactionCosts = promptBool(reader, "Charge transaction costs", t.EnableTransactionCosts)
	t.StopLoss = promptPercent(reader, "Stop loss drawdown (%)", t.StopLoss)
	t.Winsorize = promptBool(reader, "Winsorize spread", t.Winsorize)
	checkEngine(cfg)
}

func editRisk(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Edit Risk ---")
	r := &cfg.Risk
	r.MaxCorrelation = promptFloat(reader, "Max correlation", r.MaxCorrelation)
	r.PositionLimitPct = promptPercent(reader, "Position limit (% of portfolio)", r.PositionLimitPct)
	r.UnitNotional = promptFloat(reader, "Unit notional (0 = portfolio value)", r.UnitNotional)
	checkEngine(cfg)
}

func addPair(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("\n--- Add Pair ---")
	pair := config.Pair{
		SymbolA: strings.ToUpper(promptString(reader, "Symbol A", "")),
		SymbolB: strings.ToUpper(promptString(reader, "Symbol B", "")),
	}
	if pair.SymbolA == "" || pair.SymbolB == "" {
		fmt.Println("both symbols are required, pair not added")
		return
	}
	pair.Path = promptString(reader, "CSV path (blank for synthetic)", "")
	if pair.Path != "" {
		pair.Provider = "csv"
	} else {
		pair.Provider = "stub"
		pair.Bars = int(promptFloat(reader, "Synthetic bars", 500))
		pair.Seed = int64(promptFloat(reader, "Seed", float64(len(cfg.Pairs)+1)))
	}
	cfg.Pairs = append(cfg.Pairs, pair)
	if err := cfg.Validate(); err != nil {
		cfg.Pairs = cfg.Pairs[:len(cfg.Pairs)-1]
		fmt.Printf("pair rejected: %v\n", err)
		return
	}
	fmt.Printf("added %s\n", pair.Label())
}

func checkEngine(cfg *config.Config) {
	if err := cfg.Engine.Validate(); err != nil {
		fmt.Printf("warning: %v (fix before saving)\n", err)
	}
}

func launchBacktest(reader *bufio.Reader) {
	fmt.Println("Launching backtest...")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/backtest", "run", "--config", locateConfig(), "--pretty")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start backtest: %v\n", err)
		return
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "backtest exited with status %d\n", exitErr.ExitCode())
		}
	case <-time.After(10 * time.Minute):
		cancel()
		fmt.Fprintln(os.Stderr, "backtest timed out")
	}
	fmt.Print("\nPress ENTER to return to menu...")
	_, _ = reader.ReadString('\n')
}

func promptString(reader *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	return line
}

func promptFloat(reader *bufio.Reader, label string, current float64) float64 {
	fmt.Printf("%s [%.2f]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseFloat(line, 64)
	if err != nil {
		fmt.Printf("invalid number, keeping %.2f\n", current)
		return current
	}
	return val
}

func promptPercent(reader *bufio.Reader, label string, current float64) float64 {
	pct := promptFloat(reader, label, current*100)
	return pct / 100
}

func promptBool(reader *bufio.Reader, label string, current bool) bool {
	fmt.Printf("%s [%t]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseBool(line)
	if err != nil {
		fmt.Printf("invalid boolean, keeping %t\n", current)
		return current
	}
	return val
}

func loadConfig() (*config.Config, error) {
	return config.Load(locateConfig())
}

func saveConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return config.Save(locateConfig(), cfg)
}

func locateConfig() string {
	if path := os.Getenv("STATARB_CONFIG"); path != "" {
		return path
	}
	return filepath.Clean(defaultConfigPath)
}
