package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/hali-na/tradingpk/config"
	"github.com/hali-na/tradingpk/engine"
	"github.com/hali-na/tradingpk/market"
	"github.com/hali-na/tradingpk/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a session from a config file and print the comparison",
	Long: `Run a complete replay session: load candles and the benchmark
trader's fills, drive the clock over the data window, place any scripted
orders from the config, and print the final comparison.

Example:
  tradingpk run -f tradingpk.yaml --turbo`,
	RunE: runRun,
}

var (
	runConfigPath string
	runTurbo      bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().BoolVar(&runTurbo, "turbo", false, "step candle to candle instead of real-time playback")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	jour, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	sess, series, err := buildSession(cfg, jour)
	if err != nil {
		jour.Close()
		return err
	}
	defer sess.Close()

	fmt.Printf("Run %s: %s, %d candles, $%.2f starting balance\n",
		sess.RunID(), cfg.Market.Symbol, len(series.Candles), cfg.Account.Balance)

	script := make([]config.ScriptedOrder, len(cfg.Script))
	copy(script, cfg.Script)
	sort.SliceStable(script, func(i, j int) bool { return script[i].At < script[j].At })

	if runTurbo {
		runTurboLoop(sess, series.Candles, script)
	} else {
		runRealtime(sess, script)
	}

	printSummary(sess)
	if err := sess.JournalErr(); err != nil {
		fmt.Printf("warning: journal writes failed: %v\n", err)
	}
	return nil
}

// runTurboLoop steps the clock candle to candle, placing scripted orders
// as their timestamps come due.
func runTurboLoop(sess *session.Session, candles []market.Candle, script []config.ScriptedOrder) {
	next := 0
	for _, c := range candles {
		sess.JumpTo(c.Timestamp)
		for next < len(script) {
			at, _ := time.Parse(time.RFC3339, script[next].At)
			if at.After(c.Timestamp) {
				break
			}
			placeScripted(sess, script[next])
			next++
		}
	}
}

// runRealtime plays the clock at the configured speed and places scripted
// orders as simulated time passes them.
func runRealtime(sess *session.Session, script []config.ScriptedOrder) {
	st := sess.ClockState()
	if !st.Current.Before(st.End) {
		// Zero-length data window: the clock is born at end and Play is
		// a no-op, so there is nothing to wait for.
		return
	}
	sess.Play()

	next := 0
	for !sess.Finished() {
		now := sess.ClockState().Current
		for next < len(script) {
			at, _ := time.Parse(time.RFC3339, script[next].At)
			if at.After(now) {
				break
			}
			placeScripted(sess, script[next])
			next++
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func placeScripted(sess *session.Session, so config.ScriptedOrder) {
	side := engine.Side(so.Side)

	var res engine.Result
	switch engine.OrderKind(so.Kind) {
	case engine.Limit:
		res = sess.PlaceLimitOrder(side, so.Quantity, so.Price)
	case engine.Stop:
		res = sess.PlaceStopOrder(side, so.Quantity, so.Price)
	default:
		res = sess.PlaceMarketOrder(side, so.Quantity)
	}
	if !res.OK {
		fmt.Printf("  scripted %s %s %.0f rejected: %s\n", so.Kind, so.Side, so.Quantity, res.Err)
	}
}

func printSummary(sess *session.Session) {
	m := sess.Metrics()
	dd := sess.Drawdown()
	pnl := sess.PnL()

	fmt.Println()
	fmt.Printf("Final equity: $%.2f (%.2f%%)\n", sess.Equity(), m.User.ReturnPct)
	fmt.Printf("PnL: $%+.2f realized, $%+.2f unrealized\n", pnl.RealizedUSD, pnl.UnrealizedUSD)
	fmt.Printf("Benchmark return: %.2f%%\n", m.Benchmark.ReturnPct)
	fmt.Printf("Verdict: %s (diff %.2f pp)\n", m.Verdict, m.ReturnDiff)
	fmt.Printf("Trades: you %d (win %.0f%%), benchmark %d (win %.0f%%)\n",
		m.User.Trades, m.User.WinRate, m.Benchmark.Trades, m.Benchmark.WinRate)
	fmt.Printf("Fees: you $%.2f, benchmark $%.2f\n", m.User.TotalFeesUSD, m.Benchmark.TotalFeesUSD)
	if dd.MaxPct > 0 {
		fmt.Printf("Max drawdown: %.2f%%\n", dd.MaxPct)
	}

	fmt.Println()
	for _, line := range sess.Insights() {
		fmt.Printf("  %s\n", line)
	}
}
