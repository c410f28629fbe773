package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hali-na/tradingpk/journal"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Show the comparison for a saved run",
	Long: `Read a completed run from the sqlite journal and print its summary,
or list all saved runs when no run id is given.

Examples:
  tradingpk compare --db runs.db
  tradingpk compare --db runs.db --run 01HV...`,
	RunE: runCompare,
}

var (
	compareDBPath string
	compareRunID  string
)

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&compareDBPath, "db", "", "path to the sqlite journal (required)")
	compareCmd.Flags().StringVar(&compareRunID, "run", "", "run id; omit to list all runs")
	compareCmd.MarkFlagRequired("db")
}

func runCompare(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(compareDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	if compareRunID == "" {
		runs, err := j.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No saved runs.")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %s -> %s  you %+.2f%% vs benchmark %+.2f%%  [%s]\n",
				r.RunID, r.Symbol,
				r.StartTime.Format("2006-01-02"), r.EndTime.Format("2006-01-02"),
				r.ReturnPct, r.BenchmarkReturnPct, r.Verdict)
		}
		return nil
	}

	r, err := j.GetRun(compareRunID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s (%s)\n", r.RunID, r.Symbol)
	fmt.Printf("  Window: %s -> %s\n", r.StartTime.Format("2006-01-02 15:04"), r.EndTime.Format("2006-01-02 15:04"))
	fmt.Printf("  Balance: $%.2f -> $%.2f equity\n", r.InitialBalance, r.FinalEquity)
	fmt.Printf("  Return: %+.2f%% vs benchmark %+.2f%%\n", r.ReturnPct, r.BenchmarkReturnPct)
	fmt.Printf("  Verdict: %s\n", r.Verdict)
	fmt.Printf("  Max drawdown: %.2f%%, trades: %d\n", r.MaxDrawdownPct, r.Trades)

	trades, err := j.ListTrades(r.RunID)
	if err != nil {
		return err
	}
	if len(trades) > 0 {
		fmt.Println("  Fills:")
		for _, t := range trades {
			action := "close"
			if t.IsOpen {
				action = "open"
			}
			fmt.Printf("    %s  %-5s %-6s %10.0f @ %.1f  fee $%.4f",
				t.Time.Format("01-02 15:04"), action, t.Side, t.Quantity, t.Price, t.Fee)
			if !t.IsOpen {
				fmt.Printf("  pnl $%+.2f", t.Pnl)
			}
			fmt.Println()
		}
	}
	return nil
}
