package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hali-na/tradingpk/refdata"
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Rebuild the benchmark trader's round trips from raw fills",
	Long: `Read a raw fills CSV, match entries against exits, and print the
reconstructed round trips with aggregate stats.

Example:
  tradingpk reconstruct -f data/fills.csv`,
	RunE: runReconstruct,
}

var reconstructFillsPath string

func init() {
	rootCmd.AddCommand(reconstructCmd)

	reconstructCmd.Flags().StringVarP(&reconstructFillsPath, "fills", "f", "", "path to raw fills CSV (required)")
	reconstructCmd.MarkFlagRequired("fills")
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	fills, report, err := refdata.LoadFills(reconstructFillsPath)
	if err != nil {
		return fmt.Errorf("load fills: %w", err)
	}
	fmt.Printf("Loaded %d fills from %s\n", report.Loaded, reconstructFillsPath)
	printSkips("fill", len(report.Skipped))

	trips := refdata.Reconstruct(fills)
	for _, rt := range trips {
		fmt.Printf("  %-5s %10.0f @ %.1f -> %.1f  pnl $%+.2f (%.2f%%)  fees $%.2f  held %s\n",
			rt.Direction, rt.Quantity, rt.EntryPrice, rt.ExitPrice,
			rt.PnlUSD, rt.PnlPercent, rt.FeesUSD, rt.Duration)
	}

	stats := refdata.Stats(trips)
	fmt.Println()
	fmt.Printf("Round trips: %d (%d wins, %d losses, %.0f%% win rate)\n",
		stats.Trips, stats.Wins, stats.Losses, stats.WinRate)
	fmt.Printf("Total PnL: $%.2f gross, $%.2f net of $%.2f fees\n",
		stats.TotalPnlUSD, stats.NetPnlUSD, stats.TotalFeeUSD)
	if stats.Trips > 0 {
		fmt.Printf("Average hold: %s\n", stats.AvgHold)
	}

	for _, open := range refdata.RemainingPositions(fills) {
		fmt.Printf("Still open: %s %s %.0f @ %.1f since %s\n",
			open.Symbol, open.Direction, open.Quantity, open.EntryPrice, open.EntryTime.Format("2006-01-02 15:04"))
	}
	return nil
}
