package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradingpk",
	Short: "Trade against a historical trader's real record",
	Long: `Tradingpk replays historical market data while a benchmark trader's
real fills play out alongside your simulated account.

It provides tools for:
  - Running replay sessions against candle data
  - Reconstructing the benchmark trader's round trips from raw fills
  - Comparing your performance against the benchmark, without lookahead
  - Serving a local HTTP API and websocket stream for a browser UI
  - Journaling fills, equity curves and completed runs`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
