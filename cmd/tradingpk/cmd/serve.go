package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hali-na/tradingpk/api"
	"github.com/hali-na/tradingpk/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session over HTTP with a websocket state stream",
	Long: `Load the configured data, build a paused session, and expose it on
the configured address. The clock starts paused; drive it through the
/clock endpoints or the stream.

Example:
  tradingpk serve -f tradingpk.yaml`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(serveConfigPath)
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

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	fmt.Printf("Session %s: %s, %s -> %s\n", sess.RunID(), cfg.Market.Symbol,
		series.Start().Format("2006-01-02 15:04"), series.End().Format("2006-01-02 15:04"))
	fmt.Printf("Listening on %s\n", addr)

	return api.NewServer(sess).Run(addr)
}
