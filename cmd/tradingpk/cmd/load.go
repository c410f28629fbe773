package cmd

import (
	"fmt"
	"time"

	"github.com/hali-na/tradingpk/config"
	"github.com/hali-na/tradingpk/engine"
	"github.com/hali-na/tradingpk/journal"
	"github.com/hali-na/tradingpk/market"
	"github.com/hali-na/tradingpk/refdata"
	"github.com/hali-na/tradingpk/session"
)

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile, cfg.Journal.RunsFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func loadMarket(cfg *config.Config) (*market.Series, error) {
	timeframe := time.Minute
	if cfg.Market.Timeframe != "" {
		d, err := time.ParseDuration(cfg.Market.Timeframe)
		if err != nil {
			return nil, fmt.Errorf("market.timeframe: %w", err)
		}
		timeframe = d
	}

	series, report, err := market.LoadSeries(cfg.Market.CandlesFile, cfg.Market.Symbol, timeframe)
	if err != nil {
		return nil, err
	}
	printSkips("candles", len(report.Skipped))
	return series, nil
}

func loadBenchmark(cfg *config.Config) ([]refdata.RawFill, *refdata.WalletHistory, error) {
	fills, report, err := refdata.LoadFills(cfg.Benchmark.FillsFile)
	if err != nil {
		return nil, nil, err
	}
	printSkips("fills", len(report.Skipped))

	var wallet *refdata.WalletHistory
	if cfg.Benchmark.WalletFile != "" {
		var wreport refdata.LoadReport
		wallet, wreport, err = refdata.LoadWalletHistory(cfg.Benchmark.WalletFile)
		if err != nil {
			return nil, nil, err
		}
		printSkips("wallet snapshots", len(wreport.Skipped))
	}
	return fills, wallet, nil
}

func buildSession(cfg *config.Config, jour journal.Journal) (*session.Session, *market.Series, error) {
	series, err := loadMarket(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("load candles: %w", err)
	}
	fills, wallet, err := loadBenchmark(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("load benchmark data: %w", err)
	}

	engCfg := engine.Config{
		InitialBalance: cfg.Account.Balance,
		Fees:           engine.DefaultFees(),
		Slippage:       cfg.Account.Slippage,
		Leverage:       cfg.Account.Leverage,
	}
	sess, err := session.New(session.Config{
		Symbol:         cfg.Market.Symbol,
		InitialBalance: cfg.Account.Balance,
		Speed:          cfg.Playback.Speed,
		Engine:         engCfg,
	}, series, fills, wallet, jour)
	if err != nil {
		return nil, nil, err
	}
	return sess, series, nil
}

func printSkips(what string, n int) {
	if n > 0 {
		fmt.Printf("  skipped %d malformed %s rows\n", n, what)
	}
}
