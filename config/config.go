// Package config loads and validates the simulation configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete simulation configuration.
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	Market    MarketConfig    `json:"market" yaml:"market"`
	Benchmark BenchmarkConfig `json:"benchmark" yaml:"benchmark"`
	Playback  PlaybackConfig  `json:"playback" yaml:"playback"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Script    []ScriptedOrder `json:"script,omitempty" yaml:"script,omitempty"`
}

// ScriptedOrder is an order the run command places once the clock reaches
// At. Useful for repeatable, non-interactive runs.
type ScriptedOrder struct {
	At       string  `json:"at" yaml:"at"` // RFC3339
	Kind     string  `json:"kind" yaml:"kind"`
	Side     string  `json:"side" yaml:"side"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	Price    float64 `json:"price,omitempty" yaml:"price,omitempty"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	Balance  float64 `json:"balance" yaml:"balance"`
	Leverage float64 `json:"leverage" yaml:"leverage"`
	Slippage float64 `json:"slippage" yaml:"slippage"`
}

// MarketConfig names the candle data for the run.
type MarketConfig struct {
	Symbol      string `json:"symbol" yaml:"symbol"`
	CandlesFile string `json:"candles_file" yaml:"candles_file"`
	Timeframe   string `json:"timeframe" yaml:"timeframe"` // e.g. "1m", "5m"
}

// BenchmarkConfig names the reference trader's historical record.
type BenchmarkConfig struct {
	FillsFile  string `json:"fills_file" yaml:"fills_file"`
	WalletFile string `json:"wallet_file,omitempty" yaml:"wallet_file,omitempty"`
}

// PlaybackConfig contains clock parameters.
type PlaybackConfig struct {
	Speed float64 `json:"speed" yaml:"speed"`
}

// JournalConfig contains persistence parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ServerConfig contains the HTTP listener parameters.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, YAML or JSON by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Account.Leverage <= 0 {
		return fmt.Errorf("account.leverage must be positive")
	}
	if c.Account.Slippage < 0 || c.Account.Slippage >= 1 {
		return fmt.Errorf("account.slippage must be in [0, 1)")
	}
	if c.Market.Symbol == "" {
		return fmt.Errorf("market.symbol is required")
	}
	if c.Market.CandlesFile == "" {
		return fmt.Errorf("market.candles_file is required")
	}
	if c.Benchmark.FillsFile == "" {
		return fmt.Errorf("benchmark.fills_file is required")
	}
	if c.Playback.Speed <= 0 {
		return fmt.Errorf("playback.speed must be positive")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" || c.Journal.RunsFile == "" {
			return fmt.Errorf("journal trades_file, equity_file and runs_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	for i, so := range c.Script {
		if _, err := time.Parse(time.RFC3339, so.At); err != nil {
			return fmt.Errorf("script[%d].at: %w", i, err)
		}
		if so.Side != "Buy" && so.Side != "Sell" {
			return fmt.Errorf("script[%d].side must be Buy or Sell", i)
		}
		switch so.Kind {
		case "Market":
		case "Limit", "Stop":
			if so.Price <= 0 {
				return fmt.Errorf("script[%d].price must be positive for %s orders", i, so.Kind)
			}
		default:
			return fmt.Errorf("script[%d].kind must be Market, Limit or Stop", i)
		}
		if so.Quantity <= 0 {
			return fmt.Errorf("script[%d].quantity must be positive", i)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Balance:  10000,
			Leverage: 10,
			Slippage: 0.001,
		},
		Market: MarketConfig{
			Symbol:      "XBTUSD",
			CandlesFile: "./data/candles.csv",
			Timeframe:   "1m",
		},
		Benchmark: BenchmarkConfig{
			FillsFile:  "./data/fills.csv",
			WalletFile: "./data/wallet.csv",
		},
		Playback: PlaybackConfig{
			Speed: 60,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./runs.db",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
