// Package journal persists simulation activity: fills, equity marks, and
// completed-run summaries. Correctness of the simulation never depends on
// it; a failed write is reported and the run continues.
package journal

import (
	"time"

	"github.com/hali-na/tradingpk/engine"
)

// TradeRecord is one fill as stored.
type TradeRecord struct {
	RunID      string
	TradeID    string
	Time       time.Time
	Side       string
	Kind       string
	Price      float64
	Quantity   float64
	Fee        float64
	IsOpen     bool
	PositionID string
	EntryPrice float64
	ExitPrice  float64
	Pnl        float64
}

// FromTrade maps an engine fill onto a stored record.
func FromTrade(runID string, t engine.Trade) TradeRecord {
	return TradeRecord{
		RunID:      runID,
		TradeID:    t.ID,
		Time:       t.Timestamp,
		Side:       string(t.Side),
		Kind:       string(t.Kind),
		Price:      t.Price,
		Quantity:   t.Quantity,
		Fee:        t.Fee,
		IsOpen:     t.IsOpen,
		PositionID: t.PositionID,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		Pnl:        t.Pnl,
	}
}

// EquitySnapshot is one mark of the account over simulated time.
type EquitySnapshot struct {
	RunID         string
	Time          time.Time
	Price         float64
	Balance       float64
	Equity        float64
	UnrealizedPnl float64
}

// RunSummary is one completed simulation run.
type RunSummary struct {
	RunID              string
	Symbol             string
	StartTime          time.Time
	EndTime            time.Time
	InitialBalance     float64
	FinalEquity        float64
	ReturnPct          float64
	BenchmarkReturnPct float64
	Verdict            string
	MaxDrawdownPct     float64
	Trades             int
	CreatedAt          time.Time
}

// Journal is the persistence surface a run writes through.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	RecordRun(RunSummary) error
	Close() error
}

// Nop discards everything. Used when persistence is disabled.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) RecordRun(RunSummary) error        { return nil }
func (Nop) Close() error                      { return nil }
