// Package compare produces the point-in-time comparison between a live
// simulated account and the reconstructed benchmark trader. It never
// fetches data itself: callers hand it fills already truncated to the
// current simulated time, which keeps the no-lookahead guarantee at the
// call boundary where it can be tested.
package compare

import (
	"time"

	"github.com/hali-na/tradingpk/engine"
	"github.com/hali-na/tradingpk/refdata"
)

// Record is the shared view over one completed trade, whichever side it
// came from. The two concrete variants are resolved once at the boundary
// so downstream code never re-inspects raw shapes.
type Record interface {
	ClosedAt() time.Time
	Direction() string
	PnlUSD() float64
	FeeUSD() float64
	Hold() time.Duration
	Win() bool
}

// UserTrade wraps a closing fill from the simulated account.
type UserTrade struct {
	Trade engine.Trade
}

func (u UserTrade) ClosedAt() time.Time { return u.Trade.Timestamp }

func (u UserTrade) Direction() string {
	// A closing Sell unwinds a long, a closing Buy unwinds a short.
	if u.Trade.Side == engine.Sell {
		return "long"
	}
	return "short"
}

func (u UserTrade) PnlUSD() float64     { return u.Trade.Pnl }
func (u UserTrade) FeeUSD() float64     { return u.Trade.Fee }
func (u UserTrade) Hold() time.Duration { return u.Trade.Timestamp.Sub(u.Trade.EntryTime) }
func (u UserTrade) Win() bool           { return u.Trade.Pnl > 0 }

// BenchmarkTrip wraps a reconstructed round trip.
type BenchmarkTrip struct {
	Trip refdata.RoundTrip
}

func (b BenchmarkTrip) ClosedAt() time.Time { return b.Trip.ExitTime }
func (b BenchmarkTrip) Direction() string   { return b.Trip.Direction }
func (b BenchmarkTrip) PnlUSD() float64     { return b.Trip.PnlUSD }
func (b BenchmarkTrip) FeeUSD() float64     { return b.Trip.FeesUSD }
func (b BenchmarkTrip) Hold() time.Duration { return b.Trip.Duration }
func (b BenchmarkTrip) Win() bool           { return b.Trip.Win() }

// UserRecords extracts the closed trades from an account trade log.
func UserRecords(trades []engine.Trade) []Record {
	var out []Record
	for _, t := range trades {
		if !t.IsOpen {
			out = append(out, UserTrade{Trade: t})
		}
	}
	return out
}

// BenchmarkRecords wraps reconstructed round trips.
func BenchmarkRecords(trips []refdata.RoundTrip) []Record {
	out := make([]Record, len(trips))
	for i, rt := range trips {
		out[i] = BenchmarkTrip{Trip: rt}
	}
	return out
}
