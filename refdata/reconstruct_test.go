package refdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(id string, minute int, side FillSide, price, amount, feeSats float64) RawFill {
	return RawFill{
		ID:        id,
		Timestamp: time.Date(2020, 5, 10, 8, minute, 0, 0, time.UTC),
		Symbol:    "XBTUSD",
		Side:      side,
		Price:     price,
		Amount:    amount,
		FeeSats:   feeSats,
	}
}

func TestReconstruct_LayeredEntryPartialClose(t *testing.T) {
	t.Parallel()

	// Buy 100@100, Buy 100@110 -> weighted entry 105; Sell 150@120 closes
	// 150 of the 200 open.
	fills := []RawFill{
		fill("f1", 0, FillBuy, 100, 100, 0),
		fill("f2", 1, FillBuy, 110, 100, 0),
		fill("f3", 2, FillSell, 120, 150, 0),
	}

	trips := Reconstruct(fills)
	require.Len(t, trips, 1)

	rt := trips[0]
	assert.Equal(t, "long", rt.Direction)
	assert.InDelta(t, 105, rt.EntryPrice, 1e-9)
	assert.InDelta(t, 120, rt.ExitPrice, 1e-9)
	assert.InDelta(t, 150, rt.Quantity, 1e-9)
	// 150 * (1/105 - 1/120) BTC, converted at 120.
	wantBTC := 150 * (1.0/105 - 1.0/120)
	assert.InDelta(t, wantBTC*120, rt.PnlUSD, 1e-9)
	assert.Equal(t, 2*time.Minute, rt.Duration)

	// The remainder stays open at the batch entry price.
	open := RemainingPositions(fills)
	require.Len(t, open, 1)
	assert.Equal(t, "long", open[0].Direction)
	assert.InDelta(t, 50, open[0].Quantity, 1e-9)
	assert.InDelta(t, 105, open[0].EntryPrice, 1e-9)
}

func TestReconstruct_FlipOpensOppositeBatch(t *testing.T) {
	t.Parallel()

	// Sell 150 against a 100 long: 100 closes, 50 flips short at 120.
	fills := []RawFill{
		fill("f1", 0, FillBuy, 100, 100, 0),
		fill("f2", 5, FillSell, 120, 150, 0),
	}

	trips := Reconstruct(fills)
	require.Len(t, trips, 1)
	assert.InDelta(t, 100, trips[0].Quantity, 1e-9)
	assert.Equal(t, "long", trips[0].Direction)

	open := RemainingPositions(fills)
	require.Len(t, open, 1)
	assert.Equal(t, "short", open[0].Direction)
	assert.InDelta(t, 50, open[0].Quantity, 1e-9)
	assert.InDelta(t, 120, open[0].EntryPrice, 1e-9)
}

func TestReconstruct_ShortRoundTrip(t *testing.T) {
	t.Parallel()

	fills := []RawFill{
		fill("f1", 0, FillSell, 10000, 1000, 0),
		fill("f2", 30, FillBuy, 9000, 1000, 0),
	}

	trips := Reconstruct(fills)
	require.Len(t, trips, 1)

	rt := trips[0]
	assert.Equal(t, "short", rt.Direction)
	// Short gains as price falls: -(1/10000 - 1/9000)*1000 BTC > 0.
	wantBTC := -(1000 * (1.0/10000 - 1.0/9000))
	assert.InDelta(t, wantBTC*9000, rt.PnlUSD, 1e-9)
	assert.True(t, rt.Win())

	assert.Empty(t, RemainingPositions(fills))
}

func TestReconstruct_SymbolsIsolated(t *testing.T) {
	t.Parallel()

	// A sell on one symbol must not close a long on another. Neither
	// fill has an opposing fill of its own symbol, so nothing matches.
	xbt := fill("f1", 0, FillBuy, 10000, 100, 0)
	eth := fill("f2", 5, FillSell, 200, 100, 0)
	eth.Symbol = "ETHUSD"
	fills := []RawFill{xbt, eth}

	trips := Reconstruct(fills)
	assert.Empty(t, trips)

	open := RemainingPositions(fills)
	require.Len(t, open, 2)
	assert.Equal(t, "ETHUSD", open[0].Symbol)
	assert.Equal(t, "short", open[0].Direction)
	assert.InDelta(t, 200, open[0].EntryPrice, 1e-9)
	assert.Equal(t, "XBTUSD", open[1].Symbol)
	assert.Equal(t, "long", open[1].Direction)
	assert.InDelta(t, 10000, open[1].EntryPrice, 1e-9)
}

func TestReconstruct_InterleavedSymbols(t *testing.T) {
	t.Parallel()

	// Each symbol's round trip matches only against its own fills even
	// when the streams interleave.
	e1 := fill("e1", 1, FillSell, 200, 50, 0)
	e1.Symbol = "ETHUSD"
	e2 := fill("e2", 3, FillBuy, 190, 50, 0)
	e2.Symbol = "ETHUSD"
	fills := []RawFill{
		fill("x1", 0, FillBuy, 10000, 100, 0),
		e1,
		fill("x2", 2, FillSell, 11000, 100, 0),
		e2,
	}

	trips := Reconstruct(fills)
	require.Len(t, trips, 2)

	assert.Equal(t, "XBTUSD", trips[0].Symbol)
	assert.Equal(t, "long", trips[0].Direction)
	assert.InDelta(t, 10000, trips[0].EntryPrice, 1e-9)
	assert.InDelta(t, 11000, trips[0].ExitPrice, 1e-9)

	assert.Equal(t, "ETHUSD", trips[1].Symbol)
	assert.Equal(t, "short", trips[1].Direction)
	assert.InDelta(t, 200, trips[1].EntryPrice, 1e-9)
	assert.InDelta(t, 190, trips[1].ExitPrice, 1e-9)

	assert.Empty(t, RemainingPositions(fills))
}

func TestReconstruct_FeesConvertedAtExit(t *testing.T) {
	t.Parallel()

	fills := []RawFill{
		fill("f1", 0, FillBuy, 10000, 1000, 75_000), // 0.00075 BTC
		fill("f2", 10, FillSell, 10000, 1000, 75_000),
	}

	trips := Reconstruct(fills)
	require.Len(t, trips, 1)

	rt := trips[0]
	assert.InDelta(t, 0.0015, rt.FeesBTC, 1e-12)
	assert.InDelta(t, 15, rt.FeesUSD, 1e-9) // 0.0015 BTC * 10000
	assert.InDelta(t, 0, rt.PnlUSD, 1e-9)
}

func TestReconstruct_Deterministic(t *testing.T) {
	t.Parallel()

	fills := []RawFill{
		fill("f1", 0, FillBuy, 9500, 300, 100),
		fill("f2", 3, FillBuy, 9550, 200, 50),
		fill("f3", 9, FillSell, 9700, 400, 200),
		fill("f4", 12, FillSell, 9800, 300, 150),
		fill("f5", 20, FillBuy, 9600, 200, 80),
	}

	first := Reconstruct(fills)
	second := Reconstruct(fills)
	assert.Equal(t, first, second)
}

func TestStats(t *testing.T) {
	t.Parallel()

	trips := []RoundTrip{
		{PnlUSD: 100, FeesUSD: 2, FeesBTC: 0.0002, Duration: time.Hour},
		{PnlUSD: -40, FeesUSD: 1, FeesBTC: 0.0001, Duration: 3 * time.Hour},
		{PnlUSD: 60, FeesUSD: 1, FeesBTC: 0.0001, Duration: 2 * time.Hour},
	}

	s := Stats(trips)
	assert.Equal(t, 3, s.Trips)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 66.666, s.WinRate, 0.01)
	assert.InDelta(t, 120, s.TotalPnlUSD, 1e-9)
	assert.InDelta(t, 4, s.TotalFeeUSD, 1e-9)
	assert.InDelta(t, 116, s.NetPnlUSD, 1e-9)
	assert.Equal(t, 2*time.Hour, s.AvgHold)
}

func TestStats_Empty(t *testing.T) {
	t.Parallel()

	s := Stats(nil)
	assert.Zero(t, s.Trips)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.AvgHold)
}
