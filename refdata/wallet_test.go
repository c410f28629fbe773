package refdata

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(day int, sats float64) WalletSnapshot {
	return WalletSnapshot{
		Timestamp:   time.Date(2020, 5, day, 0, 0, 0, 0, time.UTC),
		BalanceSats: sats,
	}
}

func TestWalletHistory_SnapshotAt(t *testing.T) {
	t.Parallel()

	h := NewWalletHistory([]WalletSnapshot{
		snap(10, 100_000_000),
		snap(12, 110_000_000),
		snap(14, 90_000_000),
	})

	// Exact hit.
	s, ok := h.SnapshotAt(time.Date(2020, 5, 12, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 110_000_000, s.BalanceSats, 1e-9)

	// Between snapshots picks the one at-or-before.
	s, ok = h.SnapshotAt(time.Date(2020, 5, 13, 6, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 110_000_000, s.BalanceSats, 1e-9)

	// Before the first snapshot falls back to the earliest one.
	s, ok = h.SnapshotAt(time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 100_000_000, s.BalanceSats, 1e-9)
}

func TestWalletHistory_Empty(t *testing.T) {
	t.Parallel()

	h := NewWalletHistory(nil)
	assert.True(t, h.Empty())

	_, ok := h.SnapshotAt(time.Now())
	assert.False(t, ok)
	_, ok = h.CapitalAt(time.Now(), 10000)
	assert.False(t, ok)
	_, ok = h.Performance(time.Now(), time.Now(), 10000, nil)
	assert.False(t, ok)
}

func TestWalletHistory_CapitalAt(t *testing.T) {
	t.Parallel()

	h := NewWalletHistory([]WalletSnapshot{snap(10, 150_000_000)}) // 1.5 BTC
	usd, ok := h.CapitalAt(time.Date(2020, 5, 11, 0, 0, 0, 0, time.UTC), 9500)
	require.True(t, ok)
	assert.InDelta(t, 1.5*9500, usd, 1e-9)
}

func TestWalletHistory_Performance(t *testing.T) {
	t.Parallel()

	h := NewWalletHistory([]WalletSnapshot{
		snap(10, 100_000_000), // 1.0 BTC
		snap(20, 120_000_000), // 1.2 BTC
	})

	start := time.Date(2020, 5, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 5, 20, 0, 0, 0, 0, time.UTC)

	fills := []RawFill{
		// Strictly inside the window.
		fill("f1", 0, FillBuy, 9500, 100, 50_000),
		// On the boundary, excluded.
		{ID: "f2", Timestamp: start, Symbol: "XBTUSD", Side: FillSell, Price: 9500, Amount: 100, FeeSats: 999_999},
	}
	fills[0].Timestamp = time.Date(2020, 5, 15, 0, 0, 0, 0, time.UTC)

	perf, ok := h.Performance(start, end, 10000, fills)
	require.True(t, ok)

	assert.InDelta(t, 10000, perf.StartCapitalUSD, 1e-9)
	assert.InDelta(t, 12000, perf.EndCapitalUSD, 1e-9)
	assert.InDelta(t, 5, perf.FeesUSD, 1e-9) // 50000 sats at 10000
	assert.InDelta(t, 2000-5, perf.PnlUSD, 1e-9)
	assert.InDelta(t, (2000-5)/10000.0*100, perf.ReturnPct, 1e-9)
}

func TestLoadWalletHistory(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "wallet.csv", `timestamp,balance
2020-05-10 00:00:00,100000000
not-a-time,100
2020-05-12 00:00:00,110000000
2020-05-11 00:00:00,105000000
`)

	h, report, err := LoadWalletHistory(path)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Loaded)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 3, report.Skipped[0].Line)

	// Snapshots come back sorted regardless of file order.
	s, ok := h.SnapshotAt(time.Date(2020, 5, 11, 12, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 105_000_000, s.BalanceSats, 1e-9)
}

func TestLoadWalletHistory_Missing(t *testing.T) {
	t.Parallel()

	_, _, err := LoadWalletHistory(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
