package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	return j, path
}

func ts(minute int) time.Time {
	return time.Date(2020, 5, 10, 9, minute, 0, 0, time.UTC)
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','equity','runs')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
	assert.True(t, found["runs"])
}

func TestSQLiteTradeRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	rec := TradeRecord{
		RunID:      "R1",
		TradeID:    "T1",
		Time:       ts(0),
		Side:       "Buy",
		Kind:       "Market",
		Price:      10010,
		Quantity:   1000,
		Fee:        0.75,
		IsOpen:     true,
		PositionID: "P1",
	}
	require.NoError(t, j.RecordTrade(rec))

	closing := TradeRecord{
		RunID:      "R1",
		TradeID:    "T2",
		Time:       ts(10),
		Side:       "Sell",
		Kind:       "Market",
		Price:      10090,
		Quantity:   1000,
		Fee:        0.7575,
		PositionID: "P1",
		EntryPrice: 10010,
		ExitPrice:  10090,
		Pnl:        7.23,
	}
	require.NoError(t, j.RecordTrade(closing))

	got, err := j.ListTrades("R1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "T1", got[0].TradeID)
	assert.True(t, got[0].IsOpen)
	assert.Equal(t, "T2", got[1].TradeID)
	assert.InDelta(t, 7.23, got[1].Pnl, 1e-9)
	assert.True(t, got[1].Time.Equal(ts(10)))

	// Other runs see nothing.
	other, err := j.ListTrades("R2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSQLiteEquity(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	for i, eq := range []float64{10000, 10009.25, 10004.1} {
		require.NoError(t, j.RecordEquity(EquitySnapshot{
			RunID:   "R1",
			Time:    ts(i),
			Price:   10000 + float64(i)*50,
			Balance: 9999.25,
			Equity:  eq,
		}))
	}

	got, err := j.ListEquity("R1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, 10009.25, got[1].Equity, 1e-9)
	assert.True(t, got[0].Time.Before(got[2].Time))
}

func TestSQLiteRuns(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	r := RunSummary{
		RunID:              "R1",
		Symbol:             "XBTUSD",
		StartTime:          ts(0),
		EndTime:            ts(59),
		InitialBalance:     10000,
		FinalEquity:        10150,
		ReturnPct:          1.5,
		BenchmarkReturnPct: 0.8,
		Verdict:            "user",
		MaxDrawdownPct:     2.1,
		Trades:             7,
		CreatedAt:          ts(59),
	}
	require.NoError(t, j.RecordRun(r))

	got, err := j.GetRun("R1")
	require.NoError(t, err)
	assert.Equal(t, "user", got.Verdict)
	assert.InDelta(t, 1.5, got.ReturnPct, 1e-9)
	assert.Equal(t, 7, got.Trades)

	_, err = j.GetRun("nope")
	assert.Error(t, err)

	list, err := j.ListRuns()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "R1", list[0].RunID)
}
