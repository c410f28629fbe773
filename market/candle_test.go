package market

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(minute int, close float64) Candle {
	return Candle{
		Timestamp: time.Date(2020, 5, 10, 9, minute, 0, 0, time.UTC),
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
	}
}

func TestSeries_At(t *testing.T) {
	t.Parallel()

	s := &Series{Candles: []Candle{bar(0, 100), bar(5, 101), bar(10, 102)}}

	c, ok := s.At(time.Date(2020, 5, 10, 9, 5, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 101, c.Close, 1e-9)

	// Between bars picks the earlier one.
	c, ok = s.At(time.Date(2020, 5, 10, 9, 7, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 101, c.Close, 1e-9)

	// Before the first bar there is no price.
	_, ok = s.At(time.Date(2020, 5, 10, 8, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	// After the last bar the final close holds.
	p, ok := s.PriceAt(time.Date(2020, 5, 10, 12, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 102, p, 1e-9)
}

func TestSeries_Range(t *testing.T) {
	t.Parallel()

	s := &Series{Candles: []Candle{bar(0, 100), bar(5, 101), bar(10, 102), bar(15, 103)}}
	got := s.Range(
		time.Date(2020, 5, 10, 9, 5, 0, 0, time.UTC),
		time.Date(2020, 5, 10, 9, 10, 0, 0, time.UTC),
	)
	require.Len(t, got, 2)
	assert.InDelta(t, 101, got[0].Close, 1e-9)
	assert.InDelta(t, 102, got[1].Close, 1e-9)
}

func TestSeries_Empty(t *testing.T) {
	t.Parallel()

	s := &Series{}
	assert.True(t, s.Empty())
	assert.True(t, s.Start().IsZero())
	assert.True(t, s.End().IsZero())
	_, ok := s.At(time.Now())
	assert.False(t, ok)
}

func TestLoadSeries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "candles.csv")
	data := `timestamp,open,high,low,close,volume,trades
2020-05-10 09:05:00,101,102,100,101.5,12.5,40
2020-05-10 09:00:00,100,101,99,100.5,10,30
bad-time,1,2,3,4,5,6
2020-05-10 09:10:00,101.5,103,101,102.5,x,50
2020-05-10 09:15:00,102.5,104,102,103.5,9
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, report, err := LoadSeries(path, "XBTUSD", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Loaded)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, "timestamp", report.Skipped[0].Field)
	assert.Equal(t, "volume", report.Skipped[1].Field)

	// Sorted regardless of file order; trades column optional.
	require.Len(t, s.Candles, 3)
	assert.True(t, s.Candles[0].Timestamp.Before(s.Candles[1].Timestamp))
	assert.Equal(t, 0, s.Candles[2].Trades)
	assert.InDelta(t, 103.5, s.Candles[2].Close, 1e-9)
}

func TestLoadSeries_Missing(t *testing.T) {
	t.Parallel()

	_, _, err := LoadSeries(filepath.Join(t.TempDir(), "nope.csv"), "XBTUSD", time.Minute)
	assert.Error(t, err)
}
