package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RowError reports one skipped CSV row.
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Field, e.Err)
}

// LoadReport summarizes a candle load.
type LoadReport struct {
	Loaded  int
	Skipped []RowError
}

// LoadSeries reads candle CSV rows:
//
//	timestamp,open,high,low,close,volume,trades
//
// where timestamp is RFC3339 or "2006-01-02 15:04:05", trades optional.
// Header row is allowed. Malformed rows are skipped and reported; a
// missing file is a hard error. Candles come back sorted by timestamp.
func LoadSeries(path, symbol string, timeframe time.Duration) (*Series, LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("open candles: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	var (
		candles  []Candle
		report   LoadReport
		line     int
		sawFirst bool
	)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, LoadReport{}, fmt.Errorf("read candles: %w", err)
		}
		line++

		if !sawFirst {
			sawFirst = true
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "timestamp") {
				continue
			}
		}

		c, rerr := parseCandleRow(row, line)
		if rerr != nil {
			report.Skipped = append(report.Skipped, *rerr)
			continue
		}
		candles = append(candles, c)
		report.Loaded++
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return &Series{Symbol: symbol, Timeframe: timeframe, Candles: candles}, report, nil
}

func parseCandleRow(row []string, line int) (Candle, *RowError) {
	if len(row) < 6 {
		return Candle{}, &RowError{Line: line, Field: "row", Err: fmt.Errorf("need 6 columns, got %d", len(row))}
	}

	ts, err := parseTimestamp(row[0])
	if err != nil {
		return Candle{}, &RowError{Line: line, Field: "timestamp", Err: err}
	}

	var c Candle
	c.Timestamp = ts
	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &c.Open},
		{"high", &c.High},
		{"low", &c.Low},
		{"close", &c.Close},
		{"volume", &c.Volume},
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Candle{}, &RowError{Line: line, Field: f.name, Err: fmt.Errorf("bad %s %q", f.name, row[i+1])}
		}
		*f.dst = v
	}

	if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(row[6]))
		if err != nil {
			return Candle{}, &RowError{Line: line, Field: "trades", Err: fmt.Errorf("bad trades %q", row[6])}
		}
		c.Trades = n
	}
	return c, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q", s)
	}
	return t.UTC(), nil
}
