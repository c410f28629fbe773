// Package refdata loads and reconstructs the benchmark trader's historical
// record: raw executions and wallet-balance snapshots exported from the
// exchange. Everything here is read-only input to the comparison.
package refdata

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

// Satoshi per BTC; fees in the export are denominated in satoshi.
const satoshiPerBTC = 1e8

// FillSide is the benchmark trader's side on one execution.
type FillSide string

const (
	FillBuy  FillSide = "Buy"
	FillSell FillSide = "Sell"
)

// RawFill is one immutable historical execution.
type RawFill struct {
	ID        string
	Timestamp time.Time
	Symbol    string
	Side      FillSide
	Price     float64
	Amount    float64 // contracts, = USD notional
	FeeSats   float64 // satoshi, negative values are rebates
}

// FeeBTC converts the native fee to BTC.
func (f RawFill) FeeBTC() float64 { return f.FeeSats / satoshiPerBTC }

// RowError describes one unusable CSV row. The loader skips such rows and
// reports them; deciding skip-vs-abort stays with the caller.
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: bad %s: %v", e.Line, e.Field, e.Err)
}

// LoadReport summarizes one load: how many rows made it and which did not.
type LoadReport struct {
	Loaded  int
	Skipped []RowError
}

// LoadFills reads the execution export CSV:
//
//	id,datetime,symbol,side,price,amount,cost,fee_cost,fee_currency,execID
//
// Rows with unparseable numerics, unknown sides or unsupported symbols are
// skipped and reported. A missing or unreadable file is a single hard
// error; there is no partial result in that case.
func LoadFills(path string) ([]RawFill, LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("open fills: %w", err)
	}
	defer f.Close()

	fills, report, err := readFills(f)
	if err != nil {
		return nil, LoadReport{}, err
	}

	sort.SliceStable(fills, func(i, j int) bool {
		return fills[i].Timestamp.Before(fills[j].Timestamp)
	})
	return fills, report, nil
}

func readFills(r io.Reader) ([]RawFill, LoadReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var (
		fills    []RawFill
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
			return nil, LoadReport{}, fmt.Errorf("read fills: %w", err)
		}
		line++

		if !sawFirst {
			sawFirst = true
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "id") {
				continue
			}
		}

		fill, rowErr := parseFillRow(row, line)
		if rowErr != nil {
			report.Skipped = append(report.Skipped, *rowErr)
			continue
		}
		fills = append(fills, fill)
		report.Loaded++
	}

	return fills, report, nil
}

func parseFillRow(row []string, line int) (RawFill, *RowError) {
	if len(row) < 8 {
		return RawFill{}, &RowError{Line: line, Field: "row", Err: fmt.Errorf("need at least 8 columns, got %d", len(row))}
	}

	ts, err := parseTimestamp(row[1])
	if err != nil {
		return RawFill{}, &RowError{Line: line, Field: "datetime", Err: err}
	}

	symbol, ok := normalizeSymbol(row[2])
	if !ok {
		return RawFill{}, &RowError{Line: line, Field: "symbol", Err: fmt.Errorf("unsupported symbol %q", row[2])}
	}

	var side FillSide
	switch strings.ToLower(strings.TrimSpace(row[3])) {
	case "buy":
		side = FillBuy
	case "sell":
		side = FillSell
	default:
		return RawFill{}, &RowError{Line: line, Field: "side", Err: fmt.Errorf("unknown side %q", row[3])}
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil || price <= 0 {
		return RawFill{}, &RowError{Line: line, Field: "price", Err: fmt.Errorf("bad price %q", row[4])}
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
	if err != nil || amount <= 0 {
		return RawFill{}, &RowError{Line: line, Field: "amount", Err: fmt.Errorf("bad amount %q", row[5])}
	}
	fee, err := strconv.ParseFloat(strings.TrimSpace(row[7]), 64)
	if err != nil {
		return RawFill{}, &RowError{Line: line, Field: "fee_cost", Err: fmt.Errorf("bad fee %q", row[7])}
	}

	return RawFill{
		ID:        strings.TrimSpace(row[0]),
		Timestamp: ts,
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Amount:    amount,
		FeeSats:   fee,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	if t2, err2 := time.Parse("2006-01-02 15:04:05", s); err2 == nil {
		return t2.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
}

// normalizeSymbol maps the export's pair notation onto contract symbols:
// BTC/USD:BTC -> XBTUSD, ETH/USD:ETH -> ETHUSD.
func normalizeSymbol(s string) (string, bool) {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.Contains(u, "XBT"), strings.Contains(u, "BTC"):
		return "XBTUSD", true
	case strings.Contains(u, "ETH"):
		return "ETHUSD", true
	}
	return "", false
}

// FillsInRange returns the fills with start <= t <= end, optionally
// filtered by symbol. Input order is preserved.
func FillsInRange(fills []RawFill, start, end time.Time, symbol string) []RawFill {
	var out []RawFill
	for _, f := range fills {
		if f.Timestamp.Before(start) || f.Timestamp.After(end) {
			continue
		}
		if symbol != "" && f.Symbol != symbol {
			continue
		}
		out = append(out, f)
	}
	return out
}

// FillsUpTo truncates to fills at-or-before cutoff. This is the primitive
// the session uses to keep the comparison free of lookahead.
func FillsUpTo(fills []RawFill, cutoff time.Time) []RawFill {
	var out []RawFill
	for _, f := range fills {
		if f.Timestamp.After(cutoff) {
			continue
		}
		out = append(out, f)
	}
	return out
}
