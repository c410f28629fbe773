// Package market holds historical price data for a simulation run.
package market

import "time"

// Candle is one OHLC bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Trades    int       `json:"trades"`
}

// Series is a chronologically sorted candle sequence for one symbol and
// timeframe.
type Series struct {
	Symbol    string
	Timeframe time.Duration
	Candles   []Candle
}

// Empty reports whether the series has no candles.
func (s *Series) Empty() bool { return len(s.Candles) == 0 }

// Start returns the first candle's timestamp.
func (s *Series) Start() time.Time {
	if s.Empty() {
		return time.Time{}
	}
	return s.Candles[0].Timestamp
}

// End returns the last candle's timestamp.
func (s *Series) End() time.Time {
	if s.Empty() {
		return time.Time{}
	}
	return s.Candles[len(s.Candles)-1].Timestamp
}

// At returns the latest candle at-or-before t. Before the first candle it
// returns false.
func (s *Series) At(t time.Time) (Candle, bool) {
	// Binary search for the first candle after t.
	lo, hi := 0, len(s.Candles)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.Candles[mid].Timestamp.After(t) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo == 0 {
		return Candle{}, false
	}
	return s.Candles[lo-1], true
}

// PriceAt returns the close of the candle at-or-before t.
func (s *Series) PriceAt(t time.Time) (float64, bool) {
	c, ok := s.At(t)
	if !ok {
		return 0, false
	}
	return c.Close, true
}

// Range returns candles with timestamps inside [start, end].
func (s *Series) Range(start, end time.Time) []Candle {
	var out []Candle
	for _, c := range s.Candles {
		if c.Timestamp.Before(start) || c.Timestamp.After(end) {
			continue
		}
		out = append(out, c)
	}
	return out
}
