package compare

import "time"

// EquityPoint is one observation of account equity.
type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// Drawdown describes the deepest peak-to-trough decline seen so far.
type Drawdown struct {
	MaxPct     float64   `json:"maxPct"` // positive percent, 0 when equity never fell
	PeakEquity float64   `json:"peakEquity"`
	Trough     float64   `json:"trough"`
	PeakTime   time.Time `json:"peakTime"`
	TroughTime time.Time `json:"troughTime"`
}

// DrawdownTracker consumes equity observations in order and keeps the
// running maximum drawdown. Zero value is ready to use.
type DrawdownTracker struct {
	seen     bool
	deepest  Drawdown
	curPeak  float64
	curPeakT time.Time
}

// Observe records one equity point.
func (d *DrawdownTracker) Observe(t time.Time, equity float64) {
	if !d.seen || equity > d.curPeak {
		d.curPeak = equity
		d.curPeakT = t
		d.seen = true
		return
	}
	if d.curPeak <= 0 {
		return
	}
	pct := (d.curPeak - equity) / d.curPeak * 100
	if pct > d.deepest.MaxPct {
		d.deepest = Drawdown{
			MaxPct:     pct,
			PeakEquity: d.curPeak,
			Trough:     equity,
			PeakTime:   d.curPeakT,
			TroughTime: t,
		}
	}
}

// Max returns the deepest drawdown observed so far.
func (d *DrawdownTracker) Max() Drawdown { return d.deepest }

// MaxDrawdown computes the deepest drawdown over a complete series.
func MaxDrawdown(series []EquityPoint) Drawdown {
	var tr DrawdownTracker
	for _, p := range series {
		tr.Observe(p.Time, p.Equity)
	}
	return tr.Max()
}
