package compare

import (
	"time"

	"github.com/hali-na/tradingpk/engine"
	"github.com/hali-na/tradingpk/refdata"
)

// verdictEpsilon keeps floating-point noise from flip-flopping the
// winner: differentials inside +/-0.01 percentage points are a tie.
const verdictEpsilon = 0.01

// Verdict names the side ahead on return.
type Verdict string

const (
	VerdictUser      Verdict = "user"
	VerdictBenchmark Verdict = "benchmark"
	VerdictTie       Verdict = "tie"
)

// SideMetrics is one side's scorecard.
type SideMetrics struct {
	ReturnPct          float64       `json:"returnPct"`
	Trades             int           `json:"trades"`
	WinRate            float64       `json:"winRate"` // percent of closed trades
	AvgHold            time.Duration `json:"avgHold"`
	CapitalUtilization float64       `json:"capitalUtilization"` // peak single-trade notional / initial capital
	TotalFeesUSD       float64       `json:"totalFeesUsd"`
}

// Metrics is the full comparison at one simulated instant.
type Metrics struct {
	User       SideMetrics `json:"user"`
	Benchmark  SideMetrics `json:"benchmark"`
	ReturnDiff float64     `json:"returnDiff"` // user minus benchmark, percentage points
	Verdict    Verdict     `json:"verdict"`
}

// Engine computes comparison metrics. Construct one per run; it holds no
// mutable state beyond its configuration.
type Engine struct {
	wallet *refdata.WalletHistory // optional benchmark capital source
}

// NewEngine returns a comparison engine. wallet may be nil, in which case
// the benchmark return falls back to round-trip PnL over the user's
// initial balance.
func NewEngine(wallet *refdata.WalletHistory) *Engine {
	return &Engine{wallet: wallet}
}

// Window bounds the benchmark measurement to simulated time. Zero start
// and current disable the wallet-delta path.
type Window struct {
	Start   time.Time
	Current time.Time
}

// Metrics scores both sides. fills must already be truncated to the
// current simulated time by the caller.
func (e *Engine) Metrics(account engine.Account, fills []refdata.RawFill, currentPrice, initialBalance float64, win Window) Metrics {
	m := Metrics{
		User:      e.userSide(account, currentPrice, initialBalance),
		Benchmark: e.benchmarkSide(fills, currentPrice, initialBalance, win),
	}
	m.ReturnDiff = m.User.ReturnPct - m.Benchmark.ReturnPct

	switch {
	case m.ReturnDiff > verdictEpsilon:
		m.Verdict = VerdictUser
	case m.ReturnDiff < -verdictEpsilon:
		m.Verdict = VerdictBenchmark
	default:
		m.Verdict = VerdictTie
	}
	return m
}

func (e *Engine) userSide(account engine.Account, currentPrice, initialBalance float64) SideMetrics {
	var sm SideMetrics

	equity := account.Balance
	for _, p := range account.Positions {
		if p.EntryPrice != 0 {
			equity += p.Quantity * (currentPrice - p.EntryPrice) / p.EntryPrice * p.Direction.Sign()
		}
	}
	if initialBalance != 0 {
		sm.ReturnPct = (equity - initialBalance) / initialBalance * 100
	}

	var peakNotional float64
	for _, t := range account.Trades {
		sm.TotalFeesUSD += t.Fee
		if t.IsOpen && t.Quantity > peakNotional {
			peakNotional = t.Quantity
		}
	}
	if initialBalance != 0 {
		sm.CapitalUtilization = peakNotional / initialBalance
	}

	closed := UserRecords(account.Trades)
	sm.Trades = len(closed)
	sm.WinRate, sm.AvgHold = rateAndHold(closed)
	return sm
}

func (e *Engine) benchmarkSide(fills []refdata.RawFill, currentPrice, initialBalance float64, win Window) SideMetrics {
	var sm SideMetrics

	trips := refdata.Reconstruct(fills)
	records := BenchmarkRecords(trips)
	sm.Trades = len(records)
	sm.WinRate, sm.AvgHold = rateAndHold(records)
	for _, r := range records {
		sm.TotalFeesUSD += r.FeeUSD()
	}

	startCapital := initialBalance
	if e.wallet != nil && !e.wallet.Empty() {
		if c, ok := e.wallet.CapitalAt(win.Start, currentPrice); ok && c > 0 {
			startCapital = c
		}
	}
	var peakNotional float64
	for _, rt := range trips {
		if rt.Quantity > peakNotional {
			peakNotional = rt.Quantity
		}
	}
	if startCapital != 0 {
		sm.CapitalUtilization = peakNotional / startCapital
	}

	// Wallet-snapshot delta when the window is supplied; round-trip PnL
	// otherwise.
	if e.wallet != nil && !e.wallet.Empty() && !win.Start.IsZero() && !win.Current.IsZero() {
		if perf, ok := e.wallet.Performance(win.Start, win.Current, currentPrice, fills); ok {
			sm.ReturnPct = perf.ReturnPct
			return sm
		}
	}
	if startCapital != 0 {
		var net float64
		for _, r := range records {
			net += r.PnlUSD() - r.FeeUSD()
		}
		sm.ReturnPct = net / startCapital * 100
	}
	return sm
}

func rateAndHold(records []Record) (winRate float64, avgHold time.Duration) {
	if len(records) == 0 {
		return 0, 0
	}
	var wins int
	var hold time.Duration
	for _, r := range records {
		if r.Win() {
			wins++
		}
		hold += r.Hold()
	}
	return float64(wins) / float64(len(records)) * 100, hold / time.Duration(len(records))
}
