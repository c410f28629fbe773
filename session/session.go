// Package session wires one simulation run together: the virtual clock
// drives candle-close prices into the trading engine, marks equity, and
// keeps the benchmark comparison current. All benchmark fills handed to
// the comparison are truncated to the clock's position here, at the
// boundary, so nothing downstream can look ahead.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/hali-na/tradingpk/compare"
	"github.com/hali-na/tradingpk/engine"
	"github.com/hali-na/tradingpk/journal"
	"github.com/hali-na/tradingpk/market"
	"github.com/hali-na/tradingpk/pkg/id"
	"github.com/hali-na/tradingpk/refdata"
	"github.com/hali-na/tradingpk/simclock"
)

// Config sets up one run.
type Config struct {
	Symbol         string
	InitialBalance float64
	Speed          float64
	Engine         engine.Config
}

// Session owns the engine, clock, and data for one run. Safe for
// concurrent use: the playback goroutine and API callers serialize on one
// mutex.
type Session struct {
	mu sync.Mutex

	runID  string
	symbol string

	eng    *engine.Engine
	clock  *simclock.Clock
	series *market.Series
	fills  []refdata.RawFill
	cmp    *compare.Engine
	jour   journal.Journal

	drawdown  compare.DrawdownTracker
	lastPrice float64
	finished  bool
	jourErr   error
}

// New builds a session over the candle series. The clock window is the
// series' span. fills is the benchmark's complete chronologically sorted
// fill record; wallet and jour may be nil.
func New(cfg Config, series *market.Series, fills []refdata.RawFill, wallet *refdata.WalletHistory, jour journal.Journal) (*Session, error) {
	if series == nil || series.Empty() {
		return nil, fmt.Errorf("session: no candle data for %s", cfg.Symbol)
	}
	if jour == nil {
		jour = journal.Nop{}
	}

	engCfg := cfg.Engine
	if engCfg.InitialBalance == 0 {
		engCfg = engine.DefaultConfig(cfg.InitialBalance)
	}

	s := &Session{
		runID:  id.New(),
		symbol: cfg.Symbol,
		eng:    engine.New(engCfg),
		clock:  simclock.New(series.Start(), series.End()),
		series: series,
		fills:  fills,
		cmp:    compare.NewEngine(wallet),
		jour:   jour,
	}
	if cfg.Speed > 0 {
		s.clock.SetSpeed(cfg.Speed)
	}
	s.lastPrice = series.Candles[0].Close
	s.drawdown.Observe(series.Start(), engCfg.InitialBalance)

	s.clock.OnTick(s.onTick)
	s.clock.OnEnd(s.finish)
	return s, nil
}

// RunID identifies this run in the journal.
func (s *Session) RunID() string { return s.runID }

// Play starts or resumes playback.
func (s *Session) Play() { s.clock.Start() }

// Pause stops the clock; engine state stays put.
func (s *Session) Pause() { s.clock.Pause() }

// SetSpeed changes the playback multiplier.
func (s *Session) SetSpeed(speed float64) { s.clock.SetSpeed(speed) }

// JumpTo moves the clock, evaluating triggers at the landing price.
func (s *Session) JumpTo(t time.Time) { s.clock.JumpTo(t) }

// ClockState returns the clock's observable state.
func (s *Session) ClockState() simclock.State { return s.clock.GetState() }

// onTick runs on every clock advance.
func (s *Session) onTick(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.series.PriceAt(t)
	if !ok {
		return
	}
	s.lastPrice = price

	filled := s.eng.CheckOrderTriggers(price, t)
	for _, tr := range filled {
		s.record(tr)
	}
	s.eng.MarkToMarket(price)

	equity := s.eng.Equity(price)
	s.drawdown.Observe(t, equity)
	s.journal(s.jour.RecordEquity(journal.EquitySnapshot{
		RunID:         s.runID,
		Time:          t,
		Price:         price,
		Balance:       s.eng.Balance(),
		Equity:        equity,
		UnrealizedPnl: equity - s.eng.Balance(),
	}))
}

// finish runs once when the clock reaches its end.
func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finished = true

	// Force-close whatever is still open at the final price.
	end := s.clock.GetState().End
	for _, res := range s.eng.CloseAllPositions(s.lastPrice, end) {
		if res.OK && res.Trade != nil {
			s.record(*res.Trade)
		}
	}

	m := s.metricsLocked()
	acct := s.eng.Account()
	s.journal(s.jour.RecordRun(journal.RunSummary{
		RunID:              s.runID,
		Symbol:             s.symbol,
		StartTime:          s.clock.GetState().Start,
		EndTime:            end,
		InitialBalance:     acct.InitialBalance,
		FinalEquity:        s.eng.Equity(s.lastPrice),
		ReturnPct:          m.User.ReturnPct,
		BenchmarkReturnPct: m.Benchmark.ReturnPct,
		Verdict:            string(m.Verdict),
		MaxDrawdownPct:     s.drawdown.Max().MaxPct,
		Trades:             m.User.Trades,
		CreatedAt:          time.Now().UTC(),
	}))
}

// Finished reports whether the run has reached its end.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// PlaceMarketOrder fills immediately at the current price.
func (s *Session) PlaceMarketOrder(side engine.Side, quantity float64) engine.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.eng.PlaceMarketOrder(side, quantity, s.lastPrice, s.clock.Current())
	if res.OK && res.Trade != nil {
		s.record(*res.Trade)
	}
	return res
}

// PlaceLimitOrder rests until the price crosses the limit.
func (s *Session) PlaceLimitOrder(side engine.Side, quantity, price float64) engine.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.PlaceLimitOrder(side, quantity, price, s.clock.Current())
}

// PlaceStopOrder rests until the trigger price is touched.
func (s *Session) PlaceStopOrder(side engine.Side, quantity, triggerPrice float64) engine.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.PlaceStopOrder(side, quantity, triggerPrice, s.clock.Current())
}

// CancelOrder cancels a pending order by id.
func (s *Session) CancelOrder(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.CancelOrder(orderID)
}

// ClosePosition closes one position at the current price.
func (s *Session) ClosePosition(positionID string) engine.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.eng.ClosePosition(positionID, s.lastPrice, s.clock.Current())
	if res.OK && res.Trade != nil {
		s.record(*res.Trade)
	}
	return res
}

// CloseAllPositions closes every open position at the current price.
func (s *Session) CloseAllPositions() []engine.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := s.eng.CloseAllPositions(s.lastPrice, s.clock.Current())
	for _, res := range results {
		if res.OK && res.Trade != nil {
			s.record(*res.Trade)
		}
	}
	return results
}

// Account returns a snapshot of the simulated account.
func (s *Session) Account() engine.Account {
	return s.eng.Account()
}

// Equity is balance plus unrealized PnL at the current price.
func (s *Session) Equity() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Equity(s.lastPrice)
}

// CurrentPrice is the close of the candle at the clock's position.
func (s *Session) CurrentPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPrice
}

// Metrics scores the user against the benchmark at the clock's position.
func (s *Session) Metrics() compare.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metricsLocked()
}

func (s *Session) metricsLocked() compare.Metrics {
	now := s.clock.Current()
	visible := refdata.FillsUpTo(s.fills, now)
	acct := s.eng.Account()
	return s.cmp.Metrics(acct, visible, s.lastPrice, acct.InitialBalance, compare.Window{
		Start:   s.clock.GetState().Start,
		Current: now,
	})
}

// PnL breaks the account's result down at the current price.
func (s *Session) PnL() compare.PnLSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.eng.Account()
	return compare.Summarize(acct, s.lastPrice, acct.InitialBalance)
}

// Insights renders the current metrics as short observations.
func (s *Session) Insights() []string {
	return compare.Insights(s.Metrics())
}

// Drawdown is the deepest equity decline observed so far.
func (s *Session) Drawdown() compare.Drawdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawdown.Max()
}

// JournalErr returns the first persistence failure, if any. Writes keep
// going after a failure; the run itself never aborts on one.
func (s *Session) JournalErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jourErr
}

// Close stops playback and releases the journal.
func (s *Session) Close() error {
	s.clock.Destroy()
	return s.jour.Close()
}

// record writes one fill, keeping the first failure.
func (s *Session) record(t engine.Trade) {
	s.journal(s.jour.RecordTrade(journal.FromTrade(s.runID, t)))
}

func (s *Session) journal(err error) {
	if err != nil && s.jourErr == nil {
		s.jourErr = err
	}
}
