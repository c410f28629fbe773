package engine

import (
	"math"
	"sync"
	"time"

	"github.com/hali-na/tradingpk/pkg/id"
)

// Config fixes the market model of one run.
type Config struct {
	InitialBalance float64
	Fees           FeeModel
	Slippage       float64 // fixed fraction, applied against the trader
	Leverage       float64 // margin = quantity / Leverage
}

// DefaultConfig mirrors the instrument the game replays: 10x leverage,
// 0.1% slippage, BitMEX maker/taker rates.
func DefaultConfig(initialBalance float64) Config {
	return Config{
		InitialBalance: initialBalance,
		Fees:           DefaultFees(),
		Slippage:       0.001,
		Leverage:       10,
	}
}

// Engine orchestrates the order book, the position ledger and the fee
// model for one simulation run. Every public operation takes the mutex, so
// a trigger pass and a user command never interleave partially.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	balance float64
	book    *OrderBook
	ledger  *Ledger
	trades  []Trade
}

func New(cfg Config) *Engine {
	if cfg.Leverage <= 0 {
		cfg.Leverage = 10
	}
	return &Engine{
		cfg:     cfg,
		balance: cfg.InitialBalance,
		book:    NewOrderBook(),
		ledger:  NewLedger(),
	}
}

// PlaceMarketOrder fills immediately at the tick price adjusted by
// slippage. Rejected when required margin exceeds the balance.
func (e *Engine) PlaceMarketOrder(side Side, quantity, tickPrice float64, at time.Time) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity/e.cfg.Leverage > e.balance {
		return reject(ErrInsufficientBalance)
	}

	fillPrice := e.slip(side, tickPrice)
	trade := e.openLocked(side, quantity, fillPrice, Market, at)
	return Result{OK: true, Trade: &trade}
}

// PlaceLimitOrder creates a resting limit order. There is deliberately no
// balance check at placement time; margin is only checked on market fills.
func (e *Engine) PlaceLimitOrder(side Side, quantity, price float64, at time.Time) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.book.Create(Limit, side, price, quantity, at)
	return Result{OK: true, Order: &o}
}

// PlaceStopOrder creates a resting stop order.
func (e *Engine) PlaceStopOrder(side Side, quantity, triggerPrice float64, at time.Time) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.book.Create(Stop, side, triggerPrice, quantity, at)
	return Result{OK: true, Order: &o}
}

// CancelOrder cancels a pending order. Returns false for unknown ids and
// for orders already Filled or Cancelled.
func (e *Engine) CancelOrder(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Cancel(orderID)
}

// ClosePosition exits one position at the tick price adjusted by slippage,
// deducts the taker fee and credits the balance with the net PnL.
func (e *Engine) ClosePosition(positionID string, tickPrice float64, at time.Time) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closeLocked(positionID, tickPrice, at)
}

// CloseAllPositions closes every open position. Each close reports its own
// result; one failure does not stop the rest.
func (e *Engine) CloseAllPositions(tickPrice float64, at time.Time) []Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	positions := e.ledger.Positions()
	out := make([]Result, 0, len(positions))
	for _, p := range positions {
		out = append(out, e.closeLocked(p.ID, tickPrice, at))
	}
	return out
}

// CheckOrderTriggers is the per-tick simulation step. Every triggered limit
// order fills exactly at its limit price (maker); every triggered stop fills
// at the tick price with slippage and pays the taker rate, and the trade
// keeps the order's Stop kind. Returns the fills created by this pass.
func (e *Engine) CheckOrderTriggers(tickPrice float64, at time.Time) []Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	var fills []Trade
	for _, o := range e.book.Triggered(tickPrice) {
		fillPrice := o.Price
		if o.Kind != Limit {
			fillPrice = e.slip(o.Side, tickPrice)
		}

		trade := e.openLocked(o.Side, o.Quantity, fillPrice, o.Kind, at)
		e.book.MarkFilled(o.ID)
		fills = append(fills, trade)
	}
	return fills
}

// Equity is balance plus total unrealized PnL after a mark-to-market pass.
func (e *Engine) Equity(tickPrice float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ledger.MarkToMarket(tickPrice)
	return e.balance + e.ledger.UnrealizedTotal(tickPrice)
}

// MarkToMarket refreshes unrealized PnL on the open positions.
func (e *Engine) MarkToMarket(tickPrice float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ledger.MarkToMarket(tickPrice)
}

// Account returns a snapshot of the run: balance, open positions, the full
// order list and the append-only trade log. Copies throughout.
func (e *Engine) Account() Account {
	e.mu.Lock()
	defer e.mu.Unlock()

	trades := make([]Trade, len(e.trades))
	copy(trades, e.trades)

	return Account{
		Balance:        e.balance,
		InitialBalance: e.cfg.InitialBalance,
		Positions:      e.ledger.Positions(),
		Orders:         e.book.All(),
		Trades:         trades,
	}
}

// Balance returns the cash balance (fees deducted, realized PnL applied).
func (e *Engine) Balance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance
}

// Positions returns copies of the open positions.
func (e *Engine) Positions() []Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Positions()
}

// Reset restores the engine to its initial state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.balance = e.cfg.InitialBalance
	e.book = NewOrderBook()
	e.ledger = NewLedger()
	e.trades = nil
}

// openLocked performs the shared fill logic: open a position, deduct the
// fee, append the opening trade. Caller holds the mutex.
func (e *Engine) openLocked(side Side, quantity, fillPrice float64, kind OrderKind, at time.Time) Trade {
	fee := e.cfg.Fees.Fee(quantity, kind)
	pos := e.ledger.Open(side, quantity, fillPrice, at)
	e.balance -= fee

	trade := Trade{
		ID:         id.New(),
		Timestamp:  at,
		Side:       side,
		Price:      fillPrice,
		Quantity:   quantity,
		Kind:       kind,
		Fee:        fee,
		IsOpen:     true,
		PositionID: pos.ID,
	}
	e.trades = append(e.trades, trade)
	return trade
}

func (e *Engine) closeLocked(positionID string, tickPrice float64, at time.Time) Result {
	p, ok := e.ledger.Get(positionID)
	if !ok {
		return reject(ErrPositionNotFound)
	}

	closeSide := Sell
	if p.Direction == Short {
		closeSide = Buy
	}
	exitPrice := e.slip(closeSide, tickPrice)

	pos, grossPnl, ok := e.ledger.Close(positionID, exitPrice)
	if !ok {
		return reject(ErrPositionNotFound)
	}

	// Close notional is valued at exit: the contracts are worth
	// quantity * exit/entry USD when the position unwinds, and the taker
	// fee applies to that. At a flat price this is exactly quantity.
	fee := e.cfg.Fees.Fee(pos.Quantity*exitPrice/pos.EntryPrice, Market)
	netPnl := grossPnl - fee
	e.balance += netPnl

	trade := Trade{
		ID:           id.New(),
		Timestamp:    at,
		Side:         closeSide,
		Price:        exitPrice,
		Quantity:     pos.Quantity,
		Kind:         Market,
		Fee:          fee,
		IsOpen:       false,
		PositionID:   pos.ID,
		EntryPrice:   pos.EntryPrice,
		EntryTime:    pos.EntryTime,
		ExitPrice:    exitPrice,
		Pnl:          netPnl,
		PnlBeforeFee: grossPnl,
	}
	e.trades = append(e.trades, trade)
	return Result{OK: true, Trade: &trade}
}

// slip nudges the price against the trader: buys pay up, sells receive
// less. Rounded to cents like the exchange feed.
func (e *Engine) slip(side Side, price float64) float64 {
	mult := 1 - e.cfg.Slippage
	if side == Buy {
		mult = 1 + e.cfg.Slippage
	}
	return math.Round(price*mult*100) / 100
}
