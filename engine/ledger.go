package engine

import (
	"time"

	"github.com/hali-na/tradingpk/pkg/id"
)

// Ledger owns the open positions of one run. Every fill opens a new,
// independent position; same-side fills are never averaged together, so
// layered entries stay individually closable.
type Ledger struct {
	positions map[string]*Position
	seq       []string
}

func NewLedger() *Ledger {
	return &Ledger{positions: make(map[string]*Position)}
}

// Open creates a position from a fill and returns a copy of it.
func (l *Ledger) Open(side Side, quantity, price float64, at time.Time) Position {
	dir := Long
	if side == Sell {
		dir = Short
	}
	p := &Position{
		ID:         id.New(),
		Direction:  dir,
		Quantity:   quantity,
		EntryPrice: price,
		EntryTime:  at,
	}
	l.positions[p.ID] = p
	l.seq = append(l.seq, p.ID)
	return *p
}

// Close removes the position and returns it with its fee-exclusive realized
// PnL at exitPrice. ok is false when the id is unknown.
func (l *Ledger) Close(positionID string, exitPrice float64) (pos Position, pnl float64, ok bool) {
	p, found := l.positions[positionID]
	if !found {
		return Position{}, 0, false
	}
	pnl = unrealizedPnl(*p, exitPrice)
	delete(l.positions, positionID)
	return *p, pnl, true
}

// MarkToMarket recomputes unrealized PnL on every open position.
func (l *Ledger) MarkToMarket(price float64) {
	for _, p := range l.positions {
		p.UnrealizedPnl = unrealizedPnl(*p, price)
	}
}

// Get returns a copy of one open position.
func (l *Ledger) Get(positionID string) (Position, bool) {
	p, ok := l.positions[positionID]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns copies of the open positions in open order.
func (l *Ledger) Positions() []Position {
	var out []Position
	for _, pid := range l.seq {
		if p, ok := l.positions[pid]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// UnrealizedTotal sums unrealized PnL at price without mutating positions.
func (l *Ledger) UnrealizedTotal(price float64) float64 {
	var sum float64
	for _, p := range l.positions {
		sum += unrealizedPnl(*p, price)
	}
	return sum
}

// unrealizedPnl uses the inverse-contract approximation:
//
//	pnl = quantity * (price - entry) / entry * sign
//
// which tends to 0 as price tends to the entry, so equity is continuous in
// price.
func unrealizedPnl(p Position, price float64) float64 {
	return p.Quantity * (price - p.EntryPrice) / p.EntryPrice * p.Direction.Sign()
}
