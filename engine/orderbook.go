package engine

import (
	"time"

	"github.com/hali-na/tradingpk/pkg/id"
)

// OrderBook owns the resting limit/stop orders of one run. Trigger
// evaluation is a pure filter; the engine performs the actual fills.
type OrderBook struct {
	orders map[string]*Order
	seq    []string // insertion order, keeps trigger passes deterministic
}

func NewOrderBook() *OrderBook {
	return &OrderBook{orders: make(map[string]*Order)}
}

// Create adds a Pending order and returns a copy of it.
func (b *OrderBook) Create(kind OrderKind, side Side, price, quantity float64, at time.Time) Order {
	o := &Order{
		ID:        id.New(),
		Kind:      kind,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		CreatedAt: at,
		Status:    Pending,
	}
	b.orders[o.ID] = o
	b.seq = append(b.seq, o.ID)
	return *o
}

// Cancel marks a Pending order Cancelled. Filled and Cancelled orders are
// terminal; cancelling them returns false instead of failing.
func (b *OrderBook) Cancel(orderID string) bool {
	o, ok := b.orders[orderID]
	if !ok || o.Status != Pending {
		return false
	}
	o.Status = Cancelled
	return true
}

// MarkFilled transitions a Pending order to Filled.
func (b *OrderBook) MarkFilled(orderID string) bool {
	o, ok := b.orders[orderID]
	if !ok || o.Status != Pending {
		return false
	}
	o.Status = Filled
	return true
}

// Triggered returns copies of the pending orders whose trigger predicate is
// satisfied by price, in creation order. No state changes here.
func (b *OrderBook) Triggered(price float64) []Order {
	var out []Order
	for _, oid := range b.seq {
		o := b.orders[oid]
		if o.Status != Pending {
			continue
		}
		if triggered(*o, price) {
			out = append(out, *o)
		}
	}
	return out
}

// Pending returns copies of the still-resting orders in creation order.
func (b *OrderBook) Pending() []Order {
	var out []Order
	for _, oid := range b.seq {
		if o := b.orders[oid]; o.Status == Pending {
			out = append(out, *o)
		}
	}
	return out
}

// All returns copies of every order ever created, in creation order.
func (b *OrderBook) All() []Order {
	out := make([]Order, 0, len(b.seq))
	for _, oid := range b.seq {
		out = append(out, *b.orders[oid])
	}
	return out
}

// triggered implements the resting-order semantics:
//
//	Limit Buy:  price <= limit (fill improves or matches the ask)
//	Limit Sell: price >= limit
//	Stop Buy:   price >= trigger (breakout / short stop-loss)
//	Stop Sell:  price <= trigger (long stop-loss)
func triggered(o Order, price float64) bool {
	switch o.Kind {
	case Limit:
		if o.Side == Buy {
			return price <= o.Price
		}
		return price >= o.Price
	case Stop:
		if o.Side == Buy {
			return price >= o.Price
		}
		return price <= o.Price
	}
	return false
}
