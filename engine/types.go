package engine

import "time"

// Side is the taker side of an order or fill.
type Side string

const (
	Buy  Side = "Buy"
	Sell Side = "Sell"
)

// Opposite returns the side that closes a position opened on s.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Direction is the exposure of an open position.
type Direction string

const (
	Long  Direction = "Long"
	Short Direction = "Short"
)

// Sign is +1 for Long, -1 for Short.
func (d Direction) Sign() float64 {
	if d == Long {
		return 1
	}
	return -1
}

// OrderKind distinguishes resting order semantics.
type OrderKind string

const (
	Market OrderKind = "Market"
	Limit  OrderKind = "Limit"
	Stop   OrderKind = "Stop"
)

// OrderStatus lifecycle: Pending -> Filled | Cancelled, both terminal.
type OrderStatus string

const (
	Pending   OrderStatus = "Pending"
	Filled    OrderStatus = "Filled"
	Cancelled OrderStatus = "Cancelled"
)

// Order is a resting limit or stop order. Price is the limit price for
// Limit orders and the trigger price for Stop orders.
type Order struct {
	ID        string      `json:"id"`
	Kind      OrderKind   `json:"kind"`
	Side      Side        `json:"side"`
	Price     float64     `json:"price"`
	Quantity  float64     `json:"quantity"`
	CreatedAt time.Time   `json:"createdAt"`
	Status    OrderStatus `json:"status"`
}

// Position is one independent exposure. Quantity is in contracts, which for
// the inverse perpetual modeled here equals USD notional.
type Position struct {
	ID            string    `json:"id"`
	Direction     Direction `json:"direction"`
	Quantity      float64   `json:"quantity"`
	EntryPrice    float64   `json:"entryPrice"`
	EntryTime     time.Time `json:"entryTime"`
	UnrealizedPnl float64   `json:"unrealizedPnl"`
}

// Trade is one fill, appended to the account log and never mutated.
// Closing fills additionally carry the entry/exit prices and the realized
// PnL before and after fee.
type Trade struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Side       Side      `json:"side"`
	Price      float64   `json:"price"`
	Quantity   float64   `json:"quantity"`
	Kind       OrderKind `json:"kind"`
	Fee        float64   `json:"fee"`
	IsOpen     bool      `json:"isOpen"`
	PositionID string    `json:"positionId,omitempty"`

	// Close-only fields.
	EntryPrice   float64   `json:"entryPrice,omitempty"`
	EntryTime    time.Time `json:"entryTime,omitempty"`
	ExitPrice    float64   `json:"exitPrice,omitempty"`
	Pnl          float64   `json:"pnl,omitempty"`
	PnlBeforeFee float64   `json:"pnlBeforeFee,omitempty"`
}

// Account is a point-in-time snapshot of one simulation run. The engine
// owns the live state; callers get copies and must not mutate them.
type Account struct {
	Balance        float64    `json:"balance"`
	InitialBalance float64    `json:"initialBalance"`
	Positions      []Position `json:"positions"`
	Orders         []Order    `json:"orders"`
	Trades         []Trade    `json:"trades"`
}

// Result is the outcome of an engine operation. Business rejections
// (insufficient balance, unknown ids) come back as Err text with OK=false;
// they are data, not Go errors.
type Result struct {
	OK    bool   `json:"ok"`
	Err   string `json:"error,omitempty"`
	Trade *Trade `json:"trade,omitempty"`
	Order *Order `json:"order,omitempty"`
}

func reject(reason string) Result { return Result{Err: reason} }

// Rejection reasons, stable strings the API layer passes through.
const (
	ErrInsufficientBalance = "insufficient balance"
	ErrPositionNotFound    = "position not found"
)
