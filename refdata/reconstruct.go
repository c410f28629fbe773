package refdata

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// RoundTrip is one reconstructed entry->exit cycle of the benchmark
// trader: an entry batch of same-direction fills matched against the
// opposing fill that closed (part of) it.
type RoundTrip struct {
	ID         string
	Symbol     string
	Direction  string // "long" | "short"
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64 // quantity-weighted average over the entry batch
	ExitPrice  float64
	Quantity   float64
	PnlUSD     float64 // realized, net of nothing; see FeesUSD
	PnlPercent float64
	FeesBTC    float64
	FeesUSD    float64 // converted at the exit price
	Duration   time.Duration
}

// Win reports whether the round trip realized a positive PnL.
func (rt RoundTrip) Win() bool { return rt.PnlUSD > 0 }

// batch is the running entry state of one symbol during replay. Fills
// of different symbols never net against each other.
type batch struct {
	position float64 // signed contracts, >0 long
	qty      float64
	avgEntry float64
	feeSats  float64
	entryAt  time.Time
}

func (b *batch) start(f RawFill, qty float64) {
	b.qty = qty
	b.avgEntry = f.Price
	b.feeSats = math.Abs(f.FeeSats)
	b.entryAt = f.Timestamp
}

// Reconstruct rebuilds round trips from chronologically sorted fills
// using batch matching, with state kept per symbol:
//
//   - a fill in the direction of the symbol's running position extends
//     its entry batch (weighted-average entry price, accumulated fees);
//   - an opposing fill closes quantity against that batch and emits one
//     RoundTrip; realized PnL uses the inverse-contract formula
//     closedQty * (1/entry - 1/exit), sign-flipped for shorts, converted
//     to USD at the exit price;
//   - an opposing fill larger than the open quantity flips: the excess
//     immediately starts a new batch in the opposite direction.
//
// Deterministic: the same sorted input always yields the same output.
func Reconstruct(fills []RawFill) []RoundTrip {
	var trips []RoundTrip
	open := make(map[string]*batch)

	for _, f := range fills {
		b := open[f.Symbol]
		if b == nil {
			b = &batch{}
			open[f.Symbol] = b
		}

		signed := f.Amount
		if f.Side == FillSell {
			signed = -f.Amount
		}

		// Extending (or starting) the position.
		if b.position == 0 || sameSign(b.position, signed) {
			if b.position == 0 {
				b.start(f, f.Amount)
			} else {
				b.avgEntry = (b.avgEntry*b.qty + f.Price*f.Amount) / (b.qty + f.Amount)
				b.qty += f.Amount
				b.feeSats += math.Abs(f.FeeSats)
			}
			b.position += signed
			continue
		}

		// Opposing fill: close against the batch, flip any excess.
		closeQty := math.Min(math.Abs(b.position), math.Abs(signed))
		b.feeSats += math.Abs(f.FeeSats)

		direction := "long"
		pnlBTC := closeQty * (1/b.avgEntry - 1/f.Price)
		if b.position < 0 {
			direction = "short"
			pnlBTC = -pnlBTC
		}
		pnlUSD := pnlBTC * f.Price
		entryValueBTC := closeQty / b.avgEntry
		feesBTC := b.feeSats / satoshiPerBTC

		trips = append(trips, RoundTrip{
			ID:         fmt.Sprintf("%s-%s", b.entryAt.Format(time.RFC3339), f.Timestamp.Format(time.RFC3339)),
			Symbol:     f.Symbol,
			Direction:  direction,
			EntryTime:  b.entryAt,
			ExitTime:   f.Timestamp,
			EntryPrice: b.avgEntry,
			ExitPrice:  f.Price,
			Quantity:   closeQty,
			PnlUSD:     pnlUSD,
			PnlPercent: pnlBTC / entryValueBTC * 100,
			FeesBTC:    feesBTC,
			FeesUSD:    feesBTC * f.Price,
			Duration:   f.Timestamp.Sub(b.entryAt),
		})

		remainder := b.position + signed
		switch {
		case remainder == 0:
			b.position = 0
			b.qty, b.avgEntry, b.feeSats = 0, 0, 0
		case sameSign(remainder, b.position):
			// Partial close; the batch keeps its entry price. Fees were
			// consumed by the emitted round trip.
			b.position = remainder
			b.qty = math.Abs(remainder)
			b.feeSats = 0
		default:
			// Flip: the excess opens a fresh batch the other way.
			b.position = remainder
			b.start(f, math.Abs(remainder))
			b.feeSats = 0
		}
	}

	return trips
}

// OpenPosition describes what is left unmatched after reconstruction.
type OpenPosition struct {
	Symbol     string
	Direction  string
	Quantity   float64
	EntryPrice float64
	EntryTime  time.Time
}

// RemainingPositions returns the unclosed batches after replaying
// fills, one per symbol that still holds contracts, sorted by symbol.
func RemainingPositions(fills []RawFill) []OpenPosition {
	open := make(map[string]*batch)

	for _, f := range fills {
		b := open[f.Symbol]
		if b == nil {
			b = &batch{}
			open[f.Symbol] = b
		}

		signed := f.Amount
		if f.Side == FillSell {
			signed = -f.Amount
		}

		if b.position == 0 || sameSign(b.position, signed) {
			if b.position == 0 {
				b.qty, b.avgEntry, b.entryAt = f.Amount, f.Price, f.Timestamp
			} else {
				b.avgEntry = (b.avgEntry*b.qty + f.Price*f.Amount) / (b.qty + f.Amount)
				b.qty += f.Amount
			}
			b.position += signed
			continue
		}

		remainder := b.position + signed
		switch {
		case remainder == 0:
			b.position, b.qty, b.avgEntry = 0, 0, 0
		case sameSign(remainder, b.position):
			b.position = remainder
			b.qty = math.Abs(remainder)
		default:
			b.position = remainder
			b.qty, b.avgEntry, b.entryAt = math.Abs(remainder), f.Price, f.Timestamp
		}
	}

	var positions []OpenPosition
	for symbol, b := range open {
		if b.position == 0 {
			continue
		}
		dir := "long"
		if b.position < 0 {
			dir = "short"
		}
		positions = append(positions, OpenPosition{
			Symbol:     symbol,
			Direction:  dir,
			Quantity:   math.Abs(b.position),
			EntryPrice: b.avgEntry,
			EntryTime:  b.entryAt,
		})
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
	return positions
}

// TripStats aggregates reconstructed round trips.
type TripStats struct {
	Trips       int
	Wins        int
	Losses      int
	WinRate     float64 // percent
	TotalPnlUSD float64
	TotalFeeUSD float64
	TotalFeeBTC float64
	NetPnlUSD   float64
	AvgHold     time.Duration
}

// Stats summarizes a slice of round trips.
func Stats(trips []RoundTrip) TripStats {
	var s TripStats
	s.Trips = len(trips)

	var hold time.Duration
	for _, rt := range trips {
		if rt.Win() {
			s.Wins++
		} else if rt.PnlUSD < 0 {
			s.Losses++
		}
		s.TotalPnlUSD += rt.PnlUSD
		s.TotalFeeUSD += rt.FeesUSD
		s.TotalFeeBTC += rt.FeesBTC
		hold += rt.Duration
	}

	if s.Trips > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trips) * 100
		s.AvgHold = hold / time.Duration(s.Trips)
	}
	s.NetPnlUSD = s.TotalPnlUSD - s.TotalFeeUSD
	return s
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
