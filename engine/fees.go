package engine

// FeeModel computes execution fees for the inverse perpetual. Quantity is
// already USD notional (1 contract = 1 USD), so the fee is notional times
// rate with no second multiplication by price.
type FeeModel struct {
	MakerRate float64
	TakerRate float64
}

// DefaultFees are the BitMEX rates in force during the replayed window.
func DefaultFees() FeeModel {
	return FeeModel{MakerRate: 0.00025, TakerRate: 0.00075}
}

// Fee returns the fee for executing notional contracts. Limit fills pay the
// maker rate; market and triggered-stop fills pay the taker rate.
func (f FeeModel) Fee(notional float64, kind OrderKind) float64 {
	if kind == Limit {
		return notional * f.MakerRate
	}
	return notional * f.TakerRate
}
