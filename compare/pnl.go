package compare

import "github.com/hali-na/tradingpk/engine"

// PnLSummary breaks the user's result down at one price.
type PnLSummary struct {
	RealizedUSD   float64 `json:"realizedUsd"` // net of close fees
	UnrealizedUSD float64 `json:"unrealizedUsd"`
	FeesUSD       float64 `json:"feesUsd"` // all fees ever paid
	Equity        float64 `json:"equity"`
	ReturnPct     float64 `json:"returnPct"`
}

// Summarize computes the breakdown from an account snapshot.
func Summarize(account engine.Account, currentPrice, initialBalance float64) PnLSummary {
	var s PnLSummary

	for _, t := range account.Trades {
		s.FeesUSD += t.Fee
		if !t.IsOpen {
			s.RealizedUSD += t.Pnl
		}
	}
	for _, p := range account.Positions {
		if p.EntryPrice != 0 {
			s.UnrealizedUSD += p.Quantity * (currentPrice - p.EntryPrice) / p.EntryPrice * p.Direction.Sign()
		}
	}

	s.Equity = account.Balance + s.UnrealizedUSD
	if initialBalance != 0 {
		s.ReturnPct = (s.Equity - initialBalance) / initialBalance * 100
	}
	return s
}
