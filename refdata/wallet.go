package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WalletSnapshot is one exchange wallet-balance observation, denominated
// in satoshi.
type WalletSnapshot struct {
	Timestamp   time.Time
	BalanceSats float64
}

// BalanceBTC converts the native balance to BTC.
func (w WalletSnapshot) BalanceBTC() float64 { return w.BalanceSats / satoshiPerBTC }

// WalletHistory answers "how much capital did the benchmark trader have at
// time t". It is the authoritative baseline for the fairness comparison:
// round trips alone cannot establish starting capital.
type WalletHistory struct {
	snaps []WalletSnapshot // sorted by timestamp
}

// NewWalletHistory sorts and wraps snapshots.
func NewWalletHistory(snaps []WalletSnapshot) *WalletHistory {
	sorted := make([]WalletSnapshot, len(snaps))
	copy(sorted, snaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return &WalletHistory{snaps: sorted}
}

// LoadWalletHistory reads the snapshot CSV:
//
//	timestamp,balance
//
// with balance in satoshi. Same load policy as LoadFills: bad rows are
// skipped and reported, a missing file is a hard error.
func LoadWalletHistory(path string) (*WalletHistory, LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("open wallet history: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	var (
		snaps    []WalletSnapshot
		report   LoadReport
		line     int
		sawFirst bool
	)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, LoadReport{}, fmt.Errorf("read wallet history: %w", err)
		}
		line++

		if !sawFirst {
			sawFirst = true
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "timestamp") {
				continue
			}
		}

		if len(row) < 2 {
			report.Skipped = append(report.Skipped, RowError{Line: line, Field: "row", Err: fmt.Errorf("need 2 columns, got %d", len(row))})
			continue
		}
		ts, err := parseTimestamp(row[0])
		if err != nil {
			report.Skipped = append(report.Skipped, RowError{Line: line, Field: "timestamp", Err: err})
			continue
		}
		bal, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			report.Skipped = append(report.Skipped, RowError{Line: line, Field: "balance", Err: fmt.Errorf("bad balance %q", row[1])})
			continue
		}

		snaps = append(snaps, WalletSnapshot{Timestamp: ts, BalanceSats: bal})
		report.Loaded++
	}

	return NewWalletHistory(snaps), report, nil
}

// Empty reports whether there are no snapshots at all.
func (h *WalletHistory) Empty() bool { return len(h.snaps) == 0 }

// SnapshotAt returns the nearest snapshot at-or-before t. With no snapshot
// that early it falls back to the earliest available one, a known
// approximation rather than a failure.
func (h *WalletHistory) SnapshotAt(t time.Time) (WalletSnapshot, bool) {
	if len(h.snaps) == 0 {
		return WalletSnapshot{}, false
	}

	best := -1
	for i, s := range h.snaps {
		if s.Timestamp.After(t) {
			break
		}
		best = i
	}
	if best < 0 {
		return h.snaps[0], true
	}
	return h.snaps[best], true
}

// CapitalAt is the USD value of the wallet at-or-before t, converted at
// price.
func (h *WalletHistory) CapitalAt(t time.Time, price float64) (float64, bool) {
	s, ok := h.SnapshotAt(t)
	if !ok {
		return 0, false
	}
	return s.BalanceBTC() * price, true
}

// WindowPerformance is the benchmark trader's realized result over exactly
// [start, end]: the USD delta between the bracketing snapshots, both
// converted at refPrice, minus fees recorded strictly inside the window.
type WindowPerformance struct {
	StartCapitalUSD float64
	EndCapitalUSD   float64
	PnlUSD          float64 // net of in-window fees
	FeesUSD         float64
	ReturnPct       float64
}

// Performance computes WindowPerformance. fills supplies the in-window
// fee record; refPrice converts both native balances and native fees.
func (h *WalletHistory) Performance(start, end time.Time, refPrice float64, fills []RawFill) (WindowPerformance, bool) {
	startSnap, ok := h.SnapshotAt(start)
	if !ok {
		return WindowPerformance{}, false
	}
	endSnap, ok := h.SnapshotAt(end)
	if !ok {
		return WindowPerformance{}, false
	}

	var feeSats float64
	for _, f := range fills {
		if f.Timestamp.After(start) && f.Timestamp.Before(end) {
			feeSats += f.FeeSats
		}
	}
	feesUSD := feeSats / satoshiPerBTC * refPrice

	startUSD := startSnap.BalanceBTC() * refPrice
	endUSD := endSnap.BalanceBTC() * refPrice
	pnl := endUSD - startUSD - feesUSD

	perf := WindowPerformance{
		StartCapitalUSD: startUSD,
		EndCapitalUSD:   endUSD,
		PnlUSD:          pnl,
		FeesUSD:         feesUSD,
	}
	if startUSD != 0 {
		perf.ReturnPct = pnl / startUSD * 100
	}
	return perf, true
}
