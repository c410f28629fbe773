package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CSV writes trades and equity marks to two flat files and appends run
// summaries to a third.
type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File

	runsPath string
}

func NewCSV(tradesPath, equityPath, runsPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{"run_id", "trade_id", "time", "side", "kind", "price", "quantity", "fee", "is_open", "position_id", "entry_price", "exit_price", "pnl"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"run_id", "time", "price", "balance", "equity", "unrealized_pnl"}); err != nil {
		return nil, err
	}
	tw.Flush()
	ew.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{trades: tw, equity: ew, tf: tf, ef: ef, runsPath: runsPath}, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.RunID,
		t.TradeID,
		t.Time.Format(time.RFC3339),
		t.Side,
		t.Kind,
		f(t.Price),
		f(t.Quantity),
		f(t.Fee),
		strconv.FormatBool(t.IsOpen),
		t.PositionID,
		f(t.EntryPrice),
		f(t.ExitPrice),
		f(t.Pnl),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.RunID,
		e.Time.Format(time.RFC3339),
		f(e.Price),
		f(e.Balance),
		f(e.Equity),
		f(e.UnrealizedPnl),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) RecordRun(r RunSummary) error {
	rf, err := os.OpenFile(j.runsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer rf.Close()

	st, err := rf.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(rf)
	if st.Size() == 0 {
		if err := w.Write([]string{"run_id", "symbol", "start_time", "end_time", "initial_balance", "final_equity", "return_pct", "benchmark_return_pct", "verdict", "max_drawdown_pct", "trades", "created_at"}); err != nil {
			return err
		}
	}
	err = w.Write([]string{
		r.RunID,
		r.Symbol,
		r.StartTime.Format(time.RFC3339),
		r.EndTime.Format(time.RFC3339),
		f(r.InitialBalance),
		f(r.FinalEquity),
		f(r.ReturnPct),
		f(r.BenchmarkReturnPct),
		r.Verdict,
		f(r.MaxDrawdownPct),
		strconv.Itoa(r.Trades),
		r.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return fmt.Errorf("close trades file: %w", err)
	}
	if err := j.ef.Close(); err != nil {
		return fmt.Errorf("close equity file: %w", err)
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
