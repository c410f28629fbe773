package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores records in a single sqlite database file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, trade_id, time, side, kind, price, quantity, fee, is_open, position_id, entry_price, exit_price, pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.TradeID, t.Time, t.Side, t.Kind, t.Price, t.Quantity,
		t.Fee, t.IsOpen, t.PositionID, t.EntryPrice, t.ExitPrice, t.Pnl,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, price, balance, equity, unrealized_pnl)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Price, e.Balance, e.Equity, e.UnrealizedPnl,
	)
	return err
}

func (j *SQLite) RecordRun(r RunSummary) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, symbol, start_time, end_time, initial_balance, final_equity, return_pct, benchmark_return_pct, verdict, max_drawdown_pct, trades, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Symbol, r.StartTime, r.EndTime, r.InitialBalance,
		r.FinalEquity, r.ReturnPct, r.BenchmarkReturnPct, r.Verdict,
		r.MaxDrawdownPct, r.Trades, r.CreatedAt,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// GetRun returns one run summary by id.
func (j *SQLite) GetRun(runID string) (RunSummary, error) {
	row := j.db.QueryRow(`
		SELECT run_id, symbol, start_time, end_time, initial_balance, final_equity, return_pct, benchmark_return_pct, verdict, max_drawdown_pct, trades, created_at
		FROM runs
		WHERE run_id = ?`, runID)

	var r RunSummary
	err := row.Scan(
		&r.RunID, &r.Symbol, &r.StartTime, &r.EndTime, &r.InitialBalance,
		&r.FinalEquity, &r.ReturnPct, &r.BenchmarkReturnPct, &r.Verdict,
		&r.MaxDrawdownPct, &r.Trades, &r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return RunSummary{}, fmt.Errorf("run %q not found", runID)
	}
	if err != nil {
		return RunSummary{}, err
	}
	return r, nil
}

// ListRuns returns run summaries newest first.
func (j *SQLite) ListRuns() ([]RunSummary, error) {
	rows, err := j.db.Query(`
		SELECT run_id, symbol, start_time, end_time, initial_balance, final_equity, return_pct, benchmark_return_pct, verdict, max_drawdown_pct, trades, created_at
		FROM runs
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(
			&r.RunID, &r.Symbol, &r.StartTime, &r.EndTime, &r.InitialBalance,
			&r.FinalEquity, &r.ReturnPct, &r.BenchmarkReturnPct, &r.Verdict,
			&r.MaxDrawdownPct, &r.Trades, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTrades returns a run's fills in time order.
func (j *SQLite) ListTrades(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, trade_id, time, side, kind, price, quantity, fee, is_open, position_id, entry_price, exit_price, pnl
		FROM trades
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(
			&t.RunID, &t.TradeID, &t.Time, &t.Side, &t.Kind, &t.Price,
			&t.Quantity, &t.Fee, &t.IsOpen, &t.PositionID, &t.EntryPrice,
			&t.ExitPrice, &t.Pnl,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquity returns a run's equity marks in time order.
func (j *SQLite) ListEquity(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, price, balance, equity, unrealized_pnl
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Price, &e.Balance, &e.Equity, &e.UnrealizedPnl); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
