package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	trade_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	side TEXT NOT NULL,
	kind TEXT NOT NULL,
	price REAL NOT NULL,
	quantity REAL NOT NULL,
	fee REAL NOT NULL,
	is_open INTEGER NOT NULL,
	position_id TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	pnl REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	price REAL NOT NULL,
	balance REAL NOT NULL,
	equity REAL NOT NULL,
	unrealized_pnl REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	initial_balance REAL NOT NULL,
	final_equity REAL NOT NULL,
	return_pct REAL NOT NULL,
	benchmark_return_pct REAL NOT NULL,
	verdict TEXT NOT NULL,
	max_drawdown_pct REAL NOT NULL,
	trades INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, time);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, time);
`
