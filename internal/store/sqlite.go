// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"optpricer/internal/errors"
	"optpricer/internal/quote"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Daily close cache per symbol
	CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		date DATETIME NOT NULL,
		close REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, date)
	);

	-- Freshness marker per cached symbol
	CREATE TABLE IF NOT EXISTS bars_sync (
		symbol TEXT PRIMARY KEY,
		fetched_at DATETIME NOT NULL
	);

	-- Journal of pricing requests and results
	CREATE TABLE IF NOT EXISTS pricing_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		model TEXT NOT NULL,
		style TEXT,
		symbol TEXT,
		spot REAL NOT NULL,
		strike REAL NOT NULL,
		maturity REAL NOT NULL,
		rate REAL NOT NULL,
		cost_of_carry REAL NOT NULL,
		volatility REAL NOT NULL,
		num_paths INTEGER,
		num_steps INTEGER,
		seed INTEGER,
		call REAL NOT NULL,
		put REAL NOT NULL,
		parity_gap REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_bars_symbol_date ON bars(symbol, date);
	CREATE INDEX IF NOT EXISTS idx_runs_symbol ON pricing_runs(symbol);
	CREATE INDEX IF NOT EXISTS idx_runs_model ON pricing_runs(model);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveBars upserts a daily close series and stamps its freshness.
func (s *SQLiteStore) SaveBars(ctx context.Context, symbol string, bars []quote.Bar) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (symbol, date, close) VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET close = excluded.close`)
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, bar.Date, bar.Close); err != nil {
			return errors.Wrapf(err, "insert bar %s %s", symbol, bar.Date.Format("2006-01-02"))
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bars_sync (symbol, fetched_at) VALUES (?, ?)
		ON CONFLICT(symbol) DO UPDATE SET fetched_at = excluded.fetched_at`,
		symbol, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "update freshness")
	}

	return tx.Commit()
}

// GetBars returns the cached close series for a symbol in date order.
func (s *SQLiteStore) GetBars(ctx context.Context, symbol string) ([]quote.Bar, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, close FROM bars WHERE symbol = ? ORDER BY date ASC`, symbol)
	if err != nil {
		return nil, errors.Wrap(err, "query bars")
	}
	defer rows.Close()

	var bars []quote.Bar
	for rows.Next() {
		var bar quote.Bar
		if err := rows.Scan(&bar.Date, &bar.Close); err != nil {
			return nil, errors.Wrap(err, "scan bar")
		}
		bars = append(bars, bar)
	}
	return bars, rows.Err()
}

// GetBarsFreshness returns when a symbol's cache was last refreshed.
// The zero time means never.
func (s *SQLiteStore) GetBarsFreshness(ctx context.Context, symbol string) (time.Time, error) {
	var fetched time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM bars_sync WHERE symbol = ?`, symbol).Scan(&fetched)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, errors.Wrap(err, "query freshness")
	}
	return fetched, nil
}

// SaveRun journals one pricing run and fills in its assigned ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *PricingRun) error {
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pricing_runs
		(timestamp, model, style, symbol, spot, strike, maturity, rate,
		 cost_of_carry, volatility, num_paths, num_steps, seed, call, put, parity_gap)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Timestamp, run.Model, run.Style, run.Symbol, run.Spot, run.Strike,
		run.Maturity, run.Rate, run.CostOfCarry, run.Volatility,
		run.NumPaths, run.NumSteps, run.Seed, run.Call, run.Put, run.ParityGap)
	if err != nil {
		return errors.Wrap(err, "insert pricing run")
	}
	run.ID, _ = res.LastInsertId()
	return nil
}

// GetRuns returns journaled pricing runs, newest first.
func (s *SQLiteStore) GetRuns(ctx context.Context, filter RunFilter) ([]PricingRun, error) {
	query := `SELECT id, timestamp, model, style, symbol, spot, strike, maturity,
		rate, cost_of_carry, volatility, num_paths, num_steps, seed, call, put, parity_gap
		FROM pricing_runs WHERE 1=1`
	var args []interface{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Model != "" {
		query += " AND model = ?"
		args = append(args, filter.Model)
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query pricing runs")
	}
	defer rows.Close()

	var runs []PricingRun
	for rows.Next() {
		var r PricingRun
		var style, symbol sql.NullString
		var paths, steps, seed sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Model, &style, &symbol,
			&r.Spot, &r.Strike, &r.Maturity, &r.Rate, &r.CostOfCarry, &r.Volatility,
			&paths, &steps, &seed, &r.Call, &r.Put, &r.ParityGap); err != nil {
			return nil, errors.Wrap(err, "scan pricing run")
		}
		r.Style = style.String
		r.Symbol = symbol.String
		r.NumPaths = int(paths.Int64)
		r.NumSteps = int(steps.Int64)
		r.Seed = seed.Int64
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
