package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"ArbiOps/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists simulation history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the loop writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			tick             INTEGER NOT NULL,
			time_label       TEXT,
			revenue          REAL,
			spend            REAL,
			profit           REAL,
			total_profit     REAL,
			roi              REAL,
			stage            TEXT,
			daily_spend      REAL,
			risk_tolerance   INTEGER,
			fallback         INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ticks_ts ON ticks(timestamp)`,

		`CREATE TABLE IF NOT EXISTS log_entries (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			label      TEXT,
			category   TEXT,
			message    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_ts ON log_entries(timestamp)`,

		`CREATE TABLE IF NOT EXISTS status_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			from_status TEXT,
			to_status   TEXT,
			source      TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS payout_events (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			amount       TEXT,
			bank_account TEXT,
			accepted     INTEGER,
			note         TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTick(rec *TickRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO ticks
		(timestamp, tick, time_label, revenue, spend, profit, total_profit, roi, stage,
		 daily_spend, risk_tolerance, fallback)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Tick, rec.Point.Time, rec.Point.Revenue, rec.Point.Spend,
		rec.Point.Profit, rec.Totals.TotalProfit, rec.Totals.ROI, string(rec.Stage),
		rec.Controls.DailySpendLimit, rec.Controls.RiskTolerance, boolInt(rec.Fallback),
	)
	return err
}

func (r *SQLiteRecorder) RecordLogs(entries []model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	for _, e := range entries {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO log_entries
			(id, timestamp, label, category, message) VALUES (?,?,?,?,?)`,
			e.ID, now, e.Timestamp, string(e.Category), e.Message,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordStatus(evt *StatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO status_events
		(timestamp, from_status, to_status, source) VALUES (?,?,?,?)`,
		time.Now().Unix(), string(evt.From), string(evt.To), evt.Source,
	)
	return err
}

func (r *SQLiteRecorder) RecordPayout(evt *PayoutEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO payout_events
		(timestamp, amount, bank_account, accepted, note) VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Amount, evt.BankAccount, boolInt(evt.Accepted), evt.Note,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
