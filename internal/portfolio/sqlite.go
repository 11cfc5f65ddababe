package portfolio

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"tradesim-go/internal/order"
)

// SQLiteRecorder persists fills to a SQLite database.
type SQLiteRecorder struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external tooling can read while the engine writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fills (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			ts     INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			side   TEXT NOT NULL,
			qty    REAL NOT NULL,
			price  REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fills_ts ON fills(ts)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record inserts a fill row. Insert failures are dropped: the audit trail is
// best-effort and must never reject an order the ledger accepted.
func (r *SQLiteRecorder) Record(fill order.Fill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.db.Exec(
		`INSERT INTO fills (ts, symbol, side, qty, price) VALUES (?, ?, ?, ?, ?)`,
		fill.Ts.UnixMilli(), fill.Symbol, string(fill.Side), fill.Qty, fill.Price,
	)
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}
