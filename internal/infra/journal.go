package infra

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

const journalDBName = "journal.db"

// SQLiteJournal implements domain.Journal on a SQLite database.
type SQLiteJournal struct {
	db     *sql.DB
	dbPath string
}

// JournalPath returns the journal database path inside dataDir.
func JournalPath(dataDir string) string {
	return filepath.Join(dataDir, journalDBName)
}

// OpenSQLiteJournal opens (or creates) the journal database in dataDir.
func OpenSQLiteJournal(dataDir string) (*SQLiteJournal, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := JournalPath(dataDir)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// One writer: the daemon loop.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	j := &SQLiteJournal{db: db, dbPath: dbPath}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

func (j *SQLiteJournal) createTables() error {
	if _, err := j.db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS firings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		module TEXT NOT NULL,
		action TEXT NOT NULL DEFAULT '',
		fired_at INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_firings_fired_at ON firings (fired_at);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record appends a firing.
func (j *SQLiteJournal) Record(ctx context.Context, f domain.Firing) error {
	if f.FiredAt.IsZero() {
		f.FiredAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO firings (module, action, fired_at, error) VALUES (?, ?, ?, ?)`,
		f.Module, f.Action, f.FiredAt.UnixNano(), f.Error,
	)
	return err
}

// Recent returns up to limit firings, newest first.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]domain.Firing, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT module, action, fired_at, error FROM firings ORDER BY fired_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var firings []domain.Firing
	for rows.Next() {
		var f domain.Firing
		var firedAt int64
		if err := rows.Scan(&f.Module, &f.Action, &firedAt, &f.Error); err != nil {
			return nil, err
		}
		f.FiredAt = time.Unix(0, firedAt).UTC()
		firings = append(firings, f)
	}
	return firings, rows.Err()
}

// Path returns the database file path.
func (j *SQLiteJournal) Path() string {
	return j.dbPath
}

// Close releases the database connection.
func (j *SQLiteJournal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// NopJournal discards firings. Used when the database cannot be opened.
type NopJournal struct{}

func (NopJournal) Record(context.Context, domain.Firing) error { return nil }

func (NopJournal) Recent(context.Context, int) ([]domain.Firing, error) { return nil, nil }

func (NopJournal) Close() error { return nil }

// Ensure journals implement domain.Journal.
var _ domain.Journal = (*SQLiteJournal)(nil)
var _ domain.Journal = NopJournal{}
