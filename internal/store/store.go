package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// currentVersion is bumped on every schema change. There is no upgrade path:
// a database stamped with any other version is wiped and recreated.
const currentVersion = 1

// DateLayout is the day key used by the water and step tables.
const DateLayout = "2006-01-02"

// ErrNotFound is returned by lookups that require an existing row.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Writers take the lock at BEGIN so two processes adjusting the same day
	// queue on busy_timeout instead of failing the read-to-write upgrade.
	db, err := sql.Open("sqlite", dbPath+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DataVersion returns SQLite's data_version counter. It changes whenever
// another connection (usually another process) commits to the database.
func (s *Store) DataVersion() (int64, error) {
	var v int64
	if err := s.db.QueryRow("PRAGMA data_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read data_version: %w", err)
	}
	return v, nil
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version == currentVersion {
		return nil
	}
	if version != 0 {
		if err := s.wipe(); err != nil {
			return err
		}
	}
	if err := s.createSchema(); err != nil {
		return err
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) wipe() error {
	const ddl = `
	DROP TABLE IF EXISTS water_records;
	DROP TABLE IF EXISTS step_records;
	DROP TABLE IF EXISTS workout_records;
	DROP TABLE IF EXISTS user_preferences;
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("wipe schema: %w", err)
	}
	return nil
}

func (s *Store) createSchema() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS water_records (
		date          TEXT PRIMARY KEY,
		total_ml      INTEGER NOT NULL DEFAULT 0,
		glass_size_ml REAL NOT NULL DEFAULT 250,
		timestamp     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS step_records (
		date      TEXT PRIMARY KEY,
		steps     INTEGER NOT NULL DEFAULT 0,
		goal      INTEGER NOT NULL DEFAULT 10000,
		timestamp TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS workout_records (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		date       TEXT NOT NULL,
		name       TEXT NOT NULL,
		duration   INTEGER,
		goal_value INTEGER NOT NULL,
		goal_type  TEXT NOT NULL DEFAULT 'REPS',
		completed  INTEGER NOT NULL DEFAULT 0,
		timestamp  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_workouts_date ON workout_records(date);

	CREATE TABLE IF NOT EXISTS user_preferences (
		id                  INTEGER PRIMARY KEY CHECK (id = 1),
		daily_water_goal_ml INTEGER NOT NULL DEFAULT 4000,
		daily_step_goal     INTEGER NOT NULL DEFAULT 10000,
		glass_size_ml       REAL NOT NULL DEFAULT 250,
		timestamp           TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// addSaturating returns n+delta clamped to the int range.
func addSaturating(n, delta int) int {
	if delta > 0 && n > math.MaxInt-delta {
		return math.MaxInt
	}
	if delta < 0 && n < math.MinInt-delta {
		return math.MinInt
	}
	return n + delta
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseStamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
