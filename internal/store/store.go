package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

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

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// Session logs keep their subject_id after the subject is deleted so study
// history survives; analytics skips orphaned rows.
func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS subjects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		category    TEXT NOT NULL DEFAULT 'study',
		goal_hours  REAL,
		color       TEXT NOT NULL DEFAULT '#6C63FF',
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS habits (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		metric_type   TEXT NOT NULL DEFAULT 'binary',
		target_value  REAL,
		color         TEXT NOT NULL DEFAULT '#4ECDC4',
		icon          TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS habit_logs (
		id        TEXT PRIMARY KEY,
		habit_id  TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
		value     REAL NOT NULL DEFAULT 1,
		date      TEXT NOT NULL,
		note      TEXT,
		UNIQUE(habit_id, date)
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id                TEXT PRIMARY KEY,
		title             TEXT NOT NULL,
		description       TEXT,
		status            TEXT NOT NULL DEFAULT 'todo',
		scheduled_date    TEXT,
		deadline          TEXT,
		start_time        TEXT,
		end_time          TEXT,
		priority          TEXT NOT NULL DEFAULT 'medium',
		position          INTEGER NOT NULL DEFAULT 0,
		recurrence        TEXT NOT NULL DEFAULT '',
		subject_id        TEXT REFERENCES subjects(id) ON DELETE SET NULL,
		estimate_minutes  INTEGER,
		actual_minutes    INTEGER NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_logs (
		id                TEXT PRIMARY KEY,
		subject_id        TEXT NOT NULL,
		task_id           TEXT REFERENCES tasks(id) ON DELETE SET NULL,
		duration_minutes  INTEGER NOT NULL,
		started_at        TEXT NOT NULL,
		completed_at      TEXT NOT NULL,
		date              TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_subject ON session_logs(subject_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_date    ON session_logs(date);
	CREATE INDEX IF NOT EXISTS idx_habit_logs_date  ON habit_logs(date);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('pomodoro_work',       '1500'),
		('pomodoro_break',      '300'),
		('pomodoro_long_break', '900'),
		('pomodoro_count',      '4'),
		('daily_goal',          '120'),
		('notify',              'true');
	`
	_, err := s.db.Exec(ddl)
	return err
}

func newID() string {
	return uuid.NewString()
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}
