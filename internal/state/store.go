// Package state persists the per-day run record and drives the bounded
// attempt loop. One row per calendar day, overwritten in place; SUCCESS is
// terminal and gates the whole pipeline at process start.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run statuses. FAILED is re-enterable until the attempt budget runs out.
const (
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Record is the durable row for one calendar day.
type Record struct {
	RunDate   string
	Status    string
	Attempt   int
	UpdatedAt string
	Reason    sql.NullString
}

type Store struct {
	db *sql.DB
}

// New opens (creating directories as needed) the sqlite state database and
// ensures the schema exists.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping state database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate state database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_state (
			run_date   TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			attempt    INTEGER NOT NULL,
			updated_at TEXT NOT NULL,
			reason     TEXT
		)`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// IsSuccess reports whether the day already completed. Used as the very
// first gate of a run: true means no fetching, no rewriting, no delivery.
func (s *Store) IsSuccess(runDate string) (bool, error) {
	var status string
	err := s.db.QueryRow(`SELECT status FROM run_state WHERE run_date = ?`, runDate).Scan(&status)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query run state: %w", err)
	}
	return status == StatusSuccess, nil
}

// Get returns the day's record, ok=false when none exists.
func (s *Store) Get(runDate string) (Record, bool, error) {
	var rec Record
	err := s.db.QueryRow(
		`SELECT run_date, status, attempt, updated_at, reason FROM run_state WHERE run_date = ?`,
		runDate,
	).Scan(&rec.RunDate, &rec.Status, &rec.Attempt, &rec.UpdatedAt, &rec.Reason)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("query run state: %w", err)
	}
	return rec, true, nil
}

func (s *Store) MarkRunning(runDate string, attempt int) error {
	return s.upsert(runDate, StatusRunning, attempt, nil)
}

func (s *Store) MarkSuccess(runDate string, attempt int) error {
	return s.upsert(runDate, StatusSuccess, attempt, nil)
}

func (s *Store) MarkFailed(runDate string, attempt int, reason string) error {
	return s.upsert(runDate, StatusFailed, attempt, &reason)
}

// Reset removes a day's record so it can be re-run explicitly.
func (s *Store) Reset(runDate string) error {
	_, err := s.db.Exec(`DELETE FROM run_state WHERE run_date = ?`, runDate)
	return err
}

// upsert keeps exactly one row per day: status, attempt, updated_at and
// reason are overwritten on conflict, never appended as history.
func (s *Store) upsert(runDate, status string, attempt int, reason *string) error {
	now := time.Now().Format("2006-01-02T15:04:05")
	_, err := s.db.Exec(`
		INSERT INTO run_state (run_date, status, attempt, updated_at, reason)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_date) DO UPDATE SET
			status     = excluded.status,
			attempt    = excluded.attempt,
			updated_at = excluded.updated_at,
			reason     = excluded.reason`,
		runDate, status, attempt, now, reason)
	if err != nil {
		return fmt.Errorf("upsert run state: %w", err)
	}
	return nil
}
