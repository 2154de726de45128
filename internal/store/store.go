// Package store persists generation run history in sqlite. Each run
// records the target class, test type, validation outcome, and the
// per-attempt trail, so past generations can be audited without
// re-running them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/joss/testsmith/internal/domain"
)

// RunStore persists generation runs.
type RunStore struct {
	db   *sql.DB
	path string
}

// Open opens (and migrates) the run store under dataDir.
func Open(dataDir string) (*RunStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "runs.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	s := &RunStore{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *RunStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		class TEXT NOT NULL,
		package TEXT NOT NULL,
		test_type TEXT NOT NULL,
		validated INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 0,
		attempts_json TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_class ON runs(class);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database is usable.
func (s *RunStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// NewRunID mints a sortable run identifier.
func NewRunID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewSessionID mints a session identifier grouping related runs.
func NewSessionID() string {
	return uuid.NewString()
}

// Save records a run. Missing IDs and timestamps are filled in.
func (s *RunStore) Save(ctx context.Context, run *domain.Run) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	attemptsJSON, err := json.Marshal(run.Attempts)
	if err != nil {
		return fmt.Errorf("marshal attempts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, session_id, class, package, test_type, validated, success, attempts_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.SessionID, run.Target.Class, run.Target.Package, run.TestType,
		run.Validated, run.Success, string(attemptsJSON), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(ctx context.Context, id string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, class, package, test_type, validated, success, attempts_json, created_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, NewNotFoundError("run", id)
	}
	return run, err
}

// Recent lists the most recent runs, newest first. A class filter
// narrows to one target; limit 0 means 50.
func (s *RunStore) Recent(ctx context.Context, class string, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, session_id, class, package, test_type, validated, success, attempts_json, created_at
		FROM runs`
	args := []any{}
	if class != "" {
		query += " WHERE class = ?"
		args = append(args, class)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Count returns the number of recorded runs.
func (s *RunStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var attemptsJSON sql.NullString

	err := row.Scan(&run.ID, &run.SessionID, &run.Target.Class, &run.Target.Package,
		&run.TestType, &run.Validated, &run.Success, &attemptsJSON, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	if attemptsJSON.Valid && attemptsJSON.String != "" && attemptsJSON.String != "null" {
		if err := json.Unmarshal([]byte(attemptsJSON.String), &run.Attempts); err != nil {
			return nil, fmt.Errorf("unmarshal attempts: %w", err)
		}
	}
	return &run, nil
}
