package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"veil/internal/config"
)

// ErrNotFound indicates no record matches the requested operation id.
var ErrNotFound = errors.New("history record not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS operations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    operation_id TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL,
    mode TEXT NOT NULL,
    outcome TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    user_message TEXT NOT NULL DEFAULT '',
    raw_error TEXT NOT NULL DEFAULT '',
    result_json TEXT NOT NULL DEFAULT '',
    output_file TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_operations_created_at ON operations(created_at);
`

// Store persists finished operations in SQLite. Writes take a file lock so
// concurrent CLI invocations finishing at the same time do not interleave.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{
		db:   db,
		path: dbPath,
		lock: flock.New(filepath.Join(cfg.Paths.DataDir, "history.lock")),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a finished operation. A duplicate operation id updates the
// existing row instead; re-resolving an operation is idempotent.
func (s *Store) Record(ctx context.Context, record Record) error {
	if record.OperationID == "" {
		return errors.New("record requires an operation id")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	locked, err := s.lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire history lock: %w", err)
	}
	if !locked {
		return errors.New("history database is locked by another process")
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO operations (
            operation_id, kind, mode, outcome, category,
            user_message, raw_error, result_json, output_file, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(operation_id) DO UPDATE SET
            outcome = excluded.outcome,
            category = excluded.category,
            user_message = excluded.user_message,
            raw_error = excluded.raw_error,
            result_json = excluded.result_json,
            output_file = excluded.output_file`,
		record.OperationID,
		record.Kind,
		record.Mode,
		record.Outcome,
		record.Category,
		record.UserMessage,
		record.RawError,
		record.ResultJSON,
		record.OutputFile,
		record.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, operation_id, kind, mode, outcome, category,
                user_message, raw_error, result_json, output_file, created_at
         FROM operations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Get returns the record for one operation id.
func (s *Store) Get(ctx context.Context, operationID string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, operation_id, kind, mode, outcome, category,
                user_message, raw_error, result_json, output_file, created_at
         FROM operations WHERE operation_id = ?`, operationID)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("operation %s: %w", operationID, ErrNotFound)
	}
	return record, err
}

// Stats returns outcome counts across the whole history.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM operations GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("query history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan history stats: %w", err)
		}
		stats[outcome] = count
	}
	return stats, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (Record, error) {
	var record Record
	var createdAt string
	err := row.Scan(
		&record.ID,
		&record.OperationID,
		&record.Kind,
		&record.Mode,
		&record.Outcome,
		&record.Category,
		&record.UserMessage,
		&record.RawError,
		&record.ResultJSON,
		&record.OutputFile,
		&createdAt,
	)
	if err != nil {
		return Record{}, err
	}
	if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		record.CreatedAt = parsed
	}
	return record, nil
}
