// Package sqlite persists agent history records in a SQLite database using
// the pure-Go modernc.org/sqlite driver, so deployments need no cgo and no
// external database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ascend-ai/ascend/core"
)

// defaultListLimit caps List results when the caller does not set a limit.
const defaultListLimit = 50

const schema = `
CREATE TABLE IF NOT EXISTS history_records (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	kind       TEXT NOT NULL,
	task_type  TEXT NOT NULL,
	input      TEXT NOT NULL DEFAULT '',
	output     TEXT NOT NULL DEFAULT '',
	success    INTEGER NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	duration   INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_owner ON history_records (owner_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_history_owner_kind ON history_records (owner_id, kind, created_at DESC);
`

// Store is a durable HistoryStore backed by SQLite. It is safe for
// concurrent use; database/sql serializes access to the single writer.
type Store struct {
	db *sql.DB
}

var _ core.HistoryStore = (*Store)(nil)

// Open opens (creating if necessary) the database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The driver is single-writer; more connections just queue on locks.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append implements core.HistoryStore.
func (s *Store) Append(ctx context.Context, rec core.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history_records
			(id, owner_id, kind, task_type, input, output, success, error, duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.OwnerID,
		string(rec.Kind),
		string(rec.TaskType),
		rec.Input,
		rec.Output,
		rec.Success,
		rec.Error,
		int64(rec.Duration),
		rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("append history record: %w", err)
	}
	return nil
}

// List implements core.HistoryStore. Records come back newest first.
func (s *Store) List(ctx context.Context, ownerID string, optFns ...func(o *core.ListOptions)) ([]core.Record, error) {
	opts := core.ListOptions{Limit: defaultListLimit}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}

	query := `
		SELECT id, owner_id, kind, task_type, input, output, success, error, duration, created_at
		FROM history_records
		WHERE owner_id = ?`
	args := []any{ownerID}
	if opts.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(opts.Kind))
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history records: %w", err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		var (
			rec       core.Record
			kind      string
			taskType  string
			duration  int64
			createdAt int64
		)
		if err := rows.Scan(
			&rec.ID, &rec.OwnerID, &kind, &taskType,
			&rec.Input, &rec.Output, &rec.Success, &rec.Error,
			&duration, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		rec.Kind = core.RecordKind(kind)
		rec.TaskType = core.TaskType(taskType)
		rec.Duration = time.Duration(duration)
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history records: %w", err)
	}
	return records, nil
}

// Purge implements core.HistoryStore.
func (s *Store) Purge(ctx context.Context, ownerID string, kind core.RecordKind) (int, error) {
	query := `DELETE FROM history_records WHERE owner_id = ?`
	args := []any{ownerID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge history records: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge history records: %w", err)
	}
	return int(removed), nil
}
