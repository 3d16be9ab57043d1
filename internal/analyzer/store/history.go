package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
)

// DefaultRecentLimit is used when Recent is called with a limit below one.
const DefaultRecentLimit = 10

const (
	schemaHistory = `CREATE TABLE IF NOT EXISTS upload_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT NOT NULL,
	uploaded_at TIMESTAMP NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
	row_count INTEGER NOT NULL,
	column_count INTEGER NOT NULL
)`

	queryInsertHistory = `INSERT INTO upload_history (filename, row_count, column_count) VALUES (?, ?, ?)`

	querySelectRecent = `SELECT id, filename, uploaded_at, row_count, column_count
FROM upload_history
ORDER BY uploaded_at DESC, id DESC
LIMIT ?`
)

// Opener opens a database handle for the given DSN. The handle is closed by
// the caller when the operation finishes.
type Opener func(ctx context.Context, dsn string) (*sqlx.DB, error)

// HistoryStore is the durable upload log. It holds no connection between
// calls: every operation opens its own handle and closes it before returning.
type HistoryStore struct {
	dsn  string
	open Opener
}

// HistoryOption customizes a HistoryStore.
type HistoryOption func(*HistoryStore)

// WithOpener replaces the sqlite opener, mainly for tests.
func WithOpener(o Opener) HistoryOption {
	return func(s *HistoryStore) { s.open = o }
}

func NewHistoryStore(dsn string, opts ...HistoryOption) *HistoryStore {
	s := &HistoryStore{dsn: dsn, open: OpenSQLite}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenSQLite opens and pings a sqlite database, creating the parent
// directory of a file DSN when it does not exist.
func OpenSQLite(ctx context.Context, dsn string) (*sqlx.DB, error) {
	if path := filePath(dsn); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			slog.WarnContext(ctx, "failed to close database after ping", "error", cerr)
		}
		return nil, err
	}
	return db, nil
}

func filePath(dsn string) string {
	if dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}

// Initialize creates the history table when it is absent. It is safe to
// call any number of times.
func (s *HistoryStore) Initialize(ctx context.Context) error {
	const op = "initialize"

	return s.withDB(ctx, op, func(db *sqlx.DB) error {
		if _, err := db.ExecContext(ctx, schemaHistory); err != nil {
			return newStorageError(KindWrite, op, err)
		}
		return nil
	})
}

// Record appends one upload entry. id and uploaded_at are assigned by the
// database; the counts are stored as given.
func (s *HistoryStore) Record(ctx context.Context, filename string, rowCount, columnCount int) error {
	const op = "record"

	return s.withDB(ctx, op, func(db *sqlx.DB) error {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return newStorageError(KindWrite, op, err)
		}

		if _, err := tx.ExecContext(ctx, queryInsertHistory, filename, rowCount, columnCount); err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				slog.WarnContext(ctx, "failed to rollback history insert", "error", rerr)
			}
			return newStorageError(KindWrite, op, err)
		}

		if err := tx.Commit(); err != nil {
			return newStorageError(KindWrite, op, err)
		}
		return nil
	})
}

// Recent returns up to limit entries, newest first. Entries with the same
// timestamp are ordered by insertion, later first. An empty log yields an
// empty slice.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]entity.UploadRecord, error) {
	const op = "recent"

	if limit < 1 {
		limit = DefaultRecentLimit
	}

	records := []entity.UploadRecord{}
	err := s.withDB(ctx, op, func(db *sqlx.DB) error {
		if err := db.SelectContext(ctx, &records, querySelectRecent, limit); err != nil {
			return newStorageError(KindRead, op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// withDB opens a handle, runs fn and always closes the handle.
func (s *HistoryStore) withDB(ctx context.Context, op string, fn func(db *sqlx.DB) error) error {
	db, err := s.open(ctx, s.dsn)
	if err != nil {
		return newStorageError(KindConnection, op, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			slog.WarnContext(ctx, "failed to close history database", "op", op, "error", cerr)
		}
	}()

	return fn(db)
}
