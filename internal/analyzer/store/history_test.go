package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
)

func newTestHistory(t *testing.T) (*HistoryStore, string) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "data", "history.db")
	s := NewHistoryStore(dsn)
	require.NoError(t, s.Initialize(context.Background()))
	return s, dsn
}

func TestHistoryStore_InitializeIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, dsn := newTestHistory(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Initialize(ctx), "call %d", i+2)
	}

	db, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	var tables int
	require.NoError(t, db.GetContext(ctx, &tables,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'upload_history'`))
	assert.Equal(t, 1, tables)

	var columns []string
	require.NoError(t, db.SelectContext(ctx, &columns, `SELECT name FROM pragma_table_info('upload_history') ORDER BY cid`))
	assert.Equal(t, []string{"id", "filename", "uploaded_at", "row_count", "column_count"}, columns)
}

func TestHistoryStore_RecordThenRecent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestHistory(t)
	before := time.Now().UTC().Add(-time.Minute)

	require.NoError(t, s.Record(ctx, "a.csv", 10, 3))

	got, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "a.csv", got[0].Filename)
	assert.Equal(t, 10, got[0].RowCount)
	assert.Equal(t, 3, got[0].ColumnCount)
	assert.Positive(t, got[0].ID)
	assert.True(t, got[0].UploadedAt.After(before), "uploaded_at %v should be assigned at insert", got[0].UploadedAt)
}

func TestHistoryStore_RecentOrdering(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestHistory(t)

	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		require.NoError(t, s.Record(ctx, name, 1, 1))
	}

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.csv", "b.csv", "a.csv"}, filenames(got))
	assert.Greater(t, got[0].ID, got[1].ID)
}

func TestHistoryStore_RecentLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestHistory(t)

	for i := 0; i < 15; i++ {
		require.NoError(t, s.Record(ctx, fmt.Sprintf("f%02d.csv", i), i, 2))
	}

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "f14.csv", got[0].Filename)
	assert.Equal(t, "f05.csv", got[9].Filename)

	got, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultRecentLimit)
}

func TestHistoryStore_RecentHugeLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestHistory(t)
	require.NoError(t, s.Record(ctx, "a.csv", 1, 1))

	got, err := s.Recent(ctx, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, filenames(got))
}

func TestHistoryStore_RecentEmpty(t *testing.T) {
	t.Parallel()

	s, _ := newTestHistory(t)

	got, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHistoryStore_SameFilenameAppends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, dsn := newTestHistory(t)

	require.NoError(t, s.Record(ctx, "a.csv", 10, 3))
	require.NoError(t, s.Record(ctx, "a.csv", 20, 4))

	// a second store on the same file sees both rows
	got, err := NewHistoryStore(dsn).Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 20, got[0].RowCount)
	assert.Equal(t, 10, got[1].RowCount)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestHistoryStore_UnopenablePath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	s := NewHistoryStore(filepath.Join(blocker, "nested", "history.db"))

	err := s.Initialize(ctx)
	assert.ErrorIs(t, err, ErrConnection)

	err = s.Record(ctx, "a.csv", 1, 1)
	assert.ErrorIs(t, err, ErrConnection)

	got, err := s.Recent(ctx, 10)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Nil(t, got)

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindConnection, serr.Kind)
	assert.Equal(t, "recent", serr.Op)
}

func mockOpener(t *testing.T) (Opener, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return func(context.Context, string) (*sqlx.DB, error) {
		return sqlx.NewDb(db, "sqlmock"), nil
	}, mock
}

func TestHistoryStore_ClosesConnection(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		run     func(s *HistoryStore) error
		wantErr error
	}{
		{
			name: "initialize",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS upload_history")).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			run: func(s *HistoryStore) error { return s.Initialize(context.Background()) },
		},
		{
			name: "initialize failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS upload_history")).WillReturnError(errBoom)
			},
			run:     func(s *HistoryStore) error { return s.Initialize(context.Background()) },
			wantErr: ErrWrite,
		},
		{
			name: "record",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(queryInsertHistory)).
					WithArgs("a.csv", 10, 3).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
			run: func(s *HistoryStore) error { return s.Record(context.Background(), "a.csv", 10, 3) },
		},
		{
			name: "record insert failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(queryInsertHistory)).WillReturnError(errBoom)
				mock.ExpectRollback()
			},
			run:     func(s *HistoryStore) error { return s.Record(context.Background(), "a.csv", 10, 3) },
			wantErr: ErrWrite,
		},
		{
			name: "record commit failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(queryInsertHistory)).WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(errBoom)
			},
			run:     func(s *HistoryStore) error { return s.Record(context.Background(), "a.csv", 10, 3) },
			wantErr: ErrWrite,
		},
		{
			name: "recent",
			setup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "filename", "uploaded_at", "row_count", "column_count"}).
					AddRow(int64(2), "b.csv", time.Now(), 5, 2).
					AddRow(int64(1), "a.csv", time.Now(), 4, 1)
				mock.ExpectQuery(regexp.QuoteMeta(querySelectRecent)).WithArgs(10).WillReturnRows(rows)
			},
			run: func(s *HistoryStore) error {
				got, err := s.Recent(context.Background(), 10)
				if err == nil && len(got) != 2 {
					return fmt.Errorf("expected 2 records, got %d", len(got))
				}
				return err
			},
		},
		{
			name: "recent failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(querySelectRecent)).WillReturnError(errBoom)
			},
			run: func(s *HistoryStore) error {
				_, err := s.Recent(context.Background(), 10)
				return err
			},
			wantErr: ErrRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opener, mock := mockOpener(t)
			tt.setup(mock)
			mock.ExpectClose()

			err := tt.run(NewHistoryStore("mock", WithOpener(opener)))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, errBoom)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHistoryStore_OpenerFailure(t *testing.T) {
	t.Parallel()

	errOpen := errors.New("disk gone")
	s := NewHistoryStore("x", WithOpener(func(context.Context, string) (*sqlx.DB, error) {
		return nil, errOpen
	}))

	err := s.Record(context.Background(), "a.csv", 1, 1)
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, errOpen)
	assert.NotErrorIs(t, err, ErrWrite)
	assert.Contains(t, err.Error(), "history record: connection error")
}

func TestFilePath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                           "",
		":memory:":                   "",
		"file::memory:?cache=shared": "",
		"./data/a.db":                "./data/a.db",
		"file:/tmp/a.db?_fk=1":       "/tmp/a.db",
	}
	for dsn, want := range tests {
		assert.Equal(t, want, filePath(dsn), dsn)
	}
}

func filenames(records []entity.UploadRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Filename
	}
	return out
}
