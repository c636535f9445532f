package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/migrations"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

// newSQLiteStorages opens a migrated SQLite database in a temp dir.
func newSQLiteStorages(t *testing.T) *Storages {
	t.Helper()

	db, err := NewConnectSQLite(testContext(), config.DB{DSN: filepath.Join(t.TempDir(), "pim.db")}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	return NewStoragesFromDB(db)
}

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newDBFromSQL creates a DB from an existing *sql.DB (for tests).
func newDBFromSQL(db *sql.DB, dialect string) *DB {
	classifier := ErrorClassificator(NewSQLiteErrorClassifier())
	if dialect == migrations.DialectPostgres {
		classifier = NewPostgresErrorClassifier()
	}
	return newDB(db, dialect, classifier, logger.Nop())
}

func ts(min int) time.Time {
	return time.Date(2026, 5, 1, 12, min, 0, 0, time.UTC)
}
