package testutil

import (
	"context"
	"database/sql"
	"io"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cheatcodes/internal/db"
	"github.com/vytor/cheatcodes/internal/logger"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// It is limited to a single connection so every query sees the same
// in-memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	log := logger.New(logger.WithOutput(io.Discard))
	require.NoError(t, db.Migrate(context.Background(), sqlDB, log), "failed to apply migrations")

	return sqlDB
}

// NewProfile inserts a profile row and returns its id.
func NewProfile(t *testing.T, sqlDB *sql.DB, username string) int64 {
	res, err := sqlDB.Exec(`INSERT INTO profiles (username) VALUES (?)`, username)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
