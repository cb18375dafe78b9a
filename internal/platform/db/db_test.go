package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectOf(t *testing.T) {
	assert.Equal(t, Postgres, DialectOf("postgres://u:p@localhost/db"))
	assert.Equal(t, Postgres, DialectOf("postgresql://localhost/db"))
	assert.Equal(t, SQLite, DialectOf("data/app.db"))
	assert.Equal(t, "sqlite", SQLite.String())
}

func TestDialectBind(t *testing.T) {
	q := "SELECT a FROM t WHERE b = ? AND c = ?"
	assert.Equal(t, q, SQLite.Bind(q))
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", Postgres.Bind(q))
}

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
