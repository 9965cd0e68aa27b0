package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitwitql/internal/store"
	"minitwitql/internal/store/storetest"
)

// openTemp opens a fresh database file in the test's temp dir.
func openTemp(t *testing.T) store.Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "minitwitql-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, openTemp)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(context.Background()))
}

func TestListQuery(t *testing.T) {
	query, args := listQuery(store.Query{})
	assert.Equal(t,
		"SELECT message_id, author_id, text, pub_date, likes FROM message ORDER BY pub_date ASC, message_id ASC",
		query)
	assert.Empty(t, args)

	query, args = listQuery(store.Query{UserID: "u1", After: "c", Limit: 5})
	assert.Contains(t, query, "WHERE author_id = ? AND pub_date > ?")
	assert.Contains(t, query, "LIMIT ?")
	assert.Equal(t, []interface{}{"u1", "c", 5}, args)
}
