package mongo

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"minitwitql/internal/store"
	"minitwitql/internal/store/storetest"
)

var testDBSeq atomic.Int64

// openTestStore opens a store on a fresh database at
// MINITWITQL_TEST_MONGO_URI and drops it when t ends.
func openTestStore(t *testing.T) store.Store {
	t.Helper()
	uri := os.Getenv("MINITWITQL_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MINITWITQL_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := fmt.Sprintf("minitwitql_test_%d_%d", time.Now().UnixNano(), testDBSeq.Add(1))
	s, err := Open(ctx, Options{URI: uri, Database: name})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		assert.NoError(t, s.client.Database(name).Drop(ctx))
		assert.NoError(t, s.Close())
	})
	return s
}

func TestMongoStore(t *testing.T) {
	storetest.Run(t, openTestStore)
}

func TestListFilter(t *testing.T) {
	assert.Equal(t, bson.D{}, listFilter(store.Query{Limit: 5}))

	assert.Equal(t,
		bson.D{{Key: "userId", Value: "u1"}},
		listFilter(store.Query{UserID: "u1"}))

	assert.Equal(t,
		bson.D{
			{Key: "userId", Value: "u1"},
			{Key: "date", Value: bson.D{{Key: "$gt", Value: "2024-01-01T00:00:00.000000000Z"}}},
		},
		listFilter(store.Query{UserID: "u1", After: "2024-01-01T00:00:00.000000000Z"}))
}

func TestListSortIsAscendingByDate(t *testing.T) {
	s := listSort()
	assert.Equal(t, "date", s[0].Key)
	assert.Equal(t, 1, s[0].Value)
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{Messages: "tweets"}
	o.withDefaults()
	assert.Equal(t, "minitwitql", o.Database)
	assert.Equal(t, "users", o.Users)
	assert.Equal(t, "tweets", o.Messages)
}
