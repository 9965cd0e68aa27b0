// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitwitql/internal/models"
	"minitwitql/internal/store"
)

// Run exercises a fresh store returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("UserLookup", func(t *testing.T) { testUserLookup(t, open(t)) })
	t.Run("MessageLifecycle", func(t *testing.T) { testMessageLifecycle(t, open(t)) })
	t.Run("ListOrderingAndFilters", func(t *testing.T) { testList(t, open(t)) })
	t.Run("CancelledContext", func(t *testing.T) { testCancelled(t, open(t)) })
}

func date(i int) string {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.FormatDate(base.Add(time.Duration(i) * time.Second))
}

func testUserLookup(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := models.User{ID: "u1", Name: "Foo", Email: "foo@example.com", Password: "$2a$10$hash"}
	require.NoError(t, s.Users().Create(ctx, u))

	got, err := s.Users().ByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	got, err = s.Users().ByEmail(ctx, "foo@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	got, err = s.Users().ByEmail(ctx, "Foo@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = s.Users().ByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().ByEmail(ctx, "bar@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testMessageLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	m := models.Message{ID: "m1", Text: "hi", UserID: "u1", Date: date(1), Likes: 3}
	require.NoError(t, s.Messages().Create(ctx, m))

	got, err := s.Messages().ByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, m, got)

	require.NoError(t, s.Messages().Delete(ctx, "m1"))
	_, err = s.Messages().ByID(ctx, "m1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Messages().Delete(ctx, "m1"), store.ErrNotFound)
}

func testList(t *testing.T, s store.Store) {
	ctx := context.Background()
	// insert out of order to check sorting
	for _, i := range []int{4, 1, 7, 3, 6, 2, 5} {
		user := "u1"
		if i%2 == 0 {
			user = "u2"
		}
		m := models.Message{ID: fmt.Sprintf("m%d", i), Text: "t", UserID: user, Date: date(i)}
		require.NoError(t, s.Messages().Create(ctx, m))
	}

	all, err := s.Messages().List(ctx, store.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7"}, ids(all))

	limited, err := s.Messages().List(ctx, store.Query{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(limited))

	after, err := s.Messages().List(ctx, store.Query{After: date(3), Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"m4", "m5", "m6"}, ids(after))

	byUser, err := s.Messages().List(ctx, store.Query{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m3", "m5", "m7"}, ids(byUser))

	byUserAfter, err := s.Messages().List(ctx, store.Query{UserID: "u2", After: date(2), Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"m4", "m6"}, ids(byUserAfter))

	none, err := s.Messages().List(ctx, store.Query{After: date(7)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testCancelled(t *testing.T, s store.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Messages().List(ctx, store.Query{})
	assert.Error(t, err)
	_, err = s.Users().ByID(ctx, "u1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func ids(msgs []models.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}
