package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"minitwitql/internal/config"
	"minitwitql/internal/store/memory"
	"minitwitql/internal/store/sqlite"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	st, err := OpenStore(ctx, config.StoreConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, st)

	st, err = OpenStore(ctx, config.StoreConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "app.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, st)
	require.NoError(t, st.Close())

	_, err = OpenStore(ctx, config.StoreConfig{Driver: "firestore"})
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestNewRegistersAndPages(t *testing.T) {
	cfg := config.Config{
		Server: config.ServerConfig{Addr: "127.0.0.1:0", RequestTimeout: time.Second},
		Auth:   config.AuthConfig{Secret: "s", TokenTTL: time.Hour},
	}
	a, err := New(cfg, memory.New(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	u, err := a.Accounts.Register(ctx, "Ann", "ann@example.com", "pw")
	require.NoError(t, err)
	_, err = a.Timeline.Add(ctx, "hello", u.ID)
	require.NoError(t, err)

	page, err := a.Timeline.ByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, page.Data[0].Date, page.Cursor)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Config{
		Server: config.ServerConfig{Addr: "127.0.0.1:0", RequestTimeout: time.Second},
		Auth:   config.AuthConfig{Secret: "s", TokenTTL: time.Hour},
	}
	a, err := New(cfg, memory.New(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
