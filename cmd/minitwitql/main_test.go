package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minitwitql/internal/models"
	"minitwitql/internal/store/sqlite"
	"minitwitql/internal/timeline"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func seed(t *testing.T, n int) (string, []models.Message) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.db")
	st, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	defer st.Close()

	tl := timeline.New(st.Messages(), st.Users(), nil)
	var msgs []models.Message
	for i := 0; i < n; i++ {
		user := "u1"
		if i%2 == 1 {
			user = "u2"
		}
		m, err := tl.Add(context.Background(), "msg", user)
		require.NoError(t, err)
		msgs = append(msgs, m)
	}
	return path, msgs
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "minitwitql dev\n", out)
}

func TestMessagesListWalksAllPages(t *testing.T) {
	path, msgs := seed(t, 12)

	out, _, err := run(t, "messages", "list", "--env-file=", "--store=sqlite", "--sqlite-path="+path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(msgs))
	for i, m := range msgs {
		assert.True(t, strings.HasPrefix(lines[i], m.ID+","), lines[i])
	}

	out, _, err = run(t, "messages", "list", "--user=u2", "--env-file=", "--store=sqlite", "--sqlite-path="+path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 6)
}

func TestMessagesRemove(t *testing.T) {
	path, msgs := seed(t, 2)

	out, errOut, err := run(t, "messages", "remove", msgs[0].ID, "missing",
		"--env-file=", "--store=sqlite", "--sqlite-path="+path)
	assert.ErrorContains(t, err, "1 of 2 messages not removed")
	assert.Contains(t, out, "Removed message: "+msgs[0].ID)
	assert.Contains(t, errOut, "Can't remove missing")

	out, _, err = run(t, "messages", "list", "--env-file=", "--store=sqlite", "--sqlite-path="+path)
	require.NoError(t, err)
	assert.NotContains(t, out, msgs[0].ID)
	assert.Contains(t, out, msgs[1].ID)
}

func TestServeRequiresSecret(t *testing.T) {
	t.Setenv("MINITWITQL_AUTH_SECRET", "")
	_, _, err := run(t, "serve", "--env-file=")
	assert.ErrorContains(t, err, "auth.secret is required")
}
