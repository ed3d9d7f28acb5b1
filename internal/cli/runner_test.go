package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/server"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/ui"
)

type harness struct {
	cfg    *config.Config
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T, serverToken string) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(auth.EnvToken, "")
	require.NoError(t, ui.SetTheme("mono"))
	t.Cleanup(func() { _ = ui.SetTheme("classic") })

	store, err := jsonstore.Open(t.TempDir())
	require.NoError(t, err)
	ts := httptest.NewServer(server.New(store, server.Options{Token: serverToken, Mode: gin.TestMode}).Handler())
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.Client.URL = ts.URL
	return &harness{cfg: cfg}
}

func (h *harness) run(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return Run(context.Background(), args, Options{Config: h.cfg, Stdout: &h.stdout, Stderr: &h.stderr})
}

func (h *harness) runGrouped(args ...string) int {
	h.stdout.Reset()
	h.stderr.Reset()
	return Run(context.Background(), args, Options{Config: h.cfg, Group: true, Stdout: &h.stdout, Stderr: &h.stderr})
}

func TestUsageExitCodes(t *testing.T) {
	h := newHarness(t, "")

	cases := [][]string{
		{},
		{"bogus"},
		{"add"},
		{"add", "   "},
		{"done"},
		{"done", "abc"},
		{"rm", "0"},
		{"ls", "archived"},
		{"ls", "a", "b"},
		{"serve", "now"},
		{"auth"},
		{"auth", "login"},
		{"auth", "whoami"},
	}
	for _, args := range cases {
		assert.Equal(t, ExitUsage, h.run(args...), "args %q", args)
	}

	assert.Equal(t, ExitOK, h.run("help"))
	assert.Contains(t, h.stdout.String(), "Usage:")
}

func TestAddListToggleRemove(t *testing.T) {
	h := newHarness(t, "")

	require.Equal(t, ExitOK, h.run("add", "Buy", "milk"), h.stderr.String())
	assert.Contains(t, h.stdout.String(), "added #1 Buy milk")
	require.Equal(t, ExitOK, h.run("add", "Walk dog"))

	require.Equal(t, ExitOK, h.run("ls"))
	out := h.stdout.String()
	assert.Contains(t, out, "[ ] #1")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "2 pending")

	require.Equal(t, ExitOK, h.run("done", "#1"))
	assert.Contains(t, h.stdout.String(), "completed #1")

	require.Equal(t, ExitOK, h.run("ls", "pending"))
	out = h.stdout.String()
	assert.NotContains(t, out, "#1 ")
	assert.Contains(t, out, "[ ] #2")
	assert.Contains(t, out, "Walk dog")

	require.Equal(t, ExitOK, h.runGrouped("ls"))
	out = h.stdout.String()
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "Completed")
	assert.Contains(t, out, "[x] #1")
	assert.Less(t, bytes.Index(h.stdout.Bytes(), []byte("Walk dog")), bytes.Index(h.stdout.Bytes(), []byte("Buy milk")))

	require.Equal(t, ExitOK, h.run("done", "1"))
	assert.Contains(t, h.stdout.String(), "reopened #1")

	require.Equal(t, ExitOK, h.run("rm", "1"))
	assert.Contains(t, h.stdout.String(), "removed #1")

	assert.Equal(t, ExitError, h.run("rm", "1"))
	assert.Contains(t, h.stderr.String(), "no such todo")
}

func TestUnreachableService(t *testing.T) {
	h := newHarness(t, "")
	h.cfg.Client.URL = "http://127.0.0.1:1"

	assert.Equal(t, ExitError, h.run("ls"))
	assert.Contains(t, h.stderr.String(), "cannot reach the todo service")
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t, "s3cret")

	assert.Equal(t, ExitError, h.run("ls"))
	assert.Contains(t, h.stderr.String(), "not authorized")

	require.Equal(t, ExitOK, h.run("auth", "status"))
	assert.Contains(t, h.stdout.String(), "not logged in")

	require.Equal(t, ExitOK, h.run("auth", "login", "s3cret"))
	require.Equal(t, ExitOK, h.run("auth", "status"))
	assert.Contains(t, h.stdout.String(), "**cret (from file)")

	assert.Equal(t, ExitOK, h.run("ls"))

	require.Equal(t, ExitOK, h.run("auth", "logout"))
	assert.Equal(t, ExitError, h.run("ls"))
}

func TestServeStopsWithContext(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.Mode = gin.TestMode
	cfg.Server.DBPath = filepath.Join(t.TempDir(), "tada.db")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := Run(ctx, []string{"serve"}, Options{Config: cfg, Stdout: &stdout, Stderr: &stderr})
	assert.Equal(t, ExitOK, code, stderr.String())

	_, err := os.Stat(cfg.Server.DBPath)
	assert.NoError(t, err)
}
