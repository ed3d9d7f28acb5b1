package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at empty temp dirs so the
// developer's own config files never leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(wd); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return wd
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Server.Store)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout.Duration)
	assert.Equal(t, "all", cfg.UI.Filter)
}

func TestLoadProjectFile(t *testing.T) {
	wd := isolate(t)
	content := `
[server]
addr = "0.0.0.0:9000"
store = "json"

[client]
url = "http://example.test:9000"
timeout = "2s"

[ui]
theme = "neon"
filter = "pending"
`
	require.NoError(t, os.WriteFile(filepath.Join(wd, projectFileName), []byte(content), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Server.Store)
	assert.Equal(t, 2*time.Second, cfg.Client.Timeout.Duration)
	assert.Equal(t, "neon", cfg.UI.Theme)
	assert.Equal(t, "pending", cfg.UI.Filter)
	// untouched keys keep defaults
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	wd := isolate(t)
	path := filepath.Join(wd, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644))
	t.Setenv("TADA_LOG_LEVEL", "debug")
	t.Setenv("TADA_TIMEOUT", "250ms")
	t.Setenv("TADA_SERVER_URL", "http://override.test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Client.Timeout.Duration)
	assert.Equal(t, "http://override.test", cfg.Client.URL)
}

func TestServerTokenFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TADA_TOKEN", "client-side")
	t.Setenv("TADA_SERVER_TOKEN", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.Token)

	t.Setenv("TADA_SERVER_TOKEN", "s3cret")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Server.Token)
}

func TestExplicitPathMustExist(t *testing.T) {
	isolate(t)
	_, err := Load("does-not-exist.toml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"store", func(c *Config) { c.Server.Store = "postgres" }},
		{"filter", func(c *Config) { c.UI.Filter = "archived" }},
		{"theme", func(c *Config) { c.UI.Theme = "rainbow" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"timeout", func(c *Config) { c.Client.Timeout = Duration{-time.Second} }},
		{"url", func(c *Config) { c.Client.URL = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestBadTimeoutInFile(t *testing.T) {
	wd := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(wd, projectFileName), []byte("[client]\ntimeout = \"soon\"\n"), 0o644))
	_, err := Load("")
	assert.Error(t, err)
}
