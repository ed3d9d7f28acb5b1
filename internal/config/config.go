// Package config loads tada's configuration.
//
// Sources, later ones winning:
//   - built-in defaults
//   - ~/.tada/config.toml
//   - ./tada.toml, or the file passed with -config
//   - TADA_* environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Makepad-fr/tada/internal/model"
)

const (
	appDir          = ".tada"
	userConfigName  = "config.toml"
	projectFileName = "tada.toml"
)

type Config struct {
	Server ServerConfig `toml:"server"`
	Client ClientConfig `toml:"client"`
	Log    LogConfig    `toml:"log"`
	UI     UIConfig     `toml:"ui"`
}

type ServerConfig struct {
	Addr     string `toml:"addr"`
	Store    string `toml:"store"` // "sqlite" | "json"
	DBPath   string `toml:"db_path"`
	JSONPath string `toml:"json_path"`
	// Token, when set, is required as a bearer token on every API call.
	Token string `toml:"token"`
	Mode  string `toml:"mode"` // gin mode: "debug" | "release"
}

type ClientConfig struct {
	URL     string   `toml:"url"`
	Timeout Duration `toml:"timeout"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" | "json"
	File   string `toml:"file"`
}

type UIConfig struct {
	Theme  string `toml:"theme"` // "classic" | "neon" | "mono"
	Filter string `toml:"filter"`
}

// Duration decodes TOML strings like "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Dir returns ~/.tada.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, appDir), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := appDir
	if d, err := Dir(); err == nil {
		dataDir = d
	}
	return &Config{
		Server: ServerConfig{
			Addr:     "127.0.0.1:8787",
			Store:    "sqlite",
			DBPath:   filepath.Join(dataDir, "tada.db"),
			JSONPath: filepath.Join(dataDir, "todos.json"),
			Mode:     "release",
		},
		Client: ClientConfig{
			URL:     "http://127.0.0.1:8787",
			Timeout: Duration{10 * time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		UI: UIConfig{
			Theme:  "classic",
			Filter: string(model.FilterAll),
		},
	}
}

// Load builds the configuration. explicitPath replaces the project file
// lookup and must exist when given.
func Load(explicitPath string) (*Config, error) {
	cfg := Default()

	if dir, err := Dir(); err == nil {
		if err := loadFileIfExists(cfg, filepath.Join(dir, userConfigName)); err != nil {
			return nil, err
		}
	}

	if explicitPath != "" {
		if _, err := toml.DecodeFile(explicitPath, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", explicitPath, err)
		}
	} else if err := loadFileIfExists(cfg, projectFileName); err != nil {
		return nil, err
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFileIfExists(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setString("TADA_ADDR", &cfg.Server.Addr)
	setString("TADA_STORE", &cfg.Server.Store)
	setString("TADA_DB_PATH", &cfg.Server.DBPath)
	setString("TADA_JSON_PATH", &cfg.Server.JSONPath)
	setString("TADA_SERVER_URL", &cfg.Client.URL)
	setString("TADA_LOG_LEVEL", &cfg.Log.Level)
	setString("TADA_LOG_FORMAT", &cfg.Log.Format)
	setString("TADA_THEME", &cfg.UI.Theme)
	// TADA_TOKEN is the client side and belongs to the auth package.
	setString("TADA_SERVER_TOKEN", &cfg.Server.Token)

	if v := strings.TrimSpace(os.Getenv("TADA_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TADA_TIMEOUT: %w", err)
		}
		cfg.Client.Timeout = Duration{d}
	}
	return nil
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Server.Store {
	case "sqlite", "json":
	default:
		return fmt.Errorf("server.store: unknown store %q (want sqlite or json)", c.Server.Store)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode: unknown mode %q", c.Server.Mode)
	}
	if _, err := model.ParseFilter(c.UI.Filter); err != nil {
		return fmt.Errorf("ui.filter: %w", err)
	}
	switch strings.ToLower(c.UI.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("ui.theme: unknown theme %q", c.UI.Theme)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.Client.Timeout.Duration < 0 {
		return errors.New("client.timeout: must not be negative")
	}
	if strings.TrimSpace(c.Client.URL) == "" {
		return errors.New("client.url: must not be empty")
	}
	return nil
}
