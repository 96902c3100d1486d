package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// ErrUnknownBackend is returned for a store_backend other than sqlite or bolt.
var ErrUnknownBackend = errors.New("unknown store backend")

// ChromeConfig configures the real-browser driver.
type ChromeConfig struct {
	Bin      string `yaml:"bin" env:"PETSURF_CHROME_BIN"`
	Headless bool   `yaml:"headless" env:"PETSURF_CHROME_HEADLESS"`
}

// Config holds petsurf user configuration.
type Config struct {
	Theme        string       `yaml:"theme" env:"PETSURF_THEME"`
	Homepage     string       `yaml:"homepage" env:"PETSURF_HOMEPAGE"`
	StoreBackend string       `yaml:"store_backend" env:"PETSURF_STORE_BACKEND"`
	Sites        []string     `yaml:"sites" env:"PETSURF_SITES" envSeparator:","` // hosts the petition script runs on
	CacheSize    int          `yaml:"cache_size" env:"PETSURF_CACHE_SIZE"`
	LogLevel     string       `yaml:"log_level" env:"PETSURF_LOG_LEVEL"`
	UserAgent    string       `yaml:"user_agent" env:"PETSURF_USER_AGENT"`
	DataDir      string       `yaml:"data_dir" env:"PETSURF_DATA_DIR"`
	Chrome       ChromeConfig `yaml:"chrome"`
	path         string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Theme:        "default",
		Homepage:     "https://" + lastvisit.SiteHost + "/",
		StoreBackend: BackendSQLite,
		Sites:        []string{lastvisit.SiteHost},
		CacheSize:    50,
		LogLevel:     "info",
		Chrome: ChromeConfig{
			Headless: false,
		},
	}
}

// LoadConfig loads configuration from the standard config directory, then
// applies PETSURF_* environment overrides. A missing file is written out with
// defaults.
func LoadConfig() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(filepath.Join(dir, "config.yaml"))
}

// LoadConfigFile loads configuration from path.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Save default config, best-effort.
		_ = cfg.Save()
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values that would otherwise fail later.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite, BackendBolt:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.StoreBackend)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	return nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	if c.path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(c.path, data, 0o644)
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// ResolveDataDir returns the configured data directory, or the platform default.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return DataDir()
}

// OpenBackend opens the configured origin-scoped store in dataDir. The
// returned DB is nil for the bolt backend, and callers that keep visits open
// one with OpenDB.
func (c *Config) OpenBackend(dataDir string) (Backend, *DB, error) {
	switch c.StoreBackend {
	case BackendBolt:
		bs, err := OpenBoltStorage(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return bs, nil, nil
	case BackendSQLite, "":
		db, err := OpenDB(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return NewLocalStorage(db), db, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, c.StoreBackend)
	}
}

// DataDir returns the data directory for persistent storage.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}

	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", "petsurf")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			dir = filepath.Join(appData, "petsurf")
		} else {
			dir = filepath.Join(home, ".petsurf")
		}
	default: // Linux, BSD, etc.
		xdgData := os.Getenv("XDG_DATA_HOME")
		if xdgData != "" {
			dir = filepath.Join(xdgData, "petsurf")
		} else {
			dir = filepath.Join(home, ".local", "share", "petsurf")
		}
	}

	return dir, nil
}

// ConfigDir returns the directory holding config.yaml.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}

	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", "petsurf")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			dir = filepath.Join(appData, "petsurf")
		} else {
			dir = filepath.Join(home, ".petsurf")
		}
	default:
		xdgConfig := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfig != "" {
			dir = filepath.Join(xdgConfig, "petsurf")
		} else {
			dir = filepath.Join(home, ".config", "petsurf")
		}
	}

	return dir, nil
}
