package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the server configuration file looked up by FindRoot.
const ConfigFileName = "receipt.yaml"

// Config is the contents of receipt.yaml. Durations use Go syntax ("10s").
type Config struct {
	Addr             string        `yaml:"addr"`
	Data             string        `yaml:"data"`
	LogLevel         string        `yaml:"log_level"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	BonusProbability float64       `yaml:"bonus_probability"`
	LockTimeout      time.Duration `yaml:"lock_timeout"`
	StaleLockAfter   time.Duration `yaml:"stale_lock_after"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		Addr:             ":8080",
		Data:             ".",
		LogLevel:         "info",
		PollInterval:     10 * time.Second,
		BonusProbability: 0.3,
		LockTimeout:      5 * time.Second,
		StaleLockAfter:   30 * time.Second,
	}
}

// LoadConfig reads path over the defaults. A relative data directory is
// resolved against the directory of the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.Data != "" && !filepath.IsAbs(cfg.Data) {
		cfg.Data = filepath.Join(filepath.Dir(path), cfg.Data)
	}
	cfg.Source = path
	return cfg, nil
}

// DiscoverConfig finds the project root above startDir and loads its
// receipt.yaml. Without a root, or with a root marked only by .receipt,
// it returns the defaults.
func DiscoverConfig(startDir string) (Config, error) {
	root, err := FindRoot(startDir)
	if errors.Is(err, ErrRootNotFound) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return DefaultConfig(), err
	}

	path := filepath.Join(root, ConfigFileName)
	if !hasFile(root, ConfigFileName) {
		cfg := DefaultConfig()
		cfg.Data = root
		return cfg, nil
	}
	return LoadConfig(path)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.BonusProbability < 0 || c.BonusProbability > 1 {
		return fmt.Errorf("bonus_probability must be between 0 and 1, got %v", c.BonusProbability)
	}
	if c.PollInterval < 0 || c.LockTimeout < 0 {
		return errors.New("durations must not be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Options translates the file settings into service options.
func (c Config) Options() []Option {
	return []Option{
		WithBonusProbability(c.BonusProbability),
		WithLockTimeout(c.LockTimeout),
		WithStaleLockAfter(c.StaleLockAfter),
	}
}

// ParseLevel maps debug|info|warn|error to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}
