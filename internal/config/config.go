// ABOUTME: Player configuration file handling
// ABOUTME: Loads YAML defaults for the output sink, latency, volume, log file and display
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/NotCompsky/playwav/internal/version"
	"github.com/NotCompsky/playwav/pkg/audio/output"
	"github.com/goccy/go-yaml"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds settings that command-line flags can override
type Config struct {
	Sink      string  `yaml:"sink"`
	LatencyMS int     `yaml:"latency_ms"`
	Volume    float64 `yaml:"volume"`
	LogFile   string  `yaml:"log_file"`
	TUI       bool    `yaml:"tui"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Sink:      "auto",
		LatencyMS: int(output.DefaultLatency / time.Millisecond),
		Volume:    1,
	}
}

// DefaultPath is the per-user config file, or "" when there is no config dir
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, version.Product, "config.yaml")
}

// Load reads path over the defaults. An empty path means DefaultPath, which
// may be missing; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("unable to open config: %w", err)
	}
	defer f.Close()

	if _, err := cfg.ReadFrom(f); err != nil {
		return cfg, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

var _ io.ReaderFrom = (*Config)(nil)

// ReadFrom decodes YAML from r into cfg; unknown keys are rejected
func (cfg *Config) ReadFrom(r io.Reader) (int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return int64(len(b)), fmt.Errorf("unable to read: %w", err)
	}
	return int64(len(b)), yaml.UnmarshalWithOptions(b, cfg, yaml.DisallowUnknownField())
}

// Validate checks value ranges
func (cfg Config) Validate() error {
	if !output.Valid(cfg.Sink) {
		return fmt.Errorf("%w: unknown sink %q (choose from %v)", ErrInvalid, cfg.Sink, output.Names())
	}
	if cfg.LatencyMS <= 0 {
		return fmt.Errorf("%w: latency_ms must be positive, got %d", ErrInvalid, cfg.LatencyMS)
	}
	if cfg.Volume < 0 {
		return fmt.Errorf("%w: volume must not be negative, got %v", ErrInvalid, cfg.Volume)
	}
	return nil
}

// Latency returns the sink latency as a duration
func (cfg Config) Latency() time.Duration {
	return time.Duration(cfg.LatencyMS) * time.Millisecond
}
