// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Uses temporary YAML files
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must be valid: %v", err)
	}
	if cfg.Latency() != 100*time.Millisecond {
		t.Errorf("expected 100ms latency, got %v", cfg.Latency())
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "sink: pulse\nlatency_ms: 40\nvolume: 0.5\nlog_file: /tmp/playwav.log\ntui: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Config{Sink: "pulse", LatencyMS: 40, Volume: 0.5, LogFile: "/tmp/playwav.log", TUI: true}
	if cfg != want {
		t.Errorf("expected %+v, got %+v", want, cfg)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, "volume: 0.8\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sink != "auto" || cfg.LatencyMS != 100 || cfg.Volume != 0.8 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid bool
	}{
		{"unknown sink", "sink: jack\n", true},
		{"zero latency", "latency_ms: 0\n", true},
		{"negative volume", "volume: -1\n", true},
		{"unknown key", "speed: 2\n", false},
		{"not yaml", "sink: [\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.invalid != errors.Is(err, ErrInvalid) {
				t.Errorf("unexpected error kind: %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("an explicit path must exist")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default config must not fail: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if p := DefaultPath(); p != "" && !strings.HasPrefix(p, dir) {
		t.Errorf("expected path under %s, got %s", dir, p)
	}
}
