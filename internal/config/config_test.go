package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trainer.TimeoutTicks != nil || cfg.Input.Backend != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[trainer]
timeout-ticks = 20
latch-device = true

[input]
backend = "sdl"
reset-key = "Delete"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trainer.TimeoutTicks == nil || *cfg.Trainer.TimeoutTicks != 20 {
		t.Fatalf("unexpected timeout: %v", cfg.Trainer.TimeoutTicks)
	}
	if cfg.Trainer.LatchDevice == nil || !*cfg.Trainer.LatchDevice {
		t.Fatalf("expected latch-device true")
	}
	if cfg.Input.Backend == nil || *cfg.Input.Backend != "sdl" {
		t.Fatalf("unexpected backend: %v", cfg.Input.Backend)
	}
	if cfg.Input.ResetKey == nil || *cfg.Input.ResetKey != "Delete" {
		t.Fatalf("unexpected reset key: %v", cfg.Input.ResetKey)
	}
	if cfg.Trainer.TickRate != nil {
		t.Fatalf("expected unset tick rate to stay nil")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[trainer]\ntimeout = 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "trainer.timeout") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "seqtrain", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "seqtrain", "seqtrain.db") {
		t.Fatalf("unexpected db path %s", got)
	}
	if got := DefaultTextPath("fr"); got != filepath.Join("/cfg", "seqtrain", "text", "fr.txt") {
		t.Fatalf("unexpected text path %s", got)
	}
}
