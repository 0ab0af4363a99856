package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/seqtrain/internal/config"
	"github.com/verte-zerg/seqtrain/internal/input"
	"github.com/verte-zerg/seqtrain/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trainer.TimeoutTicks != nil || cfg.Input.Backend != nil {
		t.Fatalf("expected every template value commented out")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{
		Backend:      backendTUI,
		TickRate:     60,
		TimeoutTicks: 15,
		ConfirmKey:   input.KeyReturn,
		ResetKey:     input.KeyBackspace,
	}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*model.Config){
		"backend":  func(c *model.Config) { c.Backend = "gui" },
		"tickrate": func(c *model.Config) { c.TickRate = 0 },
		"timeout":  func(c *model.Config) { c.TimeoutTicks = 0 },
		"keys":     func(c *model.Config) { c.ResetKey = c.ConfirmKey },
		"loglevel": func(c *model.Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		cfg := valid
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestValidateConfigLatchNeedsDevices(t *testing.T) {
	cfg := model.Config{
		Backend:      backendTUI,
		TickRate:     60,
		TimeoutTicks: 15,
		LatchDevice:  true,
		ConfirmKey:   input.KeyReturn,
		ResetKey:     input.KeyBackspace,
	}
	err := validateConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "--latch-device") {
		t.Fatalf("expected latch error for tui without midi, got %v", err)
	}

	cfg.MIDI = true
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("expected latch with midi to be valid, got %v", err)
	}

	cfg.MIDI = false
	cfg.Backend = backendSDL
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("expected latch with sdl to be valid, got %v", err)
	}
}

func TestBuildConfigParsesKeys(t *testing.T) {
	trainConfirmKey = "space"
	trainResetKey = "42"
	trainBackend = " SDL "
	t.Cleanup(func() {
		trainConfirmKey = defaultConfirmKey
		trainResetKey = defaultResetKey
		trainBackend = defaultBackend
	})

	cfg, err := buildConfig()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if cfg.ConfirmKey != input.KeySpace || cfg.ResetKey != input.KeyBackspace || cfg.Backend != backendSDL {
		t.Fatalf("unexpected config %+v", cfg)
	}

	trainConfirmKey = "nope"
	if _, err := buildConfig(); err == nil || !strings.Contains(err.Error(), "--confirm-key") {
		t.Fatalf("expected confirm key error, got %v", err)
	}
}

func TestIndexedLines(t *testing.T) {
	if got := indexedLines(nil); len(got) != 1 || got[0] != "  (none)" {
		t.Fatalf("unexpected empty listing %v", got)
	}
	got := indexedLines([]string{"pad", "keys"})
	if got[1] != "  1: keys" {
		t.Fatalf("unexpected listing %v", got)
	}
}

func TestResolveText(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dt, err := resolveText("", defaultLang)
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if dt.Intro == "" {
		t.Fatalf("expected built-in text")
	}

	path := config.DefaultTextPath("fr")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("Bonjour\n\\Configuration\n\\Pratique\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dt, err = resolveText("", "fr")
	if err != nil {
		t.Fatalf("resolve fr: %v", err)
	}
	if dt.Intro != "Bonjour\n" || dt.Practice != "Pratique\n" {
		t.Fatalf("unexpected text %+v", dt)
	}
}
