// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Trainer TrainerConfig `toml:"trainer"`
	Input   InputConfig   `toml:"input"`
	Log     LogConfig     `toml:"log"`
}

// TrainerConfig maps trainer-related settings.
type TrainerConfig struct {
	TimeoutTicks *int    `toml:"timeout-ticks"`
	TickRate     *int    `toml:"tick-rate"`
	LatchDevice  *bool   `toml:"latch-device"`
	Text         *string `toml:"text"`
}

// InputConfig maps device and key settings.
type InputConfig struct {
	Backend    *string `toml:"backend"`
	ConfirmKey *string `toml:"confirm-key"`
	ResetKey   *string `toml:"reset-key"`
	MIDI       *bool   `toml:"midi"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
	File   *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
