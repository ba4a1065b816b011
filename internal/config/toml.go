// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game  GameConfig  `toml:"game"`
	Theme ThemeConfig `toml:"theme"`
	Log   LogConfig   `toml:"log"`
}

// GameConfig maps game-related settings.
type GameConfig struct {
	Mode      *string `toml:"mode"`
	Seed      *int64  `toml:"seed"`
	Countdown *int    `toml:"countdown"`
	FireKey   *string `toml:"fire-key"`
}

// ThemeConfig maps colors as hex strings or ANSI color numbers.
type ThemeConfig struct {
	Go      *string `toml:"go"`
	NoGo    *string `toml:"nogo"`
	Shooter *string `toml:"shooter"`
	Border  *string `toml:"border"`
	Hint    *string `toml:"hint"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
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

// Value returns *p, or "" when p is nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
