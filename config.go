package main

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml"
)

type Config struct {
	Socket   string `toml:"socket"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	Background string `toml:"background"`
	Wallpaper  string `toml:"wallpaper"`

	RepeatRate  int32 `toml:"repeat_rate"`
	RepeatDelay int32 `toml:"repeat_delay"`

	OutputWidth  int32 `toml:"output_width"`
	OutputHeight int32 `toml:"output_height"`
}

func DefaultConfig() *Config {
	return &Config{
		Socket:      "wayland-1",
		LogLevel:    "info",
		RepeatRate:  25,
		RepeatDelay: 600,
	}
}

// LoadConfig reads the TOML config, falling back to defaults when
// the file does not exist. An empty path means the XDG location.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(xdg.ConfigHome, "taki", "config.toml")
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %v: %w", path, err)
	}
	return cfg, nil
}

// BackgroundColor parses the configured "#RRGGBB" or "#RRGGBBAA"
// colour, defaulting to the standard background.
func (cfg *Config) BackgroundColor() color.RGBA {
	c, err := parseColor(cfg.Background)
	if err != nil {
		return ColorBackground
	}
	return c
}

func parseColor(s string) (color.RGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("bad colour %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad colour %q: %w", s, err)
	}
	switch len(s) {
	case 7:
		return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xFF}, nil
	case 9:
		return color.RGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
	}
	return color.RGBA{}, fmt.Errorf("bad colour %q", s)
}
