package main

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Socket != "wayland-1" {
		t.Errorf("socket = %q", cfg.Socket)
	}
	if cfg.RepeatRate != 25 || cfg.RepeatDelay != 600 {
		t.Errorf("repeat = (%v, %v)", cfg.RepeatRate, cfg.RepeatDelay)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
socket = "test-0"
log_level = "debug"
background = "#336699"
output_width = 800
output_height = 600
`), 0o644)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Socket != "test-0" || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.OutputWidth != 800 || cfg.OutputHeight != 600 {
		t.Errorf("output = %vx%v", cfg.OutputWidth, cfg.OutputHeight)
	}
	if got := cfg.BackgroundColor(); got != (color.RGBA{0x33, 0x66, 0x99, 0xFF}) {
		t.Errorf("background = %+v", got)
	}
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("socket = ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("garbage config accepted")
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#1A1A1A", color.RGBA{0x1A, 0x1A, 0x1A, 0xFF}, true},
		{"#1A1A1AFF", color.RGBA{0x1A, 0x1A, 0x1A, 0xFF}, true},
		{"#FF000080", color.RGBA{0xFF, 0x00, 0x00, 0x80}, true},
		{"", color.RGBA{}, false},
		{"1A1A1A", color.RGBA{}, false},
		{"#XYZ", color.RGBA{}, false},
		{"#12345", color.RGBA{}, false},
	}
	for _, c := range cases {
		got, err := parseColor(c.in)
		if c.ok != (err == nil) {
			t.Errorf("parseColor(%q) err = %v", c.in, err)
			continue
		}
		if c.ok && got != c.want {
			t.Errorf("parseColor(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestObjectTable(t *testing.T) {
	table := make(objectTable)

	obj := &Object{ID: 3, Iface: 1, Version: 1}
	if err := table.add(obj); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := table.add(obj); err == nil {
		t.Error("duplicate id accepted")
	}
	if err := table.add(&Object{ID: 0}); err == nil {
		t.Error("id 0 accepted")
	}

	if _, err := table.lookup(3, 1); err != nil {
		t.Errorf("lookup: %v", err)
	}
	if _, err := table.lookup(3, 2); err == nil {
		t.Error("interface mismatch accepted")
	}
	if _, err := table.lookup(4, 1); err == nil {
		t.Error("unknown id accepted")
	}

	table.remove(3)
	if _, err := table.lookup(3, 1); err == nil {
		t.Error("lookup after remove succeeded")
	}
	table.remove(3) // idempotent
}
