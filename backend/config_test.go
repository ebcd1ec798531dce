package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inarow/inarow/engine"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backend.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfigFile(t, `
log_level: debug
ai_max_depth: 3
heuristics:
  open_two: 11
`)
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if config.LogLevel != "debug" || config.AiMaxDepth != 3 {
		t.Fatalf("expected file values, got %+v", config)
	}
	if config.Heuristics.OpenTwo != 11 {
		t.Fatalf("expected open_two 11, got %d", config.Heuristics.OpenTwo)
	}
	defaults := engine.DefaultShapeWeights()
	if config.Heuristics.OpenFour != defaults.OpenFour || config.TickIntervalMs != DefaultConfig().TickIntervalMs {
		t.Fatalf("expected missing keys to keep defaults, got %+v", config)
	}
}

func TestLoadConfigRejectsBadWeights(t *testing.T) {
	path := writeConfigFile(t, `
heuristics:
  sleeping_two: 50
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected tier order violation to be rejected")
	}
}

func TestLoadConfigReportsMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestGameSettingsValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*GameSettings)
		ok   bool
	}{
		{"defaults", func(*GameSettings) {}, true},
		{"tic-tac-toe", func(s *GameSettings) { s.Rows, s.Cols, s.WinLength = 3, 3, 3 }, true},
		{"win along the long side", func(s *GameSettings) { s.Rows, s.Cols, s.WinLength = 1, 9, 5 }, true},
		{"win too long", func(s *GameSettings) { s.Rows, s.Cols, s.WinLength = 3, 4, 5 }, false},
		{"zero rows", func(s *GameSettings) { s.Rows = 0 }, false},
		{"too wide", func(s *GameSettings) { s.Cols = engine.MaxDimension + 1 }, false},
		{"bad difficulty", func(s *GameSettings) { s.Difficulty = -1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := DefaultGameSettings()
			tc.edit(&settings)
			err := settings.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid settings, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected invalid settings")
			}
		})
	}
}
