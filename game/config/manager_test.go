package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jfelder/twenty48/game/engine"
)

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestNewManagerMissingDir(t *testing.T) {
	if _, err := NewManager("/nonexistent/config/dir"); err == nil {
		t.Error("Expected error for missing config directory")
	}
}

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "doubles.json", `{
		"name": "Doubles",
		"description": "Only spawns twos",
		"spawn_values": [2],
		"starting_tiles": 3,
		"winning_value": 4096
	}`)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	config, err := m.LoadConfig("doubles")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Name != "Doubles" {
		t.Errorf("Expected name Doubles, got %q", config.Name)
	}
	if config.StartingTiles != 3 {
		t.Errorf("Expected 3 starting tiles, got %d", config.StartingTiles)
	}
	if config.WinningValue != 4096 {
		t.Errorf("Expected winning value 4096, got %d", config.WinningValue)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "fours.yaml", `
name: Fours
description: Spawns fours too
spawn_values: [2, 4, 4]
`)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	config, err := m.LoadConfig("fours")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Name != "Fours" {
		t.Errorf("Expected name Fours, got %q", config.Name)
	}
	// Omitted fields fall back to defaults.
	if config.StartingTiles != engine.DefaultStartingTiles {
		t.Errorf("Expected default starting tiles, got %d", config.StartingTiles)
	}
	if config.WinningValue != engine.DefaultWinningValue {
		t.Errorf("Expected default winning value, got %d", config.WinningValue)
	}
}

func TestLoadConfigNotFound(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	_, err = m.LoadConfig("missing")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "broken.json", `{"name": "Broken", "description": "x", "spawn_values": [3]}`)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if _, err := m.LoadConfig("broken"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestDefaultFallsBackToClassic(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	def := m.GetDefault()
	if def.Name != "Classic" {
		t.Errorf("Expected built-in Classic default, got %q", def.Name)
	}
}

func TestDefaultFromFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "default.json", `{
		"name": "House Rules",
		"description": "Custom default",
		"winning_value": 1024
	}`)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	def := m.GetDefault()
	if def.Name != "House Rules" {
		t.Errorf("Expected default from file, got %q", def.Name)
	}
	if def.WinningValue != 1024 {
		t.Errorf("Expected winning value 1024, got %d", def.WinningValue)
	}
}

func TestListConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "beta.json", `{"name": "Beta", "description": "b"}`)
	writeConfigFile(t, dir, "alpha.yaml", "name: Alpha\ndescription: a\n")
	writeConfigFile(t, dir, "notes.txt", "not a config")
	writeConfigFile(t, dir, "bad.json", `{"name": "", "description": ""}`)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	infos, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(infos))
	}
	if infos[0].ConfigID != "alpha" || infos[1].ConfigID != "beta" {
		t.Errorf("Expected sorted IDs [alpha beta], got [%s %s]",
			infos[0].ConfigID, infos[1].ConfigID)
	}
	if infos[0].Filename != "alpha.yaml" {
		t.Errorf("Expected filename alpha.yaml, got %s", infos[0].Filename)
	}
}

func TestSaveConfig(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	config := &engine.GameConfig{Name: "Saved", Description: "Round trip"}
	if err := m.SaveConfig("saved", config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := m.LoadConfig("saved")
	if err != nil {
		t.Fatalf("LoadConfig after save failed: %v", err)
	}
	if loaded.Name != "Saved" {
		t.Errorf("Expected saved config back, got %q", loaded.Name)
	}

	if err := m.SaveConfig("../escape", config); err == nil {
		t.Error("Expected error for path-traversing name")
	}
	if err := m.SaveConfig("bad", &engine.GameConfig{}); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestCacheReturnsSameConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "cached.json", `{"name": "Cached", "description": "c"}`)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	first, err := m.LoadConfig("cached")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	second, err := m.LoadConfig("cached")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if first != second {
		t.Error("Expected cached pointer on repeat load")
	}
}
