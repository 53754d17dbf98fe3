package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}
}

func TestGetConfigDirDefault(t *testing.T) {
	original := os.Getenv("CONFIG_DIR")
	defer os.Setenv("CONFIG_DIR", original)

	os.Setenv("CONFIG_DIR", "")
	if got := getConfigDirDefault(); got != "configs" {
		t.Errorf("Expected configs default, got %q", got)
	}

	os.Setenv("CONFIG_DIR", "/etc/twenty48")
	if got := getConfigDirDefault(); got != "/etc/twenty48" {
		t.Errorf("Expected env override, got %q", got)
	}
}

func TestInitializeServices(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "default.json"),
		[]byte(`{"name": "Classic", "description": "Standard rules"}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	originalConfigDir := *configDir
	originalSessionsDir := *sessionsDir
	originalDBPath := *dbPath
	*configDir = dir
	*sessionsDir = filepath.Join(dir, "sessions")
	*dbPath = filepath.Join(dir, "scores.db")
	defer func() {
		*configDir = originalConfigDir
		*sessionsDir = originalSessionsDir
		*dbPath = originalDBPath
	}()

	svcs, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svcs.shutdown()

	if svcs.game == nil {
		t.Fatal("Expected game service to be initialized")
	}
	if svcs.scores == nil {
		t.Error("Expected leaderboard store to be initialized")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "/non/existent/path"
	defer func() { *configDir = originalConfigDir }()

	_, err := initializeServices()
	if err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}
}
