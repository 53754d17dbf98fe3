package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jfelder/twenty48/game/engine"
	"github.com/jfelder/twenty48/game/service"
)

// FilePersistence stores sessions as JSON files, one per session, in a
// single directory.
type FilePersistence struct {
	dir     string
	configs service.ConfigManager
}

// NewFilePersistence creates a file-based session store rooted at dir,
// creating the directory if needed. The config manager resolves each
// session's ruleset on load.
func NewFilePersistence(dir string, configs service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FilePersistence{dir: dir, configs: configs}, nil
}

func (p *FilePersistence) sessionPath(id string) string {
	return filepath.Join(p.dir, id+".json")
}

// SaveSession writes the session snapshot to disk.
func (p *FilePersistence) SaveSession(session *service.Session) error {
	data := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     session.Config.Name,
		GameState:      session.Engine.GetState(),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", session.ID, err)
	}

	if err := os.WriteFile(p.sessionPath(session.ID), encoded, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadSession reads a session snapshot from disk and rebuilds a live
// session around a fresh engine.
func (p *FilePersistence) LoadSession(id string) (*service.Session, error) {
	raw, err := os.ReadFile(p.sessionPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", id, err)
	}
	if data.GameState == nil {
		return nil, fmt.Errorf("session file %s has no game state", id)
	}

	config := p.resolveConfig(data.ConfigName)
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine for session %s: %w", id, err)
	}
	if err := eng.SetState(data.GameState); err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", id, err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// resolveConfig maps a persisted config name back to a configuration. The
// name is tried both verbatim and lowercased as a config ID; unknown names
// fall back to the default so old sessions keep loading.
func (p *FilePersistence) resolveConfig(name string) *engine.GameConfig {
	if p.configs == nil {
		return engine.DefaultConfig()
	}
	if config, err := p.configs.LoadConfig(name); err == nil {
		return config
	}
	if config, err := p.configs.LoadConfig(strings.ToLower(name)); err == nil {
		return config
	}
	return p.configs.GetDefault()
}

// DeleteSession removes the session file.
func (p *FilePersistence) DeleteSession(id string) error {
	if err := os.Remove(p.sessionPath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// Exists reports whether a session file is present on disk.
func (p *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(p.sessionPath(id))
	return err == nil
}

// ListSessions returns the IDs of all persisted sessions.
func (p *FilePersistence) ListSessions() ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return ids, nil
}
