package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/jfelder/twenty48/game/engine"
	"github.com/jfelder/twenty48/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// configExtensions lists the supported config file extensions in lookup
// order.
var configExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles game configuration loading and caching. Config files
// live in a single directory and may be JSON or YAML; the file name
// without extension is the config ID.
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager rooted at configDir.
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	m.loadDefaultConfig()
	return m, nil
}

// loadDefaultConfig prefers a "default" config file and falls back to the
// engine's built-in classic ruleset.
func (m *Manager) loadDefaultConfig() {
	if config, err := m.LoadConfig("default"); err == nil {
		m.defaultConfig = config
		return
	}
	m.defaultConfig = engine.DefaultConfig()
}

// LoadConfig loads a configuration by ID, consulting the cache first.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty config name", ErrInvalidConfig)
	}

	m.mu.RLock()
	cached, ok := m.configs[name]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	path, err := m.resolvePath(name)
	if err != nil {
		return nil, err
	}

	config, err := parseConfigFile(path)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return config, nil
}

// resolvePath finds the config file for an ID, trying each supported
// extension. A name that already carries an extension is used as-is.
func (m *Manager) resolvePath(name string) (string, error) {
	if ext := filepath.Ext(name); ext != "" {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
	}

	for _, ext := range configExtensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
}

// parseConfigFile reads and validates a single config file, dispatching on
// the file extension.
func parseConfigFile(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var config engine.GameConfig
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	}

	config.ApplyDefaults()
	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	return &config, nil
}

// ListConfigs returns summaries of every config file in the directory,
// sorted by config ID.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var infos []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		supported := false
		for _, e := range configExtensions {
			if ext == e {
				supported = true
				break
			}
		}
		if !supported {
			continue
		}

		config, err := parseConfigFile(filepath.Join(m.configDir, entry.Name()))
		if err != nil {
			// Broken files are skipped, not fatal; validate covers them.
			continue
		}

		infos = append(infos, &service.ConfigInfo{
			Filename:      entry.Name(),
			ConfigID:      strings.TrimSuffix(entry.Name(), ext),
			Name:          config.Name,
			Description:   config.Description,
			SpawnValues:   config.SpawnValues,
			StartingTiles: config.StartingTiles,
			WinningValue:  config.WinningValue,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ConfigID < infos[j].ConfigID })
	return infos, nil
}

// GetDefault returns the default configuration.
func (m *Manager) GetDefault() *engine.GameConfig {
	return m.defaultConfig
}

// SaveConfig validates and writes a configuration as JSON, then refreshes
// the cache entry.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}

	config.ApplyDefaults()
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(m.configDir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}
