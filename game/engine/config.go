package engine

import "fmt"

// GameConfig defines the rules for a game. Configs are loaded from JSON or
// YAML files by the config manager; zero-valued fields are filled in with
// defaults before validation.
type GameConfig struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	SpawnValues   []int  `json:"spawn_values" yaml:"spawn_values"`
	StartingTiles int    `json:"starting_tiles" yaml:"starting_tiles"`
	WinningValue  int    `json:"winning_value" yaml:"winning_value"`
}

// DefaultConfig returns the classic ruleset: two starting tiles, spawns of
// 2 or 4, win at 2048.
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:          "Classic",
		Description:   "The classic 2048 rules on a 4x4 board",
		SpawnValues:   append([]int(nil), DefaultSpawnValues...),
		StartingTiles: DefaultStartingTiles,
		WinningValue:  DefaultWinningValue,
	}
}

// ApplyDefaults fills unset optional fields with their default values.
func (c *GameConfig) ApplyDefaults() {
	if len(c.SpawnValues) == 0 {
		c.SpawnValues = append([]int(nil), DefaultSpawnValues...)
	}
	if c.StartingTiles == 0 {
		c.StartingTiles = DefaultStartingTiles
	}
	if c.WinningValue == 0 {
		c.WinningValue = DefaultWinningValue
	}
}

// ValidateGameConfig validates a game configuration for correctness.
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if len(config.SpawnValues) == 0 {
		return fmt.Errorf("config validation: spawn_values must not be empty")
	}
	for _, v := range config.SpawnValues {
		if !isPowerOfTwo(v) {
			return fmt.Errorf("config validation: spawn value %d is not a power of two >= 2", v)
		}
	}

	if config.StartingTiles < MinStartingTiles || config.StartingTiles > MaxStartingTiles {
		return fmt.Errorf("config validation: starting_tiles must be between %d and %d, got %d",
			MinStartingTiles, MaxStartingTiles, config.StartingTiles)
	}

	if !isPowerOfTwo(config.WinningValue) || config.WinningValue < MinWinningValue {
		return fmt.Errorf("config validation: winning_value must be a power of two >= %d, got %d",
			MinWinningValue, config.WinningValue)
	}
	for _, v := range config.SpawnValues {
		if v >= config.WinningValue {
			return fmt.Errorf("config validation: spawn value %d must be below winning_value %d",
				v, config.WinningValue)
		}
	}

	return nil
}

// isPowerOfTwo reports whether n is a power of two no smaller than 2.
func isPowerOfTwo(n int) bool {
	return n >= 2 && n&(n-1) == 0
}
