// Command validate provides a small CLI that validates game configuration
// files (JSON or YAML) in a configs directory. It checks:
//   - file structure and required fields
//   - spawn values: powers of two, at least 2, below the winning value
//   - starting tile count within board capacity
//   - winning value: a power of two of at least 8
//
// Unlike the engine's load-time validation it reports every problem in a
// file, not just the first.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the schema for a game configuration file.
type Config struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	SpawnValues   []int  `json:"spawn_values" yaml:"spawn_values"`
	StartingTiles int    `json:"starting_tiles" yaml:"starting_tiles"`
	WinningValue  int    `json:"winning_value" yaml:"winning_value"`
}

// Board capacity and defaults for fields a config may omit.
const (
	maxStartingTiles    = 16
	defaultStartTiles   = 2
	defaultWinningValue = 2048
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func isPowerOfTwo(n int) bool {
	return n >= 2 && n&(n-1) == 0
}

// validateConfig loads and validates a single configuration file,
// dispatching on the extension for the parser.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config Config
	switch filepath.Ext(filePath) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid YAML: %v", err))
			return result
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
			return result
		}
	}

	if config.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing required field: name")
	}
	if config.Description == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing required field: description")
	}

	// Fill defaults the same way the engine does before checking ranges.
	spawnValues := config.SpawnValues
	if len(spawnValues) == 0 {
		spawnValues = []int{2, 4}
	}
	startingTiles := config.StartingTiles
	if startingTiles == 0 {
		startingTiles = defaultStartTiles
	}
	winningValue := config.WinningValue
	if winningValue == 0 {
		winningValue = defaultWinningValue
	}

	if winningValue < 8 || !isPowerOfTwo(winningValue) {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("winning_value must be a power of two of at least 8, got %d", winningValue))
	}

	for i, v := range spawnValues {
		if !isPowerOfTwo(v) {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("spawn_values[%d] must be a power of two of at least 2, got %d", i, v))
			continue
		}
		if v >= winningValue {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("spawn_values[%d] (%d) must be below winning_value (%d)", i, v, winningValue))
		}
	}

	if startingTiles < 1 || startingTiles > maxStartingTiles {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("starting_tiles must be between 1 and %d, got %d", maxStartingTiles, startingTiles))
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Spawn values: %v", spawnValues))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Starting tiles: %d", startingTiles))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Winning value: %d", winningValue))
	}

	return result
}

// configFiles lists the JSON and YAML files in a directory.
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// main scans a configs directory (first argument, ../configs by default)
// and validates each file, printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
