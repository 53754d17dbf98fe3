package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetScore() int
	GetHighestTile() int

	// Movement operations
	Move(direction string) (bool, error)
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Read-only snapshots for presentation layers
	ListTiles() []TileSnapshot
	GridSnapshot() [][]int

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It exclusively owns the grid
// and the tile registry; callers only ever see detached snapshots. The
// engine assumes a single writer and performs no locking of its own.
type GameEngine struct {
	grid     *Grid
	registry *Registry
	spawner  *Spawner
	config   *GameConfig

	score   int
	victory bool

	history      []MoveHistoryEntry
	totalMoves   int
	currentMoves []MoveHistoryEntry
}

// NewEngine creates a new game engine with the provided configuration and
// a time-seeded randomness source. The board starts empty and receives the
// configured number of starting tiles.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	return NewEngineWithRand(config, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithRand creates a new game engine with an explicit randomness
// source, making spawn behavior reproducible.
func NewEngineWithRand(config *GameConfig, rng *rand.Rand) (*GameEngine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		grid:     NewGrid(),
		registry: NewRegistry(),
		spawner:  NewSpawner(config.SpawnValues, rng),
		config:   config,
	}

	if err := e.populateStartingTiles(); err != nil {
		return nil, err
	}

	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the classic ruleset.
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		// The default config always validates.
		panic(fmt.Sprintf("engine: default config rejected: %v", err))
	}
	return e
}

// populateStartingTiles spawns the configured number of initial tiles.
func (e *GameEngine) populateStartingTiles() error {
	for i := 0; i < e.config.StartingTiles; i++ {
		if _, err := e.spawner.Spawn(e.grid, e.registry); err != nil {
			return fmt.Errorf("failed to spawn starting tile %d: %w", i+1, err)
		}
	}
	return nil
}

// Move attempts a move in the given direction. It returns whether the grid
// changed; a changed move is followed by exactly one spawn. An unknown
// direction fails with ErrInvalidDirection and leaves the game untouched.
func (e *GameEngine) Move(direction string) (bool, error) {
	dir, err := ParseDirection(direction)
	if err != nil {
		return false, err
	}

	changed, err := e.applyMove(dir)
	if err != nil {
		return false, err
	}

	var spawned *TileSnapshot
	if changed {
		tile, err := e.spawner.Spawn(e.grid, e.registry)
		switch {
		case err == nil:
			snap := tile.snapshot()
			spawned = &snap
		case errors.Is(err, ErrGridFull):
			// Unreachable after a changed move: a slide frees its source
			// cell and a merge frees one outright. Non-fatal either way.
		default:
			return false, err
		}
	}

	e.recordMove(direction, changed, spawned)
	return changed, nil
}

// recordMove appends a move attempt to both the cumulative history and the
// current segment.
func (e *GameEngine) recordMove(direction string, changed bool, spawned *TileSnapshot) {
	entry := MoveHistoryEntry{
		Direction:  direction,
		Changed:    changed,
		Score:      e.score,
		Spawned:    spawned,
		Timestamp:  time.Now().Unix(),
		MoveNumber: e.totalMoves + 1,
	}
	e.history = append(e.history, entry)
	e.totalMoves++
	e.currentMoves = append(e.currentMoves, entry)
}

// CanMove reports whether a move in the given direction would change the
// grid. Unknown directions simply report false.
func (e *GameEngine) CanMove(direction string) bool {
	dir, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	return e.canShift(dir)
}

// GetPossibleMoves returns all directions that would change the grid.
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, dir := range Directions() {
		if e.canShift(dir) {
			possible = append(possible, string(dir))
		}
	}
	return possible
}

// IsGameOver reports whether no move can change the grid: the board is
// full and no two adjacent cells hold equal values.
func (e *GameEngine) IsGameOver() bool {
	if !e.grid.Full() {
		return false
	}
	for _, dir := range Directions() {
		if e.canShift(dir) {
			return false
		}
	}
	return true
}

// IsVictory reports whether a tile has reached the winning value. Victory
// is informational; the board stays playable until no move remains.
func (e *GameEngine) IsVictory() bool {
	return e.victory
}

// GetScore returns the running score: the sum of all merged tile values.
func (e *GameEngine) GetScore() int {
	return e.score
}

// GetHighestTile returns the largest tile value on the board, or 0 for an
// empty board.
func (e *GameEngine) GetHighestTile() int {
	highest := 0
	for _, t := range e.registry.All() {
		if t.Value > highest {
			highest = t.Value
		}
	}
	return highest
}

// ListTiles returns read-only snapshots of the live tiles in insertion
// order.
func (e *GameEngine) ListTiles() []TileSnapshot {
	tiles := e.registry.All()
	out := make([]TileSnapshot, len(tiles))
	for i, t := range tiles {
		out[i] = t.snapshot()
	}
	return out
}

// GridSnapshot returns a detached copy of the grid values.
func (e *GameEngine) GridSnapshot() [][]int {
	return e.grid.Snapshot()
}

// GetConfig returns the current game configuration.
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and restarts the game.
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	config.ApplyDefaults()
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.spawner = NewSpawner(config.SpawnValues, e.spawner.rng)
	e.Reset()
	return nil
}

// Reset restarts the game from an empty board with fresh starting tiles.
// The cumulative move history survives; only the current segment clears.
func (e *GameEngine) Reset() *GameState {
	e.grid = NewGrid()
	e.registry = NewRegistry()
	e.score = 0
	e.victory = false
	e.currentMoves = nil

	// Starting spawns only fail on a full board, impossible here.
	e.populateStartingTiles()

	return e.GetState()
}

// GetState returns a complete detached snapshot of the game.
func (e *GameEngine) GetState() *GameState {
	return &GameState{
		Grid:              e.grid.Snapshot(),
		Tiles:             e.ListTiles(),
		Score:             e.score,
		HighestTile:       e.GetHighestTile(),
		GameOver:          e.IsGameOver(),
		Victory:           e.victory,
		ConfigName:        e.config.Name,
		MoveHistory:       append([]MoveHistoryEntry(nil), e.history...),
		TotalMoves:        e.totalMoves,
		CurrentMoves:      append([]MoveHistoryEntry(nil), e.currentMoves...),
		CurrentMovesCount: len(e.currentMoves),
	}
}

// SetState restores the engine from a snapshot (used for persistence
// loading). The snapshot's grid is authoritative; tiles are rebuilt from
// it when the snapshot omits them, and cross-checked against it when it
// does not.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Grid) != GridSize {
		return fmt.Errorf("state grid must have %d rows, got %d", GridSize, len(state.Grid))
	}

	grid := NewGrid()
	for row := range state.Grid {
		if len(state.Grid[row]) != GridSize {
			return fmt.Errorf("state grid row %d must have %d columns, got %d",
				row, GridSize, len(state.Grid[row]))
		}
		for col, v := range state.Grid[row] {
			if v != 0 && !isPowerOfTwo(v) {
				return fmt.Errorf("state grid cell (%d,%d) holds invalid value %d", row, col, v)
			}
			grid.cells[row][col] = v
		}
	}

	registry := NewRegistry()
	if len(state.Tiles) == 0 {
		// Derive tiles from the grid in row-major order.
		for row := 0; row < GridSize; row++ {
			for col := 0; col < GridSize; col++ {
				if grid.cells[row][col] != 0 {
					registry.Add(&Tile{Row: row, Col: col, Value: grid.cells[row][col]})
				}
			}
		}
	} else {
		seen := make(map[CellPos]bool)
		for _, snap := range state.Tiles {
			if !inBounds(snap.Row, snap.Col) {
				return fmt.Errorf("state tile at (%d,%d) is out of bounds", snap.Row, snap.Col)
			}
			pos := CellPos{Row: snap.Row, Col: snap.Col}
			if seen[pos] {
				return fmt.Errorf("state has duplicate tiles at (%d,%d)", snap.Row, snap.Col)
			}
			seen[pos] = true
			if grid.cells[snap.Row][snap.Col] != snap.Value {
				return fmt.Errorf("state tile at (%d,%d) has value %d but grid holds %d",
					snap.Row, snap.Col, snap.Value, grid.cells[snap.Row][snap.Col])
			}
			registry.Add(&Tile{Row: snap.Row, Col: snap.Col, Value: snap.Value})
		}
		for row := 0; row < GridSize; row++ {
			for col := 0; col < GridSize; col++ {
				if grid.cells[row][col] != 0 && !seen[CellPos{Row: row, Col: col}] {
					return fmt.Errorf("state grid cell (%d,%d) has no matching tile", row, col)
				}
			}
		}
	}

	e.grid = grid
	e.registry = registry
	e.score = state.Score
	e.victory = state.Victory
	e.history = append([]MoveHistoryEntry(nil), state.MoveHistory...)
	e.totalMoves = state.TotalMoves
	e.currentMoves = append([]MoveHistoryEntry(nil), state.CurrentMoves...)

	return nil
}

// GetMoveHistory returns the cumulative move history.
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return append([]MoveHistoryEntry(nil), e.history...)
}

// GetLastMove returns the last move made, or nil if no moves.
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	entry := e.history[len(e.history)-1]
	return &entry
}
