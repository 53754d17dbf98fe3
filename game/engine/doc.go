// Package engine provides the core board-state logic for the 2048 game.
//
// The engine package implements the game mechanics including:
//   - The 4x4 grid of cell values and its emptiness queries
//   - The tile registry tracking every live tile's position and value
//   - The four directional slide-and-merge sweeps
//   - Random tile spawning after each changed move
//   - Game state snapshots and restoration
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is a detached snapshot of a game,
// while GameConfig defines the rules (spawnable values, starting tiles,
// winning value) loaded from JSON or YAML files.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	changed, err := gameEngine.Move("left")
//	tiles := gameEngine.ListTiles()
//
// Game Rules:
//
// Each move slides every tile as far as it goes in the chosen direction;
// two equal tiles that meet merge into one of double the value, and a tile
// merges at most once per move. A move that changes the board spawns one
// new tile (2 or 4 by default) in a random empty cell. The game is over
// when the board is full and no adjacent pair is equal.
//
// The engine is deliberately free of any rendering or input concern: it
// exposes a pure state-transition API, and presentation layers consume
// read-only snapshots after each transition. It assumes a single caller
// and performs no locking.
package engine
