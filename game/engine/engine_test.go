package engine

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func createTestEngine(t *testing.T) *GameEngine {
	t.Helper()
	e, err := NewEngineWithRand(nil, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func TestNewEngine(t *testing.T) {
	e := createTestEngine(t)

	// Scenario: a new game has exactly two tiles with values in the
	// spawnable set at distinct positions.
	tiles := e.ListTiles()
	if len(tiles) != DefaultStartingTiles {
		t.Fatalf("Expected %d starting tiles, got %d", DefaultStartingTiles, len(tiles))
	}
	if tiles[0].Row == tiles[1].Row && tiles[0].Col == tiles[1].Col {
		t.Error("Expected starting tiles at distinct positions")
	}
	for _, tile := range tiles {
		if tile.Value != 2 && tile.Value != 4 {
			t.Errorf("Expected starting value in {2,4}, got %d", tile.Value)
		}
	}

	if e.GetScore() != 0 {
		t.Errorf("Expected initial score 0, got %d", e.GetScore())
	}
	if e.IsGameOver() {
		t.Error("Expected game not to be over initially")
	}
	if e.IsVictory() {
		t.Error("Expected no victory initially")
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.SpawnValues = []int{3}

	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	e := NewEngineWithDefaults()
	if e == nil {
		t.Fatal("Expected engine to be non-nil")
	}
	if len(e.ListTiles()) != DefaultStartingTiles {
		t.Errorf("Expected %d starting tiles, got %d", DefaultStartingTiles, len(e.ListTiles()))
	}
	if e.GetConfig().WinningValue != DefaultWinningValue {
		t.Errorf("Expected winning value %d, got %d", DefaultWinningValue, e.GetConfig().WinningValue)
	}
}

func TestEngine_MoveSpawnsAfterChange(t *testing.T) {
	e := createTestEngine(t)
	if err := e.SetState(&GameState{Grid: [][]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}}); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	sumBefore := e.grid.Sum()

	changed, err := e.Move("left")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !changed {
		t.Error("Expected move to change the grid")
	}

	// Merge plus exactly one spawn: two tiles remain.
	tiles := e.ListTiles()
	if len(tiles) != 2 {
		t.Fatalf("Expected 2 tiles after merge+spawn, got %d", len(tiles))
	}

	last := e.GetLastMove()
	if last == nil || last.Spawned == nil {
		t.Fatal("Expected the move record to carry the spawned tile")
	}
	if last.Spawned.Value != 2 && last.Spawned.Value != 4 {
		t.Errorf("Expected spawned value in {2,4}, got %d", last.Spawned.Value)
	}

	// Conservation: the sum grows by exactly the spawned value.
	if got := e.grid.Sum(); got != sumBefore+last.Spawned.Value {
		t.Errorf("Expected sum %d, got %d", sumBefore+last.Spawned.Value, got)
	}
}

func TestEngine_NoOpMoveDoesNotSpawn(t *testing.T) {
	e := createTestEngine(t)
	if err := e.SetState(&GameState{Grid: [][]int{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}}); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	before := e.ListTiles()

	changed, err := e.Move("up")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if changed {
		t.Error("Expected no-op move to report no change")
	}
	if !reflect.DeepEqual(e.ListTiles(), before) {
		t.Error("Expected tiles untouched by a no-op move")
	}
	if last := e.GetLastMove(); last == nil || last.Spawned != nil {
		t.Error("Expected no spawn recorded for a no-op move")
	}
}

func TestEngine_InvalidDirection(t *testing.T) {
	e := createTestEngine(t)
	before := e.ListTiles()

	if _, err := e.Move("diagonal"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
	if _, err := e.Move(""); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection for empty direction, got %v", err)
	}

	if !reflect.DeepEqual(e.ListTiles(), before) {
		t.Error("Expected rejected moves to leave the board untouched")
	}
	if len(e.GetMoveHistory()) != 0 {
		t.Error("Expected rejected moves to stay out of the history")
	}
}

func TestEngine_CanMoveAndPossibleMoves(t *testing.T) {
	e := createTestEngine(t)
	if err := e.SetState(&GameState{Grid: [][]int{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 8},
	}}); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	// Full checkerboard except (3,3)=8 next to 2: still no legal move.
	if moves := e.GetPossibleMoves(); len(moves) != 0 {
		t.Errorf("Expected no possible moves, got %v", moves)
	}
	if e.CanMove("left") {
		t.Error("Expected CanMove(left) to be false")
	}
	if e.CanMove("sideways") {
		t.Error("Expected CanMove to reject unknown directions")
	}
	if !e.IsGameOver() {
		t.Error("Expected game over with no possible moves")
	}

	// Free one cell: every direction opens up.
	if err := e.SetState(&GameState{Grid: [][]int{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 0, 4},
		{4, 2, 4, 2},
	}}); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if e.IsGameOver() {
		t.Error("Expected game not over with an empty cell")
	}
	if moves := e.GetPossibleMoves(); len(moves) != 4 {
		t.Errorf("Expected 4 possible moves, got %v", moves)
	}
}

func TestEngine_Victory(t *testing.T) {
	config := DefaultConfig()
	config.WinningValue = 8

	e, err := NewEngineWithRand(config, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := e.SetState(&GameState{Grid: [][]int{
		{4, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}}); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	if _, err := e.Move("left"); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !e.IsVictory() {
		t.Error("Expected victory after reaching the winning value")
	}
	// Victory does not end the game by itself.
	if e.IsGameOver() {
		t.Error("Expected play to continue after victory")
	}
}

func TestEngine_GetStateDetached(t *testing.T) {
	e := createTestEngine(t)

	state := e.GetState()
	state.Grid[0][0] = 4096
	if len(state.Tiles) > 0 {
		state.Tiles[0].Value = 4096
	}

	for _, tile := range e.ListTiles() {
		if tile.Value == 4096 {
			t.Fatal("Mutating a returned state leaked into the engine")
		}
	}
	for _, row := range e.GridSnapshot() {
		for _, v := range row {
			if v == 4096 {
				t.Fatal("Mutating a returned grid leaked into the engine")
			}
		}
	}
}

func TestEngine_SetStateRoundTrip(t *testing.T) {
	e := createTestEngine(t)
	e.Move("left")
	e.Move("down")
	state := e.GetState()

	restored := createTestEngine(t)
	if err := restored.SetState(state); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}

	got := restored.GetState()
	if !reflect.DeepEqual(got.Grid, state.Grid) {
		t.Errorf("Expected grid %v, got %v", state.Grid, got.Grid)
	}
	if got.Score != state.Score {
		t.Errorf("Expected score %d, got %d", state.Score, got.Score)
	}
	if got.TotalMoves != state.TotalMoves {
		t.Errorf("Expected %d total moves, got %d", state.TotalMoves, got.TotalMoves)
	}
	if !reflect.DeepEqual(got.Tiles, state.Tiles) {
		t.Errorf("Expected tiles %v, got %v", state.Tiles, got.Tiles)
	}
}

func TestEngine_SetStateRejectsInconsistency(t *testing.T) {
	e := createTestEngine(t)

	cases := []struct {
		name  string
		state *GameState
	}{
		{"nil state", nil},
		{"short grid", &GameState{Grid: [][]int{{0, 0, 0, 0}}}},
		{"non power of two", &GameState{Grid: [][]int{
			{3, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0},
		}}},
		{"tile without cell", &GameState{
			Grid: [][]int{
				{2, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0},
			},
			Tiles: []TileSnapshot{{Row: 0, Col: 0, Value: 2}, {Row: 1, Col: 1, Value: 4}},
		}},
		{"cell without tile", &GameState{
			Grid: [][]int{
				{2, 4, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0},
			},
			Tiles: []TileSnapshot{{Row: 0, Col: 0, Value: 2}},
		}},
		{"duplicate tiles", &GameState{
			Grid: [][]int{
				{2, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0},
			},
			Tiles: []TileSnapshot{{Row: 0, Col: 0, Value: 2}, {Row: 0, Col: 0, Value: 2}},
		}},
	}

	for _, c := range cases {
		if err := e.SetState(c.state); err == nil {
			t.Errorf("%s: expected SetState to fail", c.name)
		}
	}
}

func TestEngine_Reset(t *testing.T) {
	e := createTestEngine(t)

	for _, dir := range []string{"left", "up", "right", "down"} {
		e.Move(dir)
	}
	movesBefore := len(e.GetMoveHistory())
	if movesBefore == 0 {
		t.Fatal("Expected move history before reset")
	}

	state := e.Reset()
	if state == nil {
		t.Fatal("Expected reset to return game state")
	}
	if e.GetScore() != 0 {
		t.Errorf("Expected score reset to 0, got %d", e.GetScore())
	}
	if len(e.ListTiles()) != DefaultStartingTiles {
		t.Errorf("Expected %d starting tiles after reset, got %d",
			DefaultStartingTiles, len(e.ListTiles()))
	}
	// Cumulative history survives; the current segment clears.
	if len(e.GetMoveHistory()) != movesBefore {
		t.Errorf("Expected cumulative history retained (%d), got %d",
			movesBefore, len(e.GetMoveHistory()))
	}
	if len(state.CurrentMoves) != 0 || state.CurrentMovesCount != 0 {
		t.Errorf("Expected current moves cleared after reset, got len=%d count=%d",
			len(state.CurrentMoves), state.CurrentMovesCount)
	}
}

func TestEngine_ConfigManagement(t *testing.T) {
	e := createTestEngine(t)

	newConfig := DefaultConfig()
	newConfig.Name = "Doubles"
	newConfig.SpawnValues = []int{4}
	newConfig.StartingTiles = 3

	if err := e.SetConfig(newConfig); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if e.GetConfig().Name != "Doubles" {
		t.Errorf("Expected config name 'Doubles', got '%s'", e.GetConfig().Name)
	}
	tiles := e.ListTiles()
	if len(tiles) != 3 {
		t.Errorf("Expected 3 starting tiles, got %d", len(tiles))
	}
	for _, tile := range tiles {
		if tile.Value != 4 {
			t.Errorf("Expected all spawns to be 4, got %d", tile.Value)
		}
	}

	invalid := DefaultConfig()
	invalid.WinningValue = 7
	if err := e.SetConfig(invalid); err == nil {
		t.Error("Expected error when setting invalid config")
	}
	if err := e.SetConfig(nil); err == nil {
		t.Error("Expected error when setting nil config")
	}
}

func TestEngine_HistoryRecording(t *testing.T) {
	e := createTestEngine(t)

	e.Move("left")
	e.Move("left")

	history := e.GetMoveHistory()
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	if history[0].MoveNumber != 1 || history[1].MoveNumber != 2 {
		t.Errorf("Expected move numbers 1 and 2, got %d and %d",
			history[0].MoveNumber, history[1].MoveNumber)
	}
	if history[0].Direction != "left" {
		t.Errorf("Expected direction 'left', got '%s'", history[0].Direction)
	}

	last := e.GetLastMove()
	if last == nil || last.MoveNumber != 2 {
		t.Error("Expected GetLastMove to return the second entry")
	}
}

func TestEngine_SeededGamesAreReproducible(t *testing.T) {
	play := func() *GameState {
		e, err := NewEngineWithRand(nil, rand.New(rand.NewSource(12345)))
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		for _, dir := range []string{"left", "up", "right", "down", "left", "up"} {
			e.Move(dir)
		}
		return e.GetState()
	}

	first := play()
	second := play()
	if !reflect.DeepEqual(first.Grid, second.Grid) {
		t.Errorf("Seeded games diverged: %v vs %v", first.Grid, second.Grid)
	}
	if first.Score != second.Score {
		t.Errorf("Seeded game scores diverged: %d vs %d", first.Score, second.Score)
	}
}
