package service

import (
	"time"

	"github.com/jfelder/twenty48/game/engine"
)

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Changed   bool                 `json:"changed"`
	GameState *engine.GameState    `json:"game_state"`
	Message   string               `json:"message"`
	Spawned   *engine.TileSnapshot `json:"spawned,omitempty"`
	Events    []GameEvent          `json:"events,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	AnyChanged     bool              `json:"any_changed"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // invalid_direction|game_over|limit
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore int `json:"start_score"`
	EndScore   int `json:"end_score"`
	ScoreDelta int `json:"score_delta"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool     `json:"game_over"`
	Victory       bool     `json:"victory"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx     int                  `json:"idx"`
	Dir     string               `json:"dir"`
	Changed bool                 `json:"changed"`
	Score   int                  `json:"score"`
	Spawned *engine.TileSnapshot `json:"spawned,omitempty"`
	Merges  int                  `json:"merges"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string               `json:"type"` // "move", "spawn", "victory", "game_over", "reset"
	Message   string               `json:"message"`
	Timestamp time.Time            `json:"timestamp"`
	Tile      *engine.TileSnapshot `json:"tile,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename      string `json:"filename"`
	ConfigID      string `json:"config_id"` // The identifier to use for session creation
	Name          string `json:"name"`      // Display name
	Description   string `json:"description"`
	SpawnValues   []int  `json:"spawn_values"`
	StartingTiles int    `json:"starting_tiles"`
	WinningValue  int    `json:"winning_value"`
}

// ScoreEntry is one finished game on the leaderboard.
type ScoreEntry struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	ConfigName  string    `json:"config_name"`
	Score       int       `json:"score"`
	HighestTile int       `json:"highest_tile"`
	Moves       int       `json:"moves"`
	CreatedAt   time.Time `json:"created_at"`
}
