package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jfelder/twenty48/game/engine"
)

// GameServiceImpl implements GameService on top of a session manager, a
// config manager, and an optional score store.
type GameServiceImpl struct {
	sessionManager SessionManager
	configManager  ConfigManager
	scores         ScoreStore
}

// NewGameService creates a new game service instance. scores may be nil;
// finished games are then simply not recorded.
func NewGameService(sessionManager SessionManager, configManager ConfigManager, scores ScoreStore) *GameServiceImpl {
	return &GameServiceImpl{
		sessionManager: sessionManager,
		configManager:  configManager,
		scores:         scores,
	}
}

// CreateSession creates a new game session with the given config. An empty
// configName selects the default configuration.
func (s *GameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	config, err := s.resolveConfig(configName)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionManager.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(session), nil
}

// GetSession returns information about an existing session.
func (s *GameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(session), nil
}

// ListSessions returns information about all active sessions.
func (s *GameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessionManager.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, s.sessionInfo(session))
	}
	return infos, nil
}

// DeleteSession removes a session.
func (s *GameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessionManager.Delete(sessionID)
}

// Move executes a single move. With reset set, the game restarts before the
// move is applied.
func (s *GameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessionManager.UpdateLastAccessed(sessionID)

	var events []GameEvent
	if reset {
		session.Engine.Reset()
		events = append(events, event("reset", "Game restarted", nil))
	}

	wasOver := session.Engine.IsGameOver()
	wasVictory := session.Engine.IsVictory()

	changed, err := session.Engine.Move(direction)
	if err != nil {
		return nil, err
	}

	var spawned *engine.TileSnapshot
	if last := session.Engine.GetLastMove(); last != nil {
		spawned = last.Spawned
	}

	state := session.Engine.GetState()
	msg := fmt.Sprintf("Moved %s", direction)
	if !changed {
		msg = fmt.Sprintf("Move %s changed nothing", direction)
	}
	events = append(events, event("move", msg, nil))
	if spawned != nil {
		events = append(events, event("spawn",
			fmt.Sprintf("Spawned %d at (%d,%d)", spawned.Value, spawned.Row, spawned.Col), spawned))
	}
	if state.Victory && !wasVictory {
		events = append(events, event("victory",
			fmt.Sprintf("Reached %d! Score: %d", session.Config.WinningValue, state.Score), nil))
	}
	if state.GameOver && !wasOver {
		events = append(events, event("game_over",
			fmt.Sprintf("No moves left. Final score: %d", state.Score), nil))
		s.recordScore(ctx, session, state)
	}

	if err := s.sessionManager.Save(sessionID); err != nil {
		log.Printf("Warning: failed to persist session %s: %v", sessionID, err)
	}

	return &MoveResult{
		Changed:   changed,
		GameState: state,
		Message:   msg,
		Spawned:   spawned,
		Events:    events,
	}, nil
}

// BulkMove executes a sequence of moves, stopping early on an invalid
// direction or when the game ends. At most engine.MaxBulkMoves moves run
// per call; the remainder is reported as truncated.
func (s *GameServiceImpl) BulkMove(ctx context.Context, sessionID string, directions []string, reset bool) (*BulkMoveResult, error) {
	if len(directions) == 0 {
		return nil, fmt.Errorf("no moves provided")
	}

	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessionManager.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(directions),
		Limit:          engine.MaxBulkMoves,
	}

	if reset {
		session.Engine.Reset()
		result.Events = append(result.Events, event("reset", "Game restarted", nil))
	}

	if len(directions) > engine.MaxBulkMoves {
		directions = directions[:engine.MaxBulkMoves]
		result.Truncated = true
	}

	wasOver := session.Engine.IsGameOver()
	wasVictory := session.Engine.IsVictory()
	result.StartScore = session.Engine.GetScore()

	for i, direction := range directions {
		if _, err := engine.ParseDirection(direction); err != nil {
			result.StoppedReason = fmt.Sprintf("invalid direction %q at move %d", direction, i+1)
			result.StopReasonCode = "invalid_direction"
			result.StoppedOnMove = i + 1
			break
		}

		tilesBefore := len(session.Engine.ListTiles())
		changed, err := session.Engine.Move(direction)
		if err != nil {
			return nil, err
		}

		var spawned *engine.TileSnapshot
		if last := session.Engine.GetLastMove(); last != nil {
			spawned = last.Spawned
		}
		merges := tilesBefore - len(session.Engine.ListTiles())
		if spawned != nil {
			merges++
		}

		result.MovesExecuted++
		result.AnyChanged = result.AnyChanged || changed
		result.Steps = append(result.Steps, StepInfo{
			Idx:     i + 1,
			Dir:     direction,
			Changed: changed,
			Score:   session.Engine.GetScore(),
			Spawned: spawned,
			Merges:  merges,
		})

		if session.Engine.IsGameOver() {
			result.StoppedReason = fmt.Sprintf("game over after move %d", i+1)
			result.StopReasonCode = "game_over"
			result.StoppedOnMove = i + 1
			break
		}
	}

	state := session.Engine.GetState()
	result.GameState = state
	result.EndScore = state.Score
	result.ScoreDelta = result.EndScore - result.StartScore
	result.GameOver = state.GameOver
	result.Victory = state.Victory
	result.PossibleMoves = session.Engine.GetPossibleMoves()

	result.Events = append(result.Events, event("move",
		fmt.Sprintf("Executed %d/%d moves, +%d points", result.MovesExecuted, result.RequestedMoves, result.ScoreDelta), nil))
	if state.Victory && !wasVictory {
		result.Events = append(result.Events, event("victory",
			fmt.Sprintf("Reached %d! Score: %d", session.Config.WinningValue, state.Score), nil))
	}
	if state.GameOver && !wasOver {
		result.Events = append(result.Events, event("game_over",
			fmt.Sprintf("No moves left. Final score: %d", state.Score), nil))
		s.recordScore(ctx, session, state)
	}

	if err := s.sessionManager.Save(sessionID); err != nil {
		log.Printf("Warning: failed to persist session %s: %v", sessionID, err)
	}

	return result, nil
}

// Reset restarts a session's game and returns the fresh state.
func (s *GameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessionManager.UpdateLastAccessed(sessionID)

	state := session.Engine.Reset()
	if err := s.sessionManager.Save(sessionID); err != nil {
		log.Printf("Warning: failed to persist session %s: %v", sessionID, err)
	}
	return state, nil
}

// GetGameState returns the current state of a session's game.
func (s *GameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessionManager.UpdateLastAccessed(sessionID)
	return session.Engine.GetState(), nil
}

// GetMoveHistory returns a page of the cumulative move history. Defaults:
// page 1, 20 moves per page, newest first.
func (s *GameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessionManager.UpdateLastAccessed(sessionID)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	moves := session.Engine.GetMoveHistory()
	total := len(moves)

	if opts.Order == "desc" {
		reversed := make([]engine.MoveHistoryEntry, total)
		for i, m := range moves {
			reversed[total-1-i] = m
		}
		moves = reversed
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return &HistoryResponse{
		Moves:       moves[start:end],
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns all available game configurations.
func (s *GameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configManager.ListConfigs()
}

// LoadConfig loads a specific game configuration.
func (s *GameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configManager.LoadConfig(configName)
}

// SaveConfig persists a game configuration under the given name.
func (s *GameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configManager.SaveConfig(configName, config)
}

// TopScores returns the best finished games, highest score first. Without a
// score store the leaderboard is empty.
func (s *GameServiceImpl) TopScores(ctx context.Context, limit int) ([]ScoreEntry, error) {
	if s.scores == nil {
		return []ScoreEntry{}, nil
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.scores.Top(ctx, limit)
}

// resolveConfig maps a config name to a validated configuration, falling
// back to the default for an empty name.
func (s *GameServiceImpl) resolveConfig(configName string) (*engine.GameConfig, error) {
	if configName == "" {
		return s.configManager.GetDefault(), nil
	}
	config, err := s.configManager.LoadConfig(configName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s': %w", configName, err)
	}
	return config, nil
}

// recordScore writes a finished game to the leaderboard, if one is wired.
func (s *GameServiceImpl) recordScore(ctx context.Context, session *Session, state *engine.GameState) {
	if s.scores == nil {
		return
	}
	_, err := s.scores.Record(ctx, ScoreEntry{
		SessionID:   session.ID,
		ConfigName:  session.Config.Name,
		Score:       state.Score,
		HighestTile: state.HighestTile,
		Moves:       state.CurrentMovesCount,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		log.Printf("Warning: failed to record score for session %s: %v", session.ID, err)
	}
}

func (s *GameServiceImpl) sessionInfo(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     session.Config.Name,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}
}

func event(eventType, message string, tile *engine.TileSnapshot) GameEvent {
	return GameEvent{
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
		Tile:      tile,
	}
}
