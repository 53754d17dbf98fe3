package leaderboard

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jfelder/twenty48/game/service"
)

const schema = `
CREATE TABLE IF NOT EXISTS scores (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	config_name TEXT NOT NULL,
	score INTEGER NOT NULL,
	highest_tile INTEGER NOT NULL,
	moves INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scores_score ON scores (score DESC, created_at ASC);
`

// Store implements service.ScoreStore on SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the leaderboard database at path and ensures
// the schema exists. Use ":memory:" for an ephemeral store.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open leaderboard database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize leaderboard schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record inserts a finished game and returns its generated entry ID.
func (s *Store) Record(ctx context.Context, entry service.ScoreEntry) (string, error) {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (id, session_id, config_name, score, highest_tile, moves, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, entry.SessionID, entry.ConfigName, entry.Score, entry.HighestTile,
		entry.Moves, entry.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to record score: %w", err)
	}
	return id, nil
}

// Top returns up to limit entries ordered by score descending, oldest first
// among ties.
func (s *Store) Top(ctx context.Context, limit int) ([]service.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, config_name, score, highest_tile, moves, created_at
		 FROM scores ORDER BY score DESC, created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []service.ScoreEntry{}
	for rows.Next() {
		var e service.ScoreEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.ConfigName, &e.Score,
			&e.HighestTile, &e.Moves, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard rows: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
