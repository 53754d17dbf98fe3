package session

import (
	"time"

	"github.com/jfelder/twenty48/game/engine"
	"github.com/jfelder/twenty48/game/service"
)

// SessionPersistence abstracts durable session storage.
type SessionPersistence interface {
	SaveSession(session *service.Session) error
	LoadSession(id string) (*service.Session, error)
	DeleteSession(id string) error
	ListSessions() ([]string, error)
	Exists(id string) bool
}

// PersistedSessionData is the on-disk representation of a session.
type PersistedSessionData struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	GameState      *engine.GameState `json:"game_state"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
}
