package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jfelder/twenty48/game/engine"
	"github.com/jfelder/twenty48/game/service"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager implements service.SessionManager with in-memory storage and
// optional persistence.
type Manager struct {
	sessions    map[string]*service.Session
	mu          sync.RWMutex
	persistence SessionPersistence
}

// NewManager creates a new session manager. persistence may be nil; sessions
// are then memory-only.
func NewManager(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

// generateID returns a short random session ID.
func generateID() string {
	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%04x", time.Now().UnixNano()&0xffff)
	}
	return hex.EncodeToString(b)
}

// Create creates a new session with the given ID and config. An empty ID
// gets a generated one; collisions are retried.
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		for {
			id = generateID()
			if _, exists := m.sessions[id]; !exists {
				break
			}
		}
	} else if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("session already exists: %s", id)
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[id] = session

	if m.persistence != nil {
		if err := m.persistence.SaveSession(session); err != nil {
			log.Printf("Warning: failed to persist new session %s: %v", id, err)
		}
	}

	return session, nil
}

// Get retrieves a session by ID, falling back to persistence for sessions
// not currently in memory.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[id]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence != nil {
		session, err := m.persistence.LoadSession(id)
		if err == nil {
			m.mu.Lock()
			m.sessions[id] = session
			m.mu.Unlock()
			return session, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// GetOrCreate returns the existing session or creates a new one under the
// given ID.
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, err := m.Get(id); err == nil {
		return session, nil
	}
	return m.Create(id, config)
}

// List returns all in-memory sessions.
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Delete removes a session from memory and persistent storage.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, exists := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if m.persistence != nil {
		if err := m.persistence.DeleteSession(id); err == nil {
			exists = true
		}
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// DeleteFromMemory evicts a session from memory without touching persistent
// storage. Used by expiry cleanup; the session can be loaded back later.
func (m *Manager) DeleteFromMemory(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// UpdateLastAccessed bumps the session's last-access time.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	session.LastAccessedAt = time.Now()
	return nil
}

// Save persists a single session.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[id]
	m.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return m.persistence.SaveSession(session)
}

// Count returns the number of in-memory sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge from
// memory. Persisted copies survive and reload on next access. Returns the
// number of evicted sessions.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	evicted := 0
	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			if m.persistence != nil {
				if err := m.persistence.SaveSession(session); err != nil {
					log.Printf("Warning: failed to persist expiring session %s: %v", id, err)
					continue
				}
			}
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// LoadPersistedSessions loads every persisted session into memory. Sessions
// that fail to load are skipped with a warning.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	loaded := 0
	for _, id := range ids {
		m.mu.RLock()
		_, exists := m.sessions[id]
		m.mu.RUnlock()
		if exists {
			continue
		}

		session, err := m.persistence.LoadSession(id)
		if err != nil {
			log.Printf("Warning: failed to load persisted session %s: %v", id, err)
			continue
		}

		m.mu.Lock()
		m.sessions[id] = session
		m.mu.Unlock()
		loaded++
	}

	if loaded > 0 {
		log.Printf("Loaded %d persisted session(s)", loaded)
	}
	return nil
}

// SaveAllSessions persists every in-memory session. Used by the periodic
// filesystem sync and on shutdown.
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sessions := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session)
	}
	m.mu.RUnlock()

	var firstErr error
	for _, session := range sessions {
		if err := m.persistence.SaveSession(session); err != nil {
			log.Printf("Warning: failed to persist session %s: %v", session.ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
