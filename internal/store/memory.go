// internal/store/memory.go
//
// Session storage for active ARG playthroughs.
// Sessions are keyed by player id so concurrent players never share progress.
//
// Characteristics of the in-memory implementation:
//   - Stores *game.Session objects keyed by player id in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/arg-server/internal/game"
)

// ErrNotFound is returned by Get when the player has no session.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for player sessions.
type Store interface {
	// Save persists or replaces the player's session.
	Save(ctx context.Context, playerID string, s *game.Session) error

	// Get retrieves the player's session, or ErrNotFound.
	Get(ctx context.Context, playerID string) (*game.Session, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex             // guards sessions map
	sessions map[string]*game.Session // keyed by player id
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*game.Session)}
}

// Save adds or replaces the player's session.
func (m *memory) Save(ctx context.Context, playerID string, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[playerID] = s
	return nil
}

// Get looks up a session by player id.
func (m *memory) Get(ctx context.Context, playerID string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[playerID]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}
