package review

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"cinelog/models"
)

// ErrSessionNotFound indicates an unknown session identifier.
var ErrSessionNotFound = errors.New("review: session not found")

// Manager tracks at most one active session per user. Starting a new
// session for a user abandons the previous one, so a transcript never has
// two owners.
type Manager struct {
	gen    generator
	bridge submitter

	mu       sync.Mutex
	sessions map[string]*Session // session id -> session
	byOwner  map[string]string   // owner key -> session id
}

// NewManager creates an empty session manager.
func NewManager(gen generator, bridge submitter) *Manager {
	return &Manager{
		gen:      gen,
		bridge:   bridge,
		sessions: make(map[string]*Session),
		byOwner:  make(map[string]string),
	}
}

// Begin starts a session for the owner and seeds it with the movie,
// abandoning any session the owner already had. Guests get a per-call
// owner key from the caller (e.g. a client-generated id).
func (m *Manager) Begin(ownerKey string, movie models.SelectedMovie) (string, *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if oldID, ok := m.byOwner[ownerKey]; ok {
		if old, ok := m.sessions[oldID]; ok {
			old.Abandon()
		}
		delete(m.sessions, oldID)
	}

	id := uuid.NewString()
	session := NewSession(m.gen, m.bridge)
	session.Begin(movie)
	m.sessions[id] = session
	m.byOwner[ownerKey] = id
	return id, session
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// End abandons and removes the session with the given id.
func (m *Manager) End(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[id]; ok {
		session.Abandon()
		delete(m.sessions, id)
	}
	for owner, sid := range m.byOwner {
		if sid == id {
			delete(m.byOwner, owner)
			break
		}
	}
}

// Remove drops a session that reached its terminal state.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	for owner, sid := range m.byOwner {
		if sid == id {
			delete(m.byOwner, owner)
			break
		}
	}
}
