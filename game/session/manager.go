package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// key normalizes a session ID; IDs are case-insensitive.
func key(id string) string { return strings.ToLower(id) }

// validateID rejects IDs that could escape the sessions directory once
// used as a file name.
func validateID(id string) error {
	if strings.ContainsAny(id, `/\ `) || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// Manager owns the live sessions and, when given a persistence layer,
// mirrors them to storage.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*service.Session
	persistence SessionPersistence
}

var _ service.SessionManager = (*Manager)(nil)

// NewManager creates an in-memory session manager.
func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence creates a manager backed by persistence.
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

// Create starts a session playing set on a board configured by cfg. An
// empty id gets a random one.
func (m *Manager) Create(id string, cfg engine.BoardConfig, set *engine.PuzzleSet) (*service.Session, error) {
	if set == nil {
		return nil, fmt.Errorf("failed to create game: %w", engine.ErrInvalidPuzzleSet)
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.freshID()
	} else if _, taken := m.sessions[key(id)]; taken {
		return nil, ErrSessionAlreadyExists
	}

	game, err := engine.NewGame(cfg, *set, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	sess := service.NewSession(id, game)
	m.sessions[key(id)] = sess
	m.persist(sess, "create")
	return sess, nil
}

// Get returns a live session, loading it from storage on first use.
func (m *Manager) Get(id string) (*service.Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	sess, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if m.persistence == nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}
	loaded, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// a concurrent Get may have won the race
	if sess, ok := m.sessions[key(id)]; ok {
		return sess, nil
	}
	m.sessions[key(id)] = loaded
	return loaded, nil
}

// GetOrCreate returns the session called id, creating it if it does not
// exist anywhere.
func (m *Manager) GetOrCreate(id string, cfg engine.BoardConfig, set *engine.PuzzleSet) (*service.Session, error) {
	sess, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, cfg, set)
	}
	return sess, err
}

// List returns the live sessions in no particular order.
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Delete removes a session from memory and storage.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, live := m.sessions[key(id)]
	delete(m.sessions, key(id))

	stored := m.persistence != nil && m.persistence.Exists(id)
	if stored {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
	}
	if !live && !stored {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts a live session and leaves storage alone.
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed stamps the session and saves it. It takes the session
// lock, so callers must not hold it.
func (m *Manager) UpdateLastAccessed(id string) error {
	sess, ok := m.live(id)
	if !ok {
		return ErrSessionNotFound
	}
	sess.Touch()
	m.persist(sess, "access update")
	return nil
}

// Save writes one session to storage. Callers must not hold its lock.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}
	sess, ok := m.live(id)
	if !ok {
		return ErrSessionNotFound
	}
	return m.persistence.Save(sess)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge and
// returns how many went. Sessions in the middle of a round stay, and
// evicted sessions are saved first so they can be loaded again later.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	var stale []*service.Session
	for _, sess := range m.List() {
		snap := sess.Snapshot()
		if snap.Playing || !snap.LastAccessedAt.Before(cutoff) {
			continue
		}
		m.persist(sess, "eviction")
		stale = append(stale, sess)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range stale {
		delete(m.sessions, key(sess.ID))
	}
	if len(stale) > 0 {
		log.Printf("[SESSION] evicted %d idle sessions", len(stale))
	}
	return len(stale)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions brings every stored session into memory. Files that
// fail to load are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if _, ok := m.sessions[key(id)]; ok {
			continue
		}
		sess, err := m.persistence.Load(id)
		if err != nil {
			log.Printf("Warning: failed to load persisted session %s: %v", id, err)
			continue
		}
		m.sessions[key(id)] = sess
		loaded++
	}

	if loaded > 0 {
		log.Printf("Loaded %d persisted sessions from storage", loaded)
	}
	return nil
}

// SaveAllSessions writes every live session to storage.
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	failed := 0
	for _, sess := range m.List() {
		if err := m.persistence.Save(sess); err != nil {
			log.Printf("Warning: failed to save session %s: %v", sess.ID, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}

func (m *Manager) live(id string) (*service.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[key(id)]
	return sess, ok
}

// persist saves sess if storage is configured. Failures are logged, not
// returned; the live session is still good.
func (m *Manager) persist(sess *service.Session, why string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(sess); err != nil {
		log.Printf("Warning: failed to persist session %s on %s: %v", sess.ID, why, err)
	}
}

// freshID returns an unused 4-character hex ID. Caller holds the write lock.
func (m *Manager) freshID() string {
	buf := make([]byte, 2)
	for {
		rand.Read(buf)
		id := hex.EncodeToString(buf)
		if _, taken := m.sessions[id]; !taken {
			return id
		}
	}
}
