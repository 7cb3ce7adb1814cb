package session

import (
	"time"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
)

// SessionPersistence stores sessions between server runs.
type SessionPersistence interface {
	Save(session *service.Session) error
	// Load returns ErrSessionNotFound when nothing is stored under id.
	Load(id string) (*service.Session, error)
	Delete(id string) error
	// ListAll returns the stored session IDs.
	ListAll() ([]string, error)
	Exists(id string) bool
}

// persistedVersion is bumped whenever PersistedSessionData changes shape.
const persistedVersion = 1

// PersistedSessionData is the on-disk form of a session. Only the
// arrangement survives a restart; a round in progress does not.
type PersistedSessionData struct {
	Version        int                `json:"version"`
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Board          engine.BoardConfig `json:"board"`
	Cells          []int              `json:"cells"`
	Moves          int                `json:"moves"`
	Completion     *engine.Completion `json:"completion,omitempty"`
}

func fromSnapshot(snap service.Snapshot) PersistedSessionData {
	return PersistedSessionData{
		Version:        persistedVersion,
		ID:             snap.ID,
		ConfigName:     snap.PuzzleSet,
		CreatedAt:      snap.CreatedAt,
		LastAccessedAt: snap.LastAccessedAt,
		Board:          snap.Board,
		Cells:          snap.Cells,
		Moves:          snap.Moves,
		Completion:     snap.Completion,
	}
}
