package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
)

// ErrUnsupportedVersion marks a session file written by a newer server.
var ErrUnsupportedVersion = errors.New("unsupported session file version")

// FilePersistence keeps one JSON file per session, named by the lowercased
// session ID.
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
}

var _ SessionPersistence = (*FilePersistence)(nil)

// NewFilePersistence creates sessionsDir if needed. Puzzle sets named in the
// files are resolved through configManager on load.
func NewFilePersistence(sessionsDir string, configManager service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{
		sessionsDir:   sessionsDir,
		configManager: configManager,
	}, nil
}

// Save writes the session to a temporary file and renames it into place,
// so a crash mid-write never leaves a truncated session behind.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	payload, err := json.MarshalIndent(fromSnapshot(session.Snapshot()), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	tmp, err := os.CreateTemp(fp.sessionsDir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fp.path(session.ID)); err != nil {
		return fmt.Errorf("failed to move session file into place: %w", err)
	}
	return nil
}

// Load rebuilds a session from its file. If the puzzle set it was playing
// has since been removed, the catalog default takes its place.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	raw, err := os.ReadFile(fp.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.Version > persistedVersion {
		return nil, fmt.Errorf("session %s: %w %d", id, ErrUnsupportedVersion, data.Version)
	}

	board := data.Board.WithDefaults()
	if err := engine.ValidatePermutation(data.Cells, board.Size); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	set, err := fp.configManager.LoadConfig(data.ConfigName)
	if err != nil {
		set = fp.configManager.GetDefault()
		if set == nil {
			return nil, fmt.Errorf("failed to load puzzle set '%s': %w", data.ConfigName, err)
		}
		log.Printf("[SESSION] %s: puzzle set %q unavailable, using %q", id, data.ConfigName, set.Name)
	}

	game, err := engine.NewGame(board, *set, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	if err := game.Restore(data.Cells, data.Moves); err != nil {
		return nil, fmt.Errorf("failed to restore board: %w", err)
	}
	if data.Completion != nil {
		game.RestoreCompletion(*data.Completion)
	}

	session := service.NewSession(data.ID, game)
	session.CreatedAt = data.CreatedAt
	session.LastAccessedAt = data.LastAccessedAt
	return session, nil
}

func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns the IDs of every stored session. Temporary files from an
// interrupted Save are skipped.
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if id, ok := strings.CutSuffix(name, ".json"); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.path(id))
	return err == nil
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.sessionsDir, key(id)+".json")
}
