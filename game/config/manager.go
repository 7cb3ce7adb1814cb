package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Manager handles puzzle-set loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.PuzzleSet
	configs       map[string]*engine.PuzzleSet
	mu            sync.RWMutex
}

var _ service.ConfigManager = (*Manager)(nil)

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.PuzzleSet),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a puzzle set by name
func (m *Manager) LoadConfig(name string) (*engine.PuzzleSet, error) {
	name = strings.TrimSuffix(name, ".json")

	m.mu.RLock()
	if set, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return set, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if set, exists := m.configs[name]; exists {
		return set, nil
	}

	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, ErrConfigNotFound
	}

	data, err := os.ReadFile(filepath.Join(m.configDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	set, err := engine.ParsePuzzleSet(data, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	// the file name is the identifier sessions refer to
	set.Name = name

	m.configs[name] = set
	return set, nil
}

// ListConfigs returns information about all available puzzle sets, sorted
// by identifier. Files that fail to parse are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		set, err := m.LoadConfig(name)
		if err != nil {
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename: entry.Name(),
			ConfigID: name,
			Title:    set.Title,
			Image:    set.Image,
			Story:    set.Story,
			Size:     set.Size,
			Solvable: set.Solvable,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default puzzle set
func (m *Manager) GetDefault() *engine.PuzzleSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default puzzle set by name
func (m *Manager) SetDefault(name string) error {
	set, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = set
	return nil
}

// RefreshCache drops every cached set and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.PuzzleSet)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// Next returns the solvable set that follows current in catalog order,
// wrapping around. An unknown current starts from the beginning.
func (m *Manager) Next(current string) (*engine.PuzzleSet, error) {
	ids, err := m.solvableIDs()
	if err != nil {
		return nil, err
	}
	next := ids[0]
	for i, id := range ids {
		if id == current {
			next = ids[(i+1)%len(ids)]
			break
		}
	}
	return m.LoadConfig(next)
}

// Random returns a solvable set other than current when there is one.
func (m *Manager) Random(current string) (*engine.PuzzleSet, error) {
	ids, err := m.solvableIDs()
	if err != nil {
		return nil, err
	}
	candidates := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != current {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return m.LoadConfig(ids[0])
	}
	return m.LoadConfig(candidates[rand.IntN(len(candidates))])
}

func (m *Manager) solvableIDs() ([]string, error) {
	configs, err := m.ListConfigs()
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, c := range configs {
		if c.Solvable {
			ids = append(ids, c.ConfigID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no solvable puzzle sets in %s", ErrConfigNotFound, m.configDir)
	}
	return ids, nil
}

// loadDefaultConfig prefers classic.json, then the first listed set, then
// the built-in picture.
func (m *Manager) loadDefaultConfig() error {
	set, err := m.LoadConfig("classic")
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.setDefault(m.createMinimalConfig())
			return nil
		}

		set, err = m.LoadConfig(configs[0].ConfigID)
		if err != nil {
			m.setDefault(m.createMinimalConfig())
			return nil
		}
	}

	m.setDefault(set)
	return nil
}

func (m *Manager) setDefault(set *engine.PuzzleSet) {
	m.mu.Lock()
	m.defaultConfig = set
	m.mu.Unlock()
}

// SaveConfig validates set and writes it to <name>.json
func (m *Manager) SaveConfig(name string, set *engine.PuzzleSet) error {
	if set == nil {
		return fmt.Errorf("%w: puzzle set is nil", ErrInvalidConfig)
	}
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidConfig, name)
	}
	if err := engine.ValidatePuzzleSet(*set); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	stored := *set
	stored.Name = ""
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, name+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cached := *set
	cached.Name = name
	m.mu.Lock()
	m.configs[name] = &cached
	m.mu.Unlock()

	return nil
}

// createMinimalConfig is used when the directory has no usable set
func (m *Manager) createMinimalConfig() *engine.PuzzleSet {
	set := engine.DefaultPuzzleSet()
	set.Name = "default"
	return &set
}
