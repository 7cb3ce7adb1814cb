package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

func createValidSet(title string, solvable bool) *engine.PuzzleSet {
	return &engine.PuzzleSet{
		Title:    title,
		Image:    "test.png",
		Story:    "Test picture",
		Left:     0,
		Top:      0,
		Size:     300,
		Solvable: solvable,
	}
}

func writeSetFile(t *testing.T, dir, name string, set *engine.PuzzleSet) {
	t.Helper()
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal set: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0644); err != nil {
		t.Fatalf("Failed to write set file: %v", err)
	}
}

// catalogDir holds three solvable sets and one that is not.
func catalogDir(t *testing.T) string {
	dir := t.TempDir()
	writeSetFile(t, dir, "classic", createValidSet("Classic", true))
	writeSetFile(t, dir, "gull", createValidSet("Gull", true))
	writeSetFile(t, dir, "harbor", createValidSet("Harbor", true))
	writeSetFile(t, dir, "screw", createValidSet("Screw", false))
	return dir
}

func (m *Manager) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		manager, err := NewManager(catalogDir(t))
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		def := manager.GetDefault()
		if def == nil || def.Name != "classic" {
			t.Errorf("Expected classic as default, got %+v", def)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in set", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without files, got: %v", err)
		}
		def := manager.GetDefault()
		if def == nil {
			t.Fatal("Expected default set to be available")
		}
		if def.Name != "default" || !def.Solvable {
			t.Errorf("Unexpected fallback set: %+v", def)
		}
	})

	t.Run("first listed set when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		writeSetFile(t, dir, "zebra", createValidSet("Zebra", true))
		writeSetFile(t, dir, "apple", createValidSet("Apple", true))
		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "apple" {
			t.Errorf("Expected apple as default, got %s", got)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := catalogDir(t)
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing set", func(t *testing.T) {
		set, err := manager.LoadConfig("gull")
		if err != nil {
			t.Fatalf("Failed to load set: %v", err)
		}
		if set.Title != "Gull" {
			t.Errorf("Expected title 'Gull', got '%s'", set.Title)
		}
		if set.Name != "gull" {
			t.Errorf("Expected name from file 'gull', got '%s'", set.Name)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		set, err := manager.LoadConfig("gull.json")
		if err != nil {
			t.Fatalf("Failed to load set with extension: %v", err)
		}
		if set.Name != "gull" {
			t.Errorf("Expected name 'gull', got '%s'", set.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		a, _ := manager.LoadConfig("harbor")
		b, err := manager.LoadConfig("harbor")
		if err != nil {
			t.Fatalf("Failed to load set from cache: %v", err)
		}
		if a != b {
			t.Error("Expected set to be served from cache")
		}
	})

	t.Run("load non-existent set", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("reject path traversal", func(t *testing.T) {
		_, err := manager.LoadConfig("../classic")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid set", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), []byte(`{"title": ""}`), 0644); err != nil {
			t.Fatalf("Failed to write invalid set: %v", err)
		}
		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), []byte(`{"title": "x", bad}`), 0644); err != nil {
			t.Fatalf("Failed to write malformed set: %v", err)
		}
		if _, err := manager.LoadConfig("malformed"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := catalogDir(t)
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	list, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list sets: %v", err)
	}
	want := []string{"classic", "gull", "harbor", "screw"}
	if len(list) != len(want) {
		t.Fatalf("Expected %d sets, got %d", len(want), len(list))
	}
	for i, id := range want {
		if list[i].ConfigID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, list[i].ConfigID)
		}
		if list[i].Filename != id+".json" {
			t.Errorf("Unexpected filename %s", list[i].Filename)
		}
	}
	if list[3].Solvable {
		t.Error("Expected screw to be listed as unsolvable")
	}
}

func TestManager_NextAndRandom(t *testing.T) {
	manager, err := NewManager(catalogDir(t))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("next cycles through solvable sets", func(t *testing.T) {
		tests := []struct {
			current string
			want    string
		}{
			{"classic", "gull"},
			{"gull", "harbor"},
			{"harbor", "classic"},
			{"screw", "classic"},
			{"", "classic"},
		}
		for _, tt := range tests {
			set, err := manager.Next(tt.current)
			if err != nil {
				t.Fatalf("Next(%q): %v", tt.current, err)
			}
			if set.Name != tt.want {
				t.Errorf("Next(%q) = %s, want %s", tt.current, set.Name, tt.want)
			}
		}
	})

	t.Run("random never repeats the current set", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			set, err := manager.Random("gull")
			if err != nil {
				t.Fatalf("Random: %v", err)
			}
			if set.Name == "gull" || !set.Solvable {
				t.Fatalf("Random returned %s", set.Name)
			}
		}
	})

	t.Run("random with a single solvable set", func(t *testing.T) {
		dir := t.TempDir()
		writeSetFile(t, dir, "only", createValidSet("Only", true))
		single, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		set, err := single.Random("only")
		if err != nil {
			t.Fatalf("Random: %v", err)
		}
		if set.Name != "only" {
			t.Errorf("Expected only, got %s", set.Name)
		}
	})

	t.Run("no solvable sets", func(t *testing.T) {
		dir := t.TempDir()
		writeSetFile(t, dir, "screw", createValidSet("Screw", false))
		m, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if _, err := m.Next("screw"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestManager_SaveConfig(t *testing.T) {
	dir := catalogDir(t)
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("save and reload", func(t *testing.T) {
		set := createValidSet("Fresh", true)
		if err := manager.SaveConfig("fresh", set); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "fresh.json")); err != nil {
			t.Fatalf("Expected file on disk: %v", err)
		}
		loaded, err := manager.LoadConfig("fresh")
		if err != nil {
			t.Fatalf("Failed to load saved set: %v", err)
		}
		if loaded.Title != "Fresh" || loaded.Name != "fresh" {
			t.Errorf("Unexpected saved set: %+v", loaded)
		}

		other, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create second manager: %v", err)
		}
		fromDisk, err := other.LoadConfig("fresh")
		if err != nil {
			t.Fatalf("Failed to load from disk: %v", err)
		}
		if fromDisk.Title != "Fresh" {
			t.Errorf("Expected title Fresh, got %s", fromDisk.Title)
		}
	})

	t.Run("reject invalid set", func(t *testing.T) {
		err := manager.SaveConfig("bad", &engine.PuzzleSet{Title: "Bad"})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("reject bad name", func(t *testing.T) {
		err := manager.SaveConfig("../escape", createValidSet("Escape", true))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	manager, err := NewManager(catalogDir(t))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if err := manager.SetDefault("harbor"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if got := manager.GetDefault().Name; got != "harbor" {
		t.Errorf("Expected harbor, got %s", got)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	manager.LoadConfig("gull")
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}
	if manager.count() != 1 {
		t.Errorf("Expected only the default cached after refresh, got %d", manager.count())
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager, err := NewManager(catalogDir(t))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	names := []string{"classic", "gull", "harbor", "screw"}
	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.LoadConfig(names[id%len(names)]); err != nil {
				errs <- err
			}
			if _, err := manager.Next(names[id%len(names)]); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.count() != len(names) {
		t.Errorf("Expected %d cached sets, got %d", len(names), manager.count())
	}
}
