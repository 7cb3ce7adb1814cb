package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Failed to create picture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("Failed to encode picture: %v", err)
	}
}

func hasMessage(result ValidationResult, substr string) bool {
	for _, msg := range result.Errors {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "harbor.json", `{
		"title": "Harbor",
		"img": "harbor.png",
		"story": "Boats at dusk.",
		"left": 40,
		"top": 0,
		"size": 720,
		"solvable": true
	}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Errorf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "harbor.json" {
		t.Errorf("Expected file name harbor.json, got %s", result.File)
	}
	if !hasMessage(result, "not found locally") {
		t.Errorf("Expected a note about the missing picture, got %v", result.Errors)
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.json", `{"title": "test", invalid json}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid config for malformed JSON")
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "nope.json"))
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasMessage(result, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateConfig_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no title", `{"img": "a.png", "size": 100}`, "title is required"},
		{"no image", `{"title": "A", "size": 100}`, "img is required"},
		{"zero size", `{"title": "A", "img": "a.png"}`, "size must be positive"},
		{"negative offset", `{"title": "A", "img": "a.png", "size": 100, "left": -1}`, "cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "set.json", tt.content)
			result := validateConfig(path)
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !hasMessage(result, tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestValidateConfig_UnknownField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "typo.json", `{"title": "A", "img": "a.png", "size": 100, "solveable": true}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected unknown key to fail validation")
	}
	if !hasMessage(result, "solveable") {
		t.Errorf("Expected the unknown key to be named, got %v", result.Errors)
	}
}

func TestValidateConfig_PictureCoversCrop(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "pic.png", 200, 150)

	fits := writeFile(t, dir, "fits.json", `{"title": "A", "img": "pic.png", "left": 50, "top": 10, "size": 120, "solvable": true}`)
	result := validateConfig(fits)
	if !result.Valid {
		t.Errorf("Expected crop to fit, got %v", result.Errors)
	}
	if !hasMessage(result, "Crop fits png picture of 200x150") {
		t.Errorf("Expected crop confirmation, got %v", result.Errors)
	}

	overflow := writeFile(t, dir, "overflow.json", `{"title": "A", "img": "pic.png", "left": 100, "top": 0, "size": 120}`)
	result = validateConfig(overflow)
	if result.Valid {
		t.Error("Expected crop overflow to fail")
	}
}

func TestValidateConfig_UndecodablePicture(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pic.png", "not a picture")
	path := writeFile(t, dir, "set.json", `{"title": "A", "img": "pic.png", "size": 100}`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected undecodable picture to fail")
	}
}

func TestValidateConfig_UnsolvableNote(t *testing.T) {
	path := writeFile(t, t.TempDir(), "screw.json", `{"title": "Screw", "img": "s.png", "size": 480, "solvable": false}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, got %v", result.Errors)
	}
	if !hasMessage(result, "Deliberately unsolvable") {
		t.Errorf("Expected unsolvable note, got %v", result.Errors)
	}
}

func TestWholePixelSizes(t *testing.T) {
	if got, want := wholePixelSizes(480), []int{2, 3, 4, 5, 6, 8}; !reflect.DeepEqual(got, want) {
		t.Errorf("wholePixelSizes(480) = %v, want %v", got, want)
	}
	if got := wholePixelSizes(7); len(got) != 1 || got[0] != 7 {
		t.Errorf("wholePixelSizes(7) = %v, want [7]", got)
	}
	if got := wholePixelSizes(0.5); len(got) != 0 {
		t.Errorf("wholePixelSizes(0.5) = %v, want none", got)
	}
}

func TestRepositoryConfigs(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "configs", "*.json"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no puzzle sets in ../configs")
	}
	for _, file := range files {
		if result := validateConfig(file); !result.Valid {
			t.Errorf("%s: %v", result.File, result.Errors)
		}
	}
}
