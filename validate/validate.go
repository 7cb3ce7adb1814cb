// Command validate checks the puzzle set JSON files in a config directory
// (../configs by default). It checks:
//   - JSON structure, unknown keys and required fields
//   - Crop rectangle sanity (non-negative offset, positive size)
//   - Whether the referenced picture exists and covers the crop
//   - Which board sizes slice the crop into whole-pixel tiles
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single puzzle set file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	name := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	set, err := engine.ParsePuzzleSet(data, name)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	// Unknown keys are usually typos of optional fields.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var strict engine.PuzzleSet
	if err := dec.Decode(&strict); err != nil {
		result.fail("Unexpected content: %v", err)
	}

	if !set.Solvable {
		result.info("Deliberately unsolvable: shuffles will land in the other parity class")
	}

	checkPicture(&result, filepath.Dir(filePath), set)

	if sizes := wholePixelSizes(set.Size); len(sizes) > 0 {
		result.info("Whole-pixel tiles at sizes %v", sizes)
	} else {
		result.info("No board size slices %.0fpx into whole-pixel tiles", set.Size)
	}
	return result
}

// checkPicture verifies the crop fits inside the referenced picture. A
// missing picture is reported but does not fail validation, since images
// are often deployed separately from the descriptors.
func checkPicture(result *ValidationResult, dir string, set *engine.PuzzleSet) {
	path := set.Image
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		result.info("Picture %s not found locally, crop not checked", set.Image)
		return
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		result.fail("Picture %s cannot be decoded: %v", set.Image, err)
		return
	}

	right, bottom := set.Left+set.Size, set.Top+set.Size
	if right > float64(cfg.Width) || bottom > float64(cfg.Height) {
		result.fail("Crop %.0f,%.0f+%.0f exceeds %s picture of %dx%d",
			set.Left, set.Top, set.Size, format, cfg.Width, cfg.Height)
		return
	}
	result.info("Crop fits %s picture of %dx%d", format, cfg.Width, cfg.Height)
}

// wholePixelSizes lists the board sizes whose tile edge is a whole number
// of source pixels.
func wholePixelSizes(length float64) []int {
	var sizes []int
	for n := engine.MinBoardSize; n <= engine.MaxBoardSize; n++ {
		edge := length / float64(n)
		if math.Abs(edge-math.Round(edge)) < 1e-9 {
			sizes = append(sizes, n)
		}
	}
	return sizes
}

// main validates every *.json file in the config directory (first argument,
// ../configs by default), printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No puzzle sets found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All puzzle sets are valid!")
	} else {
		fmt.Println("❌ Some puzzle sets have errors")
		os.Exit(1)
	}
}
