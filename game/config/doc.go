// Package config manages the puzzle-set catalog for the sliding picture
// puzzle.
//
// A puzzle set is a JSON file in the configs directory describing one
// picture and the square region of it that gets cut into tiles:
//
//	{
//	  "title": "Harbor at Dusk",
//	  "img": "harbor.png",
//	  "story": "Fishing boats tied up for the night.",
//	  "left": 40,
//	  "top": 0,
//	  "size": 720,
//	  "solvable": true
//	}
//
// The file name without extension is the set's identifier. Sets marked
// "solvable": false are shuffled into the unreachable parity class and are
// skipped by Next and Random.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	set, err := manager.LoadConfig("harbor")
//	next, err := manager.Next(set.Name)
//	sets, err := manager.ListConfigs()
//
// Loaded sets are cached. When the directory holds no usable file the
// manager falls back to a built-in numbered picture.
package config
