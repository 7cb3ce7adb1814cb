// Package session stores puzzle sessions.
//
// Each session owns one engine.Game, the engine.Loop that feeds it pointer
// input, and a lock that every tick and every snapshot takes. The Manager
// keeps sessions in memory under case-insensitive 4-character IDs and can
// mirror them to disk through a SessionPersistence.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", engine.DefaultBoardConfig(), set)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//	sessions := manager.List()
//
// Persistence:
//
// FilePersistence writes one JSON file per session with the board config,
// the puzzle-set name, the permutation and the move count. A restored
// session has its tiles on their cells and no round running.
//
// Locking:
//
// UpdateLastAccessed and Save take the session lock themselves. Never call
// them while holding it.
package session
