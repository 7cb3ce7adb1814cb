// Package service is the business layer between the transports (REST,
// websocket, MCP) and the puzzle engine.
//
// Core Interfaces:
//
// GameService is the ctx-first facade every transport calls.
// SessionManager stores sessions; ConfigManager serves the puzzle-set
// catalog. Both are implemented outside this package (game/session and
// game/config) and injected.
//
// Time:
//
// A server runs one frame clock and calls Advance(now) on every tick. Each
// session's Loop dispatches queued pointer input and steps the game, and
// sessions that still want rendering come back as Frames for the websocket
// hub. Tap and Drag do not wait for that clock: they replay the gesture on a
// private manual clock inside the session lock and settle the tiles before
// returning, so REST and MCP callers always see a finished move.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{Size: 4})
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameService.Start(ctx, info.ID)
//	result, err := gameService.Tap(ctx, info.ID, 3, 2)
package service
