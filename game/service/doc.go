// Package service defines the game service layer: the operations exposed
// to every transport (REST, WebSocket, MCP) and their shared data types.
//
// GameService is the single entry point. It coordinates three collaborators
// behind small interfaces so transports never touch them directly:
//
//   - SessionManager: session lifecycle and persistence
//   - ConfigManager: game configuration loading
//   - ScoreStore: the leaderboard of finished games
//
// All operations take a context and return detached snapshots; callers
// never receive live engine internals.
package service
