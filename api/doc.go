// Package api exposes the game over REST. Sessions are created, played,
// and inspected under /api/sessions; configurations live under
// /api/configs and the leaderboard under /api/leaderboard. Moves that
// change a board are pushed to WebSocket watchers through the hub.
package api
