// Package websocket streams live board updates to watchers. Clients
// connect per session; every changed move pushes the full game state plus
// the events it produced. The connection is one-way: moves are made over
// the REST API or MCP, not over the socket.
package websocket
