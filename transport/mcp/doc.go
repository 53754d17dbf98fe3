// Package mcp exposes the game to AI agents over the Model Context
// Protocol. The client is a thin proxy: every tool call is translated to
// a REST API request and the response is rendered as agent-friendly text
// with the board drawn inline.
package mcp
