// Package session manages game session lifecycle: creation with short
// random IDs, in-memory storage behind a RWMutex, idle-session eviction,
// and JSON file persistence so games survive restarts.
package session
