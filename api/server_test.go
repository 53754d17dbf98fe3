package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jfelder/twenty48/game/config"
	"github.com/jfelder/twenty48/game/service"
	"github.com/jfelder/twenty48/game/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	configJSON := `{"name": "Doubles", "description": "Only spawns twos", "spawn_values": [2]}`
	if err := os.WriteFile(filepath.Join(dir, "doubles.json"), []byte(configJSON), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	configManager, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	sessionManager := session.NewManager(nil)
	gameService := service.NewGameService(sessionManager, configManager, nil)
	return NewServer(gameService, nil)
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, server *Server) string {
	t.Helper()

	rec := doRequest(t, server, "POST", "/api/sessions", map[string]string{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var info service.SessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to parse session response: %v", err)
	}
	return info.ID
}

func TestCreateSessionEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, "POST", "/api/sessions", map[string]string{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}

	var info service.SessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if info.ID == "" {
		t.Error("Expected a session ID")
	}
	if info.GameState == nil || len(info.GameState.Tiles) == 0 {
		t.Error("Expected a populated starting board")
	}
}

func TestCreateSessionWithConfig(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, "POST", "/api/sessions", map[string]string{"config_id": "doubles"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var info service.SessionInfo
	json.Unmarshal(rec.Body.Bytes(), &info)
	if info.ConfigName != "Doubles" {
		t.Errorf("Expected Doubles config, got %q", info.ConfigName)
	}
}

func TestCreateSessionUnknownConfigFails(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, "POST", "/api/sessions", map[string]string{"config_id": "nope"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestGetStateEndpoint(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server)

	rec := doRequest(t, server, "GET", "/api/sessions/"+id+"/state", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var state struct {
		Grid  [][]int `json:"grid"`
		Score int     `json:"score"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("Failed to parse state: %v", err)
	}
	if len(state.Grid) != 4 {
		t.Errorf("Expected 4 grid rows, got %d", len(state.Grid))
	}
}

func TestMoveEndpoint(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server)

	rec := doRequest(t, server, "POST", "/api/sessions/"+id+"/move",
		map[string]interface{}{"direction": "left"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.MoveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse move result: %v", err)
	}
	if result.GameState == nil {
		t.Fatal("Expected a game state in the result")
	}
	if result.GameState.TotalMoves != 1 {
		t.Errorf("Expected 1 recorded move, got %d", result.GameState.TotalMoves)
	}
}

func TestMoveInvalidDirectionReturns400(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server)

	rec := doRequest(t, server, "POST", "/api/sessions/"+id+"/move",
		map[string]interface{}{"direction": "sideways"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestMoveUnknownSessionReturns404(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, "POST", "/api/sessions/zzzz/move",
		map[string]interface{}{"direction": "up"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestBulkMoveEndpoint(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server)

	rec := doRequest(t, server, "POST", "/api/sessions/"+id+"/bulk-move",
		map[string]interface{}{"moves": []string{"up", "left", "down"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.BulkMoveResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse bulk result: %v", err)
	}
	if result.RequestedMoves != 3 {
		t.Errorf("Expected 3 requested moves, got %d", result.RequestedMoves)
	}
}

func TestResetEndpoint(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server)

	doRequest(t, server, "POST", "/api/sessions/"+id+"/move",
		map[string]interface{}{"direction": "left"})

	rec := doRequest(t, server, "POST", "/api/sessions/"+id+"/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		State struct {
			Score             int `json:"score"`
			CurrentMovesCount int `json:"current_moves_count"`
		} `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse reset response: %v", err)
	}
	if resp.State.Score != 0 || resp.State.CurrentMovesCount != 0 {
		t.Error("Expected a fresh game after reset")
	}
}

func TestHistoryEndpoint(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server)

	for _, dir := range []string{"up", "left", "down", "right", "up"} {
		doRequest(t, server, "POST", "/api/sessions/"+id+"/move",
			map[string]interface{}{"direction": dir})
	}

	rec := doRequest(t, server, "GET",
		fmt.Sprintf("/api/sessions/%s/history?page=1&limit=3&order=asc", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var history service.HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("Failed to parse history: %v", err)
	}
	if history.TotalMoves != 5 {
		t.Errorf("Expected 5 total moves, got %d", history.TotalMoves)
	}
	if len(history.Moves) != 3 {
		t.Errorf("Expected 3 moves on the page, got %d", len(history.Moves))
	}
	if history.Moves[0].MoveNumber != 1 {
		t.Errorf("Expected ascending order, first move was %d", history.Moves[0].MoveNumber)
	}
}

func TestDeleteSessionEndpoint(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server)

	rec := doRequest(t, server, "DELETE", "/api/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, server, "GET", "/api/sessions/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
}

func TestListConfigsEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, "GET", "/api/configs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var configs []service.ConfigInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &configs); err != nil {
		t.Fatalf("Failed to parse configs: %v", err)
	}
	if len(configs) != 1 || configs[0].ConfigID != "doubles" {
		t.Errorf("Expected [doubles], got %+v", configs)
	}
}

func TestCreateConfigEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, "POST", "/api/configs", map[string]interface{}{
		"name":        "Custom",
		"description": "Saved over the API",
		"spawn_values": []int{
			2, 4,
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, server, "GET", "/api/configs/Custom", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected saved config to load, got %d", rec.Code)
	}
}

func TestLeaderboardEndpointWithoutStore(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, "GET", "/api/leaderboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp struct {
		Count   int                  `json:"count"`
		Entries []service.ScoreEntry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse leaderboard: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("Expected empty leaderboard, got %d entries", resp.Count)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, "GET", "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}
