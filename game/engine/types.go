package engine

import "errors"

// GridSize is the fixed board dimension. The classic game is always 4x4.
const GridSize = 4

// Defaults applied when a config omits the corresponding field.
const (
	DefaultStartingTiles = 2
	DefaultWinningValue  = 2048

	// Validation constants
	MinStartingTiles = 1
	MaxStartingTiles = GridSize * GridSize
	MinWinningValue  = 8
	MaxBulkMoves     = 50
)

// DefaultSpawnValues are the values a spawned tile may take when the config
// does not override them. The choice between them is uniform.
var DefaultSpawnValues = []int{2, 4}

// Sentinel errors returned by engine operations.
var (
	// ErrOutOfBounds indicates a coordinate outside 0..GridSize-1.
	ErrOutOfBounds = errors.New("cell coordinates out of bounds")

	// ErrTileNotFound indicates no live tile occupies the requested cell.
	// During a move this means the grid and the tile registry disagree,
	// which is an internal-consistency violation.
	ErrTileNotFound = errors.New("no tile at cell")

	// ErrInvalidDirection indicates a direction other than up/down/left/right.
	ErrInvalidDirection = errors.New("invalid move direction")

	// ErrGridFull indicates a spawn was requested with no empty cells left.
	ErrGridFull = errors.New("no empty cells to spawn into")
)

// Direction is one of the four move directions.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Directions returns the four move directions in a stable order.
func Directions() []Direction {
	return []Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}
}

// ParseDirection validates a direction string from an external caller.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return Direction(s), nil
	default:
		return "", ErrInvalidDirection
	}
}

// delta returns the row/col step toward the target edge of the direction.
func (d Direction) delta() (dr, dc int) {
	switch d {
	case DirectionUp:
		return -1, 0
	case DirectionDown:
		return 1, 0
	case DirectionLeft:
		return 0, -1
	case DirectionRight:
		return 0, 1
	}
	return 0, 0
}

// CellPos identifies a single grid cell.
type CellPos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Tile is a live numbered block occupying one grid cell. Tiles are mutated
// in place (position changes on slide, value doubles on merge) so a caller
// comparing snapshots across moves can track per-tile continuity.
// Tiles are owned by the engine and never handed out directly.
type Tile struct {
	Row   int
	Col   int
	Value int
}

func (t *Tile) snapshot() TileSnapshot {
	return TileSnapshot{Row: t.Row, Col: t.Col, Value: t.Value}
}

// TileSnapshot is the read-only view of a tile exposed to callers.
type TileSnapshot struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// MoveHistoryEntry records a single move attempt.
type MoveHistoryEntry struct {
	Direction  string        `json:"direction"`
	Changed    bool          `json:"changed"`
	Score      int           `json:"score"`
	Spawned    *TileSnapshot `json:"spawned,omitempty"`
	Timestamp  int64         `json:"timestamp"`
	MoveNumber int           `json:"move_number"`
}

// GameState is a complete, detached snapshot of a game. It carries no
// references into engine-owned structures; mutating it has no effect on
// the engine it came from.
type GameState struct {
	Grid        [][]int        `json:"grid"`
	Tiles       []TileSnapshot `json:"tiles"`
	Score       int            `json:"score"`
	HighestTile int            `json:"highest_tile"`
	GameOver    bool           `json:"game_over"`
	Victory     bool           `json:"victory"`
	ConfigName  string         `json:"config_name"`

	// MoveHistory is cumulative across resets. CurrentMoves mirrors the
	// entries made since the last reset and is cleared by Reset.
	MoveHistory       []MoveHistoryEntry `json:"move_history"`
	TotalMoves        int                `json:"total_moves"`
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}
