package engine

import (
	"math/rand"
	"time"
)

// Spawner inserts new tiles into random empty cells. The randomness source
// is injected so games can be made reproducible; NewEngine seeds one from
// the clock, tests pass their own.
type Spawner struct {
	values []int
	rng    *rand.Rand
}

// NewSpawner creates a spawner choosing uniformly from the given values.
// A nil rng gets a time-seeded source; empty values fall back to the
// default spawnable set.
func NewSpawner(values []int, rng *rand.Rand) *Spawner {
	if len(values) == 0 {
		values = DefaultSpawnValues
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	owned := make([]int, len(values))
	copy(owned, values)
	return &Spawner{values: owned, rng: rng}
}

// Spawn picks a uniformly random empty cell and a uniformly random value
// from the spawnable set, writes the value into the grid, and registers a
// new tile there. It fails with ErrGridFull when no cell is empty.
func (s *Spawner) Spawn(grid *Grid, registry *Registry) (*Tile, error) {
	empty := grid.EmptyCells()
	if len(empty) == 0 {
		return nil, ErrGridFull
	}

	cell := empty[s.rng.Intn(len(empty))]
	value := s.values[s.rng.Intn(len(s.values))]

	tile := &Tile{Row: cell.Row, Col: cell.Col, Value: value}
	if err := grid.Set(cell.Row, cell.Col, value); err != nil {
		return nil, err
	}
	registry.Add(tile)

	return tile, nil
}
