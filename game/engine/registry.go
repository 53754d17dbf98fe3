package engine

// Registry is the authoritative collection of live tiles. Iteration order
// is insertion order, which keeps test output deterministic. The registry
// and the grid are mutated in lock-step by the move engine; every non-zero
// grid cell corresponds to exactly one registered tile.
type Registry struct {
	tiles []*Tile
}

// NewRegistry creates an empty tile registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a tile.
func (r *Registry) Add(t *Tile) {
	r.tiles = append(r.tiles, t)
}

// Remove unregisters a tile, reporting whether it was present.
func (r *Registry) Remove(t *Tile) bool {
	for i, existing := range r.tiles {
		if existing == t {
			r.tiles = append(r.tiles[:i], r.tiles[i+1:]...)
			return true
		}
	}
	return false
}

// FindAt returns the tile occupying the given cell. Callers must only ask
// for cells known to be occupied; ErrTileNotFound signals that the grid
// and registry have diverged.
func (r *Registry) FindAt(row, col int) (*Tile, error) {
	for _, t := range r.tiles {
		if t.Row == row && t.Col == col {
			return t, nil
		}
	}
	return nil, ErrTileNotFound
}

// All returns the live tiles in insertion order. The returned slice is a
// copy but the tiles themselves are the engine's own; package-internal use
// only.
func (r *Registry) All() []*Tile {
	out := make([]*Tile, len(r.tiles))
	copy(out, r.tiles)
	return out
}

// Len returns the number of live tiles.
func (r *Registry) Len() int {
	return len(r.tiles)
}
