package engine

// Grid is the 4x4 board of cell values. A value of 0 means the cell is
// empty; any other value is the face value of the tile resting there.
// Grid holds no game logic beyond bounds checking.
type Grid struct {
	cells [GridSize][GridSize]int
}

// NewGrid creates an all-empty grid.
func NewGrid() *Grid {
	return &Grid{}
}

func inBounds(row, col int) bool {
	return row >= 0 && row < GridSize && col >= 0 && col < GridSize
}

// Get returns the value at the given cell.
func (g *Grid) Get(row, col int) (int, error) {
	if !inBounds(row, col) {
		return 0, ErrOutOfBounds
	}
	return g.cells[row][col], nil
}

// Set writes a value to the given cell.
func (g *Grid) Set(row, col, value int) error {
	if !inBounds(row, col) {
		return ErrOutOfBounds
	}
	g.cells[row][col] = value
	return nil
}

// IsEmpty reports whether the given cell holds no tile.
func (g *Grid) IsEmpty(row, col int) (bool, error) {
	if !inBounds(row, col) {
		return false, ErrOutOfBounds
	}
	return g.cells[row][col] == 0, nil
}

// EmptyCells returns the coordinates of every empty cell in row-major order.
func (g *Grid) EmptyCells() []CellPos {
	var empty []CellPos
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if g.cells[row][col] == 0 {
				empty = append(empty, CellPos{Row: row, Col: col})
			}
		}
	}
	return empty
}

// Full reports whether no empty cell remains.
func (g *Grid) Full() bool {
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if g.cells[row][col] == 0 {
				return false
			}
		}
	}
	return true
}

// Sum returns the total of all cell values.
func (g *Grid) Sum() int {
	total := 0
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			total += g.cells[row][col]
		}
	}
	return total
}

// Snapshot returns a detached copy of the grid as nested slices, suitable
// for JSON serialization and safe to hand to external callers.
func (g *Grid) Snapshot() [][]int {
	out := make([][]int, GridSize)
	for row := 0; row < GridSize; row++ {
		out[row] = make([]int, GridSize)
		copy(out[row], g.cells[row][:])
	}
	return out
}
