package engine

// applyMove runs one ordered sweep in the given direction, sliding and
// merging tiles. It reports whether the grid changed, determined by
// comparing the full grid before and after rather than by tracking a
// dirty flag.
//
// Sweep order matters: cells are processed starting from the row or column
// adjacent to the target edge and walking away from it, so every merge
// target is a tile already at rest for this move.
func (e *GameEngine) applyMove(dir Direction) (bool, error) {
	before := e.grid.cells
	merged := make(map[*Tile]bool)

	switch dir {
	case DirectionUp:
		for row := 1; row < GridSize; row++ {
			for col := 0; col < GridSize; col++ {
				if err := e.sweepCell(row, col, dir, merged); err != nil {
					return false, err
				}
			}
		}
	case DirectionDown:
		for row := GridSize - 2; row >= 0; row-- {
			for col := 0; col < GridSize; col++ {
				if err := e.sweepCell(row, col, dir, merged); err != nil {
					return false, err
				}
			}
		}
	case DirectionLeft:
		for col := 1; col < GridSize; col++ {
			for row := 0; row < GridSize; row++ {
				if err := e.sweepCell(row, col, dir, merged); err != nil {
					return false, err
				}
			}
		}
	case DirectionRight:
		for col := GridSize - 2; col >= 0; col-- {
			for row := 0; row < GridSize; row++ {
				if err := e.sweepCell(row, col, dir, merged); err != nil {
					return false, err
				}
			}
		}
	default:
		return false, ErrInvalidDirection
	}

	return e.grid.cells != before, nil
}

// sweepCell slides the tile at (row,col) toward the target edge through
// empty cells, then merges it once into an equal-valued neighbor that is
// already at rest. Empty cells are skipped. A tile that was doubled by a
// merge earlier in the same move is never doubled again (merged set).
//
// Each cell's grid write and tile update happen together before the next
// step, so a failure mid-sweep cannot leave a half-applied cell.
func (e *GameEngine) sweepCell(row, col int, dir Direction, merged map[*Tile]bool) error {
	if e.grid.cells[row][col] == 0 {
		return nil
	}

	tile, err := e.registry.FindAt(row, col)
	if err != nil {
		return err
	}

	dr, dc := dir.delta()
	r, c := row, col

	// Slide through empty cells toward the target edge.
	for inBounds(r+dr, c+dc) && e.grid.cells[r+dr][c+dc] == 0 {
		e.grid.cells[r+dr][c+dc] = e.grid.cells[r][c]
		e.grid.cells[r][c] = 0
		r += dr
		c += dc
		tile.Row, tile.Col = r, c
	}

	// Merge once if the next cell holds an equal value.
	nr, nc := r+dr, c+dc
	if !inBounds(nr, nc) || e.grid.cells[nr][nc] != e.grid.cells[r][c] {
		return nil
	}

	target, err := e.registry.FindAt(nr, nc)
	if err != nil {
		return err
	}
	if merged[target] {
		// One merge per tile per move.
		return nil
	}

	e.grid.cells[nr][nc] *= 2
	e.grid.cells[r][c] = 0
	target.Value *= 2
	merged[target] = true
	e.registry.Remove(tile)

	e.score += target.Value
	if target.Value >= e.config.WinningValue {
		e.victory = true
	}
	return nil
}

// canShift reports whether a sweep in the given direction would change the
// grid: some tile has an empty or equal-valued cell next to it toward the
// target edge.
func (e *GameEngine) canShift(dir Direction) bool {
	dr, dc := dir.delta()
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			v := e.grid.cells[row][col]
			if v == 0 {
				continue
			}
			nr, nc := row+dr, col+dc
			if inBounds(nr, nc) && (e.grid.cells[nr][nc] == 0 || e.grid.cells[nr][nc] == v) {
				return true
			}
		}
	}
	return false
}
