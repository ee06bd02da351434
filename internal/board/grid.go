package board

import "math/rand/v2"

type point struct{ row, col int }

type grid struct {
	rows, cols int
	cells      [][]Cell
}

func newGrid(rows, cols int) *grid {
	g := &grid{rows: rows, cols: cols}
	g.cells = make([][]Cell, rows)
	for r := range g.cells {
		g.cells[r] = make([]Cell, cols)
	}
	return g
}

func (g *grid) in(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.rows && col < g.cols
}

func (g *grid) at(row, col int) *Cell {
	return &g.cells[row][col]
}

// around calls fn for every in-bounds 8-neighbor of (row, col).
func (g *grid) around(row, col int, fn func(nr, nc int)) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			nr, nc := row+dr, col+dc
			if g.in(nr, nc) {
				fn(nr, nc)
			}
		}
	}
}

func near(row, col, ar, ac int) bool {
	return absInt(row-ar) <= 1 && absInt(col-ac) <= 1
}

// placeMines scatters mines outside the 3x3 block around (ar, ac). Sparse
// boards use rejection sampling over the whole grid; dense ones draw from
// the free-cell list so the draw count stays bounded by mines.
func (g *grid) placeMines(rng *rand.Rand, mines, ar, ac int) {
	total := g.rows * g.cols
	excluded := 1
	g.around(ar, ac, func(int, int) { excluded++ })
	free := total - excluded

	if mines*2 <= free {
		for placed := 0; placed < mines; {
			idx := rng.IntN(total)
			row, col := idx/g.cols, idx%g.cols
			if near(row, col, ar, ac) || g.cells[row][col].IsMine {
				continue
			}
			g.setMine(row, col)
			placed++
		}
		return
	}

	candidates := make([]int, 0, free)
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			if !near(row, col, ar, ac) {
				candidates = append(candidates, row*g.cols+col)
			}
		}
	}
	for i := 0; i < mines; i++ {
		j := i + rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
		g.setMine(candidates[i]/g.cols, candidates[i]%g.cols)
	}
}

func (g *grid) setMine(row, col int) {
	c := g.at(row, col)
	c.IsMine = true
	c.Adjacent = 0
	g.around(row, col, func(nr, nc int) {
		if n := g.at(nr, nc); !n.IsMine {
			n.Adjacent++
		}
	})
}

// flood reveals (row, col) and, through zero cells, the connected region
// behind it. It returns how many cells were newly revealed.
func (g *grid) flood(row, col int, revealed func(row, col int)) int {
	count := 0
	queue := []point{{row, col}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		c := g.at(p.row, p.col)
		if c.Revealed || c.Flagged || c.IsMine {
			continue
		}
		c.Revealed = true
		count++
		revealed(p.row, p.col)

		if c.Adjacent == 0 {
			g.around(p.row, p.col, func(nr, nc int) {
				n := g.at(nr, nc)
				if !n.Revealed && !n.Flagged {
					queue = append(queue, point{nr, nc})
				}
			})
		}
	}
	return count
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
