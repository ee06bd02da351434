package board

// View receives render instructions from the engine. Implementations must
// not call back into the engine from these methods.
type View interface {
	// Reset is sent when a new grid replaces the old one; every cell is
	// Hidden afterwards.
	Reset(rows, cols int)
	RenderCell(row, col int, v Visual)
	RenderMines(remaining int)
	RenderElapsed(seconds int)
	GameOver(s State)
}

// NopView discards everything.
type NopView struct{}

func (NopView) Reset(int, int)              {}
func (NopView) RenderCell(int, int, Visual) {}
func (NopView) RenderMines(int)             {}
func (NopView) RenderElapsed(int)           {}
func (NopView) GameOver(State)              {}
