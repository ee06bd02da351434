package ui

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/04pril/minesweeper-web/internal/gesture"
)

var cursorMoves = map[ebiten.Key]cellPos{
	ebiten.KeyArrowUp:    {-1, 0},
	ebiten.KeyArrowDown:  {1, 0},
	ebiten.KeyArrowLeft:  {0, -1},
	ebiten.KeyArrowRight: {0, 1},
}

// activate is the primary action as players expect it: opening a hidden
// cell, or chording a revealed number.
func (g *Game) activate(row, col int) {
	if c, ok := g.engine.Cell(row, col); ok && c.Revealed {
		g.engine.ChordActivate(row, col)
		return
	}
	g.engine.PrimaryActivate(row, col)
}

func (g *Game) cellAt(x, y int) (int, int, bool) {
	return g.grid().CellAt(x, y)
}

// pressFace restarts the game when (x, y) hits the face button.
func (g *Game) pressFace(x, y int) bool {
	if !(image.Point{X: x, Y: y}).In(g.faceRect) {
		return false
	}
	g.restart()
	return true
}

func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if g.showHelp {
			g.showHelp = false
			return
		}
		if g.pressFace(mx, my) {
			return
		}
		if row, col, ok := g.cellAt(mx, my); ok {
			g.cursorOn = false
			g.activate(row, col)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		if row, col, ok := g.cellAt(mx, my); ok {
			g.engine.SecondaryActivate(row, col)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		if row, col, ok := g.cellAt(mx, my); ok {
			g.engine.ChordActivate(row, col)
		}
	}
}

func (g *Game) handleTouch(now time.Time) {
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		g.gestures.Press(int(id), x, y, now)
	}
	for _, id := range ebiten.AppendTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		g.gestures.Move(int(id), x, y)
	}

	gs := g.gestures.Poll(now)
	for _, id := range inpututil.AppendJustReleasedTouchIDs(nil) {
		if ge, ok := g.gestures.Release(int(id), now); ok {
			gs = append(gs, ge)
		}
	}

	for _, ge := range gs {
		g.applyGesture(ge)
	}
}

func (g *Game) applyGesture(ge gesture.Gesture) {
	if g.showHelp {
		g.showHelp = false
		return
	}
	if ge.Kind == gesture.Tap && g.pressFace(ge.X, ge.Y) {
		return
	}
	row, col, ok := g.cellAt(ge.X, ge.Y)
	if !ok {
		return
	}
	switch ge.Kind {
	case gesture.Tap:
		g.activate(row, col)
	case gesture.DoubleTap:
		g.engine.ChordActivate(row, col)
	case gesture.LongPress:
		g.engine.SecondaryActivate(row, col)
	}
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.themeIdx = (g.themeIdx + 1) % len(themes)
		g.fullRedraw = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.showHelp = !g.showHelp
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.showHelp = false
	}
	if g.showHelp {
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		if row, col, ok := g.engine.Hint(); ok {
			g.hint = &cellPos{row, col}
		}
	}

	for k, d := range cursorMoves {
		if inpututil.IsKeyJustPressed(k) {
			if g.cursorOn {
				g.cursor.row = clamp(g.cursor.row+d.row, 0, g.rows-1)
				g.cursor.col = clamp(g.cursor.col+d.col, 0, g.cols-1)
			}
			g.cursorOn = true
		}
	}
	if !g.cursorOn {
		return
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace), inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.activate(g.cursor.row, g.cursor.col)
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.engine.SecondaryActivate(g.cursor.row, g.cursor.col)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.engine.ChordActivate(g.cursor.row, g.cursor.col)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
