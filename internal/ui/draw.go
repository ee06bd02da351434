package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/04pril/minesweeper-web/internal/board"
	"github.com/04pril/minesweeper-web/internal/hud"
)

type theme struct {
	Name           string
	BG             color.Color
	Panel          color.Color
	Light          color.Color
	Dark           color.Color
	CellHidden     color.Color
	CellRevealed   color.Color
	CellGrid       color.Color
	CellText       color.Color
	Mine           color.Color
	Exploded       color.Color
	Flag           color.Color
	WrongFlag      color.Color
	Accent         color.Color
	Overlay        color.Color
	Digit          color.Color
	DigitOff       color.Color
	HeaderText     color.Color
	HeaderTextSoft color.Color
	One            color.Color
}

var themes = []theme{
	{
		Name:           "Classic",
		BG:             rgb(192, 192, 192),
		Panel:          rgb(192, 192, 192),
		Light:          rgb(255, 255, 255),
		Dark:           rgb(128, 128, 128),
		CellHidden:     rgb(192, 192, 192),
		CellRevealed:   rgb(214, 214, 214),
		CellGrid:       rgb(155, 155, 155),
		CellText:       rgb(15, 15, 15),
		Mine:           rgb(10, 10, 10),
		Exploded:       rgb(210, 40, 40),
		Flag:           rgb(210, 32, 32),
		WrongFlag:      rgb(180, 0, 0),
		Accent:         rgb(32, 128, 255),
		Overlay:        color.RGBA{0, 0, 0, 120},
		Digit:          rgb(215, 40, 40),
		DigitOff:       rgb(60, 20, 20),
		HeaderText:     rgb(12, 12, 12),
		HeaderTextSoft: rgb(30, 30, 30),
		One:            rgb(25, 25, 220),
	},
	{
		Name:           "Dark",
		BG:             rgb(34, 36, 42),
		Panel:          rgb(48, 51, 60),
		Light:          rgb(78, 82, 93),
		Dark:           rgb(18, 20, 26),
		CellHidden:     rgb(62, 66, 78),
		CellRevealed:   rgb(86, 90, 102),
		CellGrid:       rgb(30, 33, 41),
		CellText:       rgb(242, 242, 245),
		Mine:           rgb(245, 245, 245),
		Exploded:       rgb(200, 50, 50),
		Flag:           rgb(255, 88, 88),
		WrongFlag:      rgb(255, 25, 25),
		Accent:         rgb(107, 199, 255),
		Overlay:        color.RGBA{0, 0, 0, 140},
		Digit:          rgb(255, 98, 98),
		DigitOff:       rgb(70, 30, 30),
		HeaderText:     rgb(245, 245, 245),
		HeaderTextSoft: rgb(215, 215, 225),
		One:            rgb(120, 170, 255),
	},
}

func themeIndex(name string) int {
	for i, th := range themes {
		if strings.EqualFold(th.Name, name) {
			return i
		}
	}
	return 0
}

var numberColors = []color.Color{
	color.RGBA{},
	rgb(25, 25, 220),
	rgb(0, 130, 0),
	rgb(210, 20, 20),
	rgb(0, 0, 135),
	rgb(130, 0, 0),
	rgb(0, 128, 128),
	rgb(0, 0, 0),
	rgb(110, 110, 110),
}

var helpLines = []string{
	"Click / tap: reveal, or chord a satisfied number",
	"Right click / long-press: flag | Double-tap: chord",
	"Arrows: move cursor | Space: reveal | F: flag | C: chord",
	"H: hint | N or face: new game | T: theme | F1: help",
}

func (g *Game) Draw(screen *ebiten.Image) {
	th := themes[g.themeIdx]
	screen.Fill(th.BG)

	windowW, _ := g.Layout(g.outsideW, g.outsideH)

	// top panel (3D frame)
	drawRaisedRect(screen, outerPadding-2, 10, windowW-(outerPadding-2)*2, topPanelHeight-18, th)
	ebitenutil.DrawRect(screen, float64(outerPadding+4), 16, float64(windowW-outerPadding*2-8), 40, th.Panel)

	drawDigital(screen, outerPadding+10, 20, g.remaining, th)
	drawDigital(screen, windowW-outerPadding-10-58, 20, g.elapsed, th)

	faceSize := 28
	faceX := windowW/2 - faceSize/2
	faceY := 20
	g.faceRect = image.Rect(faceX, faceY, faceX+faceSize, faceY+faceSize)
	drawRaisedRect(screen, faceX, faceY, faceSize, faceSize, th)
	face := ":)"
	switch g.engine.State() {
	case board.Lost:
		face = "X("
	case board.Won:
		face = "B)"
	}
	drawTextCentered(screen, face, g.fontMain, faceX, faceY+6, faceSize, th.HeaderText)

	gr := g.grid()
	drawSunkenRect(screen, gr.X-2, gr.Y-2, gr.Width()+4, gr.Height()+4, th)
	g.syncLayer(th)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(gr.X), float64(gr.Y))
	screen.DrawImage(g.layer, op)

	if g.hint != nil && !g.engine.State().Terminal() {
		x, y := gr.Origin(g.hint.row, g.hint.col)
		vector.StrokeRect(screen, float32(x+2), float32(y+2), cellSize-4, cellSize-4, 2, th.Accent, false)
	}
	if g.cursorOn && !g.engine.State().Terminal() {
		x, y := gr.Origin(g.cursor.row, g.cursor.col)
		vector.StrokeRect(screen, float32(x+2), float32(y+2), cellSize-4, cellSize-4, 2, th.Accent, false)
	}

	info := fmt.Sprintf("%s  [%dx%d/%d]  Theme:%s", g.profile.Name, g.cols, g.rows, g.engine.MineCount(), th.Name)
	text.Draw(screen, info, g.fontMain, outerPadding, 10, th.HeaderTextSoft)

	if g.showHelp {
		drawOverlayPanel(screen, "HELP", helpLines, th)
	}
	switch g.engine.State() {
	case board.Won:
		drawBanner(screen, "YOU WIN!", th)
	case board.Lost:
		drawBanner(screen, "BOOM!", th)
	}
}

// syncLayer brings the offscreen board image up to date, redrawing only
// the cells the engine reported unless the whole board is stale.
func (g *Game) syncLayer(th theme) {
	w, h := g.cols*cellSize, g.rows*cellSize
	if g.layer == nil || g.layer.Bounds().Dx() != w || g.layer.Bounds().Dy() != h {
		if g.layer != nil {
			g.layer.Deallocate()
		}
		g.layer = ebiten.NewImage(w, h)
		g.fullRedraw = true
	}

	if g.fullRedraw {
		g.layer.Fill(th.BG)
		for row := 0; row < g.rows; row++ {
			for col := 0; col < g.cols; col++ {
				g.drawCell(row, col, g.engine.Visual(row, col), th)
			}
		}
		g.fullRedraw = false
		clear(g.dirty)
		return
	}
	for p, v := range g.dirty {
		g.drawCell(p.row, p.col, v, th)
	}
	clear(g.dirty)
}

func (g *Game) drawCell(row, col int, v board.Visual, th theme) {
	dst := g.layer
	px, py := col*cellSize, row*cellSize

	if v.Kind == board.Hidden || v.Kind == board.Flagged {
		drawRaisedRect(dst, px, py, cellSize, cellSize, th)
		if v.Kind == board.Flagged {
			drawFlag(dst, px, py, th)
			if g.engine.State() == board.Lost {
				if c, _ := g.engine.Cell(row, col); !c.IsMine {
					vector.StrokeLine(dst, float32(px+4), float32(py+4), float32(px+cellSize-4), float32(py+cellSize-4), 2, th.WrongFlag, false)
					vector.StrokeLine(dst, float32(px+cellSize-4), float32(py+4), float32(px+4), float32(py+cellSize-4), 2, th.WrongFlag, false)
				}
			}
		}
		return
	}

	ebitenutil.DrawRect(dst, float64(px), float64(py), cellSize, cellSize, th.CellRevealed)
	vector.StrokeRect(dst, float32(px), float32(py), cellSize, cellSize, 1, th.CellGrid, false)

	switch v.Kind {
	case board.RevealedMine:
		mineColor := th.Mine
		if r, c, ok := g.engine.Exploded(); ok && r == row && c == col {
			ebitenutil.DrawRect(dst, float64(px), float64(py), cellSize, cellSize, th.Exploded)
			mineColor = color.RGBA{0, 0, 0, 255}
		}
		vector.DrawFilledCircle(dst, float32(px+cellSize/2), float32(py+cellSize/2), 6, mineColor, false)
	case board.RevealedNumber:
		clr := numberColors[v.Number]
		if v.Number == 1 {
			clr = th.One
		}
		drawTextCentered(dst, fmt.Sprintf("%d", v.Number), g.fontMain, px, py+5, cellSize, clr)
	}
}

func drawFlag(dst *ebiten.Image, px, py int, th theme) {
	vector.DrawFilledRect(dst, float32(px+11), float32(py+6), 2, 12, th.CellText, false)
	vector.StrokeLine(dst, float32(px+11), float32(py+6), float32(px+5), float32(py+10), 1.5, th.Flag, false)
	vector.StrokeLine(dst, float32(px+5), float32(py+10), float32(px+11), float32(py+14), 1.5, th.Flag, false)
	vector.StrokeLine(dst, float32(px+11), float32(py+6), float32(px+11), float32(py+14), 1.5, th.Flag, false)
	vector.DrawFilledRect(dst, float32(px+8), float32(py+8), 3, 4, th.Flag, false)
	vector.DrawFilledRect(dst, float32(px+7), float32(py+17), 9, 2, th.CellText, false)
}

func drawOverlayPanel(screen *ebiten.Image, title string, lines []string, th theme) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	ebitenutil.DrawRect(screen, 0, 0, float64(w), float64(h), th.Overlay)
	pw := min(560, w-36)
	ph := min(280, h-36)
	px, py := (w-pw)/2, (h-ph)/2
	drawSunkenRect(screen, px, py, pw, ph, th)
	ebitenutil.DrawRect(screen, float64(px+6), float64(py+6), float64(pw-12), float64(ph-12), th.Panel)

	ff := basicfont.Face7x13
	text.Draw(screen, title, ff, px+16, py+24, th.HeaderText)
	y := py + 50
	for _, ln := range lines {
		text.Draw(screen, ln, ff, px+16, y, th.HeaderText)
		y += 20
		if y > py+ph-18 {
			break
		}
	}
}

func drawBanner(screen *ebiten.Image, label string, th theme) {
	w := screen.Bounds().Dx()
	bw := min(220, w-20)
	ebitenutil.DrawRect(screen, float64((w-bw)/2), 14, float64(bw), 30, th.Overlay)
	drawTextCentered(screen, label, basicfont.Face7x13, (w-bw)/2, 22, bw, th.Accent)
}

func drawRaisedRect(dst *ebiten.Image, x, y, w, h int, th theme) {
	ebitenutil.DrawRect(dst, float64(x), float64(y), float64(w), float64(h), th.CellHidden)
	vector.StrokeLine(dst, float32(x), float32(y), float32(x+w), float32(y), 2, th.Light, false)
	vector.StrokeLine(dst, float32(x), float32(y), float32(x), float32(y+h), 2, th.Light, false)
	vector.StrokeLine(dst, float32(x+w), float32(y), float32(x+w), float32(y+h), 2, th.Dark, false)
	vector.StrokeLine(dst, float32(x), float32(y+h), float32(x+w), float32(y+h), 2, th.Dark, false)
}

func drawSunkenRect(dst *ebiten.Image, x, y, w, h int, th theme) {
	ebitenutil.DrawRect(dst, float64(x), float64(y), float64(w), float64(h), th.Panel)
	vector.StrokeLine(dst, float32(x), float32(y), float32(x+w), float32(y), 2, th.Dark, false)
	vector.StrokeLine(dst, float32(x), float32(y), float32(x), float32(y+h), 2, th.Dark, false)
	vector.StrokeLine(dst, float32(x+w), float32(y), float32(x+w), float32(y+h), 2, th.Light, false)
	vector.StrokeLine(dst, float32(x), float32(y+h), float32(x+w), float32(y+h), 2, th.Light, false)
}

func drawTextCentered(dst *ebiten.Image, s string, f font.Face, x, y, w int, clr color.Color) {
	b := text.BoundString(f, s)
	text.Draw(dst, s, f, x+(w-b.Dx())/2, y+13, clr)
}

// drawDigital renders a saturating fixed-width seven-segment counter.
func drawDigital(dst *ebiten.Image, x, y, value int, th theme) {
	ebitenutil.DrawRect(dst, float64(x-3), float64(y-3), float64(counterDigits*18+6), 28, color.RGBA{20, 20, 20, 255})
	for i, d := range hud.Digits(value, counterDigits) {
		drawSevenSegDigit(dst, x+i*18, y, hud.Segments(d), th)
	}
}

func drawSevenSegDigit(dst *ebiten.Image, x, y, mask int, th theme) {
	seg := func(bit int, rx, ry, rw, rh float64) {
		clr := th.DigitOff
		if mask&bit != 0 {
			clr = th.Digit
		}
		ebitenutil.DrawRect(dst, float64(x)+rx, float64(y)+ry, rw, rh, clr)
	}

	seg(hud.SegA, 3, 0, 10, 2)
	seg(hud.SegB, 13, 2, 2, 9)
	seg(hud.SegC, 13, 13, 2, 9)
	seg(hud.SegD, 3, 22, 10, 2)
	seg(hud.SegE, 1, 13, 2, 9)
	seg(hud.SegF, 1, 2, 2, 9)
	seg(hud.SegG, 3, 11, 10, 2)
}

func rgb(r, g, b uint8) color.Color {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
