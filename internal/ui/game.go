package ui

import (
	"fmt"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/04pril/minesweeper-web/internal/board"
	"github.com/04pril/minesweeper-web/internal/config"
	"github.com/04pril/minesweeper-web/internal/gesture"
	"github.com/04pril/minesweeper-web/internal/hud"
)

const (
	cellSize       = 24
	outerPadding   = 12
	topPanelHeight = 68
	counterDigits  = 3
)

type cellPos struct{ row, col int }

// Game is the ebiten front end. It owns the engine, feeds it input and
// implements board.View to keep its picture of the board current.
type Game struct {
	cfg     config.Config
	log     logrus.FieldLogger
	engine  *board.Engine
	profile config.Profile

	outsideW, outsideH int

	layer      *ebiten.Image
	dirty      map[cellPos]board.Visual
	fullRedraw bool
	rows, cols int
	remaining  int
	elapsed    int

	themeIdx int
	showHelp bool
	cursor   cellPos
	cursorOn bool
	hint     *cellPos
	faceRect image.Rectangle
	fontMain font.Face
	gestures *gesture.Recognizer
}

// New builds the game for the standard profile. The first Layout call
// reclassifies it against the real viewport.
func New(cfg config.Config, log logrus.FieldLogger, opts ...board.Option) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		log:      log,
		profile:  cfg.Profiles.Standard,
		dirty:    map[cellPos]board.Visual{},
		themeIdx: themeIndex(cfg.Theme),
		fontMain: basicfont.Face7x13,
		gestures: gesture.NewRecognizer(cfg.GestureConfig()),
	}
	opts = append([]board.Option{board.WithLogger(log)}, opts...)
	opts = append(opts, board.WithView(g))
	e, err := board.New(g.profile.Rows, g.profile.Cols, g.profile.Mines, opts...)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", g.profile.Name, err)
	}
	g.engine = e
	return g, nil
}

func (g *Game) Title() string {
	return fmt.Sprintf("Go Minesweeper - %s", g.profile.Name)
}

func (g *Game) grid() hud.Grid {
	return hud.Grid{X: outerPadding, Y: topPanelHeight, CellSize: cellSize, Rows: g.rows, Cols: g.cols}
}

// Layout keeps the logical screen tied to the board; ebiten scales it into
// whatever the window or canvas offers.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.outsideW, g.outsideH = outsideWidth, outsideHeight
	return g.cols*cellSize + outerPadding*2, topPanelHeight + g.rows*cellSize + outerPadding*2
}

func (g *Game) restart() {
	if err := g.engine.StartNewGame(g.profile.Rows, g.profile.Cols, g.profile.Mines); err != nil {
		// profiles are validated when the config loads
		g.log.WithError(err).Error("restart failed")
		return
	}
	g.gestures.Cancel()
}

func (g *Game) applyViewport() {
	p := g.cfg.Classify(g.outsideW)
	if p == g.profile {
		return
	}
	g.log.WithFields(logrus.Fields{
		"from":  g.profile.Name,
		"to":    p.Name,
		"width": g.outsideW,
	}).Info("viewport profile changed")
	g.profile = p
	g.restart()
	ebiten.SetWindowTitle(g.Title())
}

func (g *Game) Update() error {
	g.applyViewport()
	now := time.Now()
	g.engine.Tick(now)

	g.handleKeys()
	g.handleMouse()
	g.handleTouch(now)
	return nil
}

func (g *Game) Reset(rows, cols int) {
	g.rows, g.cols = rows, cols
	g.fullRedraw = true
	clear(g.dirty)
	g.hint = nil
	if g.cursor.row >= rows || g.cursor.col >= cols {
		g.cursor = cellPos{}
	}
}

func (g *Game) RenderCell(row, col int, v board.Visual) {
	g.dirty[cellPos{row, col}] = v
	g.hint = nil
}

func (g *Game) RenderMines(remaining int) { g.remaining = remaining }

func (g *Game) RenderElapsed(seconds int) { g.elapsed = seconds }

func (g *Game) GameOver(board.State) {
	// wrong flags are only drawn once the game is lost
	g.fullRedraw = true
}
