package board

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrInvalidConfig is wrapped by every board configuration error.
var ErrInvalidConfig = errors.New("invalid board configuration")

// SafeZone is the size of the first-click neighborhood kept free of mines.
const SafeZone = 9

// Validate checks that a rows x cols board can hold mines while keeping a
// full safe zone around the first click.
func Validate(rows, cols, mines int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("%w: %dx%d board", ErrInvalidConfig, rows, cols)
	}
	if mines < 0 {
		return fmt.Errorf("%w: negative mine count %d", ErrInvalidConfig, mines)
	}
	if mines >= rows*cols-SafeZone {
		return fmt.Errorf("%w: %d mines do not fit a %dx%d board (need fewer than %d)",
			ErrInvalidConfig, mines, rows, cols, rows*cols-SafeZone)
	}
	return nil
}

type State int

const (
	NotStarted State = iota
	InProgress
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case InProgress:
		return "in-progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return "unknown"
}

// Terminal reports whether the game is over.
func (s State) Terminal() bool {
	return s == Won || s == Lost
}

// Option customises an Engine.
type Option func(*Engine)

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithView(v View) Option {
	return func(e *Engine) { e.view = v }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine owns the grid and the rules of one game at a time.
type Engine struct {
	rows, cols, mines int

	grid     *grid
	state    State
	flags    int
	revealed int

	exploded    point
	hasExploded bool

	watch Stopwatch
	clock Clock
	rng   *rand.Rand
	view  View
	log   logrus.FieldLogger
	id    uuid.UUID
}

// New builds an engine and starts its first game.
func New(rows, cols, mines int, opts ...Option) (*Engine, error) {
	e := &Engine{
		clock: SystemClock{},
		view:  NopView{},
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(e.clock.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if err := e.StartNewGame(rows, cols, mines); err != nil {
		return nil, err
	}
	return e, nil
}

// SetView replaces the output adapter. Nil installs NopView.
func (e *Engine) SetView(v View) {
	if v == nil {
		v = NopView{}
	}
	e.view = v
}

// StartNewGame discards the current grid and prepares an empty one. Mines
// are placed by the first reveal. A rejected configuration leaves the
// current game untouched.
func (e *Engine) StartNewGame(rows, cols, mines int) error {
	if err := Validate(rows, cols, mines); err != nil {
		return err
	}
	e.rows, e.cols, e.mines = rows, cols, mines
	e.grid = newGrid(rows, cols)
	e.state = NotStarted
	e.flags = 0
	e.revealed = 0
	e.exploded, e.hasExploded = point{}, false
	e.watch.Reset()
	e.id = uuid.New()

	e.logger().Info("new game")
	e.view.Reset(rows, cols)
	e.view.RenderMines(e.RemainingMines())
	e.view.RenderElapsed(0)
	return nil
}

// Reveal opens a cell. The first reveal of a game places the mines around
// it.
func (e *Engine) Reveal(row, col int) {
	if e.state.Terminal() || !e.grid.in(row, col) {
		return
	}
	c := e.grid.at(row, col)
	if c.Revealed || c.Flagged {
		return
	}
	if e.state == NotStarted {
		e.begin(row, col)
	}
	if c.IsMine {
		e.lose(row, col)
		return
	}
	e.flood(row, col)
	e.checkWin()
}

// ToggleFlag flips the flag on a hidden cell.
func (e *Engine) ToggleFlag(row, col int) {
	if e.state.Terminal() || !e.grid.in(row, col) {
		return
	}
	c := e.grid.at(row, col)
	if c.Revealed {
		return
	}
	c.Flagged = !c.Flagged
	if c.Flagged {
		e.flags++
	} else {
		e.flags--
	}
	e.emit(row, col)
	e.view.RenderMines(e.RemainingMines())
}

// ChordReveal opens every unflagged neighbor of a revealed number once the
// number of flags around it matches. A wrong flag means one of those
// neighbors is a mine and the game is lost.
func (e *Engine) ChordReveal(row, col int) {
	if e.state != InProgress || !e.grid.in(row, col) {
		return
	}
	c := e.grid.at(row, col)
	if !c.Revealed || c.Adjacent == 0 {
		return
	}

	flags := 0
	var targets []point
	e.grid.around(row, col, func(nr, nc int) {
		n := e.grid.at(nr, nc)
		switch {
		case n.Flagged:
			flags++
		case !n.Revealed:
			targets = append(targets, point{nr, nc})
		}
	})
	if flags != c.Adjacent {
		return
	}

	for _, p := range targets {
		if e.grid.at(p.row, p.col).IsMine {
			e.lose(p.row, p.col)
			return
		}
	}
	for _, p := range targets {
		e.flood(p.row, p.col)
	}
	e.checkWin()
}

// PrimaryActivate, SecondaryActivate and ChordActivate are the calls an
// input adapter makes.
func (e *Engine) PrimaryActivate(row, col int)   { e.Reveal(row, col) }
func (e *Engine) SecondaryActivate(row, col int) { e.ToggleFlag(row, col) }
func (e *Engine) ChordActivate(row, col int)     { e.ChordReveal(row, col) }

// Tick advances the elapsed-time counter. Adapters call it from their frame
// loop.
func (e *Engine) Tick(now time.Time) {
	if e.watch.Tick(now) {
		e.view.RenderElapsed(e.watch.Seconds())
	}
}

func (e *Engine) State() State   { return e.state }
func (e *Engine) Rows() int      { return e.rows }
func (e *Engine) Cols() int      { return e.cols }
func (e *Engine) MineCount() int { return e.mines }
func (e *Engine) Elapsed() int   { return e.watch.Seconds() }
func (e *Engine) GameID() string { return e.id.String() }

// RemainingMines is mines minus flags. It goes negative when the player
// over-flags.
func (e *Engine) RemainingMines() int {
	return e.mines - e.flags
}

// Cell returns a copy of the cell at (row, col).
func (e *Engine) Cell(row, col int) (Cell, bool) {
	if !e.grid.in(row, col) {
		return Cell{}, false
	}
	return *e.grid.at(row, col), true
}

func (e *Engine) Visual(row, col int) Visual {
	if !e.grid.in(row, col) {
		return Visual{Kind: Hidden}
	}
	return visualOf(*e.grid.at(row, col))
}

// Exploded reports the mine that ended a lost game.
func (e *Engine) Exploded() (row, col int, ok bool) {
	return e.exploded.row, e.exploded.col, e.hasExploded
}

// Hint suggests a hidden, unflagged cell that is safe to reveal. Before
// the first reveal every cell near the middle is safe. It reports false
// once the game is over.
func (e *Engine) Hint() (row, col int, ok bool) {
	if e.state == NotStarted {
		return e.rows / 2, e.cols / 2, true
	}
	if e.state != InProgress {
		return 0, 0, false
	}
	var options []point
	for r := 0; r < e.rows; r++ {
		for c := 0; c < e.cols; c++ {
			if cell := e.grid.at(r, c); !cell.Revealed && !cell.Flagged && !cell.IsMine {
				options = append(options, point{r, c})
			}
		}
	}
	if len(options) == 0 {
		return 0, 0, false
	}
	p := options[e.rng.IntN(len(options))]
	return p.row, p.col, true
}

func (e *Engine) begin(row, col int) {
	e.grid.placeMines(e.rng, e.mines, row, col)
	e.state = InProgress
	e.watch.Start(e.clock.Now())
	e.logger().WithFields(logrus.Fields{"row": row, "col": col}).Debug("mines placed")
}

func (e *Engine) flood(row, col int) {
	e.revealed += e.grid.flood(row, col, e.emit)
}

func (e *Engine) checkWin() {
	if e.revealed != e.rows*e.cols-e.mines {
		return
	}
	for row := 0; row < e.rows; row++ {
		for col := 0; col < e.cols; col++ {
			c := e.grid.at(row, col)
			if c.IsMine && !c.Flagged {
				c.Flagged = true
				e.flags++
				e.emit(row, col)
			}
		}
	}
	e.view.RenderMines(e.RemainingMines())
	e.finish(Won)
}

func (e *Engine) lose(row, col int) {
	e.exploded, e.hasExploded = point{row, col}, true
	for r := 0; r < e.rows; r++ {
		for c := 0; c < e.cols; c++ {
			cell := e.grid.at(r, c)
			if cell.IsMine && !cell.Flagged && !cell.Revealed {
				cell.Revealed = true
				e.emit(r, c)
			}
		}
	}
	e.finish(Lost)
}

func (e *Engine) finish(s State) {
	e.state = s
	if e.watch.Stop(e.clock.Now()) {
		e.view.RenderElapsed(e.watch.Seconds())
	}
	e.logger().WithField("elapsed", e.watch.Seconds()).Info("game " + s.String())
	e.view.GameOver(s)
}

func (e *Engine) emit(row, col int) {
	e.view.RenderCell(row, col, visualOf(*e.grid.at(row, col)))
}

func (e *Engine) logger() logrus.FieldLogger {
	return e.log.WithFields(logrus.Fields{
		"game":  e.id.String(),
		"rows":  e.rows,
		"cols":  e.cols,
		"mines": e.mines,
	})
}
