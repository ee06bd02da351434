package board

import (
	"errors"
	"io"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type recorder struct {
	cells   map[point]Visual
	mines   int
	elapsed int
	over    []State
	resets  int
}

func newRecorder() *recorder { return &recorder{cells: map[point]Visual{}} }

func (r *recorder) Reset(int, int) {
	r.resets++
	r.cells = map[point]Visual{}
}
func (r *recorder) RenderCell(row, col int, v Visual) { r.cells[point{row, col}] = v }
func (r *recorder) RenderMines(n int)                 { r.mines = n }
func (r *recorder) RenderElapsed(n int)               { r.elapsed = n }
func (r *recorder) GameOver(s State)                  { r.over = append(r.over, s) }

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEngine(t *testing.T, rows, cols, mines int, seed uint64) (*Engine, *fakeClock, *recorder) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	view := newRecorder()
	e, err := New(rows, cols, mines,
		WithRand(rand.New(rand.NewPCG(seed, seed+1))),
		WithClock(clock),
		WithView(view),
		WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("New(%d, %d, %d): %v", rows, cols, mines, err)
	}
	return e, clock, view
}

// rigged returns an in-progress game with mines exactly at the given spots.
func rigged(t *testing.T, rows, cols int, mines ...point) (*Engine, *fakeClock, *recorder) {
	t.Helper()
	e, clock, view := newTestEngine(t, rows, cols, len(mines), 1)
	for _, m := range mines {
		e.grid.setMine(m.row, m.col)
	}
	e.state = InProgress
	e.watch.Start(clock.Now())
	return e, clock, view
}

func countMines(e *Engine) int {
	n := 0
	for r := 0; r < e.rows; r++ {
		for c := 0; c < e.cols; c++ {
			if e.grid.at(r, c).IsMine {
				n++
			}
		}
	}
	return n
}

func bruteAdjacent(e *Engine, row, col int) int {
	n := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			r, c := row+dr, col+dc
			if (dr != 0 || dc != 0) && r >= 0 && c >= 0 && r < e.rows && c < e.cols && e.grid.cells[r][c].IsMine {
				n++
			}
		}
	}
	return n
}

func TestValidate(t *testing.T) {
	bad := [][3]int{
		{1, 1, 0},
		{1, 1, 5},
		{3, 3, 1},
		{3, 3, 0},
		{4, 4, 7},
		{0, 10, 1},
		{10, 0, 1},
		{10, 10, -1},
	}
	for _, c := range bad {
		if err := Validate(c[0], c[1], c[2]); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Validate(%d, %d, %d) = %v, want ErrInvalidConfig", c[0], c[1], c[2], err)
		}
	}
	good := [][3]int{{4, 4, 6}, {4, 4, 0}, {9, 9, 10}, {16, 30, 99}, {12, 9, 20}}
	for _, c := range good {
		if err := Validate(c[0], c[1], c[2]); err != nil {
			t.Errorf("Validate(%d, %d, %d) = %v, want nil", c[0], c[1], c[2], err)
		}
	}
}

func TestNewRejectsImpossibleConfig(t *testing.T) {
	if _, err := New(1, 1, 0, WithLogger(quietLogger())); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for 1x1, got %v", err)
	}
}

func TestStartNewGameErrorKeepsCurrentGame(t *testing.T) {
	e, _, _ := newTestEngine(t, 9, 9, 10, 3)
	e.Reveal(4, 4)
	before := e.State()
	if err := e.StartNewGame(2, 2, 1); err == nil {
		t.Fatal("expected an error for a 2x2 board")
	}
	if e.Rows() != 9 || e.Cols() != 9 || e.MineCount() != 10 || e.State() != before {
		t.Fatalf("game changed after rejected restart: %dx%d/%d %v", e.Rows(), e.Cols(), e.MineCount(), e.State())
	}
}

func TestStartNewGameResets(t *testing.T) {
	e, clock, view := newTestEngine(t, 9, 9, 10, 4)
	e.ToggleFlag(0, 0)
	e.Reveal(4, 4)
	clock.advance(5 * time.Second)
	e.Tick(clock.Now())
	oldID := e.GameID()

	if err := e.StartNewGame(12, 9, 20); err != nil {
		t.Fatal(err)
	}
	if e.State() != NotStarted || e.Elapsed() != 0 || e.RemainingMines() != 20 {
		t.Fatalf("unexpected state after restart: %v elapsed=%d remaining=%d", e.State(), e.Elapsed(), e.RemainingMines())
	}
	if countMines(e) != 0 {
		t.Fatal("mines must not be placed before the first reveal")
	}
	if e.GameID() == oldID {
		t.Fatal("expected a fresh game id")
	}
	if view.resets != 2 || view.mines != 20 || view.elapsed != 0 {
		t.Fatalf("view not reset: resets=%d mines=%d elapsed=%d", view.resets, view.mines, view.elapsed)
	}
	clock.advance(3 * time.Second)
	e.Tick(clock.Now())
	if e.Elapsed() != 0 {
		t.Fatal("timer must not run before the first reveal")
	}
}

func TestPlacementInvariants(t *testing.T) {
	configs := [][3]int{{9, 9, 10}, {16, 30, 99}, {12, 9, 20}, {5, 5, 15}, {4, 4, 6}, {2, 8, 6}, {1, 20, 10}}
	for _, cfg := range configs {
		for seed := uint64(0); seed < 50; seed++ {
			e, _, _ := newTestEngine(t, cfg[0], cfg[1], cfg[2], seed)
			rng := rand.New(rand.NewPCG(seed, 99))
			ar, ac := rng.IntN(cfg[0]), rng.IntN(cfg[1])
			e.Reveal(ar, ac)

			if got := countMines(e); got != cfg[2] {
				t.Fatalf("%v seed %d: %d mines placed, want %d", cfg, seed, got, cfg[2])
			}
			for r := ar - 1; r <= ar+1; r++ {
				for c := ac - 1; c <= ac+1; c++ {
					if e.grid.in(r, c) && e.grid.at(r, c).IsMine {
						t.Fatalf("%v seed %d: mine at (%d,%d) next to first click (%d,%d)", cfg, seed, r, c, ar, ac)
					}
				}
			}
			for r := 0; r < e.rows; r++ {
				for c := 0; c < e.cols; c++ {
					cell := e.grid.at(r, c)
					if cell.IsMine {
						if cell.Adjacent != 0 {
							t.Fatalf("mine at (%d,%d) carries adjacency %d", r, c, cell.Adjacent)
						}
						continue
					}
					if want := bruteAdjacent(e, r, c); cell.Adjacent != want {
						t.Fatalf("%v seed %d: (%d,%d) adjacency %d, want %d", cfg, seed, r, c, cell.Adjacent, want)
					}
				}
			}
			if e.State() == Lost {
				t.Fatalf("%v seed %d: first click lost the game", cfg, seed)
			}
		}
	}
}

// expectedRegion recomputes the flood fill recursively from the first click.
func expectedRegion(e *Engine, row, col int, seen map[point]bool) {
	p := point{row, col}
	if !e.grid.in(row, col) || seen[p] || e.grid.at(row, col).IsMine {
		return
	}
	seen[p] = true
	if e.grid.at(row, col).Adjacent != 0 {
		return
	}
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			expectedRegion(e, row+dr, col+dc, seen)
		}
	}
}

func TestFloodFillRevealsExactRegion(t *testing.T) {
	for seed := uint64(0); seed < 100; seed++ {
		e, _, view := newTestEngine(t, 16, 30, 99, seed)
		e.Reveal(8, 15)

		want := map[point]bool{}
		expectedRegion(e, 8, 15, want)
		for r := 0; r < e.rows; r++ {
			for c := 0; c < e.cols; c++ {
				if got := e.grid.at(r, c).Revealed; got != want[point{r, c}] {
					t.Fatalf("seed %d: (%d,%d) revealed=%v, want %v", seed, r, c, got, want[point{r, c}])
				}
			}
		}
		if len(view.cells) != len(want) {
			t.Fatalf("seed %d: view got %d cell updates, want %d", seed, len(view.cells), len(want))
		}
	}
}

func TestFloodFillStopsAtFlags(t *testing.T) {
	e, _, _ := rigged(t, 5, 5, point{4, 4})
	e.ToggleFlag(0, 4)
	e.Reveal(0, 0)
	if c, _ := e.Cell(0, 4); c.Revealed || !c.Flagged {
		t.Fatalf("flagged cell was opened by flood fill: %+v", c)
	}
	if e.State() != InProgress {
		t.Fatalf("expected game in progress while a safe cell is flagged, got %v", e.State())
	}
}

func TestFloodFillLargeBoard(t *testing.T) {
	e, _, _ := newTestEngine(t, 300, 300, 0, 7)
	e.Reveal(150, 150)
	if e.State() != Won {
		t.Fatalf("empty 300x300 board should be won in one reveal, got %v", e.State())
	}
}

func TestFirstRevealStartsGame(t *testing.T) {
	e, clock, view := newTestEngine(t, 16, 30, 99, 11)
	if e.State() != NotStarted {
		t.Fatalf("want NotStarted, got %v", e.State())
	}
	e.Reveal(0, 0)
	if e.State() != InProgress {
		t.Fatalf("want InProgress after first reveal, got %v", e.State())
	}
	clock.advance(2500 * time.Millisecond)
	e.Tick(clock.Now())
	if e.Elapsed() != 2 || view.elapsed != 2 {
		t.Fatalf("elapsed %d (view %d), want 2", e.Elapsed(), view.elapsed)
	}
}

func TestSmallBoardFirstClickWins(t *testing.T) {
	e, _, view := rigged(t, 4, 4, point{3, 3})
	e.Reveal(1, 1)
	if e.State() != Won {
		t.Fatalf("corner mine board should open in one click, got %v", e.State())
	}
	if len(view.over) != 1 || view.over[0] != Won {
		t.Fatalf("view game over = %v", view.over)
	}
	if c, _ := e.Cell(3, 3); !c.Flagged || c.Revealed {
		t.Fatalf("mine should be auto-flagged on win: %+v", c)
	}
	if e.RemainingMines() != 0 || view.mines != 0 {
		t.Fatalf("remaining %d (view %d), want 0", e.RemainingMines(), view.mines)
	}
}

func TestSmallBoardFirstClickNeverMine(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		e, _, _ := newTestEngine(t, 4, 4, 1, seed)
		e.Reveal(1, 1)
		if e.State() == Lost {
			t.Fatalf("seed %d: first click hit a mine", seed)
		}
		allSafe := true
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				cell := e.grid.at(r, c)
				if !cell.IsMine && !cell.Revealed {
					allSafe = false
				}
			}
		}
		if allSafe != (e.State() == Won) {
			t.Fatalf("seed %d: all safe revealed=%v but state %v", seed, allSafe, e.State())
		}
	}
}

func TestWinIgnoresFlagState(t *testing.T) {
	e, _, _ := rigged(t, 4, 4, point{0, 3}, point{3, 0})
	e.ToggleFlag(0, 3)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if !e.grid.at(r, c).IsMine {
				e.Reveal(r, c)
			}
		}
	}
	if e.State() != Won {
		t.Fatalf("want Won, got %v", e.State())
	}
}

func TestToggleFlagTwiceRestores(t *testing.T) {
	e, _, view := newTestEngine(t, 9, 9, 10, 5)
	e.ToggleFlag(2, 3)
	if v := e.Visual(2, 3); v.Kind != Flagged || e.RemainingMines() != 9 || view.mines != 9 {
		t.Fatalf("after one toggle: %v remaining=%d", v.Kind, e.RemainingMines())
	}
	e.ToggleFlag(2, 3)
	if v := e.Visual(2, 3); v.Kind != Hidden || e.RemainingMines() != 10 || view.mines != 10 {
		t.Fatalf("after two toggles: %v remaining=%d", v.Kind, e.RemainingMines())
	}
}

func TestOverFlaggingGoesNegative(t *testing.T) {
	e, _, _ := newTestEngine(t, 4, 4, 1, 5)
	e.ToggleFlag(0, 0)
	e.ToggleFlag(0, 1)
	e.ToggleFlag(0, 2)
	if e.RemainingMines() != -2 {
		t.Fatalf("remaining %d, want -2", e.RemainingMines())
	}
}

func TestNoops(t *testing.T) {
	e, _, _ := rigged(t, 5, 5, point{4, 4})

	e.ToggleFlag(0, 0)
	e.Reveal(0, 0)
	if c, _ := e.Cell(0, 0); c.Revealed {
		t.Fatal("reveal on a flagged cell must do nothing")
	}

	e.Reveal(-1, 2)
	e.ToggleFlag(5, 5)
	e.ChordReveal(9, 9)

	e.Reveal(3, 3)
	e.ToggleFlag(3, 3)
	if c, _ := e.Cell(3, 3); c.Flagged {
		t.Fatal("flag on a revealed cell must do nothing")
	}
	if _, ok := e.Cell(7, 0); ok {
		t.Fatal("out of range cell reported ok")
	}
}

func TestMineHitLoses(t *testing.T) {
	e, clock, view := rigged(t, 5, 5, point{0, 0}, point{4, 4}, point{2, 4})
	e.ToggleFlag(4, 4)
	e.ToggleFlag(1, 1)
	clock.advance(3 * time.Second)
	e.Reveal(0, 0)

	if e.State() != Lost {
		t.Fatalf("want Lost, got %v", e.State())
	}
	if r, c, ok := e.Exploded(); !ok || r != 0 || c != 0 {
		t.Fatalf("exploded = (%d,%d,%v)", r, c, ok)
	}
	if v := e.Visual(2, 4); v.Kind != RevealedMine {
		t.Fatalf("unflagged mine should be revealed, got %v", v.Kind)
	}
	if c, _ := e.Cell(4, 4); c.Revealed || !c.Flagged {
		t.Fatalf("flagged mine must stay flagged and hidden: %+v", c)
	}
	if view.cells[point{2, 4}].Kind != RevealedMine {
		t.Fatal("view did not receive the mine sweep")
	}
	if len(view.over) != 1 || view.over[0] != Lost || view.elapsed != 3 {
		t.Fatalf("view over=%v elapsed=%d", view.over, view.elapsed)
	}

	clock.advance(10 * time.Second)
	e.Tick(clock.Now())
	if e.Elapsed() != 3 {
		t.Fatalf("timer kept running after loss: %d", e.Elapsed())
	}

	e.Reveal(3, 0)
	e.ToggleFlag(3, 0)
	if c, _ := e.Cell(3, 0); c.Revealed || c.Flagged {
		t.Fatal("actions after loss must do nothing")
	}
}

func TestChordRevealWithCorrectFlag(t *testing.T) {
	e, _, _ := rigged(t, 6, 6, point{0, 0}, point{5, 5}, point{5, 3})
	e.Reveal(1, 1)
	if v := e.Visual(1, 1); v.Kind != RevealedNumber || v.Number != 1 {
		t.Fatalf("(1,1) = %+v, want 1", v)
	}
	e.ToggleFlag(0, 0)
	e.ChordReveal(1, 1)

	if e.State() == Lost {
		t.Fatal("correct chord lost the game")
	}
	for _, p := range []point{{0, 1}, {0, 2}, {1, 0}, {1, 2}, {2, 0}, {2, 1}, {2, 2}} {
		if c, _ := e.Cell(p.row, p.col); !c.Revealed {
			t.Fatalf("neighbor %v not revealed by chord", p)
		}
	}
	if c, _ := e.Cell(0, 0); c.Revealed || !c.Flagged {
		t.Fatal("flagged mine opened by chord")
	}
}

func TestChordRevealWrongFlagLoses(t *testing.T) {
	e, _, view := rigged(t, 6, 6, point{0, 0}, point{5, 5})
	e.Reveal(1, 1)
	e.ToggleFlag(0, 1)
	e.ChordReveal(1, 1)

	if e.State() != Lost {
		t.Fatalf("want Lost, got %v", e.State())
	}
	if r, c, ok := e.Exploded(); !ok || r != 0 || c != 0 {
		t.Fatalf("exploded = (%d,%d,%v), want (0,0)", r, c, ok)
	}
	if c, _ := e.Cell(0, 1); !c.Flagged || c.Revealed {
		t.Fatal("wrong flag should stay in place")
	}
	if len(view.over) != 1 || view.over[0] != Lost {
		t.Fatalf("view over=%v", view.over)
	}
}

func TestChordNoops(t *testing.T) {
	e, _, _ := rigged(t, 6, 6, point{0, 0}, point{5, 5})
	e.Reveal(1, 1)

	// no flags around: count mismatch
	e.ChordReveal(1, 1)
	if c, _ := e.Cell(0, 1); c.Revealed {
		t.Fatal("chord without matching flags opened cells")
	}

	// hidden cell
	e.ChordReveal(4, 4)
	if c, _ := e.Cell(4, 5); c.Revealed {
		t.Fatal("chord on hidden cell opened cells")
	}

	// too many flags
	e.ToggleFlag(0, 0)
	e.ToggleFlag(0, 1)
	e.ChordReveal(1, 1)
	if c, _ := e.Cell(1, 0); c.Revealed {
		t.Fatal("chord with excess flags opened cells")
	}
	if e.State() != InProgress {
		t.Fatalf("want InProgress, got %v", e.State())
	}
}

func TestAdapterAliases(t *testing.T) {
	e, _, _ := rigged(t, 6, 6, point{0, 0}, point{5, 5})
	e.PrimaryActivate(1, 1)
	e.SecondaryActivate(0, 0)
	e.ChordActivate(1, 1)
	if c, _ := e.Cell(2, 2); !c.Revealed {
		t.Fatal("chord via adapter alias did not reveal")
	}
	if c, _ := e.Cell(0, 0); !c.Flagged {
		t.Fatal("flag via adapter alias missing")
	}
}

func TestDensePlacementTerminates(t *testing.T) {
	// 10x10 leaves 91 free cells around a center click; 90 mines is the
	// densest valid board.
	for seed := uint64(0); seed < 20; seed++ {
		e, _, _ := newTestEngine(t, 10, 10, 90, seed)
		e.Reveal(5, 5)
		if got := countMines(e); got != 90 {
			t.Fatalf("seed %d: %d mines, want 90", seed, got)
		}
	}
}

func TestHint(t *testing.T) {
	e, _, _ := newTestEngine(t, 16, 30, 99, 11)
	row, col, ok := e.Hint()
	if !ok || row != 8 || col != 15 {
		t.Fatalf("hint before first reveal = %d,%d %v, want 8,15", row, col, ok)
	}

	e, _, _ = rigged(t, 4, 4, point{0, 0}, point{3, 3})
	e.ToggleFlag(0, 1)
	e.Reveal(1, 1)
	for i := 0; i < 50; i++ {
		row, col, ok := e.Hint()
		if !ok {
			t.Fatal("no hint while safe cells remain")
		}
		c, _ := e.Cell(row, col)
		if c.IsMine || c.Revealed || c.Flagged {
			t.Fatalf("hint %d,%d is %+v", row, col, c)
		}
	}

	e.Reveal(0, 0)
	if _, _, ok := e.Hint(); ok {
		t.Fatal("hint after the game is lost")
	}
}
