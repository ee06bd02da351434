// Package gesture turns raw pointer presses into taps, double-taps and long
// presses. It holds no timers: the caller feeds it timestamps and polls it
// once per frame.
package gesture

import "time"

type Kind int

const (
	Tap Kind = iota
	DoubleTap
	LongPress
)

func (k Kind) String() string {
	switch k {
	case Tap:
		return "tap"
	case DoubleTap:
		return "double-tap"
	case LongPress:
		return "long-press"
	}
	return "unknown"
}

// Gesture is a recognised input at screen position X, Y.
type Gesture struct {
	Kind Kind
	X, Y int
}

// Config holds the timing and distance thresholds.
type Config struct {
	LongPress time.Duration
	DoubleTap time.Duration
	Slop      int
}

func DefaultConfig() Config {
	return Config{
		LongPress: 500 * time.Millisecond,
		DoubleTap: 300 * time.Millisecond,
		Slop:      10,
	}
}

type press struct {
	x, y         int
	lastX, lastY int
	at           time.Time
	fired        bool
}

type tap struct {
	x, y int
	at   time.Time
	ok   bool
}

// Recognizer tracks pointers by id. Mouse input can use a fixed id.
type Recognizer struct {
	cfg     Config
	presses map[int]*press
	last    tap
}

func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{cfg: cfg, presses: map[int]*press{}}
}

func (r *Recognizer) Press(id, x, y int, at time.Time) {
	r.presses[id] = &press{x: x, y: y, lastX: x, lastY: y, at: at}
}

// Move updates a held pointer. Leaving the slop radius cancels it.
func (r *Recognizer) Move(id, x, y int) {
	p, ok := r.presses[id]
	if !ok {
		return
	}
	p.lastX, p.lastY = x, y
	if r.beyondSlop(p.x, p.y, x, y) {
		delete(r.presses, id)
	}
}

// Poll fires long presses for pointers held past the threshold.
func (r *Recognizer) Poll(at time.Time) []Gesture {
	var out []Gesture
	for _, p := range r.presses {
		if p.fired || at.Sub(p.at) < r.cfg.LongPress {
			continue
		}
		p.fired = true
		out = append(out, Gesture{Kind: LongPress, X: p.lastX, Y: p.lastY})
	}
	return out
}

// Release ends a press. It returns a tap, a double-tap, or a long press
// that Poll has not reported yet. It returns false when the press was
// cancelled, unknown, or already fired as a long press.
func (r *Recognizer) Release(id int, at time.Time) (Gesture, bool) {
	p, ok := r.presses[id]
	if !ok {
		return Gesture{}, false
	}
	delete(r.presses, id)
	if p.fired {
		return Gesture{}, false
	}
	if at.Sub(p.at) >= r.cfg.LongPress {
		return Gesture{Kind: LongPress, X: p.lastX, Y: p.lastY}, true
	}

	x, y := p.lastX, p.lastY
	if r.last.ok && at.Sub(r.last.at) < r.cfg.DoubleTap && !r.beyondSlop(r.last.x, r.last.y, x, y) {
		r.last = tap{}
		return Gesture{Kind: DoubleTap, X: x, Y: y}, true
	}
	r.last = tap{x: x, y: y, at: at, ok: true}
	return Gesture{Kind: Tap, X: x, Y: y}, true
}

// Cancel drops every held pointer, e.g. when the game restarts.
func (r *Recognizer) Cancel() {
	clear(r.presses)
	r.last = tap{}
}

func (r *Recognizer) beyondSlop(x0, y0, x1, y1 int) bool {
	dx, dy := x1-x0, y1-y0
	return dx*dx+dy*dy > r.cfg.Slop*r.cfg.Slop
}
