// Package hud holds the display math behind the board and counters.
package hud

// Minus marks the sign position returned by Digits.
const Minus = -1

func pow10(n int) int {
	v := 1
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// Clamp saturates v to what a display of the given width can show. A
// negative value gives up one digit to the minus sign.
func Clamp(v, digits int) int {
	if digits < 1 {
		return 0
	}
	hi := pow10(digits) - 1
	lo := -(pow10(digits-1) - 1)
	switch {
	case v > hi:
		return hi
	case v < lo:
		return lo
	}
	return v
}

// Digits splits a clamped value into one entry per position, most
// significant first, with Minus in front of negative numbers.
func Digits(v, digits int) []int {
	v = Clamp(v, digits)
	out := make([]int, digits)
	neg := v < 0
	if neg {
		v = -v
	}
	for i := digits - 1; i >= 0; i-- {
		out[i] = v % 10
		v /= 10
	}
	if neg {
		out[0] = Minus
	}
	return out
}

// Seven-segment bits, a through g.
const (
	SegA = 1 << (6 - iota)
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG
)

var segmentMasks = [10]int{
	0b1111110,
	0b0110000,
	0b1101101,
	0b1111001,
	0b0110011,
	0b1011011,
	0b1011111,
	0b1110000,
	0b1111111,
	0b1111011,
}

// Segments returns the lit segments for a digit, or only the middle bar for
// Minus.
func Segments(d int) int {
	if d == Minus {
		return SegG
	}
	if d < 0 || d > 9 {
		return 0
	}
	return segmentMasks[d]
}

// Grid maps screen pixels to board cells.
type Grid struct {
	X, Y       int
	CellSize   int
	Rows, Cols int
}

func (g Grid) Width() int  { return g.Cols * g.CellSize }
func (g Grid) Height() int { return g.Rows * g.CellSize }

// CellAt returns the cell under pixel (px, py).
func (g Grid) CellAt(px, py int) (row, col int, ok bool) {
	if g.CellSize <= 0 || px < g.X || py < g.Y {
		return 0, 0, false
	}
	col = (px - g.X) / g.CellSize
	row = (py - g.Y) / g.CellSize
	if row >= g.Rows || col >= g.Cols {
		return 0, 0, false
	}
	return row, col, true
}

// Origin returns the top-left pixel of a cell.
func (g Grid) Origin(row, col int) (int, int) {
	return g.X + col*g.CellSize, g.Y + row*g.CellSize
}
