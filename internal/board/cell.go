package board

// Cell is one square of the grid.
type Cell struct {
	IsMine   bool
	Adjacent int
	Revealed bool
	Flagged  bool
}

// VisualKind enumerates what a renderer can show for a cell.
type VisualKind int

const (
	Hidden VisualKind = iota
	Flagged
	RevealedBlank
	RevealedNumber
	RevealedMine
)

func (k VisualKind) String() string {
	switch k {
	case Hidden:
		return "hidden"
	case Flagged:
		return "flagged"
	case RevealedBlank:
		return "blank"
	case RevealedNumber:
		return "number"
	case RevealedMine:
		return "mine"
	}
	return "unknown"
}

// Visual is the render instruction for a single cell. Number is only set
// for RevealedNumber.
type Visual struct {
	Kind   VisualKind
	Number int
}

func visualOf(c Cell) Visual {
	switch {
	case c.Flagged:
		return Visual{Kind: Flagged}
	case !c.Revealed:
		return Visual{Kind: Hidden}
	case c.IsMine:
		return Visual{Kind: RevealedMine}
	case c.Adjacent == 0:
		return Visual{Kind: RevealedBlank}
	}
	return Visual{Kind: RevealedNumber, Number: c.Adjacent}
}
