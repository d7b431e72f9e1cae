package board

// The board is the classic 15x15 cross layout: a shared ring of 52 cells,
// one private 5-cell finish track per color, and a home yard in each corner.
// All of it reduces to a handful of indices once the grid is flattened, so
// the topology is derived from constants instead of the cell grid.

type Color string

const (
	Red    Color = "red"
	Green  Color = "green"
	Yellow Color = "yellow"
	Blue   Color = "blue"
)

const (
	// RingLen is the number of shared path cells all tokens traverse.
	RingLen = 52
	// FinishLen is the number of cells in each color's private finish track.
	FinishLen = 5
	// FinishEntryStep is the color-relative step at which a token leaves the
	// ring and enters its finish track.
	FinishEntryStep = RingLen - 1
	// TokensPerPlayer is fixed by the game.
	TokensPerPlayer = 4
)

// fullStartIndex maps every color to its start cell on the ring in the full
// four-color layout. Starts are 13 cells apart.
var fullStartIndex = map[Color]int{
	Green:  0,
	Yellow: 13,
	Blue:   26,
	Red:    39,
}

// ActiveColors returns the color subset for a given player count, in seat
// order. Two- and three-player games prefer diagonally opposite corners.
func ActiveColors(playerCount int) []Color {
	switch playerCount {
	case 2:
		return []Color{Green, Blue}
	case 3:
		return []Color{Green, Yellow, Blue}
	default:
		return []Color{Red, Green, Yellow, Blue}
	}
}

// Topology is the immutable geometry for one game: which colors are in play,
// where each starts on the ring, and which ring cells are safe. Built once
// per game and shared read-only.
type Topology struct {
	Colors      []Color
	StartIndex  map[Color]int
	safeSquares map[int]struct{}
}

// New derives the topology for playerCount active colors. Safety markers are
// laid out for the full four-color board regardless of the active subset:
// each of the four start cells plus the cell eight steps ahead of it, eight
// safe squares in total.
func New(playerCount int) *Topology {
	colors := ActiveColors(playerCount)
	t := &Topology{
		Colors:      colors,
		StartIndex:  make(map[Color]int, len(colors)),
		safeSquares: make(map[int]struct{}, 8),
	}
	for _, c := range colors {
		t.StartIndex[c] = fullStartIndex[c]
	}
	for _, start := range fullStartIndex {
		t.safeSquares[start] = struct{}{}
		t.safeSquares[(start+8)%RingLen] = struct{}{}
	}
	return t
}

// RingIndex converts a color-relative step count into an absolute ring
// index. Only meaningful for 0 <= steps < FinishEntryStep.
func (t *Topology) RingIndex(c Color, steps int) int {
	return (t.StartIndex[c] + steps) % RingLen
}

// IsSafe reports whether tokens on the given ring index are immune to
// capture.
func (t *Topology) IsSafe(index int) bool {
	_, ok := t.safeSquares[index]
	return ok
}

// SafeSquares returns the safe ring indices in ascending order.
func (t *Topology) SafeSquares() []int {
	out := make([]int, 0, len(t.safeSquares))
	for i := 0; i < RingLen; i++ {
		if _, ok := t.safeSquares[i]; ok {
			out = append(out, i)
		}
	}
	return out
}
