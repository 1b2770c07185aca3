package cloth

import "fmt"

// Lattice describes a Width x Height grid of nodes.
//
// Arena addressing keeps the convention idx(x, y) = Height*y + x, reading x as
// the step inside a column and y as the column. That is the only reading that
// maps every lattice point onto [0, Width*Height) when Width != Height, and it
// reproduces the historical indices for square nets.
type Lattice struct {
	Width  int
	Height int
}

func (l Lattice) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, l.Width, l.Height)
	}
	return nil
}

// Count is the number of nodes in the lattice.
func (l Lattice) Count() int { return l.Width * l.Height }

// Index returns the arena index of the node at row in [0, Height) of column
// col in [0, Width).
func (l Lattice) Index(row, col int) int { return l.Height*col + row }

// Coord is the inverse of Index.
func (l Lattice) Coord(i int) (row, col int) { return i % l.Height, i / l.Height }

// Contains reports whether (row, col) lies inside the lattice.
func (l Lattice) Contains(row, col int) bool {
	return row >= 0 && row < l.Height && col >= 0 && col < l.Width
}

// Corners returns the arena indices bound to anchors 0 through 3.
func (l Lattice) Corners() [4]int {
	return [4]int{
		l.Index(0, 0),
		l.Index(0, l.Width-1),
		l.Index(l.Height-1, 0),
		l.Index(l.Height-1, l.Width-1),
	}
}

// neighborOffsets lists (drow, dcol) in wiring order: left, up, right, down.
var neighborOffsets = [MaxNeighbors][2]int{
	{-1, 0},
	{0, -1},
	{1, 0},
	{0, 1},
}

// Neighbors returns the in-lattice neighbor indices of node i in wiring order.
func (l Lattice) Neighbors(i int) []int {
	row, col := l.Coord(i)
	out := make([]int, 0, MaxNeighbors)
	for _, off := range neighborOffsets {
		r, c := row+off[0], col+off[1]
		if l.Contains(r, c) {
			out = append(out, l.Index(r, c))
		}
	}
	return out
}
