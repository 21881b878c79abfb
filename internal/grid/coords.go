package grid

import (
	"fmt"
	"strconv"
)

// MaxRefCols is the widest grid whose columns are all expressible as a
// single reference letter. Wider grids load and evaluate, but formulas
// cannot address every column.
const MaxRefCols = 52

// Coord addresses a cell by zero-based row and column.
type Coord struct {
	Row int
	Col int
}

// Label returns the alphanumeric cell label for the coordinate: a column
// letter (A-Z for columns 0-25, a-z for 26-51) followed by the 1-based row.
func (c Coord) Label() string {
	var letter byte
	switch {
	case c.Col < 26:
		letter = byte('A' + c.Col)
	default:
		letter = byte('a' + c.Col - 26)
	}
	return string(letter) + strconv.Itoa(c.Row+1)
}

// IsRefStart reports whether ch can begin a cell reference in a grid with
// the given column count: upper-case letters when the grid fits in A-Z,
// lower-case when it needs the a-z range (27-52 columns).
func IsRefStart(ch byte, cols int) bool {
	if cols <= 26 {
		return ch >= 'A' && ch < byte('A'+cols)
	}
	if cols <= MaxRefCols {
		return ch >= 'a' && ch < byte('a'+cols-26)
	}
	return false
}

// ColByChar maps a reference letter back to its zero-based column.
// The letter must satisfy IsRefStart for the same column count.
func ColByChar(ch byte) int {
	if ch >= 'a' {
		return int(ch-'a') + 26
	}
	return int(ch - 'A')
}

// ParseLabel parses an alphanumeric cell label (e.g. "C2") into a
// coordinate, validating it against the grid dimensions.
func ParseLabel(label string, rows, cols int) (Coord, error) {
	if label == "" || !IsRefStart(label[0], cols) {
		return Coord{}, fmt.Errorf("invalid cell label %q", label)
	}
	row, err := strconv.Atoi(label[1:])
	if err != nil || row < 1 || row > rows {
		return Coord{}, fmt.Errorf("invalid row in cell label %q", label)
	}
	return Coord{Row: row - 1, Col: ColByChar(label[0])}, nil
}
