// Package grid holds the flat rectangular cell table the evaluator works on.
// It classifies raw cell content, owns the coordinate/label codec, and reads
// and renders the tab-delimited wire format.
package grid

// Cell content markers and sentinels.
const (
	// TextMarker prefixes string literal cells.
	TextMarker = '\''
	// FormulaMarker prefixes formula cells.
	FormulaMarker = '='
	// InvalidValue replaces raw content that cannot be classified.
	// It is assigned at load time, never by the evaluator.
	InvalidValue = "#E_UNKNOWN"
)

// Kind classifies the raw content of a cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindFormula
	KindInvalid
)

// Classify returns the kind of a raw cell value.
// Numbers are non-empty runs of decimal digits (non-negative integers only).
func Classify(raw string) Kind {
	if raw == "" {
		return KindEmpty
	}
	switch raw[0] {
	case FormulaMarker:
		return KindFormula
	case TextMarker:
		return KindText
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return KindInvalid
		}
	}
	return KindNumber
}

// Formula is a formula cell in grid declaration order: its coordinate and
// the expression body with the leading marker stripped.
type Formula struct {
	Coord Coord
	Body  string
}

// Grid is an immutable-after-load rectangular table of raw cell strings.
// Cells left unset are empty.
type Grid struct {
	Rows int
	Cols int

	cells    [][]string
	formulas []Formula
}

// New creates an empty grid with the given dimensions.
func New(rows, cols int) *Grid {
	cells := make([][]string, rows)
	for i := range cells {
		cells[i] = make([]string, cols)
	}
	return &Grid{Rows: rows, Cols: cols, cells: cells}
}

// Set stores a raw value at the coordinate. Formula cells are also recorded
// in declaration order for the evaluator; unclassifiable content is replaced
// with InvalidValue. Out-of-bounds coordinates are ignored.
func (g *Grid) Set(c Coord, raw string) {
	if !g.InBounds(c) {
		return
	}
	switch Classify(raw) {
	case KindFormula:
		g.formulas = append(g.formulas, Formula{Coord: c, Body: raw[1:]})
		g.cells[c.Row][c.Col] = raw
	case KindInvalid:
		g.cells[c.Row][c.Col] = InvalidValue
	default:
		g.cells[c.Row][c.Col] = raw
	}
}

// Raw returns the raw value stored at the coordinate.
func (g *Grid) Raw(c Coord) string {
	return g.cells[c.Row][c.Col]
}

// Formulas returns the formula cells in row-major declaration order.
func (g *Grid) Formulas() []Formula {
	return g.formulas
}

// InBounds reports whether the coordinate lies within the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// ValueSource supplies display values for formula cells.
// The evaluator implements it after a Run pass.
type ValueSource interface {
	ValueAt(Coord) string
}

// ResolvedRows returns the display text of every cell: string literals are
// stripped of their marker, formula cells are looked up in values, and
// everything else (numbers, empty cells, invalid sentinels) passes through.
func (g *Grid) ResolvedRows(values ValueSource) [][]string {
	rows := make([][]string, g.Rows)
	for i := 0; i < g.Rows; i++ {
		rows[i] = make([]string, g.Cols)
		for j := 0; j < g.Cols; j++ {
			raw := g.cells[i][j]
			switch Classify(raw) {
			case KindText:
				rows[i][j] = raw[1:]
			case KindFormula:
				rows[i][j] = values.ValueAt(Coord{Row: i, Col: j})
			default:
				rows[i][j] = raw
			}
		}
	}
	return rows
}
