package eval

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/leapstack-labs/gridcalc/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustGrid loads a grid from its wire format, with rows joined by newlines
// and cells by tabs.
func mustGrid(t *testing.T, header string, rows ...string) *grid.Grid {
	t.Helper()
	input := header + "\n" + strings.Join(rows, "\n") + "\n"
	g, err := grid.Read(strings.NewReader(input), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return g
}

func runEval(t *testing.T, header string, rows ...string) (*grid.Grid, *Evaluator) {
	t.Helper()
	g := mustGrid(t, header, rows...)
	ev := New(g, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ev.Run()
	return g, ev
}

func cells(cols ...string) string {
	return strings.Join(cols, "\t")
}

func TestEvaluator_WorkedExample(t *testing.T) {
	g, ev := runEval(t, "3\t4",
		cells("12", "=C2", "3", "'Sample"),
		cells("=A1+B1*C1/5", "=A2*B1", "=B3-C3", "'Spread"),
		cells("'Test", "=4-3", "5", "'Sheet"),
	)

	want := [][]string{
		{"12", "-4", "3", "Sample"},
		{"4", "-16", "-4", "Spread"},
		{"Test", "1", "5", "Sheet"},
	}
	require.Equal(t, want, g.ResolvedRows(ev))
	assert.Equal(t, 0, ev.ErrorCells())
}

func TestEvaluator_NumericAndTextPassthrough(t *testing.T) {
	g, ev := runEval(t, "1\t3", cells("42", "'hello", ""))

	require.Equal(t, [][]string{{"42", "hello", ""}}, g.ResolvedRows(ev))
}

func TestEvaluator_BareOperands(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare number", "=42", "42"},
		{"bare reference", "=B1", "7"},
		{"empty body", "=", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ev := runEval(t, "1\t2", cells(tt.body, "7"))
			assert.Equal(t, tt.want, ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
		})
	}
}

func TestEvaluator_SelfReference(t *testing.T) {
	_, ev := runEval(t, "1\t1", "=A1")

	assert.Equal(t, "#E_CROSS_REF", ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
}

func TestEvaluator_MutualReference(t *testing.T) {
	_, ev := runEval(t, "2\t1", "=A2", "=A1")

	// The cycle is detected while resolving A2, which stores the marker;
	// A1 is a bare reference and copies A2's string value.
	assert.Equal(t, "#E_CROSS_REF", ev.ValueAt(grid.Coord{Row: 1, Col: 0}))
	assert.Equal(t, "#E_CROSS_REF", ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
	assert.Equal(t, 2, ev.ErrorCells())
}

func TestEvaluator_TransitiveCycle(t *testing.T) {
	_, ev := runEval(t, "3\t1", "=A2", "=A3", "=A1")

	for row := 0; row < 3; row++ {
		assert.Equal(t, "#E_CROSS_REF", ev.ValueAt(grid.Coord{Row: row, Col: 0}), "row %d", row)
	}
}

func TestEvaluator_InvalidReference(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"row beyond grid", "=A2"},
		{"row zero", "=A0"},
		{"missing row digits", "=A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ev := runEval(t, "1\t1", tt.body)
			assert.Equal(t, "#E_INVALID_REF", ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
		})
	}
}

func TestEvaluator_DivisionByZero(t *testing.T) {
	_, ev := runEval(t, "2\t1", "=4/0", "=0/0")

	assert.Equal(t, "#E_INFINITE", ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
	assert.Equal(t, "#E_INFINITE", ev.ValueAt(grid.Coord{Row: 1, Col: 0}))
}

func TestEvaluator_LeftToRightNoPrecedence(t *testing.T) {
	_, ev := runEval(t, "1\t1", "=2+3*2")

	// (2+3)*2, not 2+(3*2).
	assert.Equal(t, "10", ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
}

func TestEvaluator_IntermediateTruncation(t *testing.T) {
	_, ev := runEval(t, "2\t1", "=7/2", "=7/2*2")

	assert.Equal(t, "3", ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
	// 7/2 truncates to 3 before the multiplication.
	assert.Equal(t, "6", ev.ValueAt(grid.Coord{Row: 1, Col: 0}))
}

func TestEvaluator_Memoization(t *testing.T) {
	_, ev := runEval(t, "2\t3",
		cells("5", "=C1+C1", "8"),
		cells("=C1*2", "", ""),
	)

	assert.Equal(t, "16", ev.ValueAt(grid.Coord{Row: 0, Col: 1}))
	assert.Equal(t, "16", ev.ValueAt(grid.Coord{Row: 1, Col: 0}))
	// C1 is referenced three times but resolved once.
	assert.Equal(t, 1, ev.Stats().References)
}

func TestEvaluator_StringOperand(t *testing.T) {
	_, ev := runEval(t, "1\t2", cells("'Txt", "=A1+1"))

	assert.Equal(t, "#E_UNEXP_EXPR", ev.ValueAt(grid.Coord{Row: 0, Col: 1}))
}

func TestEvaluator_EmptyCellReference(t *testing.T) {
	_, ev := runEval(t, "1\t3", cells("", "=A1", "=A1+1"))

	// An empty cell resolves to the empty string value: usable as a bare
	// reference, not as an arithmetic operand.
	assert.Equal(t, "", ev.ValueAt(grid.Coord{Row: 0, Col: 1}))
	assert.Equal(t, "#E_UNEXP_EXPR", ev.ValueAt(grid.Coord{Row: 0, Col: 2}))
}

func TestEvaluator_WrongReference(t *testing.T) {
	g, ev := runEval(t, "1\t2", cells("@bad", "=A1"))

	// The malformed cell itself displays the load-time sentinel; the
	// formula referencing it fails with the reference error.
	rows := g.ResolvedRows(ev)
	assert.Equal(t, "#E_UNKNOWN", rows[0][0])
	assert.Equal(t, "#E_WRONG_REF", rows[0][1])
}

func TestEvaluator_MalformedExpressions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"dangling operator", "=1+", "#E_UNEXP_SYMBOL"},
		{"leading operator", "=+1", "#E_UNEXP_SYMBOL"},
		{"double operator", "=1++2", "#E_UNEXP_SYMBOL"},
		{"adjacent operands", "=1B1", "#E_UNEXP_SYMBOL"},
		{"unexpected character", "=1+x", "#E_UNEXP_SYMB"},
		{"parenthesis", "=(1+2)", "#E_UNEXP_SYMB"},
		{"out-of-range column letter", "=Z1", "#E_UNEXP_SYMB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ev := runEval(t, "1\t2", cells(tt.body, "7"))
			assert.Equal(t, tt.want, ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
		})
	}
}

func TestEvaluator_ReferencedErrorIsolation(t *testing.T) {
	_, ev := runEval(t, "1\t3", cells("=4/0", "=A1+1", "=2*3"))

	// A1 keeps its own marker, B1 fails type-wise on the marker string,
	// and C1 is untouched by either failure.
	assert.Equal(t, "#E_INFINITE", ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
	assert.Equal(t, "#E_UNEXP_EXPR", ev.ValueAt(grid.Coord{Row: 0, Col: 1}))
	assert.Equal(t, "6", ev.ValueAt(grid.Coord{Row: 0, Col: 2}))
	assert.Equal(t, 2, ev.ErrorCells())
}

func TestEvaluator_ValueAtUnvisitedCell(t *testing.T) {
	_, ev := runEval(t, "1\t2", cells("5", "7"))

	assert.Equal(t, "", ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
}

func TestEvaluator_ForwardReferenceResolvedOnce(t *testing.T) {
	// B1 is itself a formula cell and gets resolved transitively while
	// evaluating A1; the driver loop then skips it.
	_, ev := runEval(t, "1\t2", cells("=B1+1", "=2*3"))

	assert.Equal(t, "7", ev.ValueAt(grid.Coord{Row: 0, Col: 0}))
	assert.Equal(t, "6", ev.ValueAt(grid.Coord{Row: 0, Col: 1}))
}
