package eval

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/gridcalc/internal/grid"
)

// operator is the single pending operator of the expression scan.
type operator int

const (
	opNone operator = iota
	opAdd
	opSub
	opMul
	opDiv
)

// operatorFor maps an operator character to its operator value.
func operatorFor(ch byte) (operator, bool) {
	switch ch {
	case '+':
		return opAdd, true
	case '-':
		return opSub, true
	case '*':
		return opMul, true
	case '/':
		return opDiv, true
	}
	return opNone, false
}

// Stats summarizes a completed evaluation pass.
type Stats struct {
	// Formulas is the number of formula cells in the grid.
	Formulas int
	// References is the number of cells resolved through references.
	// Memoization keeps this at one per distinct referenced cell.
	References int
}

// Evaluator resolves every formula cell of a grid into a memoized token
// table. It is single-use: create, Run once, then query with ValueAt.
type Evaluator struct {
	grid   *grid.Grid
	cache  map[string]Token
	logger *slog.Logger
	stats  Stats
}

// New creates an evaluator over the grid. The logger receives internal
// faults only; domain errors surface as cell values.
func New(g *grid.Grid, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		grid:   g,
		cache:  make(map[string]Token),
		logger: logger,
	}
}

// Run evaluates all formula cells in declaration order. Each cell is
// resolved in isolation: a domain error becomes that cell's marker string,
// an internal fault is logged and leaves the cell empty, and in both cases
// the pass continues with the remaining cells. Run never returns an error.
func (e *Evaluator) Run() {
	e.stats.Formulas = len(e.grid.Formulas())

	for _, f := range e.grid.Formulas() {
		label := f.Coord.Label()

		// Already resolved as a transitive reference of an earlier formula.
		if _, ok := e.cache[label]; ok {
			continue
		}

		e.cache[label] = Token{} // pending
		tok, err := e.evalExpr(f.Body)
		if err != nil {
			var de *Error
			if errors.As(err, &de) {
				tok = Text(string(de.Code))
			} else {
				e.logger.Error("internal evaluation fault", "cell", label, "error", err)
				tok = Text("")
			}
		}
		e.cache[label] = tok
	}
}

// ValueAt returns the display text of a resolved formula cell. Cells never
// visited by the pass render empty.
func (e *Evaluator) ValueAt(c grid.Coord) string {
	return e.cache[c.Label()].Display()
}

// Stats returns counters from the completed pass.
func (e *Evaluator) Stats() Stats {
	return e.stats
}

// ErrorCells counts formula cells whose final value is an error marker.
func (e *Evaluator) ErrorCells() int {
	n := 0
	for _, f := range e.grid.Formulas() {
		tok := e.cache[f.Coord.Label()]
		if tok.Kind == TokenString && strings.HasPrefix(tok.Str, "#E_") {
			n++
		}
	}
	return n
}

// evalExpr scans a formula body left to right in reduced reverse-Polish
// fashion: operands push onto a stack, at most one operator is pending, and
// the pair reduces as soon as the second operand arrives. There is no
// precedence and no parenthesization.
func (e *Evaluator) evalExpr(body string) (Token, error) {
	var stack []Token
	pending := opNone

	push := func(tok Token) error {
		stack = append(stack, tok)
		if len(stack) == 2 && pending != opNone {
			res, err := apply(stack[0], stack[1], pending)
			if err != nil {
				return err
			}
			stack = stack[:0]
			stack = append(stack, res)
			pending = opNone
		}
		return nil
	}

	for i := 0; i < len(body); {
		ch := body[i]
		switch {
		case isDigit(ch):
			n, next := scanNumber(body, i)
			i = next
			if err := push(Number(float64(n))); err != nil {
				return Token{}, err
			}

		case grid.IsRefStart(ch, e.grid.Cols):
			col := grid.ColByChar(ch)
			n, next := scanNumber(body, i+1)
			i = next
			row := n - 1
			if row < 0 || row >= e.grid.Rows {
				return Token{}, domainErr(CodeInvalidRef)
			}
			tok, err := e.operand(grid.Coord{Row: row, Col: col})
			if err != nil {
				return Token{}, err
			}
			if err := push(tok); err != nil {
				return Token{}, err
			}

		default:
			if op, ok := operatorFor(ch); ok {
				if pending != opNone || len(stack) == 0 {
					return Token{}, domainErr(CodeUnexpectedSymbol)
				}
				pending = op
				i++
				continue
			}
			return Token{}, domainErr(CodeUnexpectedChar)
		}
	}

	// A trailing operator has no second operand to reduce with.
	if pending != opNone {
		return Token{}, domainErr(CodeUnexpectedSymbol)
	}
	switch len(stack) {
	case 0:
		// Empty formula body ("=").
		return Text(""), nil
	case 1:
		return stack[0], nil
	default:
		// Adjacent operands with no operator between them.
		return Token{}, domainErr(CodeUnexpectedSymbol)
	}
}

// operand produces the token for a referenced cell, reusing the cache when
// the cell was already resolved. A cache hit on the pending marker means
// the reference chain has looped back into a cell still being resolved.
func (e *Evaluator) operand(c grid.Coord) (Token, error) {
	if tok, ok := e.cache[c.Label()]; ok {
		if tok.Pending() {
			return Token{}, domainErr(CodeCrossRef)
		}
		return tok, nil
	}
	return e.resolveReference(c)
}

// resolveReference resolves an uncached referenced cell from its raw value,
// recursing into evalExpr for nested formulas. The pending marker is placed
// before classification so the mutual recursion bottoms out on cycles
// instead of recursing forever.
func (e *Evaluator) resolveReference(c grid.Coord) (Token, error) {
	label := c.Label()
	if _, ok := e.cache[label]; ok {
		return Token{}, fmt.Errorf("resolve %s: cache entry already present", label)
	}
	e.cache[label] = Token{} // pending
	e.stats.References++

	raw := e.grid.Raw(c)
	var tok Token
	switch grid.Classify(raw) {
	case grid.KindFormula:
		t, err := e.evalExpr(raw[1:])
		if err != nil {
			var de *Error
			if !errors.As(err, &de) {
				return Token{}, err
			}
			// The referenced formula failed on its own terms; its value is
			// the marker string, and arithmetic on it fails type-wise in
			// the referencing formula.
			t = Text(string(de.Code))
		}
		tok = t
	case grid.KindNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Token{}, fmt.Errorf("resolve %s: unparseable number %q: %w", label, raw, err)
		}
		tok = Number(float64(n))
	case grid.KindText:
		tok = Text(raw[1:])
	case grid.KindEmpty:
		tok = Text("")
	default:
		return Token{}, domainErr(CodeWrongRef)
	}

	e.cache[label] = tok
	return tok, nil
}

// apply reduces two operands with an operator. Both must be numeric. The
// result is truncated to an integer after every operation, and a division
// is checked for a non-finite result rather than pre-checking the divisor.
func apply(left, right Token, op operator) (Token, error) {
	if left.Kind != TokenNumber || right.Kind != TokenNumber {
		return Token{}, domainErr(CodeUnexpectedExpr)
	}

	var n float64
	switch op {
	case opAdd:
		n = left.Num + right.Num
	case opSub:
		n = left.Num - right.Num
	case opMul:
		n = left.Num * right.Num
	case opDiv:
		n = left.Num / right.Num
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return Token{}, domainErr(CodeInfinite)
		}
	default:
		return Token{}, domainErr(CodeUnknownOp)
	}

	return Number(math.Trunc(n)), nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// scanNumber parses a run of decimal digits starting at i and returns the
// value and the index just past the run. An empty run yields (0, i).
func scanNumber(s string, i int) (int, int) {
	n := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n, i
}
