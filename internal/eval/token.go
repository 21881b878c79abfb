// Package eval resolves formula cells of a grid into concrete values.
// Evaluation is a single synchronous pass: each formula cell is lazily
// resolved into a memoized token table, with cycle detection and per-cell
// error isolation.
package eval

import "strconv"

// TokenKind tags the result of resolving a cell.
type TokenKind int

const (
	// TokenPending marks a cell whose resolution has started but not
	// finished. It only ever appears transiently in the cache; hitting it
	// during resolution means the reference chain loops back on itself.
	TokenPending TokenKind = iota
	// TokenNumber is an integer-valued numeric result.
	TokenNumber
	// TokenString is display text: string literals, empty cells and
	// error markers.
	TokenString
)

// Token is the resolved value of a cell.
type Token struct {
	Kind TokenKind
	Num  float64
	Str  string
}

// Number returns a numeric token.
func Number(n float64) Token {
	return Token{Kind: TokenNumber, Num: n}
}

// Text returns a string token.
func Text(s string) Token {
	return Token{Kind: TokenString, Str: s}
}

// Pending reports whether the token is the in-progress marker.
func (t Token) Pending() bool {
	return t.Kind == TokenPending
}

// Display returns the token's display text. Numbers render as base-10
// integers; the pending marker renders empty and never reaches output in a
// completed pass.
func (t Token) Display() string {
	if t.Kind == TokenNumber {
		return strconv.Itoa(int(t.Num))
	}
	return t.Str
}
