package eval

// Code identifies a domain-level evaluation failure. The string form is the
// stable error marker displayed in the failing cell.
type Code string

const (
	// CodeUnexpectedSymbol: operator in an invalid position, including a
	// trailing dangling operator at end of scan.
	CodeUnexpectedSymbol Code = "#E_UNEXP_SYMBOL"
	// CodeUnexpectedChar: a character that is neither operand, reference
	// nor operator.
	CodeUnexpectedChar Code = "#E_UNEXP_SYMB"
	// CodeUnexpectedExpr: a non-numeric operand in an arithmetic operation.
	CodeUnexpectedExpr Code = "#E_UNEXP_EXPR"
	// CodeInvalidRef: a reference row outside the declared grid.
	CodeInvalidRef Code = "#E_INVALID_REF"
	// CodeWrongRef: a reference to a cell with unclassifiable content.
	CodeWrongRef Code = "#E_WRONG_REF"
	// CodeCrossRef: a direct or transitive reference cycle.
	CodeCrossRef Code = "#E_CROSS_REF"
	// CodeInfinite: a division whose mathematical result is not finite.
	CodeInfinite Code = "#E_INFINITE"
	// CodeUnknownOp: unreachable via the scan, kept as a defensive check
	// in operator application.
	CodeUnknownOp Code = "#E_UNKNOWN_OP"
)

// Error is a domain evaluation error. It is expected, per-cell and
// recoverable: the Run loop converts it into the cell's displayed marker.
// Anything else escaping evaluation is an internal fault and goes to the
// diagnostic log instead.
type Error struct {
	Code Code
}

func (e *Error) Error() string {
	return string(e.Code)
}

func domainErr(code Code) error {
	return &Error{Code: code}
}
