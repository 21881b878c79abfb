package grid

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Read loads a grid from its tab-delimited wire format: a header line with
// the row and column counts, then one line per row with tab-separated cells.
// Rows and cells missing from the input stay empty; extra rows and columns
// beyond the declared dimensions are dropped with a debug log.
func Read(r io.Reader, logger *slog.Logger) (*Grid, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		return nil, fmt.Errorf("missing table header")
	}

	var rows, cols int
	if _, err := fmt.Sscan(sc.Text(), &rows, &cols); err != nil {
		return nil, fmt.Errorf("malformed table header %q: %w", sc.Text(), err)
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("incorrect table header: rows=%d, cols=%d", rows, cols)
	}
	if cols > MaxRefCols {
		logger.Warn("grid wider than reference range, some columns cannot be referenced",
			"cols", cols, "max", MaxRefCols)
	}

	g := New(rows, cols)

	row := 0
	for sc.Scan() {
		if row == rows {
			logger.Debug("more lines than declared, skipping the rest", "rows", rows)
			break
		}
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) > cols {
			logger.Debug("extra columns in line, truncating", "line", row+1, "cols", cols)
			fields = fields[:cols]
		}
		for col, raw := range fields {
			g.Set(Coord{Row: row, Col: col}, raw)
		}
		row++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table body: %w", err)
	}

	return g, nil
}
