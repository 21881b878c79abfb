package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/gridcalc/internal/cli/output"
	"github.com/leapstack-labs/gridcalc/internal/grid"
)

// GridOutput is the JSON shape of a resolved grid.
type GridOutput struct {
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Cells  [][]string  `json:"cells"`
	Errors []CellError `json:"errors"`
}

// CellError is one cell that resolved to an error marker.
type CellError struct {
	Cell   string `json:"cell"`
	Marker string `json:"marker"`
}

func renderGrid(r *output.Renderer, g *grid.Grid, rows [][]string) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return renderJSON(r.Writer(), g, rows)
	case output.ModeMarkdown:
		return renderMarkdown(r.Writer(), rows)
	case output.ModeTable:
		return renderTable(r.Writer(), rows)
	default:
		return renderPlain(r.Writer(), rows)
	}
}

// renderPlain writes the tab-delimited wire format.
func renderPlain(w io.Writer, rows [][]string) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(w io.Writer, rows [][]string) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	if len(rows) > 0 {
		headerRow := make(table.Row, len(rows[0])+1)
		headerRow[0] = ""
		for j := range rows[0] {
			headerRow[j+1] = colName(j)
		}
		t.AppendHeader(headerRow)
	}

	for i, row := range rows {
		tr := make(table.Row, len(row)+1)
		tr[0] = i + 1
		for j, cell := range row {
			if isErrorCell(cell) {
				cell = output.StyleError(cell)
			}
			tr[j+1] = cell
		}
		t.AppendRow(tr)
	}

	t.Render()
	return nil
}

func renderMarkdown(w io.Writer, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	sep := make([]string, len(rows[0]))
	for j := range rows[0] {
		header[j] = colName(j)
		sep[j] = "---"
	}
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(header, " | ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | ")); err != nil {
		return err
	}

	for _, row := range rows {
		escaped := make([]string, len(row))
		for j, cell := range row {
			escaped[j] = strings.ReplaceAll(cell, "|", "\\|")
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(escaped, " | ")); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(w io.Writer, g *grid.Grid, rows [][]string) error {
	out := GridOutput{
		Rows:   g.Rows,
		Cols:   g.Cols,
		Cells:  rows,
		Errors: []CellError{},
	}
	for i, row := range rows {
		for j, cell := range row {
			if isErrorCell(cell) {
				out.Errors = append(out.Errors, CellError{
					Cell:   grid.Coord{Row: i, Col: j}.Label(),
					Marker: cell,
				})
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// isErrorCell reports whether a display value is an error marker.
func isErrorCell(cell string) bool {
	return strings.HasPrefix(cell, "#E_")
}

// colName returns the reference letter of a column.
func colName(j int) string {
	if j < 26 {
		return string(rune('A' + j))
	}
	return string(rune('a' + j - 26))
}
