// Package output handles rendering for CLI commands with mode detection.
//
// The renderer picks a grid rendering mode per environment: styled tables
// on a terminal, the plain tab-delimited wire format when piped, or an
// explicit mode from configuration.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Mode selects how a resolved grid is rendered.
type Mode string

const (
	// ModeAuto picks ModeTable on a TTY and ModePlain otherwise.
	ModeAuto Mode = "auto"
	// ModePlain is the tab-delimited wire format.
	ModePlain Mode = "plain"
	// ModeTable renders a styled table.
	ModeTable Mode = "table"
	// ModeMarkdown renders a pipe table.
	ModeMarkdown Mode = "markdown"
	// ModeJSON renders machine-readable JSON.
	ModeJSON Mode = "json"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
}

// NewRenderer creates a renderer for the given writers and mode.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{out: out, errOut: errOut, mode: mode}
}

// EffectiveMode resolves ModeAuto against the output writer.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if f, ok := r.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return ModeTable
	}
	return ModePlain
}

// Writer returns the output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the error writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Println writes a line to the output writer.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the output writer.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a bold section header in table mode, a bare line otherwise.
func (r *Renderer) Header(text string) {
	if r.EffectiveMode() == ModeTable {
		_, _ = fmt.Fprintln(r.out, headerStyle.Render(text))
		return
	}
	_, _ = fmt.Fprintln(r.out, text)
}

// StyleError returns the cell text styled as an error in table mode.
func StyleError(text string) string {
	return errorStyle.Render(text)
}
