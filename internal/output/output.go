// Package output prints short status lines for CLI commands.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Writer provides formatted status output for CLI commands.
type Writer struct {
	out     io.Writer
	success lipgloss.Style
	warning lipgloss.Style
	hint    lipgloss.Style
}

// New creates a Writer. Colors are applied only when color is true.
func New(out io.Writer, color bool) *Writer {
	w := &Writer{
		out:     out,
		success: lipgloss.NewStyle(),
		warning: lipgloss.NewStyle(),
		hint:    lipgloss.NewStyle(),
	}
	if color {
		w.success = w.success.Foreground(lipgloss.Color("154"))
		w.warning = w.warning.Foreground(lipgloss.Color("220"))
		w.hint = w.hint.Foreground(lipgloss.Color("245"))
	}
	return w
}

// Status prints msg under a label column, or indented when label is empty.
// Errors from writing are ignored for console output.
func (w *Writer) Status(label, msg string) {
	if label == "" {
		_, _ = fmt.Fprintf(w.out, "  %s\n", msg)
		return
	}
	_, _ = fmt.Fprintf(w.out, "%-10s %s\n", label+":", msg)
}

// Statusf prints a formatted status line.
func (w *Writer) Statusf(label, format string, args ...any) {
	w.Status(label, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	_, _ = fmt.Fprintln(w.out, w.success.Render("OK "+msg))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	_, _ = fmt.Fprintln(w.out, w.warning.Render("WARN "+msg))
}

// Hint prints a dimmed suggestion.
func (w *Writer) Hint(msg string) {
	_, _ = fmt.Fprintln(w.out, w.hint.Render("hint: "+msg))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
