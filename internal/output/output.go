// Package output formats CLI command output.
//
// Commands write through a Writer instead of printing directly so status
// lines, outcomes, and indentation look the same across subcommands. The
// bracket markers match the style doctor uses for check results. Anything
// destined for stdout in serve mode bypasses this package entirely: the
// stdio transport owns stdout.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Outcome markers. Status accepts arbitrary markers; these are the ones
// commands share.
const (
	MarkerOK   = "[ok]"
	MarkerWarn = "[warn]"
	MarkerFail = "[fail]"
)

// Writer formats output for one command invocation.
type Writer struct {
	out io.Writer
}

// New creates a Writer over out.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints one line with a marker prefix. An empty marker indents the
// line under the previous one. Write errors are ignored for console output.
func (w *Writer) Status(marker, msg string) {
	if marker != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", marker, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "  %s\n", msg)
	}
}

// Statusf prints a formatted status line.
func (w *Writer) Statusf(marker, format string, args ...any) {
	w.Status(marker, fmt.Sprintf(format, args...))
}

// Success prints a success outcome.
func (w *Writer) Success(msg string) {
	w.Status(MarkerOK, msg)
}

// Successf prints a formatted success outcome.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning outcome.
func (w *Writer) Warning(msg string) {
	w.Status(MarkerWarn, msg)
}

// Warningf prints a formatted warning outcome.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints a failure outcome.
func (w *Writer) Error(msg string) {
	w.Status(MarkerFail, msg)
}

// Errorf prints a formatted failure outcome.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Code prints content as an indented block, set off by blank lines. Used
// for YAML and JSON excerpts in config output.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
