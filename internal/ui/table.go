package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one table cell. A nil style renders the text as-is.
type Cell struct {
	Text  string
	Style *lipgloss.Style
}

// Plain returns an unstyled cell.
func Plain(text string) Cell {
	return Cell{Text: text}
}

// Styled returns a cell rendered with style.
func Styled(text string, style lipgloss.Style) Cell {
	return Cell{Text: text, Style: &style}
}

// Table renders rows under a header as space-aligned columns. Cells are
// padded before styling so escape sequences never skew column widths.
type Table struct {
	headers []string
	rows    [][]Cell
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends one row. Missing trailing cells render empty; extra
// cells beyond the header count are dropped.
func (t *Table) AddRow(cells ...Cell) {
	row := make([]Cell, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the table to w. Column widths fit the widest cell; the
// last column is never padded so lines carry no trailing spaces.
func (t *Table) Render(w io.Writer, styles Styles) {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if n := lipgloss.Width(c.Text); n > widths[i] {
				widths[i] = n
			}
		}
	}

	last := len(t.headers) - 1

	headerCells := make([]string, len(t.headers))
	for i, h := range t.headers {
		headerCells[i] = styles.Header.Render(pad(h, widths[i], i == last))
	}
	_, _ = fmt.Fprintln(w, strings.Join(headerCells, "  "))

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, c := range row {
			text := pad(c.Text, widths[i], i == last)
			if c.Style != nil {
				text = c.Style.Render(text)
			}
			cells[i] = text
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

// pad right-pads text to width, except in the last column.
func pad(text string, width int, last bool) string {
	if last {
		return text
	}
	if n := width - lipgloss.Width(text); n > 0 {
		return text + strings.Repeat(" ", n)
	}
	return text
}
