package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Table collects rows for display either as text or as a tview.Table.
type Table struct {
	headers []string
	rows    [][]string
	colors  []tcell.Color
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow adds a row drawn in the default text color.
func (t *Table) AddRow(cells ...string) {
	t.AddColoredRow(Theme.Text, cells...)
}

// AddColoredRow adds a row drawn in color.
func (t *Table) AddColoredRow(color tcell.Color, cells ...string) {
	for len(cells) < len(t.headers) {
		cells = append(cells, "")
	}
	t.rows = append(t.rows, cells)
	t.colors = append(t.colors, color)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the cells of data row i.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// Render builds a selectable tview table with a fixed header row.
func (t *Table) Render() *tview.Table {
	table := tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)

	for c, header := range t.headers {
		table.SetCell(0, c, tview.NewTableCell(header).
			SetTextColor(Theme.Header).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}
	for r, row := range t.rows {
		for c, text := range row {
			cell := tview.NewTableCell(text).
				SetTextColor(t.colors[r]).
				SetExpansion(1)
			if c == 0 {
				cell.SetAttributes(tcell.AttrBold)
			}
			table.SetCell(r+1, c, cell)
		}
	}
	table.SetSelectedStyle(tcell.StyleDefault.Background(Theme.Selection).Foreground(Theme.Text))
	return table
}

// String renders the table as plain text for non-interactive output.
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = tview.TaggedStringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], tview.TaggedStringWidth(cell))
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				b.WriteString("   ")
			}
			if i == len(widths)-1 {
				b.WriteString(cell)
				continue
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-tview.TaggedStringWidth(cell)))
		}
		b.WriteString("\n")
	}

	writeRow(t.headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	writeRow(sep)
	for _, row := range t.rows {
		writeRow(row)
	}
	return b.String()
}
