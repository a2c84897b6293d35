package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hlop3z/tzstamp/internal/markup"
)

// HolderRow is one line of an inspection: a holder before and after a pass.
type HolderRow struct {
	Before markup.Holder
	After  markup.Holder
}

// State classifies what the pass did to the holder.
func (r HolderRow) State() string {
	switch {
	case r.Before.Raw == "":
		return "skipped"
	case r.After.Text == r.Before.Raw:
		return "fallback"
	default:
		return "converted"
	}
}

func (r HolderRow) color() tcell.Color {
	switch r.State() {
	case "skipped":
		return Theme.Skipped
	case "fallback":
		return Theme.Fallback
	}
	return Theme.Converted
}

// Pair zips holder lists taken before and after a refresh pass.
func Pair(before, after []markup.Holder) []HolderRow {
	rows := make([]HolderRow, 0, len(after))
	for i := range min(len(before), len(after)) {
		rows = append(rows, HolderRow{Before: before[i], After: after[i]})
	}
	return rows
}

// InspectTable builds the holder table.
func InspectTable(rows []HolderRow) *Table {
	t := NewTable("#", "TIMESTAMP", "FORMAT", "RENDERED", "TITLE", "STATE")
	for i, r := range rows {
		format := r.Before.Selector
		if format == "" {
			format = "-"
		}
		title := r.After.Title
		if !r.After.HasTitle {
			title = "-"
		}
		t.AddColoredRow(r.color(),
			fmt.Sprint(i+1),
			tview.Escape(r.Before.Raw),
			tview.Escape(format),
			tview.Escape(r.After.Text),
			tview.Escape(title),
			r.State(),
		)
	}
	return t
}

// detail describes one holder for the side panel.
func detail(r HolderRow) string {
	return fmt.Sprintf("[yellow]timestamp[-]  %s\n[yellow]format[-]     %s\n[yellow]before[-]     %s\n[yellow]after[-]      %s\n[yellow]title[-]      %s\n[yellow]state[-]      %s",
		tview.Escape(r.Before.Raw),
		tview.Escape(r.Before.Selector),
		tview.Escape(r.Before.Text),
		tview.Escape(r.After.Text),
		tview.Escape(r.After.Title),
		r.State(),
	)
}

// NewInspectApp builds the interactive inspector. Enter or selection moves the
// detail panel; q or Esc quits.
func NewInspectApp(title string, rows []HolderRow) *tview.Application {
	app := tview.NewApplication()
	table := InspectTable(rows).Render()

	info := tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	info.SetBorder(true).SetTitle(" holder ").SetBorderColor(Theme.Border)

	show := func(row int) {
		if row >= 1 && row-1 < len(rows) {
			info.SetText(detail(rows[row-1]))
		}
	}
	table.SetSelectionChangedFunc(func(row, _ int) { show(row) })
	table.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			app.Stop()
		}
	})
	table.SetBorder(true).SetTitle(" " + title + " ").SetBorderColor(Theme.Border)
	if len(rows) > 0 {
		table.Select(1, 0)
		show(1)
	}

	footer := tview.NewTextView().
		SetText(fmt.Sprintf(" %d holders  ↑/↓ select  q quit", len(rows))).
		SetTextColor(Theme.TextDim)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewFlex().
			AddItem(table, 0, 3, true).
			AddItem(info, 0, 2, false), 0, 1, true).
		AddItem(footer, 1, 0, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})
	return app.SetRoot(layout, true)
}
