// Package ui renders holder inspection views with tview, both as static text
// and as an interactive terminal table.
package ui

import (
	"github.com/gdamore/tcell/v2"
)

// Theme defines the colors of the inspection views.
var Theme = struct {
	Text      tcell.Color
	TextDim   tcell.Color
	Header    tcell.Color
	Border    tcell.Color
	Selection tcell.Color

	Converted tcell.Color // holder rendered from its timestamp
	Fallback  tcell.Color // holder echoing an unparseable raw value
	Skipped   tcell.Color // holder with an empty raw value
}{
	Text:      tcell.ColorWhite,
	TextDim:   tcell.ColorGray,
	Header:    tcell.ColorYellow,
	Border:    tcell.ColorGray,
	Selection: tcell.ColorTeal,

	Converted: tcell.ColorGreen,
	Fallback:  tcell.ColorRed,
	Skipped:   tcell.ColorGray,
}
