package markup

import (
	"github.com/hlop3z/tzstamp/internal/timefmt"
)

// Stats summarizes one refresh pass.
type Stats struct {
	Holders   int // elements carrying the timestamp attribute
	Converted int // holders whose text was formatted
	Fallbacks int // holders whose raw value was echoed back
	Skipped   int // holders with an empty raw value, left untouched
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Holders += other.Holders
	s.Converted += other.Converted
	s.Fallbacks += other.Fallbacks
	s.Skipped += other.Skipped
}

// Refresher rewrites timestamp holders using a formatter.
type Refresher struct {
	formatter *timefmt.Formatter
	attrs     Attrs
}

// NewRefresher creates a Refresher. Empty attribute names take DefaultAttrs values.
func NewRefresher(f *timefmt.Formatter, attrs Attrs) *Refresher {
	return &Refresher{formatter: f, attrs: attrs.WithDefaults()}
}

// Attrs returns the markup contract in use.
func (r *Refresher) Attrs() Attrs {
	return r.attrs
}

// Formatter returns the formatter in use.
func (r *Refresher) Formatter() *timefmt.Formatter {
	return r.formatter
}

// RefreshAll rewrites every holder in the document. Each holder's text becomes
// its own timestamp rendered in its own format; holders whose selector is not
// "full" also get the full rendering as a title. A holder that fails to
// format keeps its raw value and does not stop the pass.
func (r *Refresher) RefreshAll(d *Document) Stats {
	var stats Stats

	for _, n := range r.attrs.Holders(d.Root()) {
		stats.Holders++

		raw, _ := Attr(n, r.attrs.Timestamp)
		if raw == "" {
			stats.Skipped++
			continue
		}

		selector, _ := Attr(n, r.attrs.Format)
		if selector == "" {
			selector = string(timefmt.Full)
		}

		res := r.formatter.Render(raw, timefmt.Format(selector))
		SetText(n, res.Text)

		if selector != string(timefmt.Full) {
			SetAttr(n, r.attrs.Title, r.formatter.Convert(raw, timefmt.Full))
		}

		if res.Fallback {
			stats.Fallbacks++
		} else {
			stats.Converted++
		}
	}

	return stats
}
