// Package tzstamp converts UTC timestamps into locale-formatted or relative
// strings, either one value at a time or across the timestamp holders of an
// HTML document.
//
// A holder is any element with a data-timestamp attribute:
//
//	<time data-timestamp="2024-01-10T12:00:00Z" data-time-format="relative"></time>
//
// RewriteHTML replaces each holder's text with its rendering and, for formats
// other than "full", sets a title carrying the full rendering. Open keeps a
// document live instead: holders appended to a Page are rendered on insertion.
package tzstamp

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/markup"
	"github.com/hlop3z/tzstamp/internal/timefmt"
)

// Format selects how a timestamp is displayed.
type Format = timefmt.Format

// Display formats.
const (
	Full     = timefmt.Full
	Relative = timefmt.Relative
	Short    = timefmt.Short
	TimeOnly = timefmt.TimeOnly
)

// Result is the outcome of rendering one timestamp.
// Fallback is true when Text is the raw input echoed back.
type Result = timefmt.Result

// Stats summarizes one RewriteHTML pass.
type Stats = markup.Stats

// ErrInvalidTimestamp matches, via errors.Is, the error of a Result whose
// input could not be parsed.
var ErrInvalidTimestamp error = alerr.New(alerr.ErrTimestampInvalid, "invalid timestamp")

// Formatter renders timestamps. It holds configuration only and is safe for
// concurrent use; RewriteHTML works on a private document per call.
type Formatter struct {
	fmt       *timefmt.Formatter
	refresher *markup.Refresher
}

// New creates a Formatter.
func New(opts ...Option) *Formatter {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	locale, err := timefmt.LookupLocale(cfg.Locale)
	if err != nil {
		logger.Warn("unknown locale, using default", "locale", cfg.Locale, "default", locale.Tag)
	}

	fopts := []timefmt.Option{timefmt.WithLocale(locale), timefmt.WithLogger(logger)}
	if cfg.Location != nil {
		fopts = append(fopts, timefmt.WithLocation(cfg.Location))
	}
	if cfg.Clock != nil {
		fopts = append(fopts, timefmt.WithClock(cfg.Clock))
	}
	f := timefmt.New(fopts...)

	attrs := markup.Attrs{
		Timestamp: cfg.Attributes.Timestamp,
		Format:    cfg.Attributes.Format,
		Title:     cfg.Attributes.Title,
	}
	return &Formatter{fmt: f, refresher: markup.NewRefresher(f, attrs)}
}

// ParseFormat maps a selector string to a Format. Unknown or empty
// selectors return Full and false.
func ParseFormat(s string) (Format, bool) {
	return timefmt.ParseFormat(s)
}

// Formats lists the known display formats.
func Formats() []Format {
	return timefmt.Formats()
}

// Convert renders raw in format. Empty input returns "", and input that
// cannot be parsed is returned unchanged.
func (f *Formatter) Convert(raw string, format Format) string {
	return f.fmt.Convert(raw, format)
}

// Render is Convert with the fallback made explicit.
func (f *Formatter) Render(raw string, format Format) Result {
	return f.fmt.Render(raw, format)
}

// RelativeTime renders t relative to the formatter's clock.
func (f *Formatter) RelativeTime(t time.Time) string {
	return f.fmt.RelativeTime(t)
}

// Locale returns the resolved locale tag.
func (f *Formatter) Locale() string {
	return f.fmt.Locale().Tag
}

// RewriteHTML reads a document from r, rewrites its holders and writes it to w.
func (f *Formatter) RewriteHTML(r io.Reader, w io.Writer) (Stats, error) {
	doc, err := markup.Parse(r)
	if err != nil {
		return Stats{}, err
	}
	stats := f.refresher.RefreshAll(doc)
	if err := doc.Render(w); err != nil {
		return stats, err
	}
	return stats, nil
}

// RewriteString is RewriteHTML over a string.
func (f *Formatter) RewriteString(s string) (string, Stats, error) {
	var b strings.Builder
	stats, err := f.RewriteHTML(strings.NewReader(s), &b)
	return b.String(), stats, err
}
