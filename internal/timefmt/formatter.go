// Package timefmt converts raw timestamps into locale-formatted or relative
// display strings. A Formatter holds configuration only; every call reads the
// clock fresh and keeps no state between calls.
package timefmt

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hlop3z/tzstamp/internal/alerr"
)

// Formatter renders timestamps for one locale and location.
type Formatter struct {
	locale Locale
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithLocale sets the locale used for dates and times.
func WithLocale(l Locale) Option {
	return func(f *Formatter) {
		f.locale = l
	}
}

// WithLocation sets the zone instants are rendered in.
// Default: time.Local
func WithLocation(loc *time.Location) Option {
	return func(f *Formatter) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// WithClock replaces time.Now for relative rendering.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger sets the logger for fallback diagnostics.
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(f *Formatter) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Formatter.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		locale: DefaultLocale,
		loc:    time.Local,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Locale returns the configured locale.
func (f *Formatter) Locale() Locale {
	return f.locale
}

// Location returns the configured location.
func (f *Formatter) Location() *time.Location {
	return f.loc
}

// Now returns the formatter's current instant.
func (f *Formatter) Now() time.Time {
	return f.now()
}

// Result is the outcome of rendering one timestamp.
// Fallback is true when Text is the raw input echoed back.
type Result struct {
	Text     string
	Fallback bool
	Err      error
}

// OK reports whether the timestamp was formatted.
func (r Result) OK() bool {
	return !r.Fallback
}

// Convert renders raw in the given format. It never fails: empty input yields
// "", and input that cannot be parsed or formatted is returned unchanged.
func (f *Formatter) Convert(raw string, format Format) string {
	return f.Render(raw, format).Text
}

// Render is Convert with the outcome exposed.
func (f *Formatter) Render(raw string, format Format) (res Result) {
	if raw == "" {
		return Result{}
	}

	t, err := Parse(raw, f.loc)
	if err != nil {
		f.logger.Warn("invalid timestamp", "timestamp", raw)
		return Result{Text: raw, Fallback: true, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			ferr := alerr.New(alerr.ErrFormatFailed, fmt.Sprintf("error converting timestamp: %v", r)).
				WithTimestamp(raw).
				With("format", string(format))
			f.logger.Error("error converting timestamp", "timestamp", raw, "error", ferr.GetMessage())
			res = Result{Text: raw, Fallback: true, Err: ferr}
		}
	}()

	return Result{Text: f.format(t, format)}
}

// Instant renders an already parsed instant.
func (f *Formatter) Instant(t time.Time, format Format) string {
	return f.format(t, format)
}

func (f *Formatter) format(t time.Time, format Format) string {
	local := t.In(f.loc)

	switch format {
	case Relative:
		return f.RelativeTime(t)
	case Short:
		return f.locale.Date(local) + " " + f.locale.ShortTime(local)
	case TimeOnly:
		return f.locale.ShortTime(local)
	default:
		return f.locale.DateTime(local)
	}
}
