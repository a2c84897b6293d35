package timefmt

import (
	"strings"
	"time"

	"github.com/hlop3z/tzstamp/internal/alerr"
)

// Layouts that carry their own offset or zone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04Z07:00",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.UnixDate,
	time.RubyDate,
}

// Date-time layouts without an offset. Browsers read these in the viewer's
// zone, so they are parsed in the formatter's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	time.ANSIC,
	"Jan 2, 2006 15:04:05",
	"January 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Date-only ISO forms are UTC midnight, matching Date.parse.
var utcLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
}

// Parse reads raw as an instant. Forms without an offset are interpreted in loc.
func Parse(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, alerr.New(alerr.ErrTimestampInvalid, "invalid timestamp").WithTimestamp(raw)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	for _, layout := range utcLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, alerr.New(alerr.ErrTimestampInvalid, "invalid timestamp").
		WithTimestamp(raw).
		WithHelp("use an ISO 8601 timestamp such as 2024-01-10T12:00:00Z")
}
