package timefmt

import (
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/hlop3z/tzstamp/internal/alerr"
)

// Locale holds the numeric layouts a locale uses for dates and times.
type Locale struct {
	Tag             string
	DateLayout      string // toLocaleDateString
	TimeLayout      string // toLocaleTimeString, with seconds
	ShortTimeLayout string // two-digit hour and minute
	Separator       string // between date and time in the full rendering
}

// Date renders the date component.
func (l Locale) Date(t time.Time) string {
	return t.Format(l.DateLayout)
}

// Time renders the time component with seconds.
func (l Locale) Time(t time.Time) string {
	return t.Format(l.TimeLayout)
}

// ShortTime renders hour and minute.
func (l Locale) ShortTime(t time.Time) string {
	return t.Format(l.ShortTimeLayout)
}

// DateTime renders date and time together.
func (l Locale) DateTime(t time.Time) string {
	return l.Date(t) + l.Separator + l.Time(t)
}

// DefaultLocale is used when no locale is configured or the tag is not in the table.
var DefaultLocale = locales["en-US"]

var locales = map[string]Locale{
	"en-US": {Tag: "en-US", DateLayout: "1/2/2006", TimeLayout: "3:04:05 PM", ShortTimeLayout: "03:04 PM", Separator: ", "},
	"en-GB": {Tag: "en-GB", DateLayout: "02/01/2006", TimeLayout: "15:04:05", ShortTimeLayout: "15:04", Separator: ", "},
	"de-DE": {Tag: "de-DE", DateLayout: "2.1.2006", TimeLayout: "15:04:05", ShortTimeLayout: "15:04", Separator: ", "},
	"fr-FR": {Tag: "fr-FR", DateLayout: "02/01/2006", TimeLayout: "15:04:05", ShortTimeLayout: "15:04", Separator: " "},
	"es-ES": {Tag: "es-ES", DateLayout: "2/1/2006", TimeLayout: "15:04:05", ShortTimeLayout: "15:04", Separator: ", "},
	"ja-JP": {Tag: "ja-JP", DateLayout: "2006/1/2", TimeLayout: "15:04:05", ShortTimeLayout: "15:04", Separator: " "},
	"iso":   {Tag: "iso", DateLayout: "2006-01-02", TimeLayout: "15:04:05", ShortTimeLayout: "15:04", Separator: " "},
}

// Base language -> table entry.
var baseLocales = map[string]string{
	"en": "en-US",
	"de": "de-DE",
	"fr": "fr-FR",
	"es": "es-ES",
	"ja": "ja-JP",
}

// LookupLocale resolves a BCP 47 tag against the locale table: exact tag first,
// then base language, then DefaultLocale. Only a malformed tag is an error, and
// DefaultLocale is still returned alongside it.
func LookupLocale(tag string) (Locale, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return DefaultLocale, nil
	}
	if strings.EqualFold(tag, "iso") {
		return locales["iso"], nil
	}

	t, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale, alerr.Wrapf(alerr.ErrLocaleUnknown, err, "invalid locale %q", tag).
			With("locale", tag)
	}

	if l, ok := locales[t.String()]; ok {
		return l, nil
	}
	base, _ := t.Base()
	if key, ok := baseLocales[base.String()]; ok {
		return locales[key], nil
	}
	return DefaultLocale, nil
}

// LocaleTags returns the tags in the locale table.
func LocaleTags() []string {
	return []string{"en-US", "en-GB", "de-DE", "fr-FR", "es-ES", "ja-JP", "iso"}
}

// LoadLocation resolves a time zone name. Empty and "Local" mean the viewer's zone.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, alerr.Wrapf(alerr.ErrLocationUnknown, err, "unknown time zone %q", name).
			With("timezone", name)
	}
	return loc, nil
}
