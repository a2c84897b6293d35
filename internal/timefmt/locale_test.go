package timefmt

import (
	"testing"
	"time"

	"github.com/hlop3z/tzstamp/internal/alerr"
)

func TestLookupLocale(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"", "en-US"},
		{"en-US", "en-US"},
		{"en-us", "en-US"},
		{"en-GB", "en-GB"},
		{"en", "en-US"},
		{"en-AU", "en-US"},
		{"de", "de-DE"},
		{"de-AT", "de-DE"},
		{"fr-CA", "fr-FR"},
		{"ja", "ja-JP"},
		{"ISO", "iso"},
		{"pt-BR", "en-US"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := LookupLocale(tt.tag)
			if err != nil {
				t.Fatalf("LookupLocale(%q): %v", tt.tag, err)
			}
			if got.Tag != tt.want {
				t.Errorf("LookupLocale(%q) = %s, want %s", tt.tag, got.Tag, tt.want)
			}
		})
	}
}

func TestLookupLocaleMalformed(t *testing.T) {
	got, err := LookupLocale("en_US!!")
	if !alerr.Is(err, alerr.ErrLocaleUnknown) {
		t.Fatalf("error code = %v, want %v", alerr.GetErrorCode(err), alerr.ErrLocaleUnknown)
	}
	if got.Tag != DefaultLocale.Tag {
		t.Errorf("malformed tag should still return the default locale, got %s", got.Tag)
	}
}

func TestLocaleRendering(t *testing.T) {
	instant := time.Date(2024, 1, 10, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		tag, date, dateTime, short string
	}{
		{"en-US", "1/10/2024", "1/10/2024, 3:04:05 PM", "03:04 PM"},
		{"en-GB", "10/01/2024", "10/01/2024, 15:04:05", "15:04"},
		{"de-DE", "10.1.2024", "10.1.2024, 15:04:05", "15:04"},
		{"fr-FR", "10/01/2024", "10/01/2024 15:04:05", "15:04"},
		{"ja-JP", "2024/1/10", "2024/1/10 15:04:05", "15:04"},
		{"iso", "2024-01-10", "2024-01-10 15:04:05", "15:04"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			l, _ := LookupLocale(tt.tag)
			if got := l.Date(instant); got != tt.date {
				t.Errorf("Date = %q, want %q", got, tt.date)
			}
			if got := l.DateTime(instant); got != tt.dateTime {
				t.Errorf("DateTime = %q, want %q", got, tt.dateTime)
			}
			if got := l.ShortTime(instant); got != tt.short {
				t.Errorf("ShortTime = %q, want %q", got, tt.short)
			}
		})
	}
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	if err != nil || loc != time.Local {
		t.Errorf("LoadLocation(\"\") = %v, %v", loc, err)
	}
	loc, err = LoadLocation("UTC")
	if err != nil || loc.String() != "UTC" {
		t.Errorf("LoadLocation(UTC) = %v, %v", loc, err)
	}
	if _, err := LoadLocation("Mars/Olympus_Mons"); !alerr.Is(err, alerr.ErrLocationUnknown) {
		t.Errorf("LoadLocation(bogus) code = %v", alerr.GetErrorCode(err))
	}
}
