package alerr

import "testing"

// -----------------------------------------------------------------------------
// Levenshtein Distance Tests
// -----------------------------------------------------------------------------

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"full", "full", 0},
		{"full", "", 4},
		{"", "short", 5},
		{"kitten", "sitting", 3},
		{"short", "shrot", 2},
		{"relative", "relativ", 1},
		{"time-only", "timeonly", 1},
		{"a", "b", 1},
		{"ab", "ba", 2},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			got := levenshteinDistance(tt.s1, tt.s2)
			if got != tt.want {
				t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// FindClosestMatch Tests
// -----------------------------------------------------------------------------

func TestFindClosestMatch(t *testing.T) {
	formats := []string{"full", "relative", "short", "time-only"}

	tests := []struct {
		input   string
		wantOk  bool
		wantVal string
	}{
		{"shrt", true, "short"},
		{"relativ", true, "relative"},
		{"time_only", true, "time-only"},
		{"ful", true, "full"},
		{"timestamp-with-zone", false, ""},
		{"", true, "full"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := FindClosestMatch(tt.input, formats)
			if ok != tt.wantOk {
				t.Fatalf("FindClosestMatch(%q) ok = %v, want %v", tt.input, ok, tt.wantOk)
			}
			if got != tt.wantVal {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.wantVal)
			}
		})
	}
}

func TestSuggestSimilar(t *testing.T) {
	formats := []string{"full", "relative", "short", "time-only"}

	if got := SuggestSimilar("shrot", formats); got != "did you mean 'short'?" {
		t.Errorf("SuggestSimilar(shrot) = %q", got)
	}
	if got := SuggestSimilar("calendar-week", formats); got != "" {
		t.Errorf("SuggestSimilar(calendar-week) = %q, want empty", got)
	}
}

func TestNewUnknownFormatError(t *testing.T) {
	err := NewUnknownFormatError("shrt", []string{"full", "relative", "short", "time-only"})

	if err.GetCode() != ErrFormatUnknown {
		t.Errorf("code = %v, want %v", err.GetCode(), ErrFormatUnknown)
	}
	if err.GetContext()["format"] != "shrt" {
		t.Errorf("format context = %v", err.GetContext()["format"])
	}
	helps := err.Helps()
	if len(helps) != 1 || helps[0] != "did you mean 'short'?" {
		t.Errorf("helps = %v", helps)
	}

	noHint := NewUnknownFormatError("xxxxxxxxxx", []string{"full"})
	if len(noHint.Helps()) != 0 {
		t.Errorf("expected no help, got %v", noHint.Helps())
	}
}
