package timefmt

// Format selects how a timestamp is displayed.
type Format string

const (
	// Full renders the locale's date and time with seconds.
	Full Format = "full"
	// Relative renders elapsed time ("5 minutes ago"), falling back to a date after a week.
	Relative Format = "relative"
	// Short renders the locale's date plus hour and minute.
	Short Format = "short"
	// TimeOnly renders hour and minute only.
	TimeOnly Format = "time-only"
)

var formats = []Format{Full, Relative, Short, TimeOnly}

// Formats returns every known selector in declaration order.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// FormatNames returns the selectors as plain strings.
func FormatNames() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

// ParseFormat maps a selector string to a Format.
// Empty and unrecognized selectors yield Full and false.
func ParseFormat(s string) (Format, bool) {
	for _, f := range formats {
		if string(f) == s {
			return f, true
		}
	}
	return Full, false
}

// String implements fmt.Stringer.
func (f Format) String() string {
	return string(f)
}
