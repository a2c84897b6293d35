package timefmt

import (
	"fmt"
	"time"
)

// RelativeTime phrases the time elapsed between t and now.
//
// Buckets use floor division of whole seconds: under a minute is "Just now",
// then minutes, hours, "Yesterday", days up to a week, and the locale date
// after that. Instants in the future produce a negative delta and land in
// the first bucket.
func (f *Formatter) RelativeTime(t time.Time) string {
	seconds := floorDiv(int64(f.now().Sub(t)), int64(time.Second))
	if seconds < 60 {
		return "Just now"
	}

	minutes := floorDiv(seconds, 60)
	if minutes < 60 {
		return plural(minutes, "minute") + " ago"
	}

	hours := floorDiv(minutes, 60)
	if hours < 24 {
		return plural(hours, "hour") + " ago"
	}

	days := floorDiv(hours, 24)
	if days == 1 {
		return "Yesterday"
	}
	if days < 7 {
		return fmt.Sprintf("%d days ago", days)
	}

	return f.locale.Date(t.In(f.loc))
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
