package tzstamp

import (
	"log/slog"
	"time"
)

// Config holds the configuration of a Formatter.
type Config struct {
	// Locale is a BCP 47 tag such as "en-US" or "de". Tags outside the
	// built-in table resolve by base language, then to en-US.
	// Default: en-US
	Locale string

	// Location is the zone timestamps are shown in.
	// Default: time.Local
	Location *time.Location

	// Clock supplies "now" for relative rendering.
	// Default: time.Now
	Clock func() time.Time

	// Logger receives warnings for unparseable timestamps.
	// Default: slog.Default()
	Logger *slog.Logger

	// Attributes names the markup attributes read and written by RewriteHTML.
	// Empty fields keep their defaults.
	Attributes Attributes
}

// Attributes is the markup contract used by RewriteHTML.
type Attributes struct {
	Timestamp string // default "data-timestamp"
	Format    string // default "data-time-format"
	Title     string // default "title"
}

// Option is a functional option for configuring a Formatter.
type Option func(*Config)

// WithLocale sets the display locale by BCP 47 tag.
func WithLocale(tag string) Option {
	return func(c *Config) {
		c.Locale = tag
	}
}

// WithLocation sets the zone timestamps are converted to.
func WithLocation(loc *time.Location) Option {
	return func(c *Config) {
		c.Location = loc
	}
}

// WithClock sets the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Clock = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithAttributes overrides the markup attribute names.
func WithAttributes(a Attributes) Option {
	return func(c *Config) {
		c.Attributes = a
	}
}
