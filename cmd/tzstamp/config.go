package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/ledger"
	"github.com/hlop3z/tzstamp/internal/markup"
	"github.com/hlop3z/tzstamp/internal/timefmt"
)

// Config represents the tzstamp.yaml configuration file.
type Config struct {
	Locale        string `yaml:"locale"`
	Timezone      string `yaml:"timezone"`
	TimestampAttr string `yaml:"timestamp_attr"`
	FormatAttr    string `yaml:"format_attr"`
	TitleAttr     string `yaml:"title_attr"`
	DatabaseURL   string `yaml:"database_url"`
	SourceDir     string `yaml:"source_dir"`
	OutputDir     string `yaml:"output_dir"`
	Port          int    `yaml:"port"`
	LiveReload    bool   `yaml:"live_reload"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() *Config {
	return &Config{
		Locale:        timefmt.DefaultLocale.Tag,
		TimestampAttr: markup.DefaultAttrs.Timestamp,
		FormatAttr:    markup.DefaultAttrs.Format,
		TitleAttr:     markup.DefaultAttrs.Title,
		SourceDir:     ".",
		OutputDir:     "public",
		Port:          8080,
		LiveReload:    true,
	}
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults
func loadConfig() (*Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, alerr.Wrap(alerr.ErrConfigInvalid, err, "failed to parse config file").
				WithFile(configFile, 0)
		}
		cfg.DatabaseURL = expandEnvVars(cfg.DatabaseURL)
	}

	if v := os.Getenv("TZSTAMP_LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv("TZSTAMP_TZ"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("TZSTAMP_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if localeFlag != "" {
		cfg.Locale = localeFlag
	}
	if tzFlag != "" {
		cfg.Timezone = tzFlag
	}
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, alerr.New(alerr.ErrConfigInvalid, "port out of range").
			With("port", cfg.Port).
			WithFile(configFile, 0)
	}
	return cfg, nil
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

// Attrs returns the markup contract from the config.
func (c *Config) Attrs() markup.Attrs {
	return markup.Attrs{
		Timestamp: c.TimestampAttr,
		Format:    c.FormatAttr,
		Title:     c.TitleAttr,
	}.WithDefaults()
}

// LedgerURL returns the configured ledger URL or the default SQLite path.
func (c *Config) LedgerURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return ledger.DefaultURL(".")
}

// newFormatter builds the formatter for the configured locale and zone.
// A malformed locale falls back to the default with a warning; an unknown
// zone is an error.
func newFormatter(cfg *Config) (*timefmt.Formatter, error) {
	locale, err := timefmt.LookupLocale(cfg.Locale)
	if err != nil {
		slog.Default().Warn("unknown locale, using default",
			"locale", cfg.Locale, "default", locale.Tag, "known", timefmt.LocaleTags())
	}
	loc, err := timefmt.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return timefmt.New(
		timefmt.WithLocale(locale),
		timefmt.WithLocation(loc),
		timefmt.WithLogger(slog.Default()),
	), nil
}

// newRefresher builds a refresher from config.
func newRefresher(cfg *Config) (*markup.Refresher, error) {
	f, err := newFormatter(cfg)
	if err != nil {
		return nil, err
	}
	return markup.NewRefresher(f, cfg.Attrs()), nil
}

// openLedger opens the configured ledger.
func openLedger(ctx context.Context, cfg *Config) (*ledger.Ledger, error) {
	return ledger.Open(ctx, cfg.LedgerURL())
}

// portFlag returns the --port value when set, else the configured port.
func portFlag(fs *pflag.FlagSet, cfg *Config) int {
	if f := fs.Lookup("port"); f != nil && f.Changed {
		if p, err := strconv.Atoi(f.Value.String()); err == nil {
			return p
		}
	}
	return cfg.Port
}

// defaultConfigYAML is written by init.
const defaultConfigYAML = `# tzstamp.yaml
locale: en-US          # BCP 47 tag: en-US, en-GB, de-DE, fr-FR, es-ES, ja-JP, iso
timezone: ""           # IANA zone, empty for the local zone

# Markup contract
timestamp_attr: data-timestamp
format_attr: data-time-format
title_attr: title

# Render ledger: SQLite path or postgres:// URL, ${VAR} is expanded.
# database_url: .tzstamp/ledger.db

source_dir: .
output_dir: public
port: 8080
live_reload: true
`
