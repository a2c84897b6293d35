// Package ledger records render runs so later runs can tell whether a source
// changed since it was last rendered. It stores run metadata only; formatter
// state is never persisted.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hlop3z/tzstamp/internal/alerr"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// DefaultDir is the directory for the default SQLite ledger (gitignored).
	DefaultDir = ".tzstamp"
	// DefaultFile is the default SQLite ledger file name.
	DefaultFile = "ledger.db"

	table = "render_runs"

	// Fixed-width so text ordering matches time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Run is one rendered file.
type Run struct {
	ID         string
	Source     string
	Output     string
	Digest     string
	Holders    int
	Converted  int
	Fallbacks  int
	Bytes      int64
	RenderedAt time.Time
}

// Ledger is a render-run store backed by SQLite or PostgreSQL.
type Ledger struct {
	db      *sql.DB
	dialect string
	url     string
	mu      sync.RWMutex
}

// DefaultURL returns the SQLite ledger location under projectRoot.
func DefaultURL(projectRoot string) string {
	return filepath.Join(projectRoot, DefaultDir, DefaultFile)
}

// Open connects to the ledger at url and creates its table if needed.
func Open(ctx context.Context, url string) (*Ledger, error) {
	dialect := DetectDialect(url)

	var driver, dsn string
	switch dialect {
	case "postgres":
		driver, dsn = "postgres", url
	default:
		driver, dsn = "sqlite", sqlitePath(url)
		if dir := filepath.Dir(dsn); !strings.HasPrefix(dsn, "file:") && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, alerr.Wrap(alerr.ErrLedgerInit, err, "failed to create ledger directory").
					With("path", dir)
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrLedgerInit, err, "failed to open ledger").
			With("url", RedactURL(url))
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, alerr.Wrap(alerr.ErrLedgerInit, err, "failed to connect to ledger").
			With("url", RedactURL(url))
	}

	l := &Ledger{db: db, dialect: dialect, url: url}
	if err := l.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Dialect returns "sqlite" or "postgres".
func (l *Ledger) Dialect() string {
	return l.dialect
}

// URL returns the connection URL with any password redacted.
func (l *Ledger) URL() string {
	return RedactURL(l.url)
}

func (l *Ledger) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS render_runs (
			id          TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			output      TEXT NOT NULL,
			digest      TEXT NOT NULL,
			holders     INTEGER NOT NULL,
			converted   INTEGER NOT NULL,
			fallbacks   INTEGER NOT NULL,
			bytes       BIGINT NOT NULL,
			rendered_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_render_runs_source ON render_runs (source, rendered_at)`,
		`CREATE INDEX IF NOT EXISTS idx_render_runs_output ON render_runs (output)`,
	}
	for _, stmt := range stmts {
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return alerr.WrapSQL(alerr.ErrLedgerInit, err, "create ledger schema", table)
		}
	}
	return nil
}

// Record stores a run, filling in ID and RenderedAt when they are empty.
func (l *Ledger) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.RenderedAt.IsZero() {
		run.RenderedAt = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	query := fmt.Sprintf(`INSERT INTO render_runs
		(id, source, output, digest, holders, converted, fallbacks, bytes, rendered_at)
		VALUES (%s)`, l.placeholders(9))
	_, err := l.db.ExecContext(ctx, query,
		run.ID, run.Source, run.Output, run.Digest,
		run.Holders, run.Converted, run.Fallbacks, run.Bytes,
		run.RenderedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return alerr.WrapSQL(alerr.ErrLedgerWrite, err, "record render run", table).
			With("source", run.Source)
	}
	return nil
}

// Last returns the most recent run for source, or nil when there is none.
func (l *Ledger) Last(ctx context.Context, source string) (*Run, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	query := fmt.Sprintf(`SELECT id, source, output, digest, holders, converted, fallbacks, bytes, rendered_at
		FROM render_runs WHERE source = %s ORDER BY rendered_at DESC LIMIT 1`, l.placeholder(1))
	row := l.db.QueryRowContext(ctx, query, source)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, alerr.WrapSQL(alerr.ErrLedgerRead, err, "read last render run", table).
			With("source", source)
	}
	return run, nil
}

// IsOutput reports whether any recorded run wrote to path.
func (l *Ledger) IsOutput(ctx context.Context, path string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	query := fmt.Sprintf(`SELECT 1 FROM render_runs WHERE output = %s LIMIT 1`, l.placeholder(1))
	var one int
	err := l.db.QueryRowContext(ctx, query, path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, alerr.WrapSQL(alerr.ErrLedgerRead, err, "look up render output", table).
			With("path", path)
	}
	return true, nil
}

// History returns up to limit runs, newest first. A limit of 0 or less returns all runs.
func (l *Ledger) History(ctx context.Context, limit int) ([]Run, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	query := `SELECT id, source, output, digest, holders, converted, fallbacks, bytes, rendered_at
		FROM render_runs ORDER BY rendered_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT " + l.placeholder(1)
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, alerr.WrapSQL(alerr.ErrLedgerRead, err, "query render history", table)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, alerr.WrapSQL(alerr.ErrLedgerRead, err, "scan render run", table)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.WrapSQL(alerr.ErrLedgerRead, err, "iterate render history", table)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var renderedAt string
	if err := s.Scan(&run.ID, &run.Source, &run.Output, &run.Digest,
		&run.Holders, &run.Converted, &run.Fallbacks, &run.Bytes, &renderedAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, renderedAt)
	if err != nil {
		return nil, err
	}
	run.RenderedAt = t
	return &run, nil
}

func (l *Ledger) placeholder(n int) string {
	if l.dialect == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (l *Ledger) placeholders(count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = l.placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// DetectDialect picks the database dialect from a URL. Anything that is not a
// postgres URL is treated as a SQLite path.
func DetectDialect(url string) string {
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// sqlitePath converts a sqlite:// URL to a file path, or returns the path as-is.
func sqlitePath(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	url = strings.TrimPrefix(url, "sqlite3://")
	return url
}

// RedactURL hides the password in a connection URL.
func RedactURL(url string) string {
	start := strings.Index(url, "://")
	if start == -1 {
		return url
	}
	start += 3

	end := strings.Index(url[start:], "@")
	if end == -1 {
		return url
	}
	end += start

	credentials := url[start:end]
	if i := strings.Index(credentials, ":"); i != -1 {
		return url[:start] + credentials[:i] + ":***@" + url[end+1:]
	}
	return url
}
