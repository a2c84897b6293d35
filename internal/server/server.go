// Package server serves a directory of HTML with timestamps rewritten on the
// fly, plus a small JSON API over the formatter.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/live"
	"github.com/hlop3z/tzstamp/internal/markup"
	"github.com/hlop3z/tzstamp/internal/render"
	"github.com/hlop3z/tzstamp/internal/timefmt"
)

// Config controls what the server serves.
type Config struct {
	Root       string // directory to serve
	LiveReload bool   // inject the reload script and serve /_reload
	Logger     *slog.Logger
}

type server struct {
	cfg       Config
	refresher *markup.Refresher
	hub       *live.Hub
	logger    *slog.Logger
}

// New returns the handler. hub may be nil when live reload is off.
func New(cfg Config, refresher *markup.Refresher, hub *live.Hub) http.Handler {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if hub == nil {
		cfg.LiveReload = false
	}

	s := &server{cfg: cfg, refresher: refresher, hub: hub, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/convert", s.handleConvert)
	mux.HandleFunc("/api/formats", s.handleFormats)
	if cfg.LiveReload {
		mux.Handle("/_reload", hub)
	}
	mux.HandleFunc("/", s.handleStatic)
	return s.logRequests(mux)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// convertResponse is the /api/convert payload.
type convertResponse struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	Format   string `json:"format"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := q.Get("ts")
	format, _ := timefmt.ParseFormat(q.Get("format"))

	res := s.refresher.Formatter().Render(raw, format)
	resp := convertResponse{Text: res.Text, Fallback: res.Fallback, Format: string(format)}
	if res.Err != nil {
		resp.Error = res.Err.Error()
		resp.Code = string(alerr.GetErrorCode(res.Err))
	}
	writeJSON(w, http.StatusOK, resp)
}

// formatResponse is one entry of /api/formats.
type formatResponse struct {
	Name   string `json:"name"`
	Sample string `json:"sample"`
}

func (s *server) handleFormats(w http.ResponseWriter, r *http.Request) {
	f := s.refresher.Formatter()
	now := f.Now()

	out := make([]formatResponse, 0, len(timefmt.Formats()))
	for _, format := range timefmt.Formats() {
		out = append(out, formatResponse{Name: string(format), Sample: f.Instant(now, format)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name, err := s.resolve(r.URL.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !render.IsHTML(name) {
		http.ServeFile(w, r, name)
		return
	}

	f, err := os.Open(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	doc, err := markup.Parse(f)
	if err != nil {
		s.logger.Error("failed to parse page", "file", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	stats := s.refresher.RefreshAll(doc)
	if s.cfg.LiveReload {
		if err := doc.AppendHTML(doc.Body(), live.Script); err != nil {
			s.logger.Warn("failed to inject reload script", "file", name, "error", err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Debug("rewrote page", "file", name, "holders", stats.Holders, "fallbacks", stats.Fallbacks)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

// resolve maps a URL path to a file under the root, using index.html for directories.
func (s *server) resolve(urlPath string) (string, error) {
	clean := path.Clean("/" + urlPath)
	name := filepath.Join(s.cfg.Root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))

	info, err := os.Stat(name)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		name = filepath.Join(name, "index.html")
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
	}
	return name, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
