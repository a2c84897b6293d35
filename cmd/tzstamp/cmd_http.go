package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hlop3z/tzstamp/internal/cli"
	"github.com/hlop3z/tzstamp/internal/live"
	"github.com/hlop3z/tzstamp/internal/render"
	"github.com/hlop3z/tzstamp/internal/server"
)

// httpCmd serves a directory with timestamps rewritten on each request.
func httpCmd() *cobra.Command {
	var port int
	var noReload bool

	cmd := &cobra.Command{
		Use:   "http [dir]",
		Short: "Serve HTML with timestamps rewritten and live reload",
		Long: `Starts a local HTTP server for a directory of HTML.

The server provides:
  /              - files from the directory, HTML rewritten on each request
  /api/convert   - ?ts=<timestamp>&format=<format> as JSON
  /api/formats   - the display formats with a sample
  /_reload       - server-sent reload events

Saving an HTML file under the directory reloads open pages.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir := cfg.SourceDir
			if len(args) > 0 {
				dir = args[0]
			}
			liveReload := cfg.LiveReload && !noReload

			refresher, err := newRefresher(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var hub *live.Hub
			if liveReload {
				hub = live.NewHub()
				w, err := live.NewWatcher(dir, render.IsHTML, func(live.Event) { hub.Broadcast() }, nil)
				if err != nil {
					return err
				}
				go w.Run(ctx)
			}

			handler := server.New(server.Config{Root: dir, LiveReload: liveReload, Logger: slog.Default()}, refresher, hub)
			addr := fmt.Sprintf(":%d", portFlag(cmd.Flags(), cfg))
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Serving %s at %s\n", cli.FilePath(dir), cli.Highlight("http://localhost"+addr))
			fmt.Fprintf(out, "  Convert: http://localhost%s/api/convert?ts=2024-01-10T12:00:00Z&format=relative\n", addr)
			if liveReload {
				fmt.Fprintf(out, "  Watching: %s (live reload enabled)\n", dir)
			}
			fmt.Fprintf(out, "Press Ctrl+C to stop\n\n")

			go func() {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdown)
			}()

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (default: port from config)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Disable live reload")
	return cmd
}
