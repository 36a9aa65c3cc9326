package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/triplog/pkg/api"
	"github.com/rubiojr/triplog/pkg/config"
	"github.com/rubiojr/triplog/pkg/log"
	"github.com/rubiojr/triplog/pkg/realtime"
	"github.com/rubiojr/triplog/pkg/track"
	"github.com/rubiojr/triplog/pkg/ui"
)

var webLog = log.ForService("web")

// WebCommand creates the web command with both API and UI
func WebCommand() *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the journal: map, trip log and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides server.port)",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides server.host)",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Journal title shown in the page header",
				Value: "Trip Journal",
			},
			&cli.BoolFlag{
				Name:  "no-reload",
				Usage: "Do not watch the data directory for changes",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return startWebServer(ctx, c.String("config"), webOptions{
				host:     c.String("host"),
				port:     c.String("port"),
				title:    c.String("title"),
				noReload: c.Bool("no-reload"),
			})
		},
	}
}

type webOptions struct {
	host     string
	port     string
	title    string
	noReload bool
}

func startWebServer(ctx context.Context, configPath string, opts webOptions) error {
	env, err := openJournal(configPath)
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := env.cfg
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}

	// Only local data can be watched.
	watch := !opts.noReload && cfg.Source.Type != config.SourceHTTP
	var hub *realtime.Hub
	if watch {
		hub = realtime.NewHub(0)
	}

	server, err := api.NewServer(api.Options{
		Source:   env.src,
		Filter:   env.filter(),
		UI:       ui.OptionsFromConfig(cfg.Journal),
		Style:    track.Style{Active: cfg.Map.ActiveColor, Default: cfg.Map.DefaultColor},
		Sanitize: cfg.Journal.Sanitize,
		Title:    opts.title,
		Hub:      hub,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	reload := func(ctx context.Context) error {
		if err := server.Reload(ctx); err != nil {
			return err
		}
		return env.indexEntries(ctx, server.Content().Items())
	}
	if err := reload(ctx); err != nil {
		return fmt.Errorf("loading journal: %w", err)
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	if watch {
		w, err := realtime.NewWatcher(cfg.DataDir, reload, hub, realtime.DefaultDebounce)
		if err != nil {
			webLog.Warnf("Live reload disabled: %v", err)
		} else {
			go func() {
				if err := w.Run(watchCtx); err != nil {
					webLog.Warnf("watcher stopped: %v", err)
				}
			}()
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Handler(cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		webLog.Infof("Starting web server on http://%s", cfg.Addr())
		webLog.Infof("Serving %s source, %d entries, %d tracks", cfg.Source.Type, server.Content().Len(), server.Overlay().Len())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case err := <-errCh:
			return fmt.Errorf("web server: %w", err)
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				webLog.Infof("Received SIGHUP, reloading journal...")
				if err := reload(ctx); err != nil {
					webLog.Errorf("Failed to reload journal: %v", err)
				} else if hub != nil {
					hub.Reload()
				}
				continue
			}

			webLog.Infof("Shutting down web server...")
			cancelWatch()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}
	}
}
