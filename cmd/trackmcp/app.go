package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/trackmcp/internal/config"
	"git.home.luguber.info/inful/trackmcp/internal/launch"
	"git.home.luguber.info/inful/trackmcp/internal/metrics"
	"git.home.luguber.info/inful/trackmcp/internal/notify"
	"git.home.luguber.info/inful/trackmcp/internal/server/httpserver"
	"git.home.luguber.info/inful/trackmcp/internal/storage"
	"git.home.luguber.info/inful/trackmcp/internal/tools"
	"git.home.luguber.info/inful/trackmcp/internal/watch"
)

// serverApp assembles the tool server's collaborators and exposes the whole
// thing as a launch.Launcher so the MCP launch defaults apply to it the same
// way they would to an embedded dashboard.
type serverApp struct {
	cfg       *config.Config
	store     *storage.SQLiteStore
	hub       *watch.Hub
	recorder  *metrics.PrometheusRecorder
	publisher *notify.Publisher

	watcher *watch.Watcher
	srv     *httpserver.Server
}

func newServerApp(cfg *config.Config) (*serverApp, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open trackio database: %w", err)
	}

	publisher, err := notify.NewPublisher(cfg.Notify)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &serverApp{
		cfg:       cfg,
		store:     store,
		hub:       watch.NewHub(),
		recorder:  metrics.NewPrometheusRecorder(nil),
		publisher: publisher,
	}, nil
}

// Launch starts the HTTP server per the (possibly decorated) options.
func (a *serverApp) Launch(ctx context.Context, opts launch.Options) (*launch.LaunchInfo, error) {
	serverCfg := a.cfg.Server
	if opts.Host != "" {
		serverCfg.Host = opts.Host
	}
	if opts.Port != 0 {
		serverCfg.Port = opts.Port
	}
	if opts.Share {
		serverCfg.Share = true
	}

	mcpEnabled := opts.MCPServer != nil && *opts.MCPServer

	runtime := httpserver.NewRuntime(serverCfg, a.store, a.hub, a.cfg.Storage.Path, a.publisher != nil)
	a.srv = httpserver.New(serverCfg, tools.NewService(a.store), runtime, a.hub, httpserver.Options{
		Recorder:       a.recorder,
		MetricsHandler: a.recorder.HTTPHandler(),
		MCPEnabled:     mcpEnabled,
	})

	if mcpEnabled || a.publisher != nil {
		watcher, err := watch.NewWatcher(a.cfg.Storage.Path, a.hub, a.recorder)
		if err != nil {
			slog.Warn("database watcher unavailable, run updates disabled", "error", err)
		} else if err := watcher.Start(ctx); err != nil {
			slog.Warn("database watcher failed to start, run updates disabled", "error", err)
			_ = watcher.Stop()
		} else {
			a.watcher = watcher
		}
	}

	if a.publisher != nil {
		go a.publisher.Run(ctx, a.hub)
	}

	if err := a.srv.Start(ctx); err != nil {
		return nil, err
	}

	return &launch.LaunchInfo{LocalURL: runtime.BaseURL()}, nil
}

// Stop shuts the HTTP server and watcher down.
func (a *serverApp) Stop(ctx context.Context) error {
	var errs []error
	if a.srv != nil {
		if err := a.srv.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases long-lived resources.
func (a *serverApp) Close() {
	a.publisher.Close()
	if a.store != nil {
		_ = a.store.Close()
	}
}
