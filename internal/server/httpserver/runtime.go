package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/trackmcp/internal/config"
	"git.home.luguber.info/inful/trackmcp/internal/logfields"
	"git.home.luguber.info/inful/trackmcp/internal/storage"
	"git.home.luguber.info/inful/trackmcp/internal/watch"
)

// Runtime tracks server-level state reported by the info and health
// endpoints: uptime, the periodically refreshed project cache, SSE client
// count and notify status.
type Runtime struct {
	cfg       config.ServerConfig
	store     storage.Store
	hub       *watch.Hub
	dbPath    string
	startTime time.Time
	notifying bool

	mu        sync.RWMutex
	projects  []string
	refreshed time.Time

	scheduler gocron.Scheduler
}

// NewRuntime creates the server runtime.
func NewRuntime(cfg config.ServerConfig, store storage.Store, hub *watch.Hub, dbPath string, notifying bool) *Runtime {
	return &Runtime{
		cfg:       cfg,
		store:     store,
		hub:       hub,
		dbPath:    dbPath,
		startTime: time.Now(),
		notifying: notifying,
	}
}

// Start refreshes the project cache once and schedules periodic refreshes.
func (rt *Runtime) Start(ctx context.Context) error {
	rt.refresh(ctx)

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(time.Duration(rt.cfg.CacheRefresh)*time.Second),
		gocron.NewTask(rt.refresh, ctx),
		gocron.WithName("project-cache-refresh"),
	)
	if err != nil {
		return fmt.Errorf("schedule cache refresh: %w", err)
	}
	rt.scheduler = s
	s.Start()
	return nil
}

// Stop shuts the refresh scheduler down.
func (rt *Runtime) Stop() error {
	if rt.scheduler == nil {
		return nil
	}
	return rt.scheduler.Shutdown()
}

func (rt *Runtime) refresh(ctx context.Context) {
	projects, err := rt.store.Projects(ctx)
	if err != nil {
		slog.Warn("project cache refresh failed", logfields.Error(err))
		return
	}
	rt.mu.Lock()
	rt.projects = projects
	rt.refreshed = time.Now().UTC()
	rt.mu.Unlock()
}

// GetStartTime returns the server start time.
func (rt *Runtime) GetStartTime() time.Time { return rt.startTime }

// SetPort records the actually bound port, needed when port 0 was requested.
func (rt *Runtime) SetPort(port int) {
	rt.mu.Lock()
	rt.cfg.Port = port
	rt.mu.Unlock()
}

// BaseURL returns the externally usable base URL of this server.
func (rt *Runtime) BaseURL() string {
	rt.mu.RLock()
	host, port := rt.cfg.Host, rt.cfg.Port
	rt.mu.RUnlock()
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// DatabasePath returns the tracked database location.
func (rt *Runtime) DatabasePath() string { return rt.dbPath }

// CachedProjects returns the cached project list and its refresh time.
func (rt *Runtime) CachedProjects() ([]string, time.Time) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.projects, rt.refreshed
}

// SSEClients returns the number of connected SSE subscribers.
func (rt *Runtime) SSEClients() int { return rt.hub.Len() }

// NotifyConnected reports whether the NATS publisher is active.
func (rt *Runtime) NotifyConnected() bool { return rt.notifying }
