// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package app wires streamwall's components together and runs the daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/streamwall/streamwall/internal/api"
	"github.com/streamwall/streamwall/internal/config"
	"github.com/streamwall/streamwall/internal/crashes"
	"github.com/streamwall/streamwall/internal/display"
	"github.com/streamwall/streamwall/internal/events"
	"github.com/streamwall/streamwall/internal/launcher"
	"github.com/streamwall/streamwall/internal/monitor"
	"github.com/streamwall/streamwall/internal/session"
	"github.com/streamwall/streamwall/internal/store"
	"github.com/streamwall/streamwall/internal/watcher"
	"github.com/streamwall/streamwall/internal/window"
)

// App is the main application container.
type App struct {
	mu sync.RWMutex

	version string
	config  *config.Config

	eventBus       events.Bus
	records        *store.Store
	sessionManager *session.Manager
	crashManager   *crashes.Manager
	resourceMon    *monitor.Monitor
	recordsWatcher *watcher.RecordsWatcher
	apiServer      *api.Server

	done     chan struct{}
	stopOnce sync.Once
}

// Options holds configuration options for the app.
type Options struct {
	ConfigPath string
	Host       string
	Port       int
	DataDir    string // Override for the records directory
	Version    string // Application version string
}

// New creates a new App instance.
func New(opts Options) (*App, error) {
	app := &App{
		version: opts.Version,
		done:    make(chan struct{}),
	}

	// Load configuration. Without a config file the built-in defaults run
	// the daemon fine.
	loader := config.NewLoader()
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath, _ = loader.FindConfig()
	}
	var cfg *config.Config
	if configPath != "" {
		loaded, err := loader.LoadWithDefaults(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		log.Printf("Loaded config: %s", configPath)
	} else {
		cfg = config.Default()
	}
	app.config = cfg

	// Override host/port/data dir if specified
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.DataDir != "" {
		cfg.Data.Dir = opts.DataDir
	}

	validator := config.NewValidator()
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Initialize event bus
	app.eventBus = events.NewMemoryBus(events.MemoryBusConfig{
		HistoryMaxEvents: cfg.Events.History.MaxEvents,
		HistoryMaxAge:    config.ParseDuration(cfg.Events.History.MaxAge, time.Hour),
	})

	return app, nil
}

// Initialize sets up all components.
func (app *App) Initialize(ctx context.Context) error {
	cfg := app.config

	// Open the record store
	records, err := store.Open(cfg.Data.Dir, app.eventBus)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	app.records = records
	log.Printf("Record store: %s", records.Dir())

	// Watch the record directories for external edits
	debounce := config.ParseDuration(cfg.Watch.Debounce, 100*time.Millisecond)
	rw, err := watcher.NewRecordsWatcher(records, debounce)
	if err != nil {
		log.Printf("Warning: failed to create records watcher: %v", err)
	} else {
		app.recordsWatcher = rw
	}

	// Locate the browser. A missing browser is not fatal here: the daemon
	// still serves record CRUD, and launch requests report the error.
	execPath, err := launcher.FindBrowser(cfg.Browser.Path, cfg.Browser.Candidates)
	if err != nil {
		log.Printf("Warning: %v; session launches will fail until one is installed", err)
	} else {
		log.Printf("Using browser: %s", execPath)
	}
	backend := session.LauncherBackend{Launcher: launcher.New(execPath)}

	// Connect to the X server, sharing one connection between the window
	// and display backends.
	windowBackend, err := window.NewX11Backend()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}
	displayBackend := display.NewX11BackendConn(windowBackend.XUtil())

	// Initialize session manager
	app.sessionManager = session.NewManager(
		backend,
		windowBackend,
		displayBackend,
		records,
		app.eventBus,
		session.Config{
			CheckInterval: config.ParseDuration(cfg.Session.CheckInterval, 10*time.Second),
			LaunchDelay:   config.ParseDuration(cfg.Session.LaunchDelay, time.Second),
			SettleDelay:   config.ParseDuration(cfg.Session.SettleDelay, 5*time.Second),
			TitleMatch:    cfg.Session.TitleMatch,
			ExtraArgs:     cfg.Browser.ExtraArgs,
		},
	)

	// Initialize crash manager
	crashMgr, err := crashes.NewManager(crashes.Config{
		ReportsDir: cfg.Crashes.Dir,
		MaxAge:     config.ParseDuration(cfg.Crashes.MaxAge, 7*24*time.Hour),
		MaxCount:   cfg.Crashes.MaxCount,
	}, app.eventBus)
	if err != nil {
		log.Printf("Warning: failed to initialize crash manager: %v", err)
	} else {
		app.crashManager = crashMgr
		if err := app.crashManager.Subscribe(); err != nil {
			log.Printf("Warning: failed to subscribe crash manager to events: %v", err)
		} else {
			log.Printf("Initialized crash manager: %s", cfg.Crashes.Dir)
		}
	}

	// Initialize resource monitor
	if cfg.Monitor.IsEnabled() {
		app.resourceMon = monitor.New(monitor.Config{
			Interval:     config.ParseDuration(cfg.Monitor.Interval, 5*time.Second),
			ProcessNames: cfg.Browser.ProcessNames,
		}, records)
	}

	// Initialize API server
	app.apiServer = api.NewServer(
		api.ServerConfig{
			Host: cfg.Server.Host,
			Port: cfg.Server.Port,
		},
		api.Dependencies{
			Session: app.sessionManager,
			Records: records,
			Bus:     app.eventBus,
			Crashes: app.crashManager,
			Monitor: app.resourceMon,
			Version: app.version,
		},
	)

	return nil
}

// Start starts the background components.
func (app *App) Start(ctx context.Context) error {
	if app.resourceMon != nil {
		app.resourceMon.Start()
	}
	return nil
}

// Run starts the app and blocks until shutdown.
func (app *App) Run(ctx context.Context) error {
	if err := app.Initialize(ctx); err != nil {
		return err
	}

	if err := app.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal %v, shutting down...", sig)
		case <-gctx.Done():
		case <-app.done:
			log.Printf("Shutdown requested...")
		}
		return app.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown gracefully shuts down all components.
func (app *App) Shutdown(ctx context.Context) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop API server first to stop accepting new requests
	if app.apiServer != nil {
		if err := app.apiServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down API server: %v", err)
		}
	}

	// Stop the records watcher
	if app.recordsWatcher != nil {
		if err := app.recordsWatcher.Close(); err != nil {
			log.Printf("Error closing records watcher: %v", err)
		}
	}

	// Stop the resource monitor
	if app.resourceMon != nil {
		app.resourceMon.Stop()
	}

	// Stop a running session, closing its instances
	if app.sessionManager != nil {
		if err := app.sessionManager.Stop(shutdownCtx); err != nil && !errors.Is(err, session.ErrNoSession) {
			log.Printf("Error stopping session: %v", err)
		}
	}

	// Close event bus
	if app.eventBus != nil {
		app.eventBus.Close()
	}

	log.Println("Shutdown complete")
	return nil
}

// Stop signals the app to shut down. Safe to call multiple times.
func (app *App) Stop() {
	app.stopOnce.Do(func() {
		close(app.done)
	})
}
