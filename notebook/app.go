// Package notebook implements the notelab server application: HTTP API,
// session store, and a blocking run loop with graceful shutdown.
package notebook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"notelab/auth"
	"notelab/config"
	"notelab/contents"
	"notelab/logging"
	"notelab/sessions"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Options configures a notebook App.
type Options struct {
	Port        int
	PortRetries int
	OpenBrowser bool
	ConfigDir   string
	DataDir     string
	RuntimeDir  string
	NotebookDir string
	Overrides   *config.Overrides
	Logger      *slog.Logger // defaults to the package logger
}

// App is a notebook server instance. Lifecycle: New, Initialize, Start
// (blocking, on a caller-chosen goroutine), Stop.
type App struct {
	opts Options
	log  *slog.Logger

	cfg      *config.ServerConfig
	contents *contents.Manager
	store    *sessions.Store
	server   *http.Server

	mu      sync.Mutex
	port    int
	started time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New validates the directory layout and returns an uninitialized App.
func New(opts Options) (*App, error) {
	if opts.NotebookDir == "" {
		return nil, fmt.Errorf("notebook directory is required")
	}
	for _, dir := range []string{opts.ConfigDir, opts.DataDir, opts.RuntimeDir} {
		if dir == "" {
			return nil, fmt.Errorf("config, data and runtime directories are required")
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	log := opts.Logger
	if log == nil {
		log = logging.Logger
	}

	return &App{
		opts:   opts,
		log:    log,
		port:   opts.Port,
		stopCh: make(chan struct{}),
	}, nil
}

// Initialize loads configuration and wires the HTTP handler. Must be called
// before Start.
func (a *App) Initialize() error {
	cfg, err := config.LoadServerConfig(a.opts.ConfigDir)
	if err != nil {
		return err
	}
	cfg.Apply(a.opts.Overrides)
	a.cfg = cfg

	manager, err := contents.NewManager(a.opts.NotebookDir)
	if err != nil {
		return err
	}
	a.contents = manager

	store, err := sessions.NewStore(filepath.Join(a.opts.RuntimeDir, "sessions.db"))
	if err != nil {
		return err
	}
	a.store = store

	handler := auth.Middleware(cfg.Token, cfg.PasswordHash, a.routes())
	if cfg.AllowOrigin != "" {
		handler = corsMiddleware(cfg.AllowOrigin, handler)
	}
	a.server = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.log.Debug("Notebook app initialized",
		"notebook_dir", a.opts.NotebookDir,
		"runtime_dir", a.opts.RuntimeDir,
		"auth", cfg.Token != "")
	return nil
}

// Start binds the listener (hunting up to PortRetries ports above the
// requested one), invokes onReady once the server is accepting connections,
// and blocks until Stop is called or the server fails. onReady may be nil.
func (a *App) Start(onReady func()) error {
	if a.server == nil {
		return fmt.Errorf("app not initialized")
	}

	listener, port, err := a.listen()
	if err != nil {
		if closeErr := a.store.Close(); closeErr != nil {
			a.log.Error("Failed to close session store", "error", closeErr)
		}
		return err
	}

	a.mu.Lock()
	a.port = port
	a.started = time.Now()
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.log.Info("Notebook server listening", "port", port, "notebook_dir", a.opts.NotebookDir)

	if a.opts.OpenBrowser {
		a.openBrowser(fmt.Sprintf("http://localhost:%d/", port))
	}

	if onReady != nil {
		onReady()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := a.server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}
		return nil
	})

	if a.cfg.CullIdleSeconds > 0 {
		g.Go(func() error {
			return a.cullLoop(ctx, time.Duration(a.cfg.CullIdleSeconds)*time.Second)
		})
	}

	// Propagate Stop into the group context
	g.Go(func() error {
		select {
		case <-a.stopCh:
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	err = g.Wait()

	if closeErr := a.store.Close(); closeErr != nil {
		a.log.Error("Failed to close session store", "error", closeErr)
		if err == nil {
			err = closeErr
		}
	}

	a.log.Info("Notebook server stopped", "port", port)
	return err
}

// Stop requests the run loop to exit. Safe to call multiple times and from
// any goroutine; the actual shutdown is awaited by Start's caller.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCh)
	})
}

// Port returns the bound port once Start has bound the listener, and the
// requested port before that.
func (a *App) Port() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.port
}

// listen tries the requested port and then PortRetries successors.
func (a *App) listen() (net.Listener, int, error) {
	var lastErr error
	for i := 0; i <= a.opts.PortRetries; i++ {
		port := a.opts.Port
		if port != 0 {
			port += i
		}
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			bound := listener.Addr().(*net.TCPAddr).Port
			if i > 0 {
				a.log.Warn("Requested port busy, using fallback", "requested", a.opts.Port, "bound", bound)
			}
			return listener, bound, nil
		}
		lastErr = err
		if port == 0 {
			break
		}
	}
	return nil, 0, fmt.Errorf("failed to bind a port (tried %d-%d): %w",
		a.opts.Port, a.opts.Port+a.opts.PortRetries, lastErr)
}

// cullLoop periodically removes idle sessions until the context ends.
func (a *App) cullLoop(ctx context.Context, maxIdle time.Duration) error {
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			culled, err := a.store.CullIdle(ctx, maxIdle)
			if err != nil {
				a.log.Error("Session culling failed", "error", err)
				continue
			}
			if culled > 0 {
				a.log.Info("Culled idle sessions", "count", culled, "max_idle", maxIdle)
			}
		}
	}
}
