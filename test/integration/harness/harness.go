package harness

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"notelab/config"
	"notelab/notebook"
)

const (
	// DefaultPort is the suite-wide port unless a Harness overrides it.
	DefaultPort = 12341
	// MaxWaitTime bounds both the startup poll loop and the shutdown join.
	MaxWaitTime = 30 * time.Second
	// PollInterval is the delay between liveness probe attempts.
	PollInterval = 100 * time.Millisecond
)

// Harness owns one notebook server instance for the lifetime of a test
// suite: five scoped temp directories, HOME/NOTELAB_HOME overrides, the
// background goroutine running the server, and the bound port.
//
// Lifecycle is strictly Setup -> tests -> Teardown. Neither operation is
// safe to call concurrently with the other, and each guards against being
// called in the wrong state.
type Harness struct {
	// Port to bind; 0 picks a free port. Set before Setup.
	Port int
	// Overrides is passed through to the server's configuration. Optional.
	Overrides *config.Overrides
	// LogWriter receives the server's log output. Defaults to os.Stderr;
	// pass TBWriter(t) to route it through the test runner's log capture.
	LogWriter io.Writer

	app       *notebook.App
	port      int
	done      chan struct{}
	runErr    error
	running   bool
	homeDir   string
	dirs      []string
	restoreFn []func()
}

// New returns a stopped harness on the default port.
func New() *Harness {
	return &Harness{Port: DefaultPort}
}

// Setup creates the isolated directory tree, overrides HOME and
// NOTELAB_HOME, launches the server run loop on a background goroutine, and
// returns once the server answers the liveness probe. On any failure it
// rolls back everything it acquired and leaves the harness stopped.
func (h *Harness) Setup() (err error) {
	if h.running {
		return fmt.Errorf("harness setup called twice without an intervening teardown")
	}
	h.runErr = nil
	h.port = 0

	defer func() {
		if err != nil {
			h.release()
		}
	}()

	// Five scoped temp directories: home, config, data, runtime, notebook
	var homeDir, configDir, dataDir, runtimeDir, notebookDir string
	for _, dir := range []struct {
		name   string
		target *string
	}{
		{"home", &homeDir},
		{"config", &configDir},
		{"data", &dataDir},
		{"runtime", &runtimeDir},
		{"notebook", &notebookDir},
	} {
		path, mkErr := os.MkdirTemp("", "notelab-test-"+dir.name+"-*")
		if mkErr != nil {
			return fmt.Errorf("failed to create %s directory: %w", dir.name, mkErr)
		}
		*dir.target = path
		h.dirs = append(h.dirs, path)
	}
	h.homeDir = homeDir

	// Scoped env overrides, restored on teardown (and on failed setup)
	h.setEnv("HOME", homeDir)
	h.setEnv("NOTELAB_HOME", filepath.Join(homeDir, ".notelab"))

	logWriter := h.LogWriter
	if logWriter == nil {
		logWriter = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	app, err := notebook.New(notebook.Options{
		Port:        h.Port,
		PortRetries: 0,
		OpenBrowser: false,
		ConfigDir:   configDir,
		DataDir:     dataDir,
		RuntimeDir:  runtimeDir,
		NotebookDir: notebookDir,
		Overrides:   h.Overrides,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to construct server: %w", err)
	}
	if err := app.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	h.app = app

	// Launch the run loop. The ready callback fires once the listener is
	// accepting connections; closing done on every exit path guarantees a
	// startup failure releases the waiter instead of hanging it, surfacing
	// later as a WaitUntilAlive error.
	ready := make(chan struct{})
	h.done = make(chan struct{})
	go func() {
		defer close(h.done)
		h.runErr = app.Start(func() { close(ready) })
	}()

	select {
	case <-ready:
		h.port = app.Port()
	case <-h.done:
		h.port = h.Port
	}
	h.running = true

	if err := h.WaitUntilAlive(); err != nil {
		h.app.Stop()
		_ = h.WaitUntilDead(MaxWaitTime)
		h.running = false
		return err
	}
	return nil
}

// probeClient bounds each liveness attempt so a listener that accepts but
// never responds cannot stall the poll loop past its overall budget.
var probeClient = &http.Client{Timeout: time.Second}

// WaitUntilAlive polls the contents endpoint until any HTTP response
// arrives. Transport errors are swallowed and retried; if the run loop has
// already exited the failure is reported immediately with the exit error
// instead of waiting out the full budget.
func (h *Harness) WaitUntilAlive() error {
	url := h.BaseURL() + "api/contents"
	deadline := time.Now().Add(MaxWaitTime)

	for time.Now().Before(deadline) {
		// A dead run loop means no attempt can ever succeed
		select {
		case <-h.done:
			return h.exitedDuringStartup()
		default:
		}

		resp, err := probeClient.Get(url)
		if err == nil {
			// Any response means the server is up; the status code is not
			// interpreted here
			resp.Body.Close()
			return nil
		}

		select {
		case <-h.done:
			return h.exitedDuringStartup()
		case <-time.After(PollInterval):
		}
	}

	return fmt.Errorf("timed out waiting for the notebook server to start (budget %s)", MaxWaitTime)
}

func (h *Harness) exitedDuringStartup() error {
	if h.runErr != nil {
		return fmt.Errorf("the notebook server exited during startup: %w", h.runErr)
	}
	return fmt.Errorf("the notebook server exited during startup before becoming reachable")
}

// WaitUntilDead joins the server goroutine, failing if it is still running
// after the timeout.
func (h *Harness) WaitUntilDead(timeout time.Duration) error {
	select {
	case <-h.done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("notebook server still running %s after requested stop", timeout)
	}
}

// Teardown stops the server, joins its goroutine, restores the environment
// overrides, and removes the temp directories. Run it unconditionally after
// the last test of the suite.
func (h *Harness) Teardown() error {
	if !h.running {
		return fmt.Errorf("harness teardown called without a prior setup")
	}

	h.app.Stop()
	err := h.WaitUntilDead(MaxWaitTime)
	if err == nil && h.runErr != nil {
		err = fmt.Errorf("notebook server run loop failed: %w", h.runErr)
	}

	h.release()
	h.running = false
	h.app = nil
	return err
}

// BaseURL returns the loopback URL of the server with no path component.
// Pure function of the bound port.
func (h *Harness) BaseURL() string {
	return fmt.Sprintf("http://localhost:%d/", h.port)
}

// HomeDir returns the temp directory HOME points at while the harness is
// running. Valid between Setup and Teardown.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// NotebookDir returns the temp directory the server serves notebooks from.
// Valid between Setup and Teardown.
func (h *Harness) NotebookDir() string {
	if len(h.dirs) < 5 {
		return ""
	}
	return h.dirs[4]
}

// setEnv overrides an environment variable and records how to undo it.
func (h *Harness) setEnv(key, value string) {
	prev, had := os.LookupEnv(key)
	h.restoreFn = append(h.restoreFn, func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
	os.Setenv(key, value)
}

// release restores the environment overrides and, only once the server
// goroutine is known to have exited, removes the temp directories. A server
// that outlived its stop request keeps its directories so it never races
// the cleanup; the shutdown-timeout error reports the condition loudly.
func (h *Harness) release() {
	h.restoreEnv()
	if h.done == nil || h.exited() {
		h.removeDirs()
	} else {
		fmt.Fprintf(os.Stderr, "Warning: notebook server still running, leaving %d temp directories in place\n", len(h.dirs))
	}
}

// exited reports whether the server goroutine has finished, without blocking.
func (h *Harness) exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// restoreEnv undoes the environment overrides, in reverse order.
func (h *Harness) restoreEnv() {
	for i := len(h.restoreFn) - 1; i >= 0; i-- {
		h.restoreFn[i]()
	}
	h.restoreFn = nil
}

// removeDirs deletes the five temp directories.
func (h *Harness) removeDirs() {
	for _, dir := range h.dirs {
		if err := os.RemoveAll(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove %s: %v\n", dir, err)
		}
	}
	h.dirs = nil
}

// tbWriter adapts testing.TB log capture into an io.Writer.
type tbWriter struct {
	tb testing.TB
}

// TBWriter returns a writer that forwards server log lines to tb.Logf, so
// server output shows up in the test runner's captured log.
func TBWriter(tb testing.TB) io.Writer {
	return &tbWriter{tb: tb}
}

func (w *tbWriter) Write(p []byte) (int, error) {
	w.tb.Logf("%s", bytes.TrimRight(p, "\n"))
	return len(p), nil
}
