package harness

import (
	"errors"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURLIsPure(t *testing.T) {
	h := &Harness{port: 12341}

	first := h.BaseURL()
	second := h.BaseURL()
	assert.Equal(t, "http://localhost:12341/", first)
	assert.Equal(t, first, second)

	// Changing only the port changes only the port segment
	h.port = 12342
	assert.Equal(t, "http://localhost:12342/", h.BaseURL())
}

func TestWaitUntilDeadReturnsWhenExited(t *testing.T) {
	h := &Harness{done: make(chan struct{})}
	close(h.done)

	assert.NoError(t, h.WaitUntilDead(time.Second))
}

func TestWaitUntilDeadTimesOut(t *testing.T) {
	h := &Harness{done: make(chan struct{})}

	start := time.Now()
	err := h.WaitUntilDead(50 * time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still running")
	assert.Less(t, time.Since(start), time.Second)
}

func TestWaitUntilAliveReportsEarlyExit(t *testing.T) {
	// Simulate a server whose run loop already failed: the poll loop must
	// fail immediately with the exit error instead of burning the budget
	h := &Harness{done: make(chan struct{}), runErr: errors.New("bind: address already in use"), port: 1}
	close(h.done)

	start := time.Now()
	err := h.WaitUntilAlive()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited during startup")
	assert.Contains(t, err.Error(), "address already in use")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWaitUntilAliveNotStalledBySilentListener(t *testing.T) {
	// A listener that accepts connections but never answers must not pin
	// the poll loop: the per-attempt bound and the dead-run-loop check
	// still apply
	silent, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	defer silent.Close()
	port := silent.Addr().(*net.TCPAddr).Port

	h := &Harness{done: make(chan struct{}), runErr: errors.New("bind: address already in use"), port: port}
	close(h.done)

	start := time.Now()
	err = h.WaitUntilAlive()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited during startup")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestReleaseKeepsDirsWhileServerRuns(t *testing.T) {
	dir, err := os.MkdirTemp("", "notelab-test-release-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	// Run loop still alive: directories must survive the release
	h := &Harness{done: make(chan struct{}), dirs: []string{dir}}
	h.release()
	assert.DirExists(t, dir)

	// Once the goroutine has exited the same release removes them
	close(h.done)
	h.release()
	assert.NoDirExists(t, dir)
}

func TestSetupTwiceIsRejected(t *testing.T) {
	h := &Harness{running: true}

	err := h.Setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twice")
}

func TestTeardownWithoutSetupIsRejected(t *testing.T) {
	h := New()

	err := h.Teardown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without a prior setup")
}

// recordingTB captures failures so assertion helpers can be tested. Every
// testing.TB method the assertion path can reach is implemented explicitly;
// the embedded interface only satisfies the private testing.TB method.
type recordingTB struct {
	testing.TB
	errs   []string
	fatals []string
}

type fatalSentinel struct{}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Name() string { return "recordingTB" }

func (r *recordingTB) Log(args ...any) {}

func (r *recordingTB) Logf(format string, args ...any) {}

func (r *recordingTB) Fail() {}

func (r *recordingTB) Failed() bool { return len(r.errs)+len(r.fatals) > 0 }

func (r *recordingTB) FailNow() {
	panic(fatalSentinel{})
}

func (r *recordingTB) Errorf(format string, args ...any) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

func (r *recordingTB) Fatalf(format string, args ...any) {
	r.fatals = append(r.fatals, fmt.Sprintf(format, args...))
	panic(fatalSentinel{})
}

func runWithRecorder(fn func(tb testing.TB)) (rec *recordingTB) {
	rec = &recordingTB{}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(fatalSentinel); !ok {
				panic(r)
			}
		}
	}()
	fn(rec)
	return rec
}
