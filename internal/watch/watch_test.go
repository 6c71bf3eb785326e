package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"git.home.luguber.info/inful/walletbuilder/internal/metrics"
)

type triggerRecorder struct {
	metrics.NoopRecorder
	mu     sync.Mutex
	causes []string
}

func (r *triggerRecorder) IncWatchTrigger(cause string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.causes = append(r.causes, cause)
}

func (r *triggerRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.causes...)
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 3*time.Second, 10*time.Millisecond)
}

func TestShouldIgnoreEvent(t *testing.T) {
	for _, p := range []string{"src/.hidden", "src/main.css~", "src/.main.css.swp", "src/a.swx", "src/#a.js#", "src/a.js.tmp", "src/4913"} {
		assert.True(t, shouldIgnoreEvent(p), p)
	}
	for _, p := range []string{"src/main.css", "src/js/Controller.js", "build/manifest/v3.json"} {
		assert.False(t, shouldIgnoreEvent(p), p)
	}
}

func TestMatchesIgnore(t *testing.T) {
	root := filepath.FromSlash("/project")
	patterns := []string{"src/assets/lottie/**", "**/*.map"}

	assert.True(t, matchesIgnore(root, patterns, filepath.FromSlash("/project/src/assets/lottie/done.json")))
	assert.True(t, matchesIgnore(root, patterns, filepath.FromSlash("/project/src/js/app.js.map")))
	assert.False(t, matchesIgnore(root, patterns, filepath.FromSlash("/project/src/js/app.js")))
	assert.False(t, matchesIgnore(root, patterns, filepath.FromSlash("/elsewhere/x.map")))
	assert.False(t, matchesIgnore(root, nil, filepath.FromSlash("/project/src/a.map")))
}

func TestRunWorkerQueuesOneFollowUp(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	requests := make(chan string, 1)
	release := make(chan struct{})
	var (
		runs    atomic.Int32
		running atomic.Int32
		overlap atomic.Bool
	)
	build := func(context.Context) error {
		if running.Add(1) > 1 {
			overlap.Store(true)
		}
		defer running.Add(-1)
		if runs.Add(1) == 1 {
			<-release
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		runWorker(ctx, requests, Options{Recorder: metrics.NoopRecorder{}, Logger: quietLogger()}, build)
	}()

	requests <- CauseInitial
	waitFor(t, func() bool { return runs.Load() == 1 })

	// Changes during the running build collapse into one queued request.
	requests <- CauseQuiet
	select {
	case requests <- CauseQuiet:
		t.Fatal("queue accepted a second follow-up")
	default:
	}
	close(release)

	waitFor(t, func() bool { return runs.Load() == 2 && len(requests) == 0 })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
	assert.False(t, overlap.Load())

	cancel()
	<-done
}

func TestRunRebuildsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "css"), 0o755))

	rec := &triggerRecorder{}
	var builds atomic.Int32
	build := func(context.Context) error {
		n := builds.Add(1)
		if n == 2 {
			return errors.New("broken stylesheet")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, Options{
			Root:        root,
			Paths:       []string{src, filepath.Join(root, "build")},
			QuietWindow: 20 * time.Millisecond,
			MaxDelay:    500 * time.Millisecond,
			Ignore:      []string{"src/ignored/**"},
			Recorder:    rec,
			Logger:      quietLogger(),
		}, build)
	}()

	waitFor(t, func() bool { return builds.Load() == 1 })

	require.NoError(t, os.WriteFile(filepath.Join(src, "css", "main.css"), []byte("body{}"), 0o600))
	waitFor(t, func() bool { return builds.Load() == 2 })

	// A failed rebuild keeps the watcher alive; new directories are watched.
	require.NoError(t, os.MkdirAll(filepath.Join(src, "js", "view"), 0o755))
	waitFor(t, func() bool { return builds.Load() >= 3 })
	settled := builds.Load()
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(src, "js", "view", "View.js"), []byte("x"), 0o600))
	waitFor(t, func() bool { return builds.Load() > settled })

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	causes := rec.snapshot()
	require.NotEmpty(t, causes)
	assert.Equal(t, CauseInitial, causes[0])
	assert.Contains(t, causes, CauseQuiet)
}

func TestRunNoWatchPaths(t *testing.T) {
	root := t.TempDir()
	err := Run(context.Background(), Options{
		Root:        root,
		Paths:       []string{filepath.Join(root, "missing")},
		QuietWindow: time.Millisecond,
		MaxDelay:    time.Millisecond,
		Logger:      quietLogger(),
	}, func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestRunRejectsBadIgnorePattern(t *testing.T) {
	err := Run(context.Background(), Options{
		Root:        t.TempDir(),
		QuietWindow: time.Millisecond,
		MaxDelay:    time.Millisecond,
		Ignore:      []string{"src/[unclosed"},
	}, func(context.Context) error { return nil })
	require.Error(t, err)
}
