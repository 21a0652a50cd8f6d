package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n   atomic.Int64
	err error
}

func (c *counter) regenerate(context.Context) error {
	c.n.Add(1)
	return c.err
}

func catalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "boards", "ESP32"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common.yaml"), []byte("options: {}\n"), 0o644))
	return dir
}

// start runs w until the test ends.
func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel")
		}
	})
	// give fsnotify time to register the directories
	time.Sleep(100 * time.Millisecond)
}

func TestTriggerRegenerates(t *testing.T) {
	c := &counter{}
	w := New(catalogDir(t), c.regenerate, Options{})
	start(t, w)

	w.Trigger()
	assert.Eventually(t, func() bool { return c.n.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestFileChangeRegenerates(t *testing.T) {
	dir := catalogDir(t)
	c := &counter{}
	start(t, New(dir, c.regenerate, Options{Debounce: 20 * time.Millisecond}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "boards", "ESP32", "board.yaml"), []byte("options: {}\n"), 0o644))
	assert.Eventually(t, func() bool { return c.n.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestBurstIsDebounced(t *testing.T) {
	dir := catalogDir(t)
	c := &counter{}
	start(t, New(dir, c.regenerate, Options{Debounce: 300 * time.Millisecond}))

	for i := range 5 {
		data := []byte("options: {}\n# " + string(rune('a'+i)) + "\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "common.yaml"), data, 0o644))
	}

	assert.Eventually(t, func() bool { return c.n.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, int64(1), c.n.Load())
}

func TestIrrelevantFilesIgnored(t *testing.T) {
	dir := catalogDir(t)
	c := &counter{}
	start(t, New(dir, c.regenerate, Options{Debounce: 10 * time.Millisecond}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int64(0), c.n.Load())
}

func TestNewBoardDirectoryIsWatched(t *testing.T) {
	dir := catalogDir(t)
	c := &counter{}
	start(t, New(dir, c.regenerate, Options{Debounce: 10 * time.Millisecond}))

	newBoard := filepath.Join(dir, "boards", "ESP32_S3")
	require.NoError(t, os.Mkdir(newBoard, 0o755))
	assert.Eventually(t, func() bool { return c.n.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	before := c.n.Load()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(newBoard, "board.yaml"), []byte("options: {}\n"), 0o644))
	assert.Eventually(t, func() bool { return c.n.Load() > before }, 2*time.Second, 10*time.Millisecond)
}

func TestRegenerationErrorsAreNotFatal(t *testing.T) {
	c := &counter{err: errors.New("boom")}
	w := New(catalogDir(t), c.regenerate, Options{})
	start(t, w)

	w.Trigger()
	assert.Eventually(t, func() bool { return c.n.Load() == 1 }, time.Second, 10*time.Millisecond)
	w.Trigger()
	assert.Eventually(t, func() bool { return c.n.Load() == 2 }, time.Second, 10*time.Millisecond)
}

func TestMinIntervalThrottles(t *testing.T) {
	c := &counter{}
	w := New(catalogDir(t), c.regenerate, Options{MinInterval: time.Hour})
	start(t, w)

	w.Trigger()
	assert.Eventually(t, func() bool { return c.n.Load() == 1 }, time.Second, 10*time.Millisecond)
	w.Trigger()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), c.n.Load(), "second regeneration must wait for the interval")
}

func TestRunMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), func(context.Context) error { return nil }, Options{})
	assert.Error(t, w.Run(context.Background()))
}
