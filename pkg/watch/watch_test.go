package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 50 * time.Millisecond

func receiveBatch(t *testing.T, ch <-chan []string, timeout time.Duration) []string {
	t.Helper()
	select {
	case batch := <-ch:
		return batch
	case <-time.After(timeout):
		t.Fatal("timed out waiting for batch")
		return nil
	}
}

func TestDebouncer(t *testing.T) {
	t.Run("collapses_and_sorts", func(t *testing.T) {
		d := NewDebouncer(testInterval)
		d.Add("b.css")
		d.Add("a.css")
		d.Add("b.css")

		assert.Equal(t, []string{"a.css", "b.css"}, receiveBatch(t, d.Output(), time.Second))
	})

	t.Run("timer_reset_keeps_one_batch", func(t *testing.T) {
		d := NewDebouncer(testInterval)
		d.Add("a.css")
		time.Sleep(testInterval / 2)
		d.Add("b.css")

		assert.Equal(t, []string{"a.css", "b.css"}, receiveBatch(t, d.Output(), time.Second))
	})

	t.Run("stop_drops_pending", func(t *testing.T) {
		d := NewDebouncer(testInterval)
		d.Add("a.css")
		d.Stop()

		select {
		case batch := <-d.Output():
			t.Fatalf("unexpected batch %v", batch)
		case <-time.After(3 * testInterval):
		}
	})
}

// suffixFilter accepts files with the suffix and every directory not named skip
type suffixFilter struct {
	suffix string
	skip   string
}

func (f suffixFilter) Accepts(path string) bool   { return strings.HasSuffix(path, f.suffix) }
func (f suffixFilter) AcceptsDir(path string) bool { return filepath.Base(path) != f.skip }

func TestDebouncerStop(t *testing.T) {
	t.Run("no_batch_after_stop", func(t *testing.T) {
		d := NewDebouncer(testInterval)
		d.Add("a.css")
		d.Stop()
		d.Add("b.css")

		select {
		case batch := <-d.Output():
			t.Fatalf("unexpected batch after stop: %v", batch)
		case <-time.After(3 * testInterval):
		}
	})

	t.Run("releases_flush_on_full_output", func(t *testing.T) {
		d := NewDebouncer(time.Hour)
		for i := 0; i < cap(d.output); i++ {
			d.output <- []string{"filler"}
		}

		d.mu.Lock()
		d.paths["a.css"] = struct{}{}
		d.mu.Unlock()

		flushed := make(chan struct{})
		go func() {
			d.flush()
			close(flushed)
		}()

		select {
		case <-flushed:
			t.Fatal("flush should wait for room in the output")
		case <-time.After(testInterval):
		}

		d.Stop()

		select {
		case <-flushed:
		case <-time.After(time.Second):
			t.Fatal("flush still blocked after stop")
		}
	})

	t.Run("stop_twice", func(t *testing.T) {
		d := NewDebouncer(testInterval)
		d.Stop()
		assert.NotPanics(t, d.Stop)
	})
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))

	w, err := New([]string{root}, suffixFilter{suffix: ".css", skip: "node_modules"}, zerolog.New(zerolog.NewTestWriter(t)))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{root, filepath.Join(root, "src")}, w.WatchList())

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(ctx context.Context, paths []string) {
			batches <- paths
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.css"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "b.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "c.css"), []byte("x"), 0o644))

	batch := receiveBatch(t, batches, 5*time.Second)
	assert.Equal(t, []string{filepath.Join(root, "src", "a.css")}, batch)

	// new directories are picked up
	nested := filepath.Join(root, "src", "nested")
	require.NoError(t, os.Mkdir(nested, 0o755))
	require.Eventually(t, func() bool {
		for _, dir := range w.WatchList() {
			if dir == nested {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(nested, "d.css"), []byte("x"), 0o644))
	batch = receiveBatch(t, batches, 5*time.Second)
	assert.Equal(t, []string{filepath.Join(nested, "d.css")}, batch)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
