package watch

import (
	"sort"
	"sync"
	"time"
)

// DefaultInterval is the quiet period before a batch is emitted
const DefaultInterval = 100 * time.Millisecond

// ⏱️ Debouncer collects changed paths and emits them as one sorted batch
// once no new path has arrived for the interval. Repeated paths collapse.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	paths    map[string]struct{}
	timer    *time.Timer
	stopped  bool
	done     chan struct{}
	output   chan []string
}

// 🏭 NewDebouncer creates a debouncer with the given quiet interval
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		paths:    make(map[string]struct{}),
		done:     make(chan struct{}),
		output:   make(chan []string, 16),
	}
}

// Output returns the channel that receives batches
func (d *Debouncer) Output() <-chan []string {
	return d.output
}

// Add records a path and restarts the quiet period. Paths added after Stop
// are dropped.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.paths[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

// Stop cancels a pending batch and releases a flush blocked on a full output.
// No batch is emitted afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.stopped {
		d.stopped = true
		close(d.done)
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.paths = make(map[string]struct{})
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.paths) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]string, 0, len(d.paths))
	for path := range d.paths {
		batch = append(batch, path)
	}
	d.paths = make(map[string]struct{})
	d.mu.Unlock()

	sort.Strings(batch)
	select {
	case d.output <- batch:
	case <-d.done:
	}
}
