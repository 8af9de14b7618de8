package snapshot

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of triggers into a single callback once the
// triggers have been quiet for the configured period. Callbacks never
// overlap: a trigger arriving while the callback runs re-arms the timer and
// the next run starts only after the current one returns.
type Debouncer struct {
	quiet time.Duration
	fn    func() error

	mu      sync.Mutex
	timer   *time.Timer
	running bool
	pending bool
	stopped bool
}

// NewDebouncer creates a debouncer invoking fn after quiet time has passed
// since the last Trigger.
func NewDebouncer(quiet time.Duration, fn func() error) *Debouncer {
	return &Debouncer{quiet: quiet, fn: fn}
}

// Trigger arms the timer, or resets it if already armed.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.running {
		d.pending = true
		return
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.quiet, d.fire)
		return
	}
	d.timer.Reset(d.quiet)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.fn()

	d.mu.Lock()
	d.running = false
	rearm := d.pending && !d.stopped
	d.pending = false
	if rearm {
		d.timer.Reset(d.quiet)
	}
	d.mu.Unlock()
}

// Stop cancels any pending invocation. Used before a synchronous flush so
// the timer cannot race a shutdown save.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
