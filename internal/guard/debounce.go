package guard

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid-fire writes to the same key into a single
// fire of fn, delay after the last call, mirroring the fsnotify watch
// loop's time.AfterFunc debounce pattern.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDebouncer returns a Debouncer with the given per-key coalescing delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, timers: map[string]*time.Timer{}}
}

// Trigger (re)schedules fn to run delay after the most recent Trigger call
// for key, canceling any pending run still in flight.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
}

// Stop cancels every pending timer. Used during shutdown so no debounced
// callback fires after the owning component is gone.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
