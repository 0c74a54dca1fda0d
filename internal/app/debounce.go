package service

import (
	"sync"
	"time"

	"github.com/hoofprint/hoofprint/pkg/metrics"
)

// globalDebounceKey collapses mutations with no specific parent.
const globalDebounceKey = "global"

// debouncer collapses bursts of trigger events into one delayed action per
// key. A newer schedule cancels the pending timer and restarts the quiet
// window. State is in-process and ephemeral: a pending action lost on
// restart is acceptable because the action is idempotent and re-triggerable
// on demand.
type debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer

	window    time.Duration
	afterFunc func(d time.Duration, fn func()) *time.Timer
	fire      func(key string)
}

func newDebouncer(window time.Duration, fire func(key string), afterFunc func(time.Duration, func()) *time.Timer) *debouncer {
	if afterFunc == nil {
		afterFunc = time.AfterFunc
	}
	return &debouncer{
		timers:    make(map[string]*time.Timer),
		window:    window,
		afterFunc: afterFunc,
		fire:      fire,
	}
}

// Schedule arms (or re-arms) the timer for key.
func (d *debouncer) Schedule(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	metrics.RecordDebounceScheduled()
	if pending, exists := d.timers[key]; exists {
		pending.Stop()
		metrics.RecordDebounceCollapsed()
	}

	d.timers[key] = d.afterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()

		metrics.RecordDebounceFired()
		d.fire(key)
	})
}

// StopAll cancels every pending timer.
func (d *debouncer) StopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, pending := range d.timers {
		pending.Stop()
		delete(d.timers, key)
	}
}

// Pending returns the number of armed timers.
func (d *debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}
