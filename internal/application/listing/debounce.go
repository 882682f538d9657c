package listing

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a typed search is committed
const DefaultDebounce = 500 * time.Millisecond

// Debouncer commits the latest pushed value once no new value arrived for the delay.
// A value equal to the last committed one is not committed again.
type Debouncer struct {
	delay  time.Duration
	commit func(string)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending string
	dirty   bool
	last    string
	stopped bool

	// current, when set, supplies the committed value instead of last
	current func() string
}

// NewDebouncer creates a debouncer. A non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, commit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, commit: commit}
}

// Push records v and restarts the quiet period
func (d *Debouncer) Push(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = v
	d.dirty = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.stopped {
		d.mu.Unlock()
		return
	}
	v, ok := d.takeLocked()
	d.mu.Unlock()
	if ok {
		d.commit(v)
	}
}

// takeLocked consumes the pending value, reporting whether it must be committed
func (d *Debouncer) takeLocked() (string, bool) {
	if !d.dirty {
		return "", false
	}
	d.dirty = false
	last := d.last
	if d.current != nil {
		last = d.current()
	}
	if d.pending == last {
		return "", false
	}
	d.last = d.pending
	return d.pending, true
}

// Flush commits the pending value now, as on pressing enter
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	v, ok := d.takeLocked()
	d.mu.Unlock()
	if ok {
		d.commit(v)
	}
}

// Stop drops the pending value; later pushes are ignored
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
}

// SearchInput binds a debouncer to the controller's search term. Repeats are
// judged against the controller's current search, so a term cleared elsewhere
// can be typed again.
func SearchInput[T any](c *Controller[T], delay time.Duration) *Debouncer {
	d := NewDebouncer(delay, c.SetSearch)
	d.current = func() string { return c.Query().Search }
	return d
}
