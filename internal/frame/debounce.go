package frame

import "time"

// Debouncer calls fn once, wait after the last Trigger.
type Debouncer struct {
	s     *Scheduler
	wait  time.Duration
	fn    func()
	timer *Timer
}

func NewDebouncer(s *Scheduler, wait time.Duration, fn func()) *Debouncer {
	return &Debouncer{s: s, wait: wait, fn: fn}
}

func (d *Debouncer) Trigger() {
	d.timer.Stop()
	d.timer = d.s.After(d.wait, func() {
		d.timer = nil
		d.fn()
	})
}

func (d *Debouncer) Pending() bool { return d.timer.Active() }

func (d *Debouncer) Cancel() {
	d.timer.Stop()
	d.timer = nil
}

// Throttle reports whether at least interval has passed since the last
// accepted call, and records the call when it has.
type Throttle struct {
	s        *Scheduler
	interval time.Duration
	last     time.Time
	primed   bool
}

func NewThrottle(s *Scheduler, interval time.Duration) *Throttle {
	return &Throttle{s: s, interval: interval}
}

func (t *Throttle) Allow() bool {
	now := t.s.Now()
	if t.primed && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	t.primed = true
	return true
}
