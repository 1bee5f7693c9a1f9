// Package frame runs deferred continuations on a single goroutine.
//
// Nothing in here starts a goroutine or blocks. The owner (the TUI tick loop,
// or a test) drives time forward with Tick or Advance, and every timer and
// frame callback runs from inside that call, in deadline order.
//
// # Thread Safety
//
// A Scheduler is NOT safe for concurrent use. All callers must be on the same
// event sequence as the code that drives it.
package frame

import (
	"container/heap"
	"time"
)

// FrameInterval is the nominal display refresh period.
const FrameInterval = time.Second / 60

type Scheduler struct {
	now    time.Time
	seq    uint64
	timers timerHeap
	frames []frameRequest
	frame  uint64
}

type frameRequest struct {
	id uint64
	fn func(now time.Time)
}

func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

func (s *Scheduler) Now() time.Time { return s.now }

// Frame is the number of frames run so far.
func (s *Scheduler) Frame() uint64 { return s.frame }

// After runs fn once, d after the current time.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	return s.schedule(d, 0, fn)
}

// Every runs fn every d until the returned timer is stopped.
func (s *Scheduler) Every(d time.Duration, fn func()) *Timer {
	if d <= 0 {
		d = FrameInterval
	}
	return s.schedule(d, d, fn)
}

func (s *Scheduler) schedule(d, period time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Timer{
		s:        s,
		deadline: s.now.Add(d),
		period:   period,
		seq:      s.seq,
		fn:       fn,
	}
	heap.Push(&s.timers, t)
	return t
}

// RequestFrame queues fn for the next frame. Loops re-request themselves
// from inside fn and stop by not doing so.
func (s *Scheduler) RequestFrame(fn func(now time.Time)) uint64 {
	s.seq++
	s.frames = append(s.frames, frameRequest{id: s.seq, fn: fn})
	return s.seq
}

func (s *Scheduler) CancelFrame(id uint64) {
	for i, f := range s.frames {
		if f.id == id {
			s.frames = append(s.frames[:i], s.frames[i+1:]...)
			return
		}
	}
}

// Tick moves the clock to now, fires every timer due by then, and runs one
// frame. A now earlier than the current time only runs the frame.
func (s *Scheduler) Tick(now time.Time) {
	if now.After(s.now) {
		s.fireUntil(now)
		s.now = now
	}
	s.runFrame()
}

// Advance moves time forward by d in frame-sized steps so that frame
// callbacks and timers interleave as they would on a display.
func (s *Scheduler) Advance(d time.Duration) {
	end := s.now.Add(d)
	for s.now.Before(end) {
		next := s.now.Add(FrameInterval)
		if next.After(end) {
			next = end
		}
		s.Tick(next)
	}
}

// Flush fires timers due at the current time without running a frame.
func (s *Scheduler) Flush() {
	s.fireUntil(s.now)
}

func (s *Scheduler) fireUntil(limit time.Time) {
	for s.timers.Len() > 0 {
		t := s.timers[0]
		if t.deadline.After(limit) {
			return
		}
		heap.Pop(&s.timers)
		if t.deadline.After(s.now) {
			s.now = t.deadline
		}
		if t.period > 0 {
			t.deadline = t.deadline.Add(t.period)
			s.seq++
			t.seq = s.seq
			heap.Push(&s.timers, t)
		} else {
			t.index = -1
		}
		t.fn()
	}
}

func (s *Scheduler) runFrame() {
	s.frame++
	if len(s.frames) == 0 {
		return
	}
	pending := s.frames
	s.frames = nil
	for _, f := range pending {
		f.fn(s.now)
	}
}

// Pending reports how many timers are waiting.
func (s *Scheduler) Pending() int { return s.timers.Len() }

func (s *Scheduler) PendingFrames() int { return len(s.frames) }

type Timer struct {
	s        *Scheduler
	deadline time.Time
	period   time.Duration
	seq      uint64
	index    int
	fn       func()
}

// Stop cancels the timer. It reports whether the timer was still pending.
func (t *Timer) Stop() bool {
	if t == nil || t.index < 0 {
		return false
	}
	heap.Remove(&t.s.timers, t.index)
	t.index = -1
	return true
}

func (t *Timer) Active() bool { return t != nil && t.index >= 0 }

func (t *Timer) Deadline() time.Time { return t.deadline }

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
