// Package viewport models the scroll container and watches which
// year-blocks intersect it.
package viewport

import (
	"math"
	"time"

	"github.com/san-kum/chronogrid/internal/frame"
)

// ScrollEvent is delivered after every change of the scroll position.
// Programmatic is set for scrolls issued by code (warps, restores) rather
// than by the user.
type ScrollEvent struct {
	Top          float64
	Programmatic bool
}

type Viewport struct {
	s      *frame.Scheduler
	top    float64
	width  float64
	height float64
	extent float64

	listeners []listener
	seq       int
	anim      *animation
}

type listener struct {
	id int
	fn func(ScrollEvent)
}

type animation struct {
	from, to float64
	start    time.Time
	duration time.Duration
	frameID  uint64
}

func New(s *frame.Scheduler, width, height float64) *Viewport {
	return &Viewport{s: s, width: width, height: height}
}

func (v *Viewport) ScrollTop() float64 { return v.top }
func (v *Viewport) Width() float64 { return v.width }
func (v *Viewport) Height() float64 { return v.height }
func (v *Viewport) Extent() float64 { return v.extent }

// Listen registers fn for scroll events and returns a function removing it.
func (v *Viewport) Listen(fn func(ScrollEvent)) func() {
	v.seq++
	id := v.seq
	v.listeners = append(v.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range v.listeners {
			if l.id == id {
				v.listeners = append(v.listeners[:i:i], v.listeners[i+1:]...)
				return
			}
		}
	}
}

func (v *Viewport) Resize(width, height float64) {
	v.width = width
	v.height = height
}

// SetExtent sets the total scrollable height and clamps the position to it.
func (v *Viewport) SetExtent(extent float64) {
	v.extent = extent
	if c := v.clamp(v.top); c != v.top {
		v.top = c
	}
}

// SetScrollTop is a user scroll. It cancels any running smooth scroll.
func (v *Viewport) SetScrollTop(top float64) {
	v.stopAnimation()
	v.move(top, false)
}

func (v *Viewport) ScrollBy(dy float64) {
	v.SetScrollTop(v.top + dy)
}

// JumpTo moves instantly on behalf of code.
func (v *Viewport) JumpTo(top float64) {
	v.stopAnimation()
	v.move(top, true)
}

// SmoothScrollTo animates towards top over d, one step per frame, with an
// ease-in-out curve. A zero d jumps.
func (v *Viewport) SmoothScrollTo(top float64, d time.Duration) {
	v.stopAnimation()
	if d <= 0 {
		v.move(top, true)
		return
	}
	a := &animation{from: v.top, to: v.clamp(top), start: v.s.Now(), duration: d}
	v.anim = a
	a.frameID = v.s.RequestFrame(func(now time.Time) { v.step(a, now) })
}

func (v *Viewport) Animating() bool { return v.anim != nil }

func (v *Viewport) step(a *animation, now time.Time) {
	if v.anim != a {
		return
	}
	t := float64(now.Sub(a.start)) / float64(a.duration)
	if t >= 1 {
		v.anim = nil
		v.move(a.to, true)
		return
	}
	v.move(a.from+(a.to-a.from)*easeInOutCubic(t), true)
	if v.anim == a {
		a.frameID = v.s.RequestFrame(func(now time.Time) { v.step(a, now) })
	}
}

func (v *Viewport) stopAnimation() {
	if v.anim == nil {
		return
	}
	v.s.CancelFrame(v.anim.frameID)
	v.anim = nil
}

func (v *Viewport) move(top float64, programmatic bool) {
	top = v.clamp(top)
	if top == v.top {
		return
	}
	v.top = top
	ev := ScrollEvent{Top: top, Programmatic: programmatic}
	for _, l := range append([]listener(nil), v.listeners...) {
		l.fn(ev)
	}
}

func (v *Viewport) clamp(top float64) float64 {
	max := v.extent - v.height
	if max < 0 {
		max = 0
	}
	if v.extent > 0 && top > max {
		top = max
	}
	if top < 0 {
		top = 0
	}
	return top
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
