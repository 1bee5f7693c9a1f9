package viewport

import (
	"log/slog"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/pool"
)

const (
	DefaultMargin    = 0.5
	DefaultThreshold = 0.01
	// HapticPulse is the vibration length, in milliseconds, sent the first
	// time a block becomes active.
	HapticPulse = 10
)

type ObserverOptions struct {
	// Margin extends the viewport by this fraction of its height on both
	// edges.
	Margin    float64
	Threshold float64
	// Current returns the year the navigation state considers current.
	Current func() int
	Bus     *bus.Bus
	Logger  *slog.Logger
}

// Observer tracks intersection of materialized blocks with the viewport
// extended by a margin. Blocks entering become active; blocks leaving that
// are far from the current year are evicted.
type Observer struct {
	vp        *Viewport
	pool      *pool.Pool
	margin    float64
	threshold float64
	current   func() int
	bus       *bus.Bus
	logger    *slog.Logger

	connected bool
	observed  map[int]bool
	pulsed    map[int]bool
	stop      func()
}

func NewObserver(vp *Viewport, p *pool.Pool, opts ObserverOptions) *Observer {
	if opts.Margin <= 0 {
		opts.Margin = DefaultMargin
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	o := &Observer{
		vp:        vp,
		pool:      p,
		margin:    opts.Margin,
		threshold: opts.Threshold,
		current:   opts.Current,
		bus:       opts.Bus,
		logger:    opts.Logger.With(slog.String("component", "observer")),
		connected: true,
		observed:  make(map[int]bool),
		pulsed:    make(map[int]bool),
	}
	o.stop = vp.Listen(func(ScrollEvent) { o.Check() })
	return o
}

// Observe starts watching year. While disconnected it is a no-op; Reconnect
// picks up every block present at that time.
func (o *Observer) Observe(year int) {
	if !o.connected {
		return
	}
	o.observed[year] = true
}

func (o *Observer) Unobserve(year int) {
	delete(o.observed, year)
	delete(o.pulsed, year)
}

// Disconnect stops all observation. No signals are produced until Reconnect.
func (o *Observer) Disconnect() {
	o.connected = false
	for y := range o.observed {
		delete(o.observed, y)
	}
}

// Reconnect observes every block currently in the pool and runs a check.
func (o *Observer) Reconnect() {
	o.connected = true
	for _, y := range o.pool.Years() {
		o.observed[y] = true
	}
	o.Check()
}

func (o *Observer) Connected() bool { return o.connected }

func (o *Observer) Observed() int { return len(o.observed) }

// Close detaches the observer from the viewport.
func (o *Observer) Close() {
	if o.stop != nil {
		o.stop()
		o.stop = nil
	}
	o.Disconnect()
}

// Check recomputes intersection for every observed block.
func (o *Observer) Check() {
	if !o.connected {
		return
	}
	h := o.vp.Height()
	if h <= 0 {
		return
	}
	lo := o.vp.ScrollTop() - o.margin*h
	hi := o.vp.ScrollTop() + h + o.margin*h

	for _, year := range o.pool.Years() {
		if !o.observed[year] {
			continue
		}
		b, _ := o.pool.Lookup(year)
		overlap := overlap(b.TopOffset, b.TopOffset+h, lo, hi)
		intersecting := overlap > 0 && overlap/h >= o.threshold

		switch {
		case intersecting && !b.Active:
			b.Active = true
			b.Visible = true
			o.emitActive(year, true)
			if !o.pulsed[year] {
				o.pulsed[year] = true
				if o.bus != nil {
					bus.Emit(o.bus, bus.ViewportHaptic, HapticPulse)
				}
			}
		case !intersecting && (b.Active || b.Visible):
			b.Active = false
			b.Visible = false
			o.emitActive(year, false)
			o.maybeEvict(year)
		case !intersecting:
			o.maybeEvict(year)
		}
	}

	for y := range o.observed {
		if _, ok := o.pool.Lookup(y); !ok {
			o.Unobserve(y)
		}
	}
}

func (o *Observer) maybeEvict(year int) {
	if o.current == nil {
		return
	}
	if o.pool.Evict(year, o.current()) {
		o.Unobserve(year)
		o.logger.Debug("evicted off-screen block", slog.Int("year", year))
	}
}

func (o *Observer) emitActive(year int, active bool) {
	if o.bus != nil {
		bus.Emit(o.bus, bus.ViewportBlockActive, bus.BlockActive{Year: year, Active: active})
	}
}

func overlap(a0, a1, b0, b1 float64) float64 {
	lo, hi := a0, a1
	if b0 > lo {
		lo = b0
	}
	if b1 < hi {
		hi = b1
	}
	if hi <= lo {
		return 0
	}
	return hi - lo
}
