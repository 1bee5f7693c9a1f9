// Package nav is the navigation state machine: user scrolling, commanded
// warps across years, resize and layout-mode switches.
//
// The Controller is the single writer of the navigation state. Everything
// else reads it through accessors or follows it through bus events.
//
// # States
//
//	idle      -> scrolling  first user scroll since rest
//	scrolling -> idle       no user scroll for ScrollDebounce
//	idle      -> warping    JumpToToday / JumpToRandom
//	scrolling -> warping    JumpToToday / JumpToRandom
//	warping   -> idle       warp duration elapsed
//
// Scroll events issued by the controller itself (the smooth scroll of a
// warp, boot and resize jumps) are tagged programmatic and never move the
// machine between idle and scrolling.
package nav

import (
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
	"github.com/san-kum/chronogrid/internal/gate"
	"github.com/san-kum/chronogrid/internal/layout"
	"github.com/san-kum/chronogrid/internal/pool"
	"github.com/san-kum/chronogrid/internal/viewport"
)

type State int

const (
	Idle State = iota
	Scrolling
	Warping
)

func (s State) String() string {
	switch s {
	case Scrolling:
		return "scrolling"
	case Warping:
		return "warping"
	default:
		return "idle"
	}
}

const (
	ToastHomeNear   = "Returning to Local Timeline"
	ToastHomeFar    = "Executing Quantum Home Sequence"
	ToastRandomMode = "Randomized Navigation Mode Activated"
	ToastChronoMode = "Chronological Calendar Mode Activated"

	RandomToastTimeout = 3000 * time.Millisecond
	RandomJumpVolume   = 0.9
)

// Rand is the randomness used by JumpToRandom. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type Config struct {
	TotalYears      int
	Durations       Durations
	ScrollDebounce  time.Duration
	KeepAliveMargin time.Duration
	// LandingKeep protects the target block after arrival while its
	// container scrolls to the landing date.
	LandingKeep    time.Duration
	BootJumpDelay  time.Duration
	RenderWindow   int
	ParticleBurst  int
	ObserverMargin float64
}

func DefaultConfig() Config {
	return Config{
		TotalYears:      layout.DefaultTotalYears,
		Durations:       DefaultDurations,
		ScrollDebounce:  150 * time.Millisecond,
		KeepAliveMargin: 500 * time.Millisecond,
		LandingKeep:     800 * time.Millisecond,
		BootJumpDelay:   50 * time.Millisecond,
		RenderWindow:    1,
		ParticleBurst:   15,
		ObserverMargin:  viewport.DefaultMargin,
	}
}

type Deps struct {
	Scheduler *frame.Scheduler
	Viewport  *viewport.Viewport
	Pool      *pool.Pool
	Gate      *gate.Gate
	FX        *fx.Emitter
}

type Options struct {
	Config Config
	Today  layout.Date
	Mode   layout.Mode
	Rand   Rand
	// Cursor is where far-warp particle bursts are spawned.
	Cursor func() bus.Point
	// Save persists the navigation state. Called after scroll end, warp
	// end and mode switch.
	Save   func()
	Logger *slog.Logger
}

// Landing is where the last warp brought the target block's container.
type Landing struct {
	Year int
	Date layout.Date
	Cell int
}

type Controller struct {
	cfg    Config
	s      *frame.Scheduler
	vp     *viewport.Viewport
	pool   *pool.Pool
	obs    *viewport.Observer
	gate   *gate.Gate
	fx     *fx.Emitter
	bus    *bus.Bus
	rng    Rand
	cursor func() bus.Point
	save   func()
	logger *slog.Logger

	today      layout.Date
	span       layout.Span
	mode       layout.Mode
	yearHeight float64
	startY     float64

	state     State
	warp      *Warp
	landing   Landing
	booted    bool
	resize    *bus.Resize
	scrollEnd *frame.Debouncer
	ticking   bool
	lastTop   float64
	chroma    float64

	unlisten func()
}

func New(d Deps, opts Options) *Controller {
	cfg := opts.Config
	if cfg.TotalYears <= 0 {
		cfg = DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(d.Scheduler.Now().UnixNano()))
	}
	c := &Controller{
		cfg:        cfg,
		s:          d.Scheduler,
		vp:         d.Viewport,
		pool:       d.Pool,
		gate:       d.Gate,
		fx:         d.FX,
		bus:        d.FX.Bus(),
		rng:        rng,
		cursor:     opts.Cursor,
		save:       opts.Save,
		logger:     logger.With(slog.String("component", "nav")),
		today:      opts.Today,
		span:       layout.NewSpan(cfg.TotalYears, opts.Today.Year),
		mode:       opts.Mode,
		yearHeight: d.Viewport.Height(),
	}
	c.startY = layout.OffsetForIndex(c.span.BaseOffset(), c.yearHeight)
	c.pool.SetMode(c.mode)
	c.obs = viewport.NewObserver(c.vp, c.pool, viewport.ObserverOptions{
		Margin:  cfg.ObserverMargin,
		Current: c.CurrentYear,
		Bus:     c.bus,
		Logger:  logger,
	})
	c.scrollEnd = frame.NewDebouncer(c.s, cfg.ScrollDebounce, c.onScrollEnd)
	c.unlisten = c.vp.Listen(c.handleScroll)
	c.pool.OnRelease(func(int) { c.sweep() })
	return c
}

// Restore seeds the boot position from a persisted snapshot. A year index
// wins over a raw scroll position.
func (c *Controller) Restore(yearIndex *int, scrollPosition float64) {
	switch {
	case yearIndex != nil:
		c.startY = layout.OffsetForIndex(c.span.ClampIndex(*yearIndex), c.yearHeight)
	case scrollPosition > 0 && !math.IsNaN(scrollPosition):
		c.startY = scrollPosition
	}
}

// Initialize sizes the canvas, moves to the start position on the next
// frame, renders, and shortly after runs the initial jump to today.
func (c *Controller) Initialize() {
	c.vp.SetExtent(c.span.Extent(c.yearHeight))
	c.s.RequestFrame(func(time.Time) {
		c.vp.JumpTo(c.startY)
		c.render()
		c.s.After(c.cfg.BootJumpDelay, func() {
			c.lastTop = c.vp.ScrollTop()
			c.JumpToToday(true)
		})
	})
}

func (c *Controller) Close() {
	if c.unlisten != nil {
		c.unlisten()
		c.unlisten = nil
	}
	c.scrollEnd.Cancel()
	c.pool.OnRelease(nil)
	c.obs.Close()
}

// sweep evicts the far blocks that outlived their keep-alive without being
// looked at again. Warps own the pool until they finish.
func (c *Controller) sweep() {
	if c.state == Warping || !c.obs.Connected() {
		return
	}
	for _, y := range c.pool.EvictFar(c.CurrentYear()) {
		c.obs.Unobserve(y)
		c.logger.Debug("released block evicted", slog.Int("year", y))
	}
}

// JumpToToday warps to the current year. Initial jumps do not animate or
// toast, and the first one is allowed even while a warp is in flight.
func (c *Controller) JumpToToday(initial bool) bool {
	if c.state == Warping && !(initial && !c.booted) {
		return false
	}
	if initial {
		c.booted = true
	}
	c.yearHeight = c.vp.Height()
	targetTop := layout.OffsetForIndex(c.span.BaseOffset(), c.yearHeight)
	targetYear := c.today.Year
	distance := abs(targetYear - c.ScrollYear())

	if distance == 0 && math.Abs(c.vp.ScrollTop()-targetTop) < 1 && !initial {
		return false
	}

	o := warpOptions{distance: distance, initial: initial, landing: c.today}
	if !initial {
		o.cue = Cue(distance)
		msg := ToastHomeNear
		if distance > FarDistance {
			msg = ToastHomeFar
		}
		c.fx.Toast(msg, 0)
	}
	c.warpTo(targetYear, targetTop, o)
	return true
}

// JumpToRandom warps to a uniformly random day of a uniformly random year
// of the span.
func (c *Controller) JumpToRandom() bool {
	if c.state == Warping {
		return false
	}
	c.yearHeight = c.vp.Height()
	index := c.rng.Intn(c.span.TotalYears)
	targetYear := c.span.YearForIndex(index)
	targetTop := layout.OffsetForIndex(index, c.yearHeight)
	landing := layout.DayOfYear(targetYear, c.rng.Intn(layout.DayCount(targetYear))+1)
	distance := abs(targetYear - c.ScrollYear())

	c.fx.Toast("Quantum Jump: Heading to "+landing.String(), RandomToastTimeout)
	c.fx.Play(bus.SoundJump, bus.PlayOptions{Volume: RandomJumpVolume})
	c.warpTo(targetYear, targetTop, warpOptions{
		distance: distance,
		random:   true,
		duration: c.cfg.Durations.Random,
		landing:  landing,
	})
	return true
}

func (c *Controller) warpTo(targetYear int, targetTop float64, o warpOptions) {
	duration := o.duration
	if duration == 0 {
		duration = c.cfg.Durations.For(o.distance, o.initial)
	}
	w := &Warp{
		From:     c.ScrollYear(),
		Target:   targetYear,
		Distance: o.distance,
		Class:    Classify(o.distance),
		Duration: duration,
		Initial:  o.initial,
		Random:   o.random,
		Landing:  o.landing,
		Started:  c.s.Now(),
	}
	c.prepareWarp(w)
	c.executeWarp(w, targetTop, o.cue)
	c.s.After(duration, func() { c.finalizeWarp(w, targetTop) })
}

func (c *Controller) prepareWarp(w *Warp) {
	if c.state == Scrolling {
		c.scrollEnd.Cancel()
		bus.Emit(c.bus, bus.NavScrollEnd, bus.ScrollSignal{Top: c.vp.ScrollTop()})
	}
	c.warp = w
	c.setState(Warping)
	c.gate.Lock()
	c.obs.Disconnect()
	bus.Emit(c.bus, bus.NavWarpStart, bus.WarpStart{
		CurrentYear: w.From,
		TargetYear:  w.Target,
		Distance:    w.Distance,
		Class:       string(w.Class),
		Initial:     w.Initial,
	})
	c.logger.Debug("warp start",
		slog.Int("from", w.From),
		slog.Int("to", w.Target),
		slog.String("class", string(w.Class)),
		slog.Duration("duration", w.Duration))
}

func (c *Controller) executeWarp(w *Warp, targetTop float64, cue bus.Sound) {
	if cue != "" {
		c.fx.Cue(cue)
	}
	if w.Class == ClassFar && !w.Initial && c.cfg.ParticleBurst > 0 {
		p := c.cursorPoint()
		c.fx.Burst(p.X, p.Y, c.cfg.ParticleBurst)
	}

	c.renderWarpWindow(w)
	c.pool.MarkKeepAlive(w.Target, w.Duration+c.cfg.KeepAliveMargin)

	if w.Duration <= 0 {
		c.vp.JumpTo(targetTop)
		return
	}
	c.vp.SmoothScrollTo(targetTop, w.Duration)
}

func (c *Controller) renderWarpWindow(w *Warp) {
	half := PreRenderWindow(w.Distance)
	targetIdx := c.span.IndexForYear(w.Target)
	for y := w.Target - half; y <= w.Target+half; y++ {
		idx := targetIdx + (y - w.Target)
		if idx < 0 || idx >= c.span.TotalYears {
			continue
		}
		c.pool.EnsureRendered(y, layout.OffsetForIndex(idx, c.yearHeight))
	}
}

func (c *Controller) finalizeWarp(w *Warp, targetTop float64) {
	if c.warp != w {
		return
	}
	if c.vp.Animating() {
		c.vp.JumpTo(targetTop)
	}
	c.warp = nil
	c.setState(Idle)
	c.gate.Unlock()

	if b, ok := c.pool.Lookup(w.Target); ok {
		c.pool.MarkKeepAlive(w.Target, c.cfg.LandingKeep)
		c.landing = Landing{Year: w.Target, Date: w.Landing, Cell: -1}
		if !w.Landing.IsZero() {
			c.landing.Cell = layout.CellIndex(b.Geometry, w.Landing)
		}
		if c.landing.Cell >= 0 {
			c.pool.SetFocus(w.Target, c.landing.Cell)
		}
	}

	c.persist()
	c.render()
	if !c.obs.Connected() {
		c.obs.Reconnect()
	}
	bus.Emit(c.bus, bus.NavWarpEnd, bus.WarpEnd{TargetYear: w.Target, Duration: w.Duration})
	c.fx.Cue(bus.SoundBeep)

	if r := c.resize; r != nil {
		c.resize = nil
		c.Resize(r.Width, r.Height)
	}
}

func (c *Controller) handleScroll(ev viewport.ScrollEvent) {
	if !ev.Programmatic && c.state != Warping {
		if c.state == Idle {
			c.setState(Scrolling)
			c.gate.Lock()
			bus.Emit(c.bus, bus.NavScrollStart, bus.ScrollSignal{Top: ev.Top})
			c.fx.Cue(bus.SoundScroll)
		}
		c.scrollEnd.Trigger()
	}
	if !c.ticking {
		c.ticking = true
		c.s.RequestFrame(func(time.Time) {
			c.render()
			top := c.vp.ScrollTop()
			if v := math.Abs(top - c.lastTop); v > 1 && !ev.Programmatic {
				c.chroma = math.Min(12, v/10)
			}
			c.lastTop = top
			c.ticking = false
		})
	}
}

func (c *Controller) onScrollEnd() {
	if c.state != Scrolling {
		return
	}
	c.setState(Idle)
	c.gate.Unlock()
	c.persist()
	bus.Emit(c.bus, bus.NavScrollEnd, bus.ScrollSignal{Top: c.vp.ScrollTop()})
	c.chroma = 0
}

// Resize recomputes the year height, clears every block and jumps home.
// During a warp the request is held and the last one is applied when the
// warp finishes.
func (c *Controller) Resize(width, height float64) {
	if height <= 0 || width <= 0 {
		return
	}
	if c.state == Warping {
		c.resize = &bus.Resize{Width: width, Height: height}
		return
	}
	c.vp.Resize(width, height)
	c.pool.SetViewport(width, height)
	c.yearHeight = height
	c.vp.SetExtent(c.span.Extent(height))
	c.pool.Clear()
	c.fx.ResizeParticles(width, height)
	c.JumpToToday(true)
}

// SetMode switches the grid offset mode. Every block is evicted and the
// current window rendered again.
func (c *Controller) SetMode(m layout.Mode) {
	c.mode = m
	c.pool.SetMode(m)
	c.pool.Clear()
	c.render()
	if c.warp != nil {
		c.renderWarpWindow(c.warp)
	}
	if c.obs.Connected() {
		c.obs.Reconnect()
	}
	c.persist()
	bus.Emit(c.bus, bus.NavModeChanged, bus.ModeChanged{Mode: m.String()})
	c.fx.Cue(bus.SoundBeep)
	msg := ToastChronoMode
	if m == layout.Randomized {
		msg = ToastRandomMode
	}
	c.fx.Toast(msg, 0)
}

// render materializes the blocks around the scroll position.
func (c *Controller) render() {
	if c.yearHeight <= 0 {
		return
	}
	idx := layout.FloorIndexFromScroll(c.vp.ScrollTop(), c.yearHeight)
	for i := -c.cfg.RenderWindow; i <= c.cfg.RenderWindow; i++ {
		n := idx + i
		if n < 0 || n >= c.span.TotalYears {
			continue
		}
		year := c.span.YearForIndex(n)
		c.pool.EnsureRendered(year, layout.OffsetForIndex(n, c.yearHeight))
		c.obs.Observe(year)
	}
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	from := c.state
	c.state = s
	bus.Emit(c.bus, bus.NavStateChanged, bus.NavState{From: from.String(), To: s.String()})
}

func (c *Controller) persist() {
	if c.save != nil {
		c.save()
	}
}

func (c *Controller) cursorPoint() bus.Point {
	if c.cursor != nil {
		return c.cursor()
	}
	return bus.Point{X: c.vp.Width() / 2, Y: c.vp.Height() / 2}
}

// ScrollYear is the year derived from the scroll position alone.
func (c *Controller) ScrollYear() int {
	return c.span.YearFromScroll(c.vp.ScrollTop(), c.yearHeight)
}

// CurrentYear is the warp target while warping, else ScrollYear.
func (c *Controller) CurrentYear() int {
	if c.warp != nil {
		return c.warp.Target
	}
	return c.ScrollYear()
}

// YearIndex is the rounded scroll index of the current position.
func (c *Controller) YearIndex() int {
	return layout.IndexFromScroll(c.vp.ScrollTop(), c.yearHeight)
}

func (c *Controller) State() State { return c.state }
func (c *Controller) IsWarping() bool { return c.state == Warping }
func (c *Controller) IsScrolling() bool { return c.state == Scrolling }
func (c *Controller) Mode() layout.Mode { return c.mode }
func (c *Controller) Span() layout.Span { return c.span }
func (c *Controller) Today() layout.Date { return c.today }
func (c *Controller) YearHeight() float64 { return c.yearHeight }
func (c *Controller) ScrollTop() float64 { return c.vp.ScrollTop() }
func (c *Controller) Observer() *viewport.Observer { return c.obs }
func (c *Controller) Landing() Landing { return c.landing }

// Chroma is the scroll-velocity distortion amount, 0 to 12.
func (c *Controller) Chroma() float64 { return c.chroma }

// Warp returns the warp in flight.
func (c *Controller) Warp() (Warp, bool) {
	if c.warp == nil {
		return Warp{}, false
	}
	return *c.warp, true
}

// HasPendingResize reports whether a resize is held until the warp ends.
func (c *Controller) HasPendingResize() bool { return c.resize != nil }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
