// Package effects turns raw pointer and theme input into side-effect
// commands: the inertial cursor, exhaust trails, hover and click feedback
// and the theme veil. Hover and click feedback stay quiet while the
// interaction gate is locked.
package effects

import (
	"log/slog"
	"math"
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/config"
	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
	"github.com/san-kum/chronogrid/internal/gate"
)

const (
	HoverGlow       = 900.0
	FillerHoverGlow = 200.0

	HoverVolume       = 0.25
	FillerHoverVolume = 0.04
	FillerHoverRate   = 0.5
	ClickVolume       = 0.15

	// The veil covers the grid for VeilDelay before the theme flips, and
	// lifts VeilLinger after.
	VeilDelay   = 400 * time.Millisecond
	VeilLinger  = 200 * time.Millisecond
	ThemeDark   = "dark"
	ThemeLight  = "light"
	settleDelta = 0.01
)

type Options struct {
	Physics config.PhysicsConfig
	Theme   string
	Width   float64
	Height  float64
	Logger  *slog.Logger
}

type Controller struct {
	s      *frame.Scheduler
	fx     *fx.Emitter
	gate   *gate.Gate
	cfg    config.PhysicsConfig
	logger *slog.Logger
	hover  *frame.Throttle

	target  bus.Point
	current bus.Point
	last    bus.Point
	hasLast bool

	glow      float64
	driving   bool
	theme     string
	veil      *frame.Timer
	veiled    bool
	enabled   bool
	looping   bool
	frameID   uint64
	unsubGate bus.Unsubscribe
}

func New(s *frame.Scheduler, emitter *fx.Emitter, g *gate.Gate, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme := opts.Theme
	if theme != ThemeLight {
		theme = ThemeDark
	}
	center := bus.Point{X: opts.Width / 2, Y: opts.Height / 2}
	c := &Controller{
		s:       s,
		fx:      emitter,
		gate:    g,
		cfg:     opts.Physics,
		logger:  logger.With(slog.String("component", "effects")),
		hover:   frame.NewThrottle(s, opts.Physics.HoverThrottle),
		target:  center,
		current: center,
		glow:    g.Glow(),
		theme:   theme,
		enabled: true,
	}
	c.unsubGate = bus.On(emitter.Bus(), bus.GateChangedTopic, func(m bus.GateChanged) {
		c.glow = m.Glow
		if m.Locked {
			c.driving = false
		}
	})
	return c
}

// Start runs the cursor loop, one inertia step per frame.
func (c *Controller) Start() {
	if !c.enabled || c.looping {
		return
	}
	c.looping = true
	c.frameID = c.s.RequestFrame(c.step)
}

func (c *Controller) Close() {
	c.stop()
	c.veil.Stop()
	c.unsubGate()
}

func (c *Controller) stop() {
	if c.looping {
		c.s.CancelFrame(c.frameID)
		c.looping = false
	}
}

func (c *Controller) step(time.Time) {
	c.looping = false
	if !c.enabled {
		return
	}
	dx := (c.target.X - c.current.X) * c.cfg.CursorInertia
	dy := (c.target.Y - c.current.Y) * c.cfg.CursorInertia
	c.current.X += dx
	c.current.Y += dy
	if math.Abs(dx) > settleDelta || math.Abs(dy) > settleDelta {
		c.fx.UpdateSpatialPosition(c.current.X, c.current.Y)
	}
	c.Start()
}

// SetEnabled pauses the cursor loop for power saving.
func (c *Controller) SetEnabled(enabled bool) {
	c.enabled = enabled
	if enabled {
		c.Start()
		return
	}
	c.stop()
}

func (c *Controller) Enabled() bool { return c.enabled }

// PointerMove records a pointer sample. Fast moves leave an exhaust trail
// and every move feeds the engine and resets the idle timer.
func (c *Controller) PointerMove(x, y float64) {
	c.target = bus.Point{X: x, Y: y}
	velocity := math.Hypot(x-c.last.X, y-c.last.Y)
	if !c.hasLast {
		velocity = 0
	}
	if velocity > c.cfg.ExhaustThreshold {
		c.fx.Spawn(x, y, true)
	}
	c.fx.InjectEnginePower(velocity)
	bus.Emit(c.fx.Bus(), bus.InputPointerMove, bus.PointerMove{X: x, Y: y, Velocity: velocity})
	c.last = bus.Point{X: x, Y: y}
	c.hasLast = true
	c.fx.ResetIdleTimer()
}

// Hover reacts to the pointer entering a day cell. It reports whether any
// feedback was produced.
func (c *Controller) Hover(filler bool) bool {
	if c.gate.Locked() || !c.hover.Allow() {
		return false
	}
	c.driving = true
	opts := bus.PlayOptions{Volume: HoverVolume, Rate: 1}
	c.glow = HoverGlow
	if filler {
		opts = bus.PlayOptions{Volume: FillerHoverVolume, Rate: FillerHoverRate}
		c.glow = FillerHoverGlow
	}
	c.fx.Play(bus.SoundHover, opts)
	bus.Emit(c.fx.Bus(), bus.InputHover, bus.Hover{Filler: filler})
	return true
}

// HoverOut restores the resting glow when the pointer leaves a cell.
func (c *Controller) HoverOut() {
	c.driving = false
	c.glow = c.gate.Glow()
}

// Click bursts particles at the point and confirms with a beep.
func (c *Controller) Click(x, y float64) bool {
	if c.gate.Locked() {
		return false
	}
	c.fx.Spawn(x, y, false)
	c.fx.Play(bus.SoundBeep, bus.PlayOptions{Volume: ClickVolume})
	bus.Emit(c.fx.Bus(), bus.InputClick, bus.Point{X: x, Y: y})
	return true
}

// ToggleTheme drops the veil, flips the theme after VeilDelay and lifts
// the veil VeilLinger later. A toggle while veiled is ignored.
func (c *Controller) ToggleTheme() bool {
	if c.veiled {
		return false
	}
	c.fx.Cue(bus.SoundTheme)
	c.veiled = true
	c.veil = c.s.After(VeilDelay, func() {
		next := ThemeLight
		if c.theme == ThemeLight {
			next = ThemeDark
		}
		c.theme = next
		c.logger.Debug("theme changed", slog.String("theme", next))
		bus.Emit(c.fx.Bus(), bus.UIThemeChanged, bus.ThemeChanged{Theme: next})
		c.veil = c.s.After(VeilLinger, func() {
			c.veil = nil
			c.veiled = false
		})
	})
	return true
}

// SetTheme applies a theme without the veil, for restoring saved state.
func (c *Controller) SetTheme(theme string) {
	if theme != ThemeLight {
		theme = ThemeDark
	}
	c.theme = theme
}

func (c *Controller) Theme() string { return c.theme }

func (c *Controller) Veiled() bool { return c.veiled }

func (c *Controller) Glow() float64 { return c.glow }

// Driving reports whether the pointer rests on a day cell.
func (c *Controller) Driving() bool { return c.driving }

// Cursor returns the inertial cursor position.
func (c *Controller) Cursor() bus.Point { return c.current }

// Pointer returns the last raw pointer position.
func (c *Controller) Pointer() bus.Point { return c.target }
