// Package app assembles the navigation engine and its collaborators on one
// bus and exposes the handful of entry points a frontend drives: frame
// ticks, keys, pointer input, resize and focus.
package app

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	randv2 "math/rand/v2"
	"time"

	"github.com/san-kum/chronogrid/internal/audio"
	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/config"
	"github.com/san-kum/chronogrid/internal/effects"
	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
	"github.com/san-kum/chronogrid/internal/gate"
	"github.com/san-kum/chronogrid/internal/layout"
	"github.com/san-kum/chronogrid/internal/nav"
	"github.com/san-kum/chronogrid/internal/particles"
	"github.com/san-kum/chronogrid/internal/pool"
	"github.com/san-kum/chronogrid/internal/power"
	"github.com/san-kum/chronogrid/internal/store"
	"github.com/san-kum/chronogrid/internal/viewport"
	"github.com/san-kum/chronogrid/internal/viz"
)

const (
	ToastAudioOn  = "Ion Drive System Online"
	ToastAudioOff = "Audio Systems Disabled"
)

type Options struct {
	Config *config.Config
	Store  *store.Store
	// Now is the start of the scheduler clock. Today is derived from it
	// unless set.
	Now   time.Time
	Today layout.Date
	// Width and Height are the viewport size in layout pixels.
	Width  float64
	Height float64
	// Canvas receives rendered blocks; nil keeps the engine headless.
	Canvas pool.Canvas
	// Output is the audio device. Nil runs without sound.
	Output audio.Output
	// Seed fixes every random choice when non-zero.
	Seed   int64
	Logger *slog.Logger
}

// App owns every component. All methods must be called from the goroutine
// that drives Tick.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	S         *frame.Scheduler
	Bus       *bus.Bus
	FX        *fx.Emitter
	Viewport  *viewport.Viewport
	Pool      *pool.Pool
	Gate      *gate.Gate
	Nav       *nav.Controller
	Effects   *effects.Controller
	Particles *particles.System
	Mixer     *audio.Mixer
	Toasts    *viz.Toasts
	Power     *power.Manager
	Store     *store.Store
	Saver     *store.Saver

	keys      KeyMap
	output    audio.Output
	restored  store.Snapshot
	audioPref bool
	boot      bootState
	closed    bool
	unsubs    []bus.Unsubscribe
}

// New builds the component graph. Nothing moves until Boot.
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := opts.Today
	if today.IsZero() {
		today = layout.FromTime(now)
	}
	st := opts.Store
	if st == nil {
		st = store.NewMemory()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = now.UnixNano()
	}

	a := &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
		Store:  st,
		keys:   DefaultKeyMap(),
		output: opts.Output,
	}
	a.S = frame.New(now)
	a.Bus = bus.New(logger)
	a.FX = fx.NewEmitter(a.Bus)
	a.Toasts = viz.NewToasts(a.S)
	a.unsubs = append(a.unsubs, fx.BindPresenter(a.Bus, a.Toasts))

	a.restored = store.LoadOrDefault(st, a.FX, logger)
	a.audioPref = cfg.Audio.Enabled && a.restored.AudioOn()

	mode, err := layout.ParseMode(cfg.Display.DefaultMode)
	if err != nil {
		a.logger.Warn("bad default mode", slog.Any("error", err))
	}
	if a.restored.Mode != "" {
		if m, err := layout.ParseMode(a.restored.Mode); err == nil {
			mode = m
		}
	}
	theme := cfg.Display.Theme
	if a.restored.Theme != "" {
		theme = a.restored.Theme
	}

	a.Viewport = viewport.New(a.S, opts.Width, opts.Height)
	a.Pool = pool.New(a.S, pool.Options{
		Mode:   mode,
		Width:  opts.Width,
		Height: opts.Height,
		Today:  today,
		Canvas: opts.Canvas,
		Logger: logger,
	})
	a.Gate = gate.New(a.S, a.FX, cfg.Navigation.UnlockGrace)
	a.Effects = effects.New(a.S, a.FX, a.Gate, effects.Options{
		Physics: cfg.Physics,
		Theme:   theme,
		Width:   opts.Width,
		Height:  opts.Height,
		Logger:  logger,
	})
	a.Particles = particles.New(a.S, particles.Options{
		Max:    cfg.Physics.MaxParticles,
		Rand:   randv2.New(randv2.NewPCG(uint64(seed), 0x9a7)),
		Logger: logger,
	})
	a.Particles.Resize(opts.Width, opts.Height)
	a.Mixer = audio.New(a.S, a.FX, audio.Options{
		Config: cfg.Audio,
		Rand:   randv2.New(randv2.NewPCG(uint64(seed), 0xa0d)),
		Logger: logger,
	})
	a.Mixer.SetBounds(opts.Width, opts.Height)
	a.Power = power.New(a.FX, func() bool { return a.audioPref }, logger)
	a.Saver = store.NewSaver(a.S, st, a.Snapshot, a.FX, store.SaverOptions{
		Debounce: cfg.Storage.SaveDebounce,
		Interval: cfg.Storage.AutosaveInterval,
		Logger:   logger,
	})
	a.Nav = nav.New(nav.Deps{
		Scheduler: a.S,
		Viewport:  a.Viewport,
		Pool:      a.Pool,
		Gate:      a.Gate,
		FX:        a.FX,
	}, nav.Options{
		Config: NavConfig(cfg),
		Today:  today,
		Mode:   mode,
		Rand:   rand.New(rand.NewSource(seed)),
		Cursor: a.Effects.Cursor,
		Save:   a.Saver.Request,
		Logger: logger,
	})

	a.unsubs = append(a.unsubs,
		a.Mixer.Attach(a.Bus),
		fx.BindParticles(a.Bus, a.Particles),
		bus.On(a.Bus, bus.AnimationSetEnabled, a.Effects.SetEnabled),
		bus.On(a.Bus, bus.ParticleResize, func(r bus.Resize) { a.Mixer.SetBounds(r.Width, r.Height) }),
		bus.On(a.Bus, bus.AudioToggledTopic, a.onAudioToggled),
		bus.On(a.Bus, bus.UIThemeChanged, func(bus.ThemeChanged) { a.Saver.Request() }),
		a.Bus.Tap(a.trace),
	)
	return a
}

// NavConfig maps the config file onto the navigation tunables.
func NavConfig(cfg *config.Config) nav.Config {
	w := cfg.Display.Warp
	return nav.Config{
		TotalYears: cfg.Temporal.TotalYears,
		Durations: nav.Durations{
			Local:  w.Local,
			Near:   w.Near,
			Far:    w.Far,
			Random: w.Random,
		},
		ScrollDebounce:  cfg.Navigation.ScrollDebounce,
		KeepAliveMargin: w.KeepAliveMargin,
		LandingKeep:     cfg.Navigation.LandingKeep,
		BootJumpDelay:   cfg.Navigation.BootJumpDelay,
		RenderWindow:    cfg.Display.RenderWindow,
		ParticleBurst:   cfg.Navigation.ParticleBurst,
		ObserverMargin:  cfg.Display.ObserverMargin,
	}
}

// onAudioToggled follows the master switch. Changes made by power saving
// are not the user's choice and are neither announced nor remembered.
func (a *App) onAudioToggled(t bus.AudioToggled) {
	if !a.boot.done || a.Power.Enabled() {
		return
	}
	a.audioPref = t.Enabled
	msg := ToastAudioOff
	if t.Enabled {
		msg = ToastAudioOn
	}
	a.FX.Toast(msg, 0)
	a.Saver.Request()
}

func (a *App) trace(topic string, payload any) {
	if !a.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if d, ok := payload.(bus.Describer); ok {
		a.logger.Debug("event", slog.String("topic", topic), slog.String("detail", d.Describe()))
		return
	}
	a.logger.Debug("event", slog.String("topic", topic), slog.Any("payload", payload))
}

// Snapshot collects the state that survives a restart.
func (a *App) Snapshot() store.Snapshot {
	idx := a.Nav.YearIndex()
	audioOn := a.audioPref
	return store.Snapshot{
		Theme:          a.Effects.Theme(),
		YearIndex:      &idx,
		ScrollPosition: a.Nav.ScrollTop(),
		AudioEnabled:   &audioOn,
		Mode:           a.Nav.Mode().String(),
	}
}

// Restored is the snapshot found at startup.
func (a *App) Restored() store.Snapshot { return a.restored }

// AudioPreference is the user's last audio choice.
func (a *App) AudioPreference() bool { return a.audioPref }

func (a *App) Keys() KeyMap { return a.keys }

func (a *App) Config() *config.Config { return a.cfg }

// Tick advances the clock to now and runs everything that became due.
func (a *App) Tick(now time.Time) {
	a.S.Tick(now)
}

// Scroll is a user scroll of dy pixels. It is ignored while warping.
func (a *App) Scroll(dy float64) bool {
	if !a.boot.done || a.Nav.IsWarping() {
		return false
	}
	a.Viewport.ScrollBy(dy)
	return true
}

// ScrollStep scrolls by n configured steps.
func (a *App) ScrollStep(n float64) bool {
	return a.Scroll(n * a.cfg.Navigation.ScrollStep * a.Viewport.Height())
}

func (a *App) PointerMove(x, y float64) {
	a.Effects.PointerMove(x, y)
}

// Hover reports the pointer entering a day cell.
func (a *App) Hover(filler bool) bool {
	return a.Effects.Hover(filler)
}

func (a *App) HoverOut() {
	a.Effects.HoverOut()
}

func (a *App) Click(x, y float64) bool {
	return a.Effects.Click(x, y)
}

// Resize follows a change of the viewport size in layout pixels.
func (a *App) Resize(width, height float64) {
	a.Nav.Resize(width, height)
}

// Focus and Blur drive power saving. Losing focus also saves.
func (a *App) Focus() {
	a.Power.Focus()
}

func (a *App) Blur() {
	a.Power.Blur()
	a.Saver.Request()
}

// Close saves one last time and tears every component down. It is safe to
// call more than once.
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.boot.cancel()

	var errs []error
	if a.boot.done {
		if err := a.Saver.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	a.Saver.Stop()
	a.Nav.Close()
	a.Effects.Close()
	if err := a.Mixer.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, u := range a.unsubs {
		u()
	}
	a.unsubs = nil
	a.logger.Info("shutdown", slog.Int("saves", a.Saver.Saves()))
	return errors.Join(errs...)
}
