package app

import (
	"log/slog"
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/frame"
)

const (
	BootStepDelay = 400 * time.Millisecond
	// LoadingLinger is how long the loading screen stays after boot.
	LoadingLinger = 600 * time.Millisecond

	ToastBooted        = "Expedition Navigation Systems Online"
	ToastBootedTimeout = 1500 * time.Millisecond
)

var bootSteps = []bus.BootProgress{
	{Percent: 40, Status: "Initializing Navigation Systems"},
	{Percent: 80, Status: "Calibrating Audio Processors"},
	{Percent: 100, Status: "Systems Ready for Departure"},
}

type bootState struct {
	started  bool
	done     bool
	loading  bool
	progress bus.BootProgress
	timers   []*frame.Timer
}

func (b *bootState) cancel() {
	for _, t := range b.timers {
		t.Stop()
	}
	b.timers = nil
}

// Boot runs the loading sequence: a progress step every BootStepDelay, then
// the engine starts and AppBooted is emitted. The loading screen is hidden
// LoadingLinger later.
func (a *App) Boot() {
	if a.boot.started {
		return
	}
	a.boot.started = true
	a.boot.loading = true
	for i, step := range bootSteps {
		step := step
		last := i == len(bootSteps)-1
		t := a.S.After(time.Duration(i+1)*BootStepDelay, func() {
			a.boot.progress = step
			bus.Emit(a.Bus, bus.BootProgressTopic, step)
			if last {
				a.start()
			}
		})
		a.boot.timers = append(a.boot.timers, t)
	}
}

func (a *App) start() {
	snap := a.restored
	a.Nav.Restore(snap.YearIndex, snap.ScrollPosition)
	a.Nav.Initialize()
	a.Effects.Start()
	a.Saver.Start()
	a.startAudio()

	a.boot.done = true
	a.logger.Info("booted",
		slog.String("mode", a.Nav.Mode().String()),
		slog.String("theme", a.Effects.Theme()),
		slog.Bool("audio", a.audioPref))
	bus.Emit(a.Bus, bus.AppBooted, struct{}{})
	a.FX.Toast(ToastBooted, ToastBootedTimeout)
	a.boot.timers = append(a.boot.timers, a.S.After(LoadingLinger, func() {
		a.boot.loading = false
	}))
}

// startAudio opens the device when audio is configured and switches the
// mixer on when the user left it on.
func (a *App) startAudio() {
	if a.output == nil || !a.cfg.Audio.Enabled {
		return
	}
	if err := a.Mixer.Init(a.output); err != nil {
		return
	}
	if a.audioPref {
		a.Mixer.SetEnabled(true)
	}
}

// Booted reports whether the engine is running.
func (a *App) Booted() bool { return a.boot.done }

// Loading reports whether the loading screen is still up.
func (a *App) Loading() bool { return a.boot.loading }

// Progress is the last boot step reached.
func (a *App) Progress() bus.BootProgress { return a.boot.progress }
