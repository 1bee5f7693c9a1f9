// Package fx is the command vocabulary between the navigation core and its
// side-effect collaborators: the ambient audio mixer, the particle emitter
// and the toast presenter.
//
// The core never calls a collaborator directly. It publishes commands
// through an Emitter, and each collaborator is attached to the bus with one
// of the Bind functions.
package fx

import (
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
)

const DefaultToastTimeout = 2500 * time.Millisecond

type Audio interface {
	Play(key bus.Sound, opts bus.PlayOptions)
	SetBusy(busy bool)
	SetEnabled(enabled bool)
	ResetIdleTimer()
	UpdateSpatialPosition(x, y float64)
	InjectEnginePower(velocity float64)
}

type Particles interface {
	Spawn(x, y float64, exhaust bool)
	Resize(width, height float64)
	SetEnabled(enabled bool)
}

type Presenter interface {
	ShowToast(message string, timeout time.Duration)
}

// Emitter publishes fire-and-forget commands.
type Emitter struct {
	b *bus.Bus
}

func NewEmitter(b *bus.Bus) *Emitter {
	return &Emitter{b: b}
}

func (e *Emitter) Bus() *bus.Bus { return e.b }

func (e *Emitter) Play(key bus.Sound, opts bus.PlayOptions) {
	bus.Emit(e.b, bus.AudioPlayTopic, bus.AudioPlay{Key: key, Options: opts})
}

func (e *Emitter) Cue(key bus.Sound) {
	e.Play(key, bus.PlayOptions{})
}

func (e *Emitter) SetBusy(busy bool) {
	bus.Emit(e.b, bus.AudioSetBusy, busy)
}

func (e *Emitter) SetAudioEnabled(enabled bool) {
	bus.Emit(e.b, bus.AudioSetEnabled, enabled)
}

func (e *Emitter) ResetIdleTimer() {
	bus.Emit(e.b, bus.AudioResetIdleTimer, struct{}{})
}

func (e *Emitter) UpdateSpatialPosition(x, y float64) {
	bus.Emit(e.b, bus.AudioSpatialPosition, bus.Point{X: x, Y: y})
}

func (e *Emitter) InjectEnginePower(velocity float64) {
	bus.Emit(e.b, bus.AudioInjectPower, velocity)
}

func (e *Emitter) Spawn(x, y float64, exhaust bool) {
	bus.Emit(e.b, bus.ParticleSpawnTopic, bus.ParticleSpawn{X: x, Y: y, Exhaust: exhaust})
}

// Burst issues n separate spawn requests at the same point.
func (e *Emitter) Burst(x, y float64, n int) {
	for i := 0; i < n; i++ {
		e.Spawn(x, y, false)
	}
}

func (e *Emitter) ResizeParticles(width, height float64) {
	bus.Emit(e.b, bus.ParticleResize, bus.Resize{Width: width, Height: height})
}

func (e *Emitter) SetAnimationsEnabled(enabled bool) {
	bus.Emit(e.b, bus.AnimationSetEnabled, enabled)
}

// Toast shows message for timeout; zero means DefaultToastTimeout.
func (e *Emitter) Toast(message string, timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultToastTimeout
	}
	bus.Emit(e.b, bus.ToastShow, bus.Toast{Message: message, Timeout: timeout})
}

func BindAudio(b *bus.Bus, a Audio) bus.Unsubscribe {
	return join(
		bus.On(b, bus.AudioPlayTopic, func(p bus.AudioPlay) {
			if p.Key == "" {
				return
			}
			a.Play(p.Key, p.Options)
		}),
		bus.On(b, bus.AudioSetBusy, a.SetBusy),
		bus.On(b, bus.AudioSetEnabled, a.SetEnabled),
		bus.On(b, bus.AudioResetIdleTimer, func(struct{}) { a.ResetIdleTimer() }),
		bus.On(b, bus.AudioSpatialPosition, func(p bus.Point) { a.UpdateSpatialPosition(p.X, p.Y) }),
		bus.On(b, bus.AudioInjectPower, a.InjectEnginePower),
	)
}

func BindParticles(b *bus.Bus, p Particles) bus.Unsubscribe {
	return join(
		bus.On(b, bus.ParticleSpawnTopic, func(s bus.ParticleSpawn) { p.Spawn(s.X, s.Y, s.Exhaust) }),
		bus.On(b, bus.ParticleResize, func(r bus.Resize) { p.Resize(r.Width, r.Height) }),
		bus.On(b, bus.AnimationSetEnabled, p.SetEnabled),
	)
}

func BindPresenter(b *bus.Bus, p Presenter) bus.Unsubscribe {
	return bus.On(b, bus.ToastShow, func(t bus.Toast) {
		if t.Message == "" {
			return
		}
		p.ShowToast(t.Message, t.Timeout)
	})
}

func join(subs ...bus.Unsubscribe) bus.Unsubscribe {
	return func() {
		for _, u := range subs {
			u()
		}
	}
}
