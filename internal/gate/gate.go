// Package gate suppresses hover and click side effects while the grid is
// moving.
package gate

import (
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
)

const (
	DefaultSettle = 400 * time.Millisecond

	// Glow radii of the cursor affordance.
	LockedGlow = 200.0
	IdleGlow   = 700.0
)

// Gate is a lock with a delayed release. Unlock always schedules the
// release relative to the most recent call, and a Lock in between cancels
// it, so overlapping lock windows never open early.
type Gate struct {
	s      *frame.Scheduler
	fx     *fx.Emitter
	settle time.Duration

	locked  bool
	pending *frame.Timer
}

func New(s *frame.Scheduler, emitter *fx.Emitter, settle time.Duration) *Gate {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Gate{s: s, fx: emitter, settle: settle}
}

func (g *Gate) Lock() {
	g.pending.Stop()
	g.pending = nil
	if g.locked {
		return
	}
	g.locked = true
	g.fx.SetBusy(true)
	g.publish()
}

// Unlock releases the gate after the settle delay.
func (g *Gate) Unlock() {
	g.pending.Stop()
	g.pending = g.s.After(g.settle, g.release)
}

func (g *Gate) release() {
	g.pending = nil
	if !g.locked {
		return
	}
	g.locked = false
	g.fx.SetBusy(false)
	g.publish()
}

func (g *Gate) Locked() bool { return g.locked }

// UnlockPending reports whether a release is scheduled.
func (g *Gate) UnlockPending() bool { return g.pending.Active() }

func (g *Gate) Glow() float64 {
	if g.locked {
		return LockedGlow
	}
	return IdleGlow
}

func (g *Gate) publish() {
	bus.Emit(g.fx.Bus(), bus.GateChangedTopic, bus.GateChanged{Locked: g.locked, Glow: g.Glow()})
}
