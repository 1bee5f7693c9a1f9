package particles

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
)

func newSystem(max int) (*frame.Scheduler, *System) {
	s := frame.New(time.Unix(0, 0))
	return s, New(s, Options{Max: max, Rand: rand.New(rand.NewPCG(3, 4))})
}

func TestSpawnCounts(t *testing.T) {
	tests := []struct {
		name    string
		exhaust bool
		want    int
		decay   float64
	}{
		{"exhaust", true, ExhaustCount, exhaustDecay},
		{"burst", false, BurstCount, burstDecay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, p := newSystem(0)
			p.Spawn(100, 100, tt.exhaust)
			if p.Len() != tt.want {
				t.Fatalf("expected %d particles, got %d", tt.want, p.Len())
			}
			for _, q := range p.Particles() {
				if q.Decay != tt.decay || q.Life != 1 {
					t.Errorf("unexpected particle %+v", q)
				}
			}
		})
	}
}

func TestOldestDroppedAtCapacity(t *testing.T) {
	_, p := newSystem(20)
	p.Spawn(1, 1, false)
	p.Spawn(2, 2, false)
	if p.Len() != 20 {
		t.Fatalf("expected the cap of 20, got %d", p.Len())
	}
	if first := p.Particles()[0]; first.X != 1 {
		t.Errorf("expected survivors of the first burst at the front, got %+v", first)
	}
}

func TestParticlesDecayAndLoopStops(t *testing.T) {
	s, p := newSystem(0)
	p.Spawn(50, 50, true)

	// exhaust lives 1/0.04 = 25 frames
	s.Advance(24 * frame.FrameInterval)
	if p.Len() != ExhaustCount {
		t.Fatalf("exhaust died early: %d left", p.Len())
	}
	s.Advance(2 * frame.FrameInterval)
	if p.Len() != 0 {
		t.Fatalf("exhaust should be gone, %d left", p.Len())
	}
	s.Advance(frame.FrameInterval)
	if s.PendingFrames() != 0 {
		t.Error("frame loop should stop when nothing is alive")
	}
}

func TestStepDamping(t *testing.T) {
	_, p := newSystem(0)
	p.Spawn(0, 0, false)
	before := p.Particles()[0]
	p.Step()
	after := p.Particles()[0]
	if after.VX != before.VX*damping || after.X != before.VX {
		t.Errorf("unexpected step: before %+v after %+v", before, after)
	}
}

func TestDisableClearsAndIgnoresSpawns(t *testing.T) {
	s, p := newSystem(0)
	b := bus.New(nil)
	fx.BindParticles(b, p)
	em := fx.NewEmitter(b)

	em.Burst(10, 10, 2)
	if p.Len() != 2*BurstCount {
		t.Fatalf("expected %d particles, got %d", 2*BurstCount, p.Len())
	}
	em.SetAnimationsEnabled(false)
	em.Spawn(10, 10, true)
	if p.Len() != 0 || s.PendingFrames() != 0 {
		t.Errorf("disabled system should be empty and idle, len=%d frames=%d", p.Len(), s.PendingFrames())
	}
	em.SetAnimationsEnabled(true)
	em.Spawn(10, 10, true)
	if p.Len() != ExhaustCount {
		t.Errorf("expected spawning to resume, got %d", p.Len())
	}
}

type dots map[[2]int]bool

func (d dots) Set(x, y int) { d[[2]int{x, y}] = true }

func TestDrawClipsToBounds(t *testing.T) {
	_, p := newSystem(0)
	p.Resize(100, 100)
	p.particles = append(p.particles,
		Particle{X: 10, Y: 20, Life: 1},
		Particle{X: 150, Y: 20, Life: 1},
	)
	d := dots{}
	p.Draw(d, 4, 4)
	if len(d) != 1 || !d[[2]int{2, 5}] {
		t.Errorf("unexpected dots: %v", d)
	}
}
