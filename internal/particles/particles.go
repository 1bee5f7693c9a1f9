// Package particles is the CPU particle collaborator: exhaust trails behind
// the pointer, bursts on clicks and far warps. Positions are in layout
// pixels; Draw projects them onto a dot plotter such as the braille canvas.
package particles

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
)

const (
	DefaultMax = 1200

	ExhaustCount = 2
	BurstCount   = 12

	exhaustDecay = 0.04
	burstDecay   = 0.015
	damping      = 0.98
)

type Particle struct {
	X, Y    float64
	VX, VY  float64
	Life    float64
	Decay   float64
	Size    float64
	Exhaust bool
}

// Plotter receives one dot per live particle.
type Plotter interface {
	Set(x, y int)
}

type Options struct {
	Max    int
	Rand   *rand.Rand
	Logger *slog.Logger
}

type System struct {
	s       *frame.Scheduler
	max     int
	rng     *rand.Rand
	logger  *slog.Logger
	enabled bool
	width   float64
	height  float64

	particles []Particle
	frameID   uint64
	running   bool
}

var _ fx.Particles = (*System)(nil)

func New(s *frame.Scheduler, opts Options) *System {
	max := opts.Max
	if max <= 0 {
		max = DefaultMax
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(s.Now().UnixNano()), 0xfade))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &System{
		s:         s,
		max:       max,
		rng:       rng,
		logger:    logger.With(slog.String("component", "particles")),
		enabled:   true,
		particles: make([]Particle, 0, max),
	}
}

// Spawn emits ExhaustCount slow short-lived particles, or BurstCount fast
// long-lived ones. The oldest particles make room when the system is full.
func (p *System) Spawn(x, y float64, exhaust bool) {
	if !p.enabled {
		return
	}
	count, decay, size := BurstCount, burstDecay, 22.0
	if exhaust {
		count, decay, size = ExhaustCount, exhaustDecay, 8.0
	}
	for i := 0; i < count; i++ {
		if len(p.particles) >= p.max {
			p.particles = append(p.particles[:0], p.particles[1:]...)
		}
		angle := p.rng.Float64() * 2 * math.Pi
		force := p.rng.Float64()*5 + 1.5
		if exhaust {
			force = p.rng.Float64() * 2
		}
		p.particles = append(p.particles, Particle{
			X:       x,
			Y:       y,
			VX:      math.Cos(angle) * force,
			VY:      math.Sin(angle) * force,
			Life:    1,
			Decay:   decay,
			Size:    size,
			Exhaust: exhaust,
		})
	}
	p.wake()
}

// Step advances every particle by one frame and drops the dead ones.
func (p *System) Step() {
	live := p.particles[:0]
	for _, q := range p.particles {
		q.X += q.VX
		q.Y += q.VY
		q.VX *= damping
		q.VY *= damping
		q.Life -= q.Decay
		if q.Life <= 0 {
			continue
		}
		live = append(live, q)
	}
	p.particles = live
}

func (p *System) Resize(width, height float64) {
	if !p.enabled {
		return
	}
	p.width = width
	p.height = height
}

// SetEnabled turns the system on or off. Disabling drops every particle.
func (p *System) SetEnabled(enabled bool) {
	p.enabled = enabled
	if !enabled {
		p.particles = p.particles[:0]
		if p.running {
			p.s.CancelFrame(p.frameID)
			p.running = false
		}
	}
}

func (p *System) Enabled() bool { return p.enabled }

func (p *System) Len() int { return len(p.particles) }

// Particles returns the live particles. The slice is reused by Step.
func (p *System) Particles() []Particle { return p.particles }

// Draw plots every live particle inside the bounds, dotW by dotH pixels per
// dot.
func (p *System) Draw(dst Plotter, dotW, dotH float64) {
	for _, q := range p.particles {
		if q.X < 0 || q.Y < 0 || (p.width > 0 && q.X >= p.width) || (p.height > 0 && q.Y >= p.height) {
			continue
		}
		dst.Set(int(q.X/dotW), int(q.Y/dotH))
	}
}

// wake runs Step once per frame while particles are alive.
func (p *System) wake() {
	if p.running || len(p.particles) == 0 {
		return
	}
	p.running = true
	p.frameID = p.s.RequestFrame(p.tick)
}

func (p *System) tick(time.Time) {
	p.running = false
	p.Step()
	p.wake()
}
