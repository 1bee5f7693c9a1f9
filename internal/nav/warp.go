package nav

import (
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/layout"
)

// Class is the intensity of a warp, derived from its year distance.
type Class string

const (
	ClassNone  Class = ""
	ClassLocal Class = "local"
	ClassNear  Class = "near"
	ClassFar   Class = "far"
)

const (
	NearDistance = 2
	FarDistance  = 20
)

func Classify(distance int) Class {
	switch {
	case distance <= 0:
		return ClassNone
	case distance > FarDistance:
		return ClassFar
	case distance >= NearDistance:
		return ClassNear
	default:
		return ClassLocal
	}
}

// Cue is the audio key that accompanies a warp of the given distance.
func Cue(distance int) bus.Sound {
	switch {
	case distance > FarDistance:
		return bus.SoundJump
	case distance >= NearDistance:
		return bus.SoundWarp
	default:
		return bus.SoundScroll
	}
}

type Durations struct {
	Local  time.Duration
	Near   time.Duration
	Far    time.Duration
	Random time.Duration
}

var DefaultDurations = Durations{
	Local:  500 * time.Millisecond,
	Near:   1200 * time.Millisecond,
	Far:    2000 * time.Millisecond,
	Random: 2000 * time.Millisecond,
}

// For returns the animation length of a warp. Initial warps do not animate.
func (d Durations) For(distance int, initial bool) time.Duration {
	switch {
	case initial:
		return 0
	case distance > FarDistance:
		return d.Far
	case distance >= NearDistance:
		return d.Near
	default:
		return d.Local
	}
}

// PreRenderWindow is the half-width of the block window rendered around a
// warp target before the scroll starts.
func PreRenderWindow(distance int) int {
	switch {
	case distance > 50:
		return 5
	case distance > FarDistance:
		return 3
	default:
		return 2
	}
}

// Warp describes the warp in flight.
type Warp struct {
	From     int
	Target   int
	Distance int
	Class    Class
	Duration time.Duration
	Initial  bool
	Random   bool
	// Landing is the date the target block is scrolled to on arrival.
	Landing layout.Date
	Started time.Time
}

type warpOptions struct {
	distance int
	initial  bool
	random   bool
	duration time.Duration
	cue      bus.Sound
	landing  layout.Date
}
