package audio

import (
	"math"

	"github.com/san-kum/chronogrid/internal/bus"
)

type waveform int

const (
	waveTriangle waveform = iota
	waveSine
	waveNoise
)

// tone is the synthesis recipe of one cue.
type tone struct {
	wave     waveform
	freqs    []float64
	sweep    float64 // frequency multiplier reached at the end of the tone
	duration float64 // seconds, ignored for loops
	attack   float64
	cutoff   float64
}

var tones = map[bus.Sound]tone{
	bus.SoundJump:    {wave: waveTriangle, freqs: []float64{220, 330}, sweep: 4, duration: 0.9, attack: 0.02, cutoff: 2400},
	bus.SoundScroll:  {wave: waveSine, freqs: []float64{660}, sweep: 0.8, duration: 0.12, attack: 0.005, cutoff: 3000},
	bus.SoundWarp:    {wave: waveTriangle, freqs: []float64{110, 110.7}, sweep: 4, duration: 1.2, attack: 0.05, cutoff: 1800},
	bus.SoundHover:   {wave: waveSine, freqs: []float64{880}, sweep: 1, duration: 0.08, attack: 0.004, cutoff: 4000},
	bus.SoundTheme:   {wave: waveTriangle, freqs: []float64{523.25, 659.25}, sweep: 1, duration: 0.4, attack: 0.01, cutoff: 2200},
	bus.SoundBeep:    {wave: waveSine, freqs: []float64{1046.5}, sweep: 1, duration: 0.15, attack: 0.005, cutoff: 5000},
	bus.SoundEnable:  {wave: waveTriangle, freqs: []float64{196}, sweep: 2, duration: 0.8, attack: 0.05, cutoff: 1500},
	bus.SoundMute:    {wave: waveTriangle, freqs: []float64{392}, sweep: 0.5, duration: 0.6, attack: 0.01, cutoff: 1500},
	bus.SoundBase:    {wave: waveTriangle, freqs: []float64{98.00, 116.54, 146.83, 174.61, 220.00}, sweep: 1, attack: 1.5, cutoff: 600},
	bus.SoundPulse:   {wave: waveSine, freqs: []float64{146.83}, sweep: 1, duration: 0.5, attack: 0.05, cutoff: 800},
	bus.SoundWind:    {wave: waveNoise, sweep: 1, duration: 2.0, attack: 0.6, cutoff: 500},
	bus.SoundEngine:  {wave: waveTriangle, freqs: []float64{55, 110}, sweep: 1, duration: 1.5, attack: 0.3, cutoff: 400},
	bus.SoundStellar: {wave: waveSine, freqs: []float64{293.66, 440, 587.33}, sweep: 1, duration: 2.5, attack: 0.8, cutoff: 1600},
}

// spatial cues go through the panner, the rest straight to the master bus.
var spatial = map[bus.Sound]bool{
	bus.SoundBeep:  true,
	bus.SoundHover: true,
	bus.SoundPulse: true,
	bus.SoundWind:  true,
}

type voice struct {
	key     bus.Sound
	tone    tone
	volume  float64
	rate    float64
	loop    bool
	spatial bool

	t      float64
	filter [2]float64
	noise  uint32
	done   bool
}

func newVoice(key bus.Sound, opts bus.PlayOptions) (*voice, bool) {
	tn, ok := tones[key]
	if !ok {
		return nil, false
	}
	v := &voice{
		key:     key,
		tone:    tn,
		volume:  opts.Volume,
		rate:    opts.Rate,
		loop:    opts.Loop,
		spatial: spatial[key],
		noise:   0x9e3779b9,
	}
	if v.volume == 0 {
		v.volume = 1
	}
	if v.rate <= 0 {
		v.rate = 1
	}
	return v, true
}

// length is the audible duration in seconds; playback rate shortens it.
func (v *voice) length() float64 {
	return v.tone.duration / v.rate
}

func (v *voice) envelope() float64 {
	a := v.tone.attack / v.rate
	if a > 0 && v.t < a {
		return v.t / a
	}
	if v.loop {
		return 1
	}
	n := v.length()
	if n <= a {
		return 0
	}
	rem := (n - v.t) / (n - a)
	if rem < 0 {
		return 0
	}
	return rem * rem
}

// next renders one stereo frame and advances the voice by dt seconds.
func (v *voice) next(dt float64) (float64, float64) {
	if v.done {
		return 0, 0
	}
	if !v.loop && v.t >= v.length() {
		v.done = true
		return 0, 0
	}

	var l, r float64
	switch v.tone.wave {
	case waveNoise:
		v.noise ^= v.noise << 13
		v.noise ^= v.noise >> 17
		v.noise ^= v.noise << 5
		n := float64(v.noise)/float64(math.MaxUint32)*2 - 1
		l, r = n, n
	default:
		sweep := 1.0
		if !v.loop && v.tone.sweep != 1 {
			sweep = math.Pow(v.tone.sweep, v.t/v.length())
		}
		g := 1.0 / float64(len(v.tone.freqs))
		for j, f := range v.tone.freqs {
			f *= v.rate * sweep
			lfo := 1.0
			if v.loop {
				lfo = 0.7 + 0.3*math.Sin(v.t*0.2+float64(j))
			}
			l += osc(v.tone.wave, v.t*f*0.999) * g * lfo
			r += osc(v.tone.wave, v.t*f*1.001) * g * lfo
		}
	}

	l, v.filter[0] = lpf(l, v.tone.cutoff, dt, v.filter[0])
	r, v.filter[1] = lpf(r, v.tone.cutoff, dt, v.filter[1])

	e := v.envelope() * v.volume
	v.t += dt
	return l * e, r * e
}

func osc(w waveform, phase float64) float64 {
	if w == waveSine {
		return math.Sin(2 * math.Pi * phase)
	}
	return triangle(phase)
}

// Triangle wave: smooth, no harsh buzz.
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// One-pole low pass.
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}
