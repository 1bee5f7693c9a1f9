// Package audio is the ambient sound collaborator. It synthesizes every
// cue from tone presets, ducks while the grid is moving, drops an idle clip
// into long silences and streams the mix to a portaudio device.
//
// Control methods run on the scheduler goroutine. Render runs on the
// device callback; the two meet under mu.
package audio

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/config"
	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
)

const (
	ToastInitFailed = "Audio System Initialization Failed"

	// MuteFade is how long the mute cue plays before output stops.
	MuteFade = 800 * time.Millisecond

	enginePowerScale = 120.0
	enginePowerFloor = 0.15
	engineRetrigger  = 100 * time.Millisecond
)

type idleClip struct {
	key    bus.Sound
	volume float64
}

var idleClips = []idleClip{
	{bus.SoundEngine, 0.15},
	{bus.SoundPulse, 0.15},
	{bus.SoundStellar, 0.2},
	{bus.SoundWind, 0.2},
}

type Options struct {
	Config config.AudioConfig
	Rand   *rand.Rand
	Logger *slog.Logger
}

type Mixer struct {
	s      *frame.Scheduler
	fx     *fx.Emitter
	cfg    config.AudioConfig
	rng    *rand.Rand
	logger *slog.Logger

	out    Output
	ready  bool
	failed bool

	enabled    bool
	busy       bool
	lastEngine time.Time
	idle       *frame.Timer
	stopping   *frame.Timer
	width      float64
	height     float64

	mu         sync.Mutex
	voices     []*voice
	loops      map[bus.Sound]*voice
	gain       float64
	targetGain float64
	pan        float64
	elevation  float64
	delay      [2][]float64
	delayHead  int
	meter      *Meter
	bands      Bands
	mono       []float32
}

var _ fx.Audio = (*Mixer)(nil)

func New(s *frame.Scheduler, emitter *fx.Emitter, opts Options) *Mixer {
	cfg := opts.Config
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = SampleRate
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(s.Now().UnixNano()), 0x5eed))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delayLen := int(cfg.SampleRate * 0.6)
	return &Mixer{
		s:          s,
		fx:         emitter,
		cfg:        cfg,
		rng:        rng,
		logger:     logger.With(slog.String("component", "audio")),
		loops:      make(map[bus.Sound]*voice),
		gain:       cfg.MasterVolume,
		targetGain: cfg.MasterVolume,
		delay:      [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
		meter:      NewMeter(BufferSize),
	}
}

// Attach subscribes the mixer to every audio command on b, including the
// master toggle.
func (m *Mixer) Attach(b *bus.Bus) bus.Unsubscribe {
	unbind := fx.BindAudio(b, m)
	unToggle := bus.On(b, bus.AudioToggleMaster, func(struct{}) { m.Toggle() })
	return func() {
		unbind()
		unToggle()
	}
}

// Init starts out. A failure is reported once as a toast and leaves the
// mixer silent for the rest of the session.
func (m *Mixer) Init(out Output) error {
	if m.ready || m.failed {
		return nil
	}
	if err := out.Start(m.Render); err != nil {
		m.failed = true
		m.logger.Warn("audio disabled", slog.Any("error", err))
		m.fx.Toast(ToastInitFailed, 2*time.Second)
		return err
	}
	m.out = out
	m.ready = true
	m.logger.Info("audio output started", slog.Float64("sample_rate", m.cfg.SampleRate))
	return nil
}

func (m *Mixer) Close() error {
	m.idle.Stop()
	m.stopping.Stop()
	if m.out == nil {
		return nil
	}
	err := m.out.Close()
	m.out = nil
	m.ready = false
	return err
}

func (m *Mixer) Ready() bool { return m.ready }

// Enabled reports whether the mixer is on and not fading out.
func (m *Mixer) Enabled() bool { return m.enabled && !m.stopping.Active() }

func (m *Mixer) Busy() bool { return m.busy }

// SetBounds sets the area spatial positions are measured against.
func (m *Mixer) SetBounds(width, height float64) {
	m.width = width
	m.height = height
}

func (m *Mixer) Play(key bus.Sound, opts bus.PlayOptions) {
	if !m.enabled || !m.ready {
		return
	}
	if m.busy && key == bus.SoundHover {
		return
	}
	m.start(key, opts)
}

func (m *Mixer) start(key bus.Sound, opts bus.PlayOptions) {
	v, ok := newVoice(key, opts)
	if !ok {
		m.logger.Debug("unknown cue", slog.String("key", string(key)))
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.loop {
		if old := m.loops[key]; old != nil {
			old.done = true
		}
		m.loops[key] = v
	}
	m.voices = append(m.voices, v)
}

// Toggle flips the master switch and returns the new state. Turning off
// plays the mute cue and stops output after MuteFade.
func (m *Mixer) Toggle() bool {
	if !m.ready {
		return false
	}
	if m.Enabled() {
		m.start(bus.SoundMute, bus.PlayOptions{})
		m.stopping = m.s.After(MuteFade, m.silence)
		return false
	}

	m.stopping.Stop()
	m.stopping = nil
	m.enabled = true
	m.start(bus.SoundEnable, bus.PlayOptions{})
	m.start(bus.SoundBase, bus.PlayOptions{Loop: true, Volume: m.cfg.AmbientVolume})
	m.ResetIdleTimer()
	bus.Emit(m.fx.Bus(), bus.AudioToggledTopic, bus.AudioToggled{Enabled: true})
	return true
}

func (m *Mixer) silence() {
	m.stopping = nil
	m.enabled = false
	m.idle.Stop()
	m.idle = nil
	m.mu.Lock()
	for k, v := range m.loops {
		v.done = true
		delete(m.loops, k)
	}
	m.mu.Unlock()
	bus.Emit(m.fx.Bus(), bus.AudioToggledTopic, bus.AudioToggled{Enabled: false})
}

func (m *Mixer) SetEnabled(enabled bool) {
	if !m.ready || m.Enabled() == enabled {
		return
	}
	m.Toggle()
}

func (m *Mixer) SetBusy(busy bool) {
	m.busy = busy
	m.mu.Lock()
	if busy {
		m.targetGain = m.cfg.BusyVolume
	} else {
		m.targetGain = m.cfg.MasterVolume
	}
	m.mu.Unlock()
}

func (m *Mixer) ResetIdleTimer() {
	if !m.enabled {
		return
	}
	m.idle.Stop()
	m.idle = m.s.After(m.cfg.IdleDelay, m.idleClip)
}

func (m *Mixer) idleClip() {
	m.idle = nil
	if !m.enabled || m.busy {
		return
	}
	clip := idleClips[m.rng.IntN(len(idleClips))]
	m.Play(clip.key, bus.PlayOptions{Volume: clip.volume})

	span := m.cfg.IdleMax - m.cfg.IdleMin
	next := m.cfg.IdleMin + time.Duration(m.rng.Float64()*float64(span))
	m.idle = m.s.After(next, m.idleClip)
}

// UpdateSpatialPosition maps a point in the bounds onto [-1, 1] pan and
// elevation.
func (m *Mixer) UpdateSpatialPosition(x, y float64) {
	if !m.ready || m.width <= 0 || m.height <= 0 {
		return
	}
	m.mu.Lock()
	m.pan = clamp(x/m.width*2-1, -1, 1)
	m.elevation = clamp(-(y/m.height)*2+1, -1, 1)
	m.mu.Unlock()
}

// InjectEnginePower turns pointer velocity into a hover retrigger and a
// swell of the master gain.
func (m *Mixer) InjectEnginePower(velocity float64) {
	if !m.enabled || !m.ready {
		return
	}
	power := math.Min(velocity/enginePowerScale, 1)
	if power > enginePowerFloor {
		now := m.s.Now()
		if m.lastEngine.IsZero() || now.Sub(m.lastEngine) > engineRetrigger {
			m.Play(bus.SoundHover, bus.PlayOptions{
				Rate:   0.4 + power*1.2,
				Volume: m.cfg.MasterVolume * power * 0.3,
			})
			m.lastEngine = now
		}
	}
	if m.busy {
		return
	}
	m.mu.Lock()
	m.targetGain = m.cfg.MasterVolume * (1 + power*0.4)
	m.mu.Unlock()
}

// Render fills out with the next block of the mix. It is the device
// callback and is safe to call from any goroutine.
func (m *Mixer) Render(out [][]float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(out[0])
	if cap(m.mono) < n {
		m.mono = make([]float32, n)
	}
	m.mono = m.mono[:n]

	dt := 1.0 / m.cfg.SampleRate
	// gain glides with a ~80ms time constant
	glide := 1 - math.Exp(-dt/0.08)
	panL := math.Sqrt((1 - m.pan) / 2)
	panR := math.Sqrt((1 + m.pan) / 2)

	for i := 0; i < n; i++ {
		var l, r float64
		for _, v := range m.voices {
			vl, vr := v.next(dt)
			if v.spatial {
				vl *= panL * math.Sqrt2
				vr *= panR * math.Sqrt2
			}
			l += vl
			r += vr
		}

		dl := m.delay[0][m.delayHead]
		dr := m.delay[1][m.delayHead]
		mixL := l + dl*0.3 + dr*0.1
		mixR := r + dr*0.3 + dl*0.1
		m.delay[0][m.delayHead] = mixL * 0.5
		m.delay[1][m.delayHead] = mixR * 0.5
		m.delayHead = (m.delayHead + 1) % len(m.delay[0])

		m.gain += (m.targetGain - m.gain) * glide
		out[0][i] = float32(clamp(mixL*m.gain, -1, 1))
		out[1][i] = float32(clamp(mixR*m.gain, -1, 1))
		m.mono[i] = (out[0][i] + out[1][i]) / 2
	}

	live := m.voices[:0]
	for _, v := range m.voices {
		if !v.done {
			live = append(live, v)
		}
	}
	for i := len(live); i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = live
	m.bands = m.meter.Analyze(m.mono)
}

// Bands returns the spectrum of the last rendered block.
func (m *Mixer) Bands() Bands {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bands
}

// Gain returns the current and target master gain.
func (m *Mixer) Gain() (current, target float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gain, m.targetGain
}

func (m *Mixer) Pan() (pan, elevation float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pan, m.elevation
}

// Voices returns the keys of the voices currently sounding, oldest first.
func (m *Mixer) Voices() []bus.Sound {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]bus.Sound, 0, len(m.voices))
	for _, v := range m.voices {
		if !v.done {
			keys = append(keys, v.key)
		}
	}
	return keys
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
