package audio

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/config"
	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
)

type fakeOutput struct {
	err    error
	render func([][]float32)
	closed bool
}

func (f *fakeOutput) Start(render func([][]float32)) error {
	if f.err != nil {
		return f.err
	}
	f.render = render
	return nil
}

func (f *fakeOutput) Close() error {
	f.closed = true
	return nil
}

type harness struct {
	s       *frame.Scheduler
	b       *bus.Bus
	rec     *fx.Recorder
	mixer   *Mixer
	toggled []bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{s: frame.New(time.Unix(0, 0)), b: bus.New(nil)}
	h.rec = fx.NewRecorder()
	bus.On(h.b, bus.ToastShow, func(m bus.Toast) { h.rec.ShowToast(m.Message, m.Timeout) })
	bus.On(h.b, bus.AudioToggledTopic, func(m bus.AudioToggled) { h.toggled = append(h.toggled, m.Enabled) })
	h.mixer = New(h.s, fx.NewEmitter(h.b), Options{
		Config: config.DefaultConfig().Audio,
		Rand:   rand.New(rand.NewPCG(1, 2)),
	})
	h.mixer.Attach(h.b)
	h.mixer.SetBounds(1000, 500)
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	if err := h.mixer.Init(&fakeOutput{}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	bus.Emit(h.b, bus.AudioToggleMaster, struct{}{})
}

func TestInitFailureDisablesAudio(t *testing.T) {
	h := newHarness(t)
	err := h.mixer.Init(&fakeOutput{err: ErrDeviceUnavailable})
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
	if diff := cmp.Diff([]string{ToastInitFailed}, h.rec.Toasts); diff != "" {
		t.Errorf("toasts mismatch (-want +got):\n%s", diff)
	}
	if h.mixer.Toggle() {
		t.Error("toggle should stay off after a failed init")
	}
	if err := h.mixer.Init(&fakeOutput{}); err != nil || h.mixer.Ready() {
		t.Error("a failed mixer must not retry for the session")
	}
}

func TestCommandsIgnoredBeforeInit(t *testing.T) {
	h := newHarness(t)
	bus.Emit(h.b, bus.AudioToggleMaster, struct{}{})
	h.mixer.Play(bus.SoundBeep, bus.PlayOptions{})
	if len(h.mixer.Voices()) != 0 || len(h.toggled) != 0 {
		t.Errorf("expected silence, got voices %v toggles %v", h.mixer.Voices(), h.toggled)
	}
}

func TestToggleMaster(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	if diff := cmp.Diff([]bus.Sound{bus.SoundEnable, bus.SoundBase}, h.mixer.Voices()); diff != "" {
		t.Errorf("voices mismatch (-want +got):\n%s", diff)
	}
	if !h.mixer.Enabled() {
		t.Fatal("mixer should be enabled")
	}

	bus.Emit(h.b, bus.AudioToggleMaster, struct{}{})
	if h.mixer.Enabled() {
		t.Error("mixer should report disabled while the mute cue fades")
	}
	h.s.Advance(MuteFade - time.Millisecond)
	if diff := cmp.Diff([]bool{true}, h.toggled); diff != "" {
		t.Errorf("toggled early (-want +got):\n%s", diff)
	}
	h.s.Advance(time.Millisecond)
	if diff := cmp.Diff([]bool{true, false}, h.toggled); diff != "" {
		t.Errorf("toggles mismatch (-want +got):\n%s", diff)
	}
	for _, k := range h.mixer.Voices() {
		if k == bus.SoundBase {
			t.Error("ambient loop should be stopped")
		}
	}
}

func TestSetEnabledFollowsPowerSaving(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	bus.Emit(h.b, bus.AudioSetEnabled, false)
	h.s.Advance(time.Second)
	if h.mixer.Enabled() {
		t.Fatal("expected disabled")
	}
	bus.Emit(h.b, bus.AudioSetEnabled, false)
	bus.Emit(h.b, bus.AudioSetEnabled, true)
	if diff := cmp.Diff([]bool{true, false, true}, h.toggled); diff != "" {
		t.Errorf("toggles mismatch (-want +got):\n%s", diff)
	}
}

func TestBusyDucksAndSuppressesHover(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	bus.Emit(h.b, bus.AudioSetBusy, true)
	if _, target := h.mixer.Gain(); target != config.DefaultBusyVolume {
		t.Errorf("expected busy target %v, got %v", config.DefaultBusyVolume, target)
	}
	before := len(h.mixer.Voices())
	bus.Emit(h.b, bus.AudioPlayTopic, bus.AudioPlay{Key: bus.SoundHover})
	bus.Emit(h.b, bus.AudioPlayTopic, bus.AudioPlay{Key: bus.SoundBeep})
	if got := len(h.mixer.Voices()) - before; got != 1 {
		t.Errorf("expected only the beep to start, got %d new voices", got)
	}

	bus.Emit(h.b, bus.AudioSetBusy, false)
	if _, target := h.mixer.Gain(); target != config.DefaultMasterVolume {
		t.Errorf("expected master target, got %v", target)
	}
}

func TestEnginePowerRetrigger(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	count := func() int {
		n := 0
		for _, k := range h.mixer.Voices() {
			if k == bus.SoundHover {
				n++
			}
		}
		return n
	}

	bus.Emit(h.b, bus.AudioInjectPower, 10.0)
	if count() != 0 {
		t.Fatal("low power should not retrigger")
	}
	bus.Emit(h.b, bus.AudioInjectPower, 240.0)
	h.s.Advance(50 * time.Millisecond)
	bus.Emit(h.b, bus.AudioInjectPower, 240.0)
	if count() != 1 {
		t.Fatalf("expected one hover within 100ms, got %d", count())
	}
	h.s.Advance(60 * time.Millisecond)
	bus.Emit(h.b, bus.AudioInjectPower, 240.0)
	if count() != 2 {
		t.Errorf("expected a retrigger, got %d", count())
	}
	if _, target := h.mixer.Gain(); math.Abs(target-config.DefaultMasterVolume*1.4) > 1e-9 {
		t.Errorf("expected full power swell, got %v", target)
	}
}

func TestIdleClips(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	base := len(h.mixer.Voices())

	h.s.Advance(29 * time.Second)
	if len(h.mixer.Voices()) != base {
		t.Fatal("idle clip before the idle delay")
	}
	h.s.Advance(time.Second)
	if len(h.mixer.Voices()) != base+1 {
		t.Fatalf("expected an idle clip at 30s, voices %v", h.mixer.Voices())
	}
	h.s.Advance(10*time.Second - time.Millisecond)
	if len(h.mixer.Voices()) != base+1 {
		t.Fatal("clips must be at least 10s apart")
	}
	h.s.Advance(15 * time.Second)
	if len(h.mixer.Voices()) < base+2 {
		t.Errorf("expected a second clip within 25s, voices %v", h.mixer.Voices())
	}

	n := len(h.mixer.Voices())
	bus.Emit(h.b, bus.AudioResetIdleTimer, struct{}{})
	h.s.Advance(29 * time.Second)
	if len(h.mixer.Voices()) != n {
		t.Error("reset should push the next clip out to the idle delay")
	}
}

func TestSpatialPosition(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	bus.Emit(h.b, bus.AudioSpatialPosition, bus.Point{X: 1000, Y: 0})
	pan, el := h.mixer.Pan()
	if pan != 1 || el != 1 {
		t.Errorf("expected top right (1, 1), got (%v, %v)", pan, el)
	}
}

func TestRenderMixesAndRetiresVoices(t *testing.T) {
	h := newHarness(t)
	out := &fakeOutput{}
	if err := h.mixer.Init(out); err != nil {
		t.Fatal(err)
	}
	h.mixer.Toggle()
	h.mixer.Play(bus.SoundBeep, bus.PlayOptions{Volume: 0.15})

	buf := [][]float32{make([]float32, BufferSize), make([]float32, BufferSize)}
	peak := 0.0
	for i := 0; i < 50; i++ {
		out.render(buf)
		for _, v := range buf[0] {
			peak = math.Max(peak, math.Abs(float64(v)))
		}
	}
	if peak == 0 {
		t.Fatal("expected audible output")
	}
	if peak > 1 {
		t.Errorf("output not clamped: %v", peak)
	}
	if diff := cmp.Diff([]bus.Sound{bus.SoundBase}, h.mixer.Voices()); diff != "" {
		t.Errorf("only the loop should survive (-want +got):\n%s", diff)
	}

	if err := h.mixer.Close(); err != nil || !out.closed {
		t.Errorf("close: %v closed=%t", err, out.closed)
	}
}

func TestMeterSeparatesBands(t *testing.T) {
	m := NewMeter(BufferSize)
	low := make([]float32, BufferSize)
	for i := range low {
		low[i] = float32(math.Sin(2 * math.Pi * 60 * float64(i) / SampleRate))
	}
	var b Bands
	for i := 0; i < 40; i++ {
		b = m.Analyze(low)
	}
	if b.Bass <= b.High {
		t.Errorf("expected bass to dominate a 60Hz tone: %+v", b)
	}
}
