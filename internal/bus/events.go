package bus

import (
	"fmt"
	"time"
)

// Sound names an audio cue understood by the ambient mixer.
type Sound string

const (
	SoundJump    Sound = "jump"
	SoundScroll  Sound = "scroll"
	SoundWarp    Sound = "warp"
	SoundHover   Sound = "hover"
	SoundTheme   Sound = "theme"
	SoundBeep    Sound = "beep"
	SoundEnable  Sound = "enable"
	SoundMute    Sound = "mute"
	SoundBase    Sound = "base"
	SoundPulse   Sound = "pulse"
	SoundWind    Sound = "wind"
	SoundEngine  Sound = "engine"
	SoundStellar Sound = "stellar"
)

// PlayOptions mirror the mixer voice settings. Zero Volume and zero Rate
// mean "use the default of 1".
type PlayOptions struct {
	Volume float64
	Rate   float64
	Loop   bool
}

type AudioPlay struct {
	Key     Sound
	Options PlayOptions
}

func (m AudioPlay) Describe() string {
	return fmt.Sprintf(`key:%q volume:%.2f rate:%.2f loop:%t`, m.Key, m.Options.Volume, m.Options.Rate, m.Options.Loop)
}

type Point struct {
	X, Y float64
}

type AudioToggled struct {
	Enabled bool
}

type ParticleSpawn struct {
	X, Y    float64
	Exhaust bool
}

type Resize struct {
	Width, Height float64
}

type Toast struct {
	Message string
	Timeout time.Duration
}

func (m Toast) Describe() string {
	return fmt.Sprintf(`msg:%q timeout:%s`, m.Message, m.Timeout)
}

type PowerSaving struct {
	Enabled bool
}

type ScrollSignal struct {
	Top float64
}

func (m ScrollSignal) Describe() string { return fmt.Sprintf(`top:%.0f`, m.Top) }

type WarpStart struct {
	CurrentYear int
	TargetYear  int
	Distance    int
	Class       string
	Initial     bool
}

func (m WarpStart) Describe() string {
	return fmt.Sprintf(`from:%d to:%d distance:%d class:%q initial:%t`, m.CurrentYear, m.TargetYear, m.Distance, m.Class, m.Initial)
}

type WarpEnd struct {
	TargetYear int
	Duration   time.Duration
}

func (m WarpEnd) Describe() string {
	return fmt.Sprintf(`target:%d duration:%s`, m.TargetYear, m.Duration)
}

type ModeChanged struct {
	Mode string
}

type NavState struct {
	From, To string
}

func (m NavState) Describe() string { return fmt.Sprintf(`%s -> %s`, m.From, m.To) }

type BlockActive struct {
	Year   int
	Active bool
}

type GateChanged struct {
	Locked bool
	Glow   float64
}

type ThemeChanged struct {
	Theme string
}

type PointerMove struct {
	X, Y     float64
	Velocity float64
}

type Hover struct {
	Filler bool
}

type BootProgress struct {
	Percent int
	Status  string
}

type StateSaved struct {
	YearIndex int
	At        time.Time
}

var (
	AudioPlayTopic        = NewTopic[AudioPlay]("audio:play")
	AudioToggleMaster     = NewTopic[struct{}]("audio:toggleMaster")
	AudioToggledTopic     = NewTopic[AudioToggled]("audio:toggled")
	AudioSetBusy          = NewTopic[bool]("audio:setBusy")
	AudioInjectPower      = NewTopic[float64]("audio:injectEnginePower")
	AudioSpatialPosition  = NewTopic[Point]("audio:updateSpatialPosition")
	AudioResetIdleTimer   = NewTopic[struct{}]("audio:resetIdleTimer")
	AudioSetEnabled       = NewTopic[bool]("audio:setEnabled")
	ParticleSpawnTopic    = NewTopic[ParticleSpawn]("particles:spawn")
	ParticleResize        = NewTopic[Resize]("particles:resize")
	AnimationSetEnabled   = NewTopic[bool]("animation:setEnabled")
	ToastShow             = NewTopic[Toast]("toast:show")
	PowerSavingChanged    = NewTopic[PowerSaving]("powerSaving:changed")
	AppBooted             = NewTopic[struct{}]("app:booted")
	BootProgressTopic     = NewTopic[BootProgress]("app:bootProgress")
	StateSavedTopic       = NewTopic[StateSaved]("state:saved")
	NavScrollStart        = NewTopic[ScrollSignal]("nav:scroll:start")
	NavScrollEnd          = NewTopic[ScrollSignal]("nav:scroll:end")
	NavWarpStart          = NewTopic[WarpStart]("nav:warp:start")
	NavWarpEnd            = NewTopic[WarpEnd]("nav:warp:end")
	NavModeChanged        = NewTopic[ModeChanged]("nav:modeChanged")
	NavStateChanged       = NewTopic[NavState]("nav:state")
	ViewportBlockActive   = NewTopic[BlockActive]("viewport:blockActive")
	ViewportHaptic        = NewTopic[int]("viewport:haptic")
	GateChangedTopic      = NewTopic[GateChanged]("gate:changed")
	UIThemeChanged        = NewTopic[ThemeChanged]("ui:themeChanged")
	InputPointerMove      = NewTopic[PointerMove]("input:pointerMove")
	InputHover            = NewTopic[Hover]("input:hover")
	InputClick            = NewTopic[Point]("input:click")
)
