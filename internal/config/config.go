package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTotalYears    = 2000
	DefaultMasterVolume  = 0.4
	DefaultAmbientVolume = 0.12
	DefaultBusyVolume    = 0.1
	DefaultCursorInertia = 0.12
	DefaultMaxParticles  = 1200
	DefaultCellWidth     = 8.0
	DefaultCellHeight    = 16.0
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Temporal   TemporalConfig   `yaml:"temporal"`
	Display    DisplayConfig    `yaml:"display"`
	Navigation NavigationConfig `yaml:"navigation"`
	Audio      AudioConfig      `yaml:"audio"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Storage    StorageConfig    `yaml:"storage"`
}

type TemporalConfig struct {
	TotalYears int `yaml:"total_years"`
}

type DisplayConfig struct {
	DefaultMode    string     `yaml:"default_mode"`
	Theme          string     `yaml:"theme"`
	Warp           WarpConfig `yaml:"warp"`
	ObserverMargin float64    `yaml:"observer_margin"`
	RenderWindow   int        `yaml:"render_window"`
	// Terminal cells are mapped to this many pixels so the layout rules
	// (600px breakpoint, 60px minimum row) keep their meaning.
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
}

type WarpConfig struct {
	Local           time.Duration `yaml:"local"`
	Near            time.Duration `yaml:"near"`
	Far             time.Duration `yaml:"far"`
	Random          time.Duration `yaml:"random"`
	KeepAliveMargin time.Duration `yaml:"keep_alive_margin"`
}

type NavigationConfig struct {
	ScrollDebounce time.Duration `yaml:"scroll_debounce"`
	UnlockGrace    time.Duration `yaml:"unlock_grace"`
	BootJumpDelay  time.Duration `yaml:"boot_jump_delay"`
	LandingKeep    time.Duration `yaml:"landing_keep"`
	ParticleBurst  int           `yaml:"particle_burst"`
	// ScrollStep is how far one wheel notch or arrow key moves, as a
	// fraction of the viewport height.
	ScrollStep float64 `yaml:"scroll_step"`
}

type AudioConfig struct {
	Enabled       bool          `yaml:"enabled"`
	MasterVolume  float64       `yaml:"master_volume"`
	AmbientVolume float64       `yaml:"ambient_volume"`
	BusyVolume    float64       `yaml:"busy_volume"`
	IdleDelay     time.Duration `yaml:"idle_delay"`
	IdleMin       time.Duration `yaml:"idle_min"`
	IdleMax       time.Duration `yaml:"idle_max"`
	SampleRate    float64       `yaml:"sample_rate"`
}

type PhysicsConfig struct {
	CursorInertia    float64       `yaml:"cursor_inertia"`
	HoverThrottle    time.Duration `yaml:"hover_throttle"`
	ExhaustThreshold float64       `yaml:"exhaust_threshold"`
	MaxParticles     int           `yaml:"max_particles"`
}

type StorageConfig struct {
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
	SaveDebounce     time.Duration `yaml:"save_debounce"`
}

func DefaultConfig() *Config {
	return &Config{
		Temporal: TemporalConfig{TotalYears: DefaultTotalYears},
		Display: DisplayConfig{
			DefaultMode: "structured",
			Theme:       "dark",
			Warp: WarpConfig{
				Local:           500 * time.Millisecond,
				Near:            1200 * time.Millisecond,
				Far:             2000 * time.Millisecond,
				Random:          2000 * time.Millisecond,
				KeepAliveMargin: 500 * time.Millisecond,
			},
			ObserverMargin: 0.5,
			RenderWindow:   1,
			CellWidth:      DefaultCellWidth,
			CellHeight:     DefaultCellHeight,
		},
		Navigation: NavigationConfig{
			ScrollDebounce: 150 * time.Millisecond,
			UnlockGrace:    400 * time.Millisecond,
			BootJumpDelay:  50 * time.Millisecond,
			LandingKeep:    800 * time.Millisecond,
			ParticleBurst:  15,
			ScrollStep:     0.25,
		},
		Audio: AudioConfig{
			Enabled:       true,
			MasterVolume:  DefaultMasterVolume,
			AmbientVolume: DefaultAmbientVolume,
			BusyVolume:    DefaultBusyVolume,
			IdleDelay:     30 * time.Second,
			IdleMin:       10 * time.Second,
			IdleMax:       25 * time.Second,
			SampleRate:    44100,
		},
		Physics: PhysicsConfig{
			CursorInertia:    DefaultCursorInertia,
			HoverThrottle:    120 * time.Millisecond,
			ExhaustThreshold: 15,
			MaxParticles:     DefaultMaxParticles,
		},
		Storage: StorageConfig{
			AutosaveInterval: 30 * time.Second,
			SaveDebounce:     500 * time.Millisecond,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Temporal.TotalYears < 10:
		return fmt.Errorf("%w: total_years must be at least 10, got %d", ErrInvalid, c.Temporal.TotalYears)
	case c.Display.DefaultMode != "structured" && c.Display.DefaultMode != "random":
		return fmt.Errorf("%w: default_mode must be structured or random, got %q", ErrInvalid, c.Display.DefaultMode)
	case c.Display.Theme != "dark" && c.Display.Theme != "light":
		return fmt.Errorf("%w: theme must be dark or light, got %q", ErrInvalid, c.Display.Theme)
	case c.Display.CellWidth <= 0 || c.Display.CellHeight <= 0:
		return fmt.Errorf("%w: cell size must be positive", ErrInvalid)
	case c.Display.RenderWindow < 1:
		return fmt.Errorf("%w: render_window must be at least 1", ErrInvalid)
	case c.Audio.IdleMax < c.Audio.IdleMin:
		return fmt.Errorf("%w: idle_max is below idle_min", ErrInvalid)
	case c.Physics.MaxParticles <= 0:
		return fmt.Errorf("%w: max_particles must be positive", ErrInvalid)
	}
	return nil
}
