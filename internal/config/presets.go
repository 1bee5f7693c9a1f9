package config

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

// Presets adjust the default configuration.
var Presets = map[string]func(*Config){
	"default": func(*Config) {},
	"calm": func(c *Config) {
		c.Display.Warp.Local = 750 * time.Millisecond
		c.Display.Warp.Near = 1800 * time.Millisecond
		c.Display.Warp.Far = 3000 * time.Millisecond
		c.Display.Warp.Random = 3000 * time.Millisecond
		c.Audio.MasterVolume = 0.25
		c.Physics.ExhaustThreshold = 30
		c.Physics.MaxParticles = 400
	},
	"hyper": func(c *Config) {
		c.Display.Warp.Local = 250 * time.Millisecond
		c.Display.Warp.Near = 600 * time.Millisecond
		c.Display.Warp.Far = 1000 * time.Millisecond
		c.Display.Warp.Random = 1000 * time.Millisecond
		c.Navigation.ScrollDebounce = 100 * time.Millisecond
		c.Physics.CursorInertia = 0.25
		c.Physics.MaxParticles = 2000
	},
	"silent": func(c *Config) {
		c.Audio.Enabled = false
	},
}

// GetPreset returns the default configuration with the named preset
// applied.
func GetPreset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, nil
}

// Apply applies the named preset on top of cfg.
func Apply(cfg *Config, name string) error {
	apply, ok := Presets[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	apply(cfg)
	return nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
