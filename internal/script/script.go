// Package script replays navigation scenarios headless against a manual
// clock and records every bus event they cause.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chronogrid/internal/app"
	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/config"
	"github.com/san-kum/chronogrid/internal/layout"
	"github.com/san-kum/chronogrid/internal/store"
)

var ErrUnknownStep = errors.New("script: unknown step")

const (
	DefaultWidth  = 1280.0
	DefaultHeight = 640.0
	// settle is how long the clock runs after every step so frame work
	// lands before the next one.
	settle = 20 * time.Millisecond
	// bootWait covers the loading sequence and the first jump home.
	bootWait = 2 * time.Second
)

// Scenario is a scripted navigation session.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Seed        int64   `yaml:"seed"`
	Today       string  `yaml:"today"`
	Width       float64 `yaml:"width"`
	Height      float64 `yaml:"height"`
	Preset      string  `yaml:"preset"`
	Steps       []Step  `yaml:"steps"`
}

// Step is one command. Do selects it; the other fields are its arguments.
type Step struct {
	Do     string  `yaml:"do"`
	Ms     int     `yaml:"ms"`
	Key    string  `yaml:"key"`
	Mode   string  `yaml:"mode"`
	Dy     float64 `yaml:"dy"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Filler bool    `yaml:"filler"`
}

var steps = map[string]func(a *app.App, s Step) error{
	"wait": func(a *app.App, s Step) error {
		a.S.Advance(time.Duration(s.Ms) * time.Millisecond)
		return nil
	},
	"jump-today":  func(a *app.App, _ Step) error { a.Nav.JumpToToday(false); return nil },
	"jump-random": func(a *app.App, _ Step) error { a.Nav.JumpToRandom(); return nil },
	"scroll":      func(a *app.App, s Step) error { a.Scroll(s.Dy); return nil },
	"key":         func(a *app.App, s Step) error { a.HandleKey(s.Key); return nil },
	"mode": func(a *app.App, s Step) error {
		m, err := layout.ParseMode(s.Mode)
		if err != nil {
			return err
		}
		a.Nav.SetMode(m)
		return nil
	},
	"resize": func(a *app.App, s Step) error {
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("resize needs width and height")
		}
		a.Resize(s.Width, s.Height)
		return nil
	},
	"pointer":   func(a *app.App, s Step) error { a.PointerMove(s.X, s.Y); return nil },
	"hover":     func(a *app.App, s Step) error { a.Hover(s.Filler); return nil },
	"hover-out": func(a *app.App, _ Step) error { a.HoverOut(); return nil },
	"click":     func(a *app.App, s Step) error { a.Click(s.X, s.Y); return nil },
	"theme":     func(a *app.App, _ Step) error { a.Effects.ToggleTheme(); return nil },
	"blur":      func(a *app.App, _ Step) error { a.Blur(); return nil },
	"focus":     func(a *app.App, _ Step) error { a.Focus(); return nil },
}

// StepNames lists the supported step kinds, sorted.
func StepNames() []string {
	names := make([]string, 0, len(steps))
	for k := range steps {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	for i, s := range sc.Steps {
		if _, ok := steps[strings.ToLower(s.Do)]; !ok {
			return fmt.Errorf("step %d: %w: %q", i+1, ErrUnknownStep, s.Do)
		}
	}
	if sc.Today != "" {
		if _, err := time.Parse(time.DateOnly, sc.Today); err != nil {
			return fmt.Errorf("today: %w", err)
		}
	}
	return nil
}

// Result is the outcome of one replay.
type Result struct {
	Entries  []store.TraceEntry
	Final    store.Snapshot
	Year     int
	Landing  layout.Date
	Duration time.Duration
}

// Export packs the result for the JSON writer.
func (r Result) Export(sc *Scenario) store.TraceExport {
	return store.TraceExport{
		Scenario: sc.Name,
		Seed:     sc.Seed,
		Steps:    len(sc.Steps),
		Duration: r.Duration.String(),
		Final:    r.Final,
		Entries:  r.Entries,
	}
}

type Options struct {
	Config *config.Config
	Logger *slog.Logger
}

// Run boots a headless app, runs every step and returns the event trace.
// The clock starts at 09:00 UTC of the scenario's today.
func Run(ctx context.Context, sc *Scenario, opts Options) (Result, error) {
	cfg := config.DefaultConfig()
	if opts.Config != nil {
		c := *opts.Config
		cfg = &c
	}
	if sc.Preset != "" {
		if err := config.Apply(cfg, sc.Preset); err != nil {
			return Result{}, err
		}
	}
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	if sc.Today != "" {
		d, err := time.Parse(time.DateOnly, sc.Today)
		if err != nil {
			return Result{}, err
		}
		start = d.Add(9 * time.Hour)
	}
	w, h := sc.Width, sc.Height
	if w <= 0 || h <= 0 {
		w, h = DefaultWidth, DefaultHeight
	}

	a := app.New(app.Options{
		Config: cfg,
		Store:  store.NewMemory(),
		Now:    start,
		Width:  w,
		Height: h,
		Seed:   sc.Seed,
		Logger: opts.Logger,
	})
	defer a.Close()

	var res Result
	a.Bus.Tap(func(topic string, payload any) {
		e := store.TraceEntry{At: a.S.Now().Sub(start), Topic: topic}
		if d, ok := payload.(bus.Describer); ok {
			e.Detail = d.Describe()
		}
		res.Entries = append(res.Entries, e)
	})

	a.Boot()
	a.S.Advance(bootWait)

	for i, s := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		fn, ok := steps[strings.ToLower(s.Do)]
		if !ok {
			return res, fmt.Errorf("step %d: %w: %q", i+1, ErrUnknownStep, s.Do)
		}
		if err := fn(a, s); err != nil {
			return res, fmt.Errorf("step %d (%s): %w", i+1, s.Do, err)
		}
		a.S.Advance(settle)
	}

	res.Final = a.Snapshot()
	res.Year = a.Nav.CurrentYear()
	res.Landing = a.Nav.Landing().Date
	res.Duration = a.S.Now().Sub(start)
	return res, nil
}

// Trial is the outcome of one seed in RunTrials.
type Trial struct {
	Seed    int64
	Year    int
	Landing layout.Date
	Events  int
}

// RunTrials replays sc once per seed from seed to seed+n-1.
func RunTrials(ctx context.Context, sc *Scenario, n int, seed int64, opts Options) ([]Trial, error) {
	trials := make([]Trial, 0, n)
	for i := 0; i < n; i++ {
		run := *sc
		run.Seed = seed + int64(i)
		res, err := Run(ctx, &run, opts)
		if err != nil {
			return trials, fmt.Errorf("trial %d: %w", i+1, err)
		}
		trials = append(trials, Trial{
			Seed:    run.Seed,
			Year:    res.Year,
			Landing: res.Landing,
			Events:  len(res.Entries),
		})
	}
	return trials, nil
}
