package script

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/layout"
)

func TestParseScenario(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		steps   int
	}{
		{
			name:  "valid",
			yaml:  "name: tour\nseed: 7\nsteps:\n  - do: jump-random\n  - do: wait\n    ms: 2500\n",
			steps: 2,
		},
		{
			name:    "unknown step",
			yaml:    "steps:\n  - do: teleport\n",
			wantErr: ErrUnknownStep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := ParseScenario([]byte(tt.yaml))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(sc.Steps) != tt.steps {
				t.Errorf("steps = %d, want %d", len(sc.Steps), tt.steps)
			}
		})
	}

	if _, err := ParseScenario([]byte("today: yesterday\n")); err == nil {
		t.Error("expected a bad today to be rejected")
	}
}

func TestRunHome(t *testing.T) {
	sc := &Scenario{
		Name:  "home",
		Seed:  3,
		Today: "2024-03-15",
		Steps: []Step{
			{Do: "scroll", Dy: 640 * 3},
			{Do: "wait", Ms: 500},
			{Do: "jump-today"},
			{Do: "wait", Ms: 2000},
		},
	}
	res, err := Run(context.Background(), sc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Year != 2024 {
		t.Errorf("year = %d, want 2024", res.Year)
	}
	if res.Landing != layout.NewDate(2024, 3, 15) {
		t.Errorf("landing = %v", res.Landing)
	}
	if res.Final.YearIndex == nil || *res.Final.YearIndex != layout.DefaultTotalYears/2 {
		t.Errorf("final year index = %v", res.Final.YearIndex)
	}

	var warps int
	for _, e := range res.Entries {
		if e.Topic == bus.NavWarpStart.Name() {
			warps++
		}
	}
	// the boot jump plus the explicit one
	if warps != 2 {
		t.Errorf("warp starts = %d, want 2", warps)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	sc := &Scenario{
		Seed:  42,
		Steps: []Step{{Do: "jump-random"}, {Do: "wait", Ms: 2500}},
	}
	a, err := Run(context.Background(), sc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(context.Background(), sc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Entries, b.Entries); diff != "" {
		t.Errorf("traces differ (-first +second):\n%s", diff)
	}
	if a.Landing.IsZero() || a.Landing.Year != a.Year {
		t.Errorf("landing %v not in year %d", a.Landing, a.Year)
	}
}

func TestRunTrials(t *testing.T) {
	sc := &Scenario{Steps: []Step{{Do: "key", Key: "x"}, {Do: "wait", Ms: 2500}}}
	trials, err := RunTrials(context.Background(), sc, 3, 100, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != 3 {
		t.Fatalf("trials = %d", len(trials))
	}
	for i, tr := range trials {
		if tr.Seed != int64(100+i) {
			t.Errorf("trial %d seed = %d", i, tr.Seed)
		}
		if tr.Events == 0 {
			t.Errorf("trial %d recorded nothing", i)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, &Scenario{Steps: []Step{{Do: "wait", Ms: 10}}}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
