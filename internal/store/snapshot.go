package store

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const DefaultTheme = "dark"

// Snapshot is the persisted UI state. Fields are only ever added; unknown
// fields are ignored and missing or malformed ones take their defaults.
type Snapshot struct {
	Theme          string    `json:"theme,omitempty"`
	YearIndex      *int      `json:"yearIndex,omitempty"`
	ScrollPosition float64   `json:"scrollPosition"`
	AudioEnabled   *bool     `json:"audioEnabled,omitempty"`
	Mode           string    `json:"mode,omitempty"`
	LastVisit      time.Time `json:"lastVisit,omitempty"`
}

func (s Snapshot) Encode() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// Decode parses a snapshot field by field so that one bad field does not
// discard the others. Only a blob that is not a JSON object is an error.
func Decode(raw []byte) (Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	var s Snapshot
	if v, ok := fields["theme"]; ok {
		var theme string
		if json.Unmarshal(v, &theme) == nil && (theme == "dark" || theme == "light") {
			s.Theme = theme
		}
	}
	if v, ok := fields["yearIndex"]; ok {
		var f float64
		if json.Unmarshal(v, &f) == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			idx := int(math.Round(f))
			s.YearIndex = &idx
		}
	}
	if v, ok := fields["scrollPosition"]; ok {
		var f float64
		if json.Unmarshal(v, &f) == nil && f >= 0 {
			s.ScrollPosition = f
		}
	}
	if v, ok := fields["audioEnabled"]; ok {
		var b bool
		if json.Unmarshal(v, &b) == nil {
			s.AudioEnabled = &b
		}
	}
	if v, ok := fields["mode"]; ok {
		var m string
		if json.Unmarshal(v, &m) == nil {
			s.Mode = m
		}
	}
	if v, ok := fields["lastVisit"]; ok {
		var t time.Time
		if json.Unmarshal(v, &t) == nil {
			s.LastVisit = t
		}
	}
	return s, nil
}

// ThemeOrDefault returns the saved theme or DefaultTheme.
func (s Snapshot) ThemeOrDefault() string {
	if s.Theme == "" {
		return DefaultTheme
	}
	return s.Theme
}

// AudioOn defaults to true when nothing was saved.
func (s Snapshot) AudioOn() bool {
	return s.AudioEnabled == nil || *s.AudioEnabled
}
