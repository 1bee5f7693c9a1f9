// Package power switches the expensive collaborators off while the
// terminal is not in front of the user.
package power

import (
	"log/slog"
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/fx"
)

const (
	ToastOn      = "Power Saving Mode Activated"
	ToastOff     = "Power Saving Mode Disabled"
	ToastTimeout = 1800 * time.Millisecond
)

// Manager owns the power saving flag. Entering power saving mutes audio and
// stops animations; leaving it restores animations and puts audio back to
// what the user last chose.
type Manager struct {
	fx        *fx.Emitter
	audioPref func() bool
	logger    *slog.Logger
	enabled   bool
}

// New returns a Manager. audioPref reports the user's saved audio choice;
// nil means audio was on.
func New(emitter *fx.Emitter, audioPref func() bool, logger *slog.Logger) *Manager {
	if audioPref == nil {
		audioPref = func() bool { return true }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{fx: emitter, audioPref: audioPref, logger: logger.With(slog.String("component", "power"))}
}

// Set enters or leaves power saving. Repeating the current state does
// nothing.
func (m *Manager) Set(enabled bool) {
	if enabled == m.enabled {
		return
	}
	m.enabled = enabled
	m.logger.Info("power saving changed", slog.Bool("enabled", enabled))
	bus.Emit(m.fx.Bus(), bus.PowerSavingChanged, bus.PowerSaving{Enabled: enabled})

	if enabled {
		m.fx.SetAudioEnabled(false)
		m.fx.SetAnimationsEnabled(false)
		m.fx.Toast(ToastOn, ToastTimeout)
		return
	}
	m.fx.SetAudioEnabled(m.audioPref())
	m.fx.SetAnimationsEnabled(true)
	m.fx.Toast(ToastOff, ToastTimeout)
}

func (m *Manager) Blur()  { m.Set(true) }
func (m *Manager) Focus() { m.Set(false) }

// Visibility follows the hidden state of the window.
func (m *Manager) Visibility(hidden bool) { m.Set(hidden) }

func (m *Manager) Enabled() bool { return m.enabled }
