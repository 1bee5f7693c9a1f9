package viz

import (
	"time"

	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
)

// ToastCoalesce is how long a toast waits for a newer one before showing.
const ToastCoalesce = 50 * time.Millisecond

// Toasts shows one notice at a time. Bursts of requests within
// ToastCoalesce collapse to the last one, and each shown notice hides
// after its own timeout.
type Toasts struct {
	s       *frame.Scheduler
	show    *frame.Debouncer
	hide    *frame.Timer
	next    string
	timeout time.Duration
	current string
	shown   []string
}

var _ fx.Presenter = (*Toasts)(nil)

func NewToasts(s *frame.Scheduler) *Toasts {
	t := &Toasts{s: s}
	t.show = frame.NewDebouncer(s, ToastCoalesce, t.display)
	return t
}

func (t *Toasts) ShowToast(message string, timeout time.Duration) {
	if timeout <= 0 {
		timeout = fx.DefaultToastTimeout
	}
	t.next = message
	t.timeout = timeout
	t.show.Trigger()
}

func (t *Toasts) display() {
	t.current = t.next
	t.shown = append(t.shown, t.current)
	t.hide.Stop()
	t.hide = t.s.After(t.timeout, func() {
		t.hide = nil
		t.current = ""
	})
}

// Current is the visible message, or "".
func (t *Toasts) Current() string { return t.current }

// History lists every message that was actually shown.
func (t *Toasts) History() []string { return t.shown }

// View renders the visible toast, or "" when none.
func (t *Toasts) View(st Styles) string {
	if t.current == "" {
		return ""
	}
	return st.Toast.Render(t.current)
}
