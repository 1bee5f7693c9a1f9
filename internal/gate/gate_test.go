package gate

import (
	"testing"
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
)

func newGate(t *testing.T) (*Gate, *frame.Scheduler, *fx.Recorder) {
	t.Helper()
	s := frame.New(time.Unix(0, 0))
	b := bus.New(nil)
	rec := fx.NewRecorder()
	rec.Attach(b)
	return New(s, fx.NewEmitter(b), 0), s, rec
}

func TestUnlockAfterSettle(t *testing.T) {
	g, s, rec := newGate(t)
	g.Lock()
	if !g.Locked() || g.Glow() != LockedGlow || !rec.Busy {
		t.Fatal("lock did not take effect")
	}
	g.Unlock()
	s.Advance(399 * time.Millisecond)
	if !g.Locked() {
		t.Fatal("released before the settle delay")
	}
	s.Advance(2 * time.Millisecond)
	if g.Locked() || g.Glow() != IdleGlow || rec.Busy {
		t.Fatal("gate did not release")
	}
}

func TestLaterLockSupersedesPendingUnlock(t *testing.T) {
	g, s, rec := newGate(t)
	g.Lock()
	g.Unlock()
	s.Advance(300 * time.Millisecond)
	g.Lock()
	s.Advance(time.Second)
	if !g.Locked() {
		t.Fatal("an earlier unlock released a later lock")
	}
	if n := rec.Count("busy:true"); n != 1 {
		t.Errorf("expected a single busy command, got %d", n)
	}

	g.Unlock()
	s.Advance(200 * time.Millisecond)
	g.Unlock()
	s.Advance(300 * time.Millisecond)
	if !g.Locked() {
		t.Fatal("unlock must be measured from the most recent call")
	}
	s.Advance(200 * time.Millisecond)
	if g.Locked() {
		t.Fatal("gate stayed locked")
	}
}
