package store

import (
	"errors"
	"log/slog"
	"time"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
)

const (
	DefaultAutosaveInterval = 30 * time.Second
	DefaultSaveDebounce     = 500 * time.Millisecond

	ToastSaveFailed = "Navigation Log Write Failed"
	ToastLoadFailed = "Navigation Log Corrupted, Using Defaults"
)

// Saver applies the autosave policy: at most one pending save, written
// after a short debounce, plus a periodic save.
type Saver struct {
	s        *frame.Scheduler
	store    *Store
	collect  func() Snapshot
	fx       *fx.Emitter
	logger   *slog.Logger
	debounce time.Duration
	interval time.Duration

	pending *frame.Timer
	ticker  *frame.Timer
	saves   int
}

type SaverOptions struct {
	Debounce time.Duration
	Interval time.Duration
	Logger   *slog.Logger
}

func NewSaver(s *frame.Scheduler, st *Store, collect func() Snapshot, em *fx.Emitter, opts SaverOptions) *Saver {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultSaveDebounce
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultAutosaveInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Saver{
		s:        s,
		store:    st,
		collect:  collect,
		fx:       em,
		logger:   opts.Logger.With(slog.String("component", "store")),
		debounce: opts.Debounce,
		interval: opts.Interval,
	}
}

// Start begins periodic saving.
func (sv *Saver) Start() {
	sv.ticker.Stop()
	sv.ticker = sv.s.Every(sv.interval, sv.Request)
}

func (sv *Saver) Stop() {
	sv.ticker.Stop()
	sv.ticker = nil
	sv.pending.Stop()
	sv.pending = nil
}

// Request schedules a save unless one is already pending.
func (sv *Saver) Request() {
	if sv.pending.Active() {
		return
	}
	sv.pending = sv.s.After(sv.debounce, func() {
		sv.pending = nil
		sv.write()
	})
}

// Flush writes immediately, cancelling any pending save.
func (sv *Saver) Flush() error {
	sv.pending.Stop()
	sv.pending = nil
	return sv.write()
}

func (sv *Saver) Pending() bool { return sv.pending.Active() }

// Saves counts successful writes.
func (sv *Saver) Saves() int { return sv.saves }

func (sv *Saver) write() error {
	snap := sv.collect()
	snap.LastVisit = sv.s.Now().UTC()
	if err := sv.store.Save(snap); err != nil {
		sv.logger.Warn("failed to save state", slog.Any("error", err))
		sv.fx.Toast(ToastSaveFailed, 0)
		return err
	}
	sv.saves++
	idx := 0
	if snap.YearIndex != nil {
		idx = *snap.YearIndex
	}
	bus.Emit(sv.fx.Bus(), bus.StateSavedTopic, bus.StateSaved{YearIndex: idx, At: snap.LastVisit})
	return nil
}

// LoadOrDefault loads the snapshot. Failures other than a missing snapshot
// are logged and reported with a toast; the zero Snapshot is returned in
// every failure case.
func LoadOrDefault(st *Store, em *fx.Emitter, logger *slog.Logger) Snapshot {
	snap, err := st.Load()
	switch {
	case err == nil:
		return snap
	case errors.Is(err, ErrNotFound):
		return Snapshot{}
	default:
		if logger != nil {
			logger.Warn("failed to load state", slog.Any("error", err))
		}
		if em != nil {
			em.Toast(ToastLoadFailed, 0)
		}
		return Snapshot{}
	}
}
